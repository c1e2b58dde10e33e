package service

import (
	"checkout/api/internal/infra/cache"
	"context"
	"time"

	"github.com/google/uuid"
)

// LockerService is the in-process Locker for single instance deployments
// without redis.
type LockerService struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewLockerService(cache *cache.Cache, ttl time.Duration) *LockerService {
	return &LockerService{cache: cache, ttl: ttl}
}

func (s *LockerService) TryLock(_ context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	if !s.cache.SetNX(key, token, s.ttl) {
		return "", false, nil
	}
	return token, true, nil
}

func (s *LockerService) Unlock(_ context.Context, key string, token string) error {
	s.cache.DelIf(key, token)
	return nil
}

func (s *LockerService) IsLocked(_ context.Context, key string) (bool, error) {
	return s.cache.Load(key) != nil, nil // locked if not nil
}
