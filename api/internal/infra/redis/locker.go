package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "checkout:lock:"

// deletes the key only if it still holds our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lease lock shared by every api instance. A holder that dies
// releases the key when ttl runs out.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// returns the token needed to unlock, or ok=false if someone else holds key
func (l *Locker) TryLock(ctx context.Context, key string) (token string, ok bool, err error) {
	token = uuid.NewString()

	ok, err = l.client.SetNX(ctx, lockPrefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *Locker) Unlock(ctx context.Context, key string, token string) error {
	err := unlockScript.Run(ctx, l.client, []string{lockPrefix + key}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (l *Locker) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, lockPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
