package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/cache"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// RatesService prices the settlement asset in the quote currency. A rate is
// served from cache for at most ttl; ttl 0 means every call hits the source.
type RatesService struct {
	source RateSource
	base   string
	quote  string
	ttl    time.Duration
	cache  *cache.Cache
	now    func() time.Time
}

func NewRatesService(source RateSource, base, quote string, ttl time.Duration, cache *cache.Cache) *RatesService {
	return &RatesService{source: source, base: base, quote: quote, ttl: ttl, cache: cache, now: time.Now}
}

func (s *RatesService) pair() string {
	return s.base + s.quote
}

// units of quote per one unit of base
func (s *RatesService) Get(ctx context.Context) (decimal.Decimal, error) {
	if s.ttl > 0 {
		if cached, ok := s.cache.Load(s.pair()).(cachedRate); ok && s.now().Sub(cached.fetchedAt) < s.ttl {
			return cached.rate, nil
		}
	}

	rate, err := s.source.GetRate(ctx, s.base, s.quote)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrOracleUnavailable, err.Error())
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s", domain.ErrOracleUnavailable, rate)
	}

	if s.ttl > 0 {
		s.cache.Set(s.pair(), cachedRate{rate: rate, fetchedAt: s.now()}, s.ttl)
	}

	return rate, nil
}

// staleness bound of a served rate
func (s *RatesService) MaxAge() time.Duration {
	return s.ttl
}
