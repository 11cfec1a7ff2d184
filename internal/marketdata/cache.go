package marketdata

import (
	"context"
	"time"

	"github.com/wonny/momentum/pkg/logger"
	"github.com/wonny/momentum/pkg/redis"
)

// Store is the cache surface CachedGateway needs. *redis.Cache
// satisfies it; tests substitute an in-memory implementation.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedGateway decorates a Gateway with caching. Failed fetches are
// never cached; when Redis is disabled every call passes through.
type CachedGateway struct {
	inner  Gateway
	cache  Store
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedGateway wraps gw with a cache.
func NewCachedGateway(gw Gateway, cache Store, ttl time.Duration, log *logger.Logger) *CachedGateway {
	return &CachedGateway{
		inner:  gw,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// FetchSeries returns the cached series when present, fetching and
// caching otherwise.
func (g *CachedGateway) FetchSeries(ctx context.Context, symbol string, lookbackDays int) (Series, error) {
	key := redis.SeriesKey(symbol, lookbackDays)

	var cached Series
	if found, err := g.cache.Get(ctx, key, &cached); err == nil && found {
		g.logger.WithField("symbol", symbol).Debug("Series cache hit")
		return cached, nil
	}

	series, err := g.inner.FetchSeries(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, series, g.ttl); err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Warn("Series cache write failed")
	}

	return series, nil
}

// FetchFundamentals returns the cached snapshot when present.
func (g *CachedGateway) FetchFundamentals(ctx context.Context, symbol string) (Fundamentals, error) {
	key := redis.FundamentalsKey(symbol)

	var cached Fundamentals
	if found, err := g.cache.Get(ctx, key, &cached); err == nil && found {
		g.logger.WithField("symbol", symbol).Debug("Fundamentals cache hit")
		return cached, nil
	}

	snapshot, err := g.inner.FetchFundamentals(ctx, symbol)
	if err != nil {
		return Fundamentals{}, err
	}

	if err := g.cache.Set(ctx, key, snapshot, g.ttl); err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Warn("Fundamentals cache write failed")
	}

	return snapshot, nil
}
