package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/walletcore/internal/queryinvalidation"
	"github.com/gabapcia/walletcore/internal/walletregistry"

	"github.com/redis/go-redis/v9"
)

// viewCacheKeyPrefix is the Redis key namespace under which cached per-wallet
// derived views are stored by the consuming query layer.
const viewCacheKeyPrefix = "viewcache"

// ErrViewNotCached is returned by GetWalletView when no cached payload exists
// for the given key (either never cached or already expired/invalidated).
var ErrViewNotCached = errors.New("wallet view not cached")

// viewCacheKey builds the Redis key for one dependent-module view of a wallet.
//
// Format: "viewcache:{module}:{subkey}:{address}"
func viewCacheKey(key queryinvalidation.Key) string {
	return fmt.Sprintf("%s:%s", viewCacheKeyPrefix, key.String())
}

// Invalidate implements the walletregistry.CacheInvalidator interface by
// deleting every dependent view key in a single DEL command. Deleting keys
// that do not exist is a no-op, which makes delivery idempotent and safe to
// retry.
func (c *client) Invalidate(ctx context.Context, keys []queryinvalidation.Key) error {
	if len(keys) == 0 {
		return nil
	}

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = viewCacheKey(key)
	}

	return c.conn.Del(ctx, redisKeys...).Err()
}

// SetWalletView caches a module's derived view of a wallet. The entry lifetime
// scales with the wallet's risk classification: critical and urgent wallets
// expire within seconds so the UI refreshes quickly, routine and healthy ones
// hold for about a minute.
func (c *client) SetWalletView(ctx context.Context, key queryinvalidation.Key, payload []byte, riskScores map[string]float64) error {
	ttl := queryinvalidation.CacheTTL(queryinvalidation.ClassifyRisk(riskScores))
	return c.conn.Set(ctx, viewCacheKey(key), payload, ttl).Err()
}

// GetWalletView returns the cached payload for one dependent-module view, or
// ErrViewNotCached when the entry is absent.
func (c *client) GetWalletView(ctx context.Context, key queryinvalidation.Key) ([]byte, error) {
	payload, err := c.conn.Get(ctx, viewCacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrViewNotCached
	}
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// Compile-time assertion to ensure *client satisfies the walletregistry.CacheInvalidator interface
var _ walletregistry.CacheInvalidator = new(client)
