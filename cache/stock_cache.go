package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"school_library_backend/db"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StockCache keeps short-lived stock snapshots in Redis so availability
// lookups don't hammer Postgres. Mutating paths invalidate; a stale read can
// only last one TTL.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStockCache(rdb *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

func stockKey(resourceID string) string { return fmt.Sprintf("library:stock:%s", resourceID) }

const sweepLockKey = "library:overdue:sweep"

// Get returns (nil, nil) on a miss.
func (c *StockCache) Get(ctx context.Context, resourceID string) (*db.StockInfo, error) {
	b, err := c.rdb.Get(ctx, stockKey(resourceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var info db.StockInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *StockCache) Set(ctx context.Context, info *db.StockInfo) error {
	b, _ := json.Marshal(info)
	return c.rdb.Set(ctx, stockKey(info.ResourceID), b, c.ttl).Err()
}

func (c *StockCache) Invalidate(ctx context.Context, resourceID string) {
	_ = c.rdb.Del(ctx, stockKey(resourceID)).Err()
}

// AcquireSweepLock serializes sweeps across instances; the TTL guards
// against a crashed holder. Returns an empty token when the lock is held by
// someone else.
func (c *StockCache) AcquireSweepLock(ctx context.Context, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, sweepLockKey, token, ttl).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// Compare-and-delete so a holder whose TTL expired mid-sweep cannot free the
// lock a later sweeper acquired.
var releaseSweepScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (c *StockCache) ReleaseSweepLock(ctx context.Context, token string) {
	_ = releaseSweepScript.Run(ctx, c.rdb, []string{sweepLockKey}, token).Err()
}
