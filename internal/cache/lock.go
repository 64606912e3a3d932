package cache

import (
	"context"
	"time"

	"EstateLink/storage/redis"
)

// SetNX-based distributed lock. Scan and dispatch jobs take one before
// running so overlapping triggers (scheduler tick plus a manual API call)
// cannot run the same job twice.
const lockPrefix = "lock"

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullKey := redis.Key(lockPrefix, key)

	ok, err := redis.Client().SetNX(ctx, fullKey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func Unlock(ctx context.Context, key string) error {
	fullKey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullKey).Err()
}
