package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "digistore:callback:"

type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// RedisGuard remembers chat callback ids in Redis for ttl.
type RedisGuard struct {
	store setNXer
	ttl   time.Duration
}

// NewRedisGuard constructs RedisGuard.
func NewRedisGuard(store setNXer, ttl time.Duration) *RedisGuard {
	return &RedisGuard{store: store, ttl: ttl}
}

// FirstSeen marks callbackID and reports whether it was new.
func (g *RedisGuard) FirstSeen(ctx context.Context, callbackID string) (bool, error) {
	if callbackID == "" {
		return false, errors.New("callback id is required")
	}
	set, err := g.store.SetNX(ctx, keyPrefix+callbackID, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark callback: %w", err)
	}
	return set, nil
}

// AllowAll treats every callback as new. Duplicates are still refused by the
// order state machine.
type AllowAll struct{}

// FirstSeen always reports true.
func (AllowAll) FirstSeen(context.Context, string) (bool, error) {
	return true, nil
}
