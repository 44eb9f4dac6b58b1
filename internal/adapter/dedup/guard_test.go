package dedup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

type memorySetNX struct {
	keys map[string]time.Duration
	err  error
}

func (m *memorySetNX) SetNX(_ context.Context, key string, _ any, ttl time.Duration) *redis.BoolCmd {
	if m.err != nil {
		return redis.NewBoolResult(false, m.err)
	}
	if m.keys == nil {
		m.keys = map[string]time.Duration{}
	}
	if _, ok := m.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.keys[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestRedisGuardMarksOnce(t *testing.T) {
	store := &memorySetNX{}
	g := NewRedisGuard(store, time.Hour)
	ctx := context.Background()

	first, err := g.FirstSeen(ctx, "cb-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := g.FirstSeen(ctx, "cb-1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.Equal(t, time.Hour, store.keys["digistore:callback:cb-1"])
}

func TestRedisGuardErrors(t *testing.T) {
	boom := errors.New("connection refused")
	g := NewRedisGuard(&memorySetNX{err: boom}, time.Hour)

	_, err := g.FirstSeen(context.Background(), "cb-1")
	assert.ErrorIs(t, err, boom)

	_, err = g.FirstSeen(context.Background(), "")
	assert.Error(t, err)
}

func TestAllowAll(t *testing.T) {
	seen, err := AllowAll{}.FirstSeen(context.Background(), "cb")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestModuleSelectsGuard(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cases := []struct {
		name  string
		url   string
		check func(t *testing.T, g usecase.CallbackGuard)
	}{
		{"no redis", "", func(t *testing.T, g usecase.CallbackGuard) { assert.IsType(t, AllowAll{}, g) }},
		{"redis url", "redis://127.0.0.1:1/0", func(t *testing.T, g usecase.CallbackGuard) { assert.IsType(t, &RedisGuard{}, g) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var guard usecase.CallbackGuard
			app := fxtest.New(t,
				fx.NopLogger,
				fx.Supply(&config.Config{RedisURL: tc.url, CallbackDedupTTL: time.Hour}, logger),
				Module,
				fx.Populate(&guard),
			)
			app.RequireStart().RequireStop()
			tc.check(t, guard)
		})
	}
}

func TestModuleRejectsBadURL(t *testing.T) {
	_, err := newGuard(guardParams{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{RedisURL: "http://not-redis"},
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	assert.Error(t, err)
}
