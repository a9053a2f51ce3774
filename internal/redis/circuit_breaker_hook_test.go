package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerHook_NormalOperation(t *testing.T) {
	hook := NewCircuitBreakerHook()

	// Circuit should start in closed state
	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return nil
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		assert.NoError(t, err)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_NilIsNotAFailure(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	// Cache misses must not trip the breaker.
	for i := 0; i < 20; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return goredis.Nil
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "missing"))
		assert.ErrorIs(t, err, goredis.Nil)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_OpensAfterSustainedFailures(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("connection refused")
		})
		_ = processHook(ctx, goredis.NewStringCmd(ctx, "set", "key", "value"))
	}

	assert.Equal(t, circuitbreaker.OpenState, hook.GetState())
}

func TestCircuitBreakerHook_ServesCachedGetWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	// Prime the fallback cache with one successful GET.
	cmd := goredis.NewStringCmd(ctx, "get", "search_cache:bmi|0|false")
	processHook := hook.ProcessHook(func(ctx context.Context, c goredis.Cmder) error {
		c.(*goredis.StringCmd).SetVal(`[{"Rank":0.5}]`)
		return nil
	})
	require.NoError(t, processHook(ctx, cmd))

	// Trip the breaker.
	for i := 0; i < 10; i++ {
		fail := hook.ProcessHook(func(ctx context.Context, c goredis.Cmder) error {
			return errors.New("connection refused")
		})
		_ = fail(ctx, goredis.NewStringCmd(ctx, "get", "other"))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.GetState())

	// The cached GET is served without touching Redis.
	served := goredis.NewStringCmd(ctx, "get", "search_cache:bmi|0|false")
	open := hook.ProcessHook(func(ctx context.Context, c goredis.Cmder) error {
		t.Fatal("next hook must not run while circuit is open")
		return nil
	})
	require.NoError(t, open(ctx, served))
	assert.Equal(t, `[{"Rank":0.5}]`, served.Val())

	// Writes fail fast.
	write := hook.ProcessHook(func(ctx context.Context, c goredis.Cmder) error { return nil })
	err := write(ctx, goredis.NewStringCmd(ctx, "set", "key", "value"))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}
