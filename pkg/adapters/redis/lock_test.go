package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tapevm/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	// 1. Acquire
	unlock, err := locker.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.DefaultLockPrefix+"k"))

	// 2. A second holder waits until its context expires
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "k", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 3. Release
	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(redis.DefaultLockPrefix+"k"))

	// 4. Free again
	unlock, err = locker.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_UnlockOnlyOwnValue(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "custom:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// The lock expires and somebody else takes it
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("custom:k", "someone-else"))

	require.NoError(t, unlock(ctx))
	v, err := mr.Get("custom:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v, "expired holder must not delete the new lock")
}

func TestLocker_WaitsForRelease(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(80 * time.Millisecond)
		_ = unlock(ctx)
	}()

	second, err := locker.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second(ctx))
}
