package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aacflow/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "phrases:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "u1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("phrases:lock:u1"))
	assert.Equal(t, 5*time.Second, mr.TTL("phrases:lock:u1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("phrases:lock:u1"))
}

func TestLocker_Contention(t *testing.T) {
	mr, client := setup(t)
	first := redis.NewLocker(client, "phrases:")
	second := redis.NewFromClient(client).Locker("phrases:")
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "u1", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx, "u1", 5*time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := second.Lock(ctx, "u1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("phrases:lock:u1"))
	require.NoError(t, unlock2(ctx))
}

func TestLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "phrases:")
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "u1", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := locker.Lock(ctx, "u1", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("phrases:lock:u1"), "an expired holder must not release the new lock")
	require.NoError(t, unlock(ctx))
}
