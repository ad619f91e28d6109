package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/aretw0/aacflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManager_SerializesPerUser(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "u1", func(context.Context) error {
				n := inside.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, mgr.Active())
}

func TestManager_DifferentUsersDoNotBlock(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	err := mgr.WithLock(ctx, "a", func(ctx context.Context) error {
		return mgr.WithLock(ctx, "b", func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	for i := range 1000 {
		_ = mgr.WithLock(ctx, fmt.Sprintf("user-%d", i), func(context.Context) error { return nil })
	}
	assert.Zero(t, mgr.Active(), "locks must not leak")
}

func TestManager_ReturnsFnError(t *testing.T) {
	mgr := session.NewManager()
	boom := errors.New("boom")

	err := mgr.WithLock(context.Background(), "u1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, mgr.Active())
}

func TestManager_CancelWhileWaiting(t *testing.T) {
	mgr := session.NewManager()
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = mgr.WithLock(context.Background(), "u1", func(context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := mgr.WithLock(ctx, "u1", func(context.Context) error {
		t.Error("fn must not run without the lock")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(done)
	require.Eventually(t, func() bool { return mgr.Active() == 0 }, time.Second, 5*time.Millisecond)
}

type fakeLocker struct {
	mu      sync.Mutex
	keys    []string
	ttl     time.Duration
	unlocks int
	err     error
}

func (f *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	f.ttl = ttl
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	mgr := session.NewManager(session.WithLocker(locker), session.WithLockTTL(time.Minute))

	require.NoError(t, mgr.WithLock(context.Background(), "u1", func(context.Context) error { return nil }))
	assert.Equal(t, []string{"u1"}, locker.keys)
	assert.Equal(t, time.Minute, locker.ttl)
	assert.Equal(t, 1, locker.unlocks)

	locker.err = errors.New("redis down")
	err := mgr.WithLock(context.Background(), "u1", func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
	assert.Zero(t, mgr.Active())
}
