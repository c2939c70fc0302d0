package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "chefgpt-server/internal/domain/conversation"
)

func TestLocalLockerSerialisesSameKey(t *testing.T) {
	locker := NewLocalLocker()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "conversation:a", time.Second, func(ctx context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, locker.slots)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker()
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), "k", time.Second, func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := locker.WithLock(ctx, "k", time.Second, func(ctx context.Context) error {
		t.Fatal("lock acquired while held")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestBuildUniversalOptions(t *testing.T) {
	opts, err := buildUniversalOptions("redis://:secret@cache-1:6379/2, cache-2:6379")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache-1:6379", "cache-2:6379"}, opts.Addrs)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = buildUniversalOptions(" , ")
	assert.Error(t, err)
}

func TestAcquireErrorMarksContention(t *testing.T) {
	ctx := context.Background()

	err := acquireError(ctx, "conversation:a", redsync.ErrFailed)
	assert.ErrorIs(t, err, domain.ErrLockBusy)
	assert.ErrorIs(t, err, redsync.ErrFailed)

	err = acquireError(ctx, "conversation:a", &redsync.ErrTaken{Nodes: []int{0}})
	assert.ErrorIs(t, err, domain.ErrLockBusy)

	down := errors.New("dial tcp: connection refused")
	err = acquireError(ctx, "conversation:a", down)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, domain.ErrLockBusy)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = acquireError(cancelled, "conversation:a", redsync.ErrFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrLockBusy)
}
