package common

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "user")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "user")
	require.ErrorIs(t, err, ErrLockTimeout)

	// Another user is not blocked.
	unlockOther, err := locker.Lock(ctx, "other")
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock, err = locker.Lock(ctx, "user")
	require.NoError(t, err)
	unlock()
}

func TestLocalLocker_Serializes(t *testing.T) {
	locker := NewLocalLocker(time.Second)
	counter := 0

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "user")
			if err != nil {
				return
			}
			defer unlock()

			current := counter
			time.Sleep(time.Millisecond)
			counter = current + 1
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
}

func TestLocalLocker_ForgetsIdleUsers(t *testing.T) {
	locker := NewLocalLocker(time.Second)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		unlock, err := locker.Lock(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		unlock()
	}
	require.Equal(t, 0, locker.locks.Size())

	// A timed out waiter does not leave its entry behind either.
	unlock, err := locker.Lock(ctx, "user")
	require.NoError(t, err)

	short := NewLocalLocker(10 * time.Millisecond)
	short.locks = locker.locks
	_, err = short.Lock(ctx, "user")
	require.ErrorIs(t, err, ErrLockTimeout)
	require.Equal(t, 1, locker.locks.Size())

	unlock()
	require.Equal(t, 0, locker.locks.Size())

	// Concurrent users serialize and are all released.
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, fmt.Sprintf("user-%d", i%3))
			if err == nil {
				time.Sleep(time.Millisecond)
				unlock()
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 0, locker.locks.Size())
}

func TestRedisLocker(t *testing.T) {
	var mutex sync.Mutex
	store := map[string]string{}
	client := &testutil.MockRedisClient{
		SetNXFunc: func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
			mutex.Lock()
			defer mutex.Unlock()
			if _, ok := store[key]; ok {
				return false, nil
			}
			store[key] = value
			return true, nil
		},
		DelIfEqualFunc: func(ctx context.Context, key, value string) error {
			mutex.Lock()
			defer mutex.Unlock()
			if store[key] == value {
				delete(store, key)
			}
			return nil
		},
	}

	locker := NewRedisLocker(client, time.Second, 60*time.Millisecond)
	unlock, err := locker.Lock(context.Background(), "user")
	require.NoError(t, err)
	require.Contains(t, store, RedisKeyUserLock("user"))

	_, err = locker.Lock(context.Background(), "user")
	require.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	require.NotContains(t, store, RedisKeyUserLock("user"))
}

func TestPaginationParameter(t *testing.T) {
	offset, limit := PaginationParameter(-1, 0, 10, 50)
	require.Equal(t, 0, offset)
	require.Equal(t, 10, limit)

	_, limit = PaginationParameter(0, 100, 10, 50)
	require.Equal(t, 50, limit)
}

func TestNormalizeUserID(t *testing.T) {
	require.Equal(t, "alice@example.com", NormalizeUserID("  Alice@Example.COM "))
}
