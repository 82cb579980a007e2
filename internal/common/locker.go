package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/rewards/pkg/xredis"
)

var ErrLockTimeout = errors.New("timeout while waiting for the user lock")

// UserLocker serializes writes to the ledger of a single user. The returned
// function releases the lock.
type UserLocker interface {
	Lock(ctx context.Context, userID string) (func(), error)
}

// userLock is shared by the holder and the waiters of a user. The last one
// to leave removes it from the map, a dead entry is never reused.
type userLock struct {
	mutex sync.Mutex
	refs  int
	dead  bool
	sem   chan struct{}
}

type localLocker struct {
	wait  time.Duration
	locks *xsync.MapOf[string, *userLock]
}

// NewLocalLocker returns a locker valid only inside this process. Only users
// being locked or waited for are kept in memory.
func NewLocalLocker(wait time.Duration) *localLocker {
	return &localLocker{
		wait:  wait,
		locks: xsync.NewMapOf[*userLock](),
	}
}

func (l *localLocker) Lock(ctx context.Context, userID string) (func(), error) {
	lock := l.acquire(userID)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case lock.sem <- struct{}{}:
		return func() {
			<-lock.sem
			l.release(userID, lock)
		}, nil
	case <-ctx.Done():
		l.release(userID, lock)
		return nil, ctx.Err()
	case <-timer.C:
		l.release(userID, lock)
		return nil, ErrLockTimeout
	}
}

func (l *localLocker) acquire(userID string) *userLock {
	for {
		lock, _ := l.locks.LoadOrCompute(userID, func() *userLock {
			return &userLock{sem: make(chan struct{}, 1)}
		})

		lock.mutex.Lock()
		if !lock.dead {
			lock.refs++
			lock.mutex.Unlock()
			return lock
		}
		lock.mutex.Unlock()
	}
}

func (l *localLocker) release(userID string, lock *userLock) {
	lock.mutex.Lock()
	defer lock.mutex.Unlock()

	lock.refs--
	if lock.refs == 0 {
		lock.dead = true
		l.locks.Delete(userID)
	}
}

const redisLockPollInterval = 20 * time.Millisecond

type redisLocker struct {
	client xredis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker returns a locker shared by every instance using the same
// redis. A lock expires after ttl if its holder crashed.
func NewRedisLocker(client xredis.Client, ttl, wait time.Duration) *redisLocker {
	return &redisLocker{client: client, ttl: ttl, wait: wait}
}

func (l *redisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := RedisKeyUserLock(userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, err
		}

		if ok {
			return func() {
				// The request context may be canceled already.
				_ = l.client.DelIfEqual(context.Background(), key, token)
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockPollInterval):
		}
	}
}
