package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when another process keeps the bootstrap lock
// past the configured timeout
var ErrLockTimeout = errors.New("bootstrap lock timed out")

// Locker is an exclusive advisory lock on one file. *flock.Flock satisfies it.
type Locker interface {
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)
	Unlock() error
}

// LockerFunc returns the Locker for a lock file path
type LockerFunc func(path string) Locker

// FlockLocker locks path with an OS advisory lock
func FlockLocker(path string) Locker {
	return flock.New(path)
}

// LockPath is the lock file guarding bootstrap of the database at dbPath
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// bootstrapLock serialises schema creation on one database file across processes
type bootstrapLock struct {
	path    string
	open    LockerFunc
	timeout time.Duration
	retry   time.Duration
}

func newBootstrapLock(dbPath string, open LockerFunc, timeout, retry time.Duration) *bootstrapLock {
	return &bootstrapLock{
		path:    LockPath(dbPath),
		open:    open,
		timeout: timeout,
		retry:   retry,
	}
}

// acquire waits up to the timeout for the lock. The returned release func
// must be called once the DDL is done.
func (l *bootstrapLock) acquire(ctx context.Context) (func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	lock := l.open(l.path)
	locked, err := lock.TryLockContext(ctx, l.retry)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s still held after %s", ErrLockTimeout, l.path, l.timeout)
	case err != nil:
		return nil, fmt.Errorf("failed to acquire bootstrap lock %s: %w", l.path, err)
	case !locked:
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
	}
	return lock.Unlock, nil
}
