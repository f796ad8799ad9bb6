package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
)

const lockPollInterval = 100 * time.Millisecond

// Lock acquires the registry's exclusive lock: an in-process mutex plus an
// advisory flock on "<db>.lock" shared with other aurorus processes. It
// blocks until the lock is held or ctx is done. The returned func releases
// both and is safe to call more than once.
func (r *Registry) Lock(ctx context.Context) (func(), error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-r.sem }

	if r.lockPath == "" {
		return sync.OnceFunc(release), nil
	}

	f, err := os.OpenFile(r.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			release()
			return nil, aerr.Wrap(aerr.ErrCodeLocked, err, "cannot lock %s", r.lockPath)
		}
		select {
		case <-ctx.Done():
			f.Close()
			release()
			return nil, aerr.Wrap(aerr.ErrCodeLocked, ctx.Err(), "registry %s is locked by another process", r.path)
		case <-time.After(lockPollInterval):
		}
	}

	return sync.OnceFunc(func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		release()
	}), nil
}
