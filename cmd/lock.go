package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// errOutputLocked is returned when another run holds the lock for the same output.
var errOutputLocked = errors.New("another codedump run is writing this output")

// outputLock is an advisory, cross-process lock keyed by the output path. The
// lock file lives in the temp directory so it never lands inside a scanned tree.
type outputLock struct {
	flock  *flock.Flock
	output string
}

func newOutputLock(output string) *outputLock {
	return &outputLock{
		flock:  flock.New(lockPath(output)),
		output: output,
	}
}

// lockPath derives a stable lock file name from the absolute output path.
func lockPath(output string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(output)))
	return filepath.Join(os.TempDir(), "codedump-"+id.String()+".lock")
}

// TryLock acquires the lock without blocking.
func (l *outputLock) TryLock() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock output %s: %w", l.output, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", errOutputLocked, l.output)
	}
	return nil
}

// Release unlocks. The lock file is never removed, so every process locks
// the same inode.
func (l *outputLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.flock.Path(), err)
	}
	return nil
}
