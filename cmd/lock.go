package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another nosh holds the lock.
var ErrAlreadyRunning = errors.New("nosh is already running against this config directory")

// AcquireLock takes the single-instance lock in configDir. Release it with Unlock.
func AcquireLock(configDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(configDir, "nosh.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}
