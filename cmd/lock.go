package cmd

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/niteshrghv/indm/internal/config"
)

// instanceLock guards the state and history files against a second indm
// process resuming the same jobs concurrently.
var instanceLock *flock.Flock

// AcquireLock attempts to take the single-instance lock. It returns true when
// this process now holds it, false when another instance is running.
func AcquireLock() (bool, error) {
	if err := config.EnsureDirs(); err != nil {
		return false, fmt.Errorf("failed to ensure config dirs: %w", err)
	}

	fileLock := flock.New(config.LockPath())
	locked, err := fileLock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	if locked {
		instanceLock = fileLock
		return true, nil
	}
	return false, nil
}

// ReleaseLock releases the lock if this instance holds it.
func ReleaseLock() error {
	if instanceLock != nil {
		return instanceLock.Unlock()
	}
	return nil
}
