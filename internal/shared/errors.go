package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrLockTimeout occurs when a record lock could not be acquired in time.
	ErrLockTimeout = errors.New("record lock wait timed out")
	// ErrLockNotHeld occurs when releasing a lock owned by someone else.
	ErrLockNotHeld = errors.New("record lock not held")
)
