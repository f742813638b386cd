package store

import "errors"

// Store errors.
var (
	ErrCorrupt            = errors.New("task file corrupt")
	ErrUnsupportedVersion = errors.New("unsupported task file version")
	ErrLockTimeout        = errors.New("lock timeout")
	errLockFileOpen       = errors.New("failed to open lock file")
)
