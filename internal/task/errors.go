package task

import "errors"

// Error variables for task list operations.
var (
	ErrIDRequired      = errors.New("task ID is required")
	ErrTaskNotFound    = errors.New("task not found")
	ErrAmbiguousID     = errors.New("ambiguous ID prefix")
	ErrSubTaskRequired = errors.New("sub-task reference is required")
	ErrSubTaskNotFound = errors.New("sub-task not found")
)
