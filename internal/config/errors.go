package config

import "errors"

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrTaskFileEmpty      = errors.New("task-file cannot be empty")
	ErrNonPositive        = errors.New("must be positive")
	ErrMaxActiveZero      = errors.New("max_active_suggestions cannot be 0 (use a negative value for unlimited)")
)
