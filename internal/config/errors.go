package config

import "errors"

var (
	// ErrLoadConfig wraps failures reading .env, the YAML file or the environment.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidConfig wraps values that fail Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownWeekday is returned by ParseWeekday.
	ErrUnknownWeekday = errors.New("unknown weekday")
)
