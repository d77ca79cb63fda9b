package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("no scores recorded")
	ErrUnavailable   = errors.New("score storage unavailable")
	ErrInvalidRecord = errors.New("invalid score record")
)
