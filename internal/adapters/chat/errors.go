package chat

import "errors"

// Sentinel kinds for chat errors.
var (
	ErrSend        = errors.New("chat send failed")
	ErrUsage       = errors.New("invalid command arguments")
	ErrInvalidDate = errors.New("invalid date")
)
