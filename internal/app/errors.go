package service

import "errors"

// ErrInvalidInput marks a rejected manual score.
var ErrInvalidInput = errors.New("invalid input")
