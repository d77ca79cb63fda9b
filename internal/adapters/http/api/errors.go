package api

import "errors"

// Sentinel kinds for API errors. Handlers wrap these with the operation name
// so the JSON message says which step rejected the request.
var (
	// ErrBadRequest marks malformed or incomplete request bodies.
	ErrBadRequest = errors.New("bad request")
	// ErrPayloadTooLarge marks bodies above the per-endpoint limit.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrBackpressure means the async queue refused the message.
	ErrBackpressure = errors.New("backpressure")
	ErrMethod       = errors.New("method not allowed")
)
