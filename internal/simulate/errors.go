package simulate

import "errors"

var (
	// ErrConfig reports an unusable run configuration.
	ErrConfig = errors.New("invalid simulation config")
	// ErrUnhealthy reports a failed health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrStatus reports an unexpected HTTP status.
	ErrStatus = errors.New("unexpected status")
	// ErrMismatch reports a served leaderboard that differs from the expected one.
	ErrMismatch = errors.New("leaderboard mismatch")
)
