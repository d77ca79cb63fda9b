package simulate

import "time"

// Defaults applied by Normalize.
const (
	DefaultUsers         = 25
	DefaultPuzzles       = 10
	DefaultFirstPuzzle   = 1200
	DefaultWorkers       = 8
	DefaultTimeout       = 10 * time.Second
	DefaultSettleTimeout = 30 * time.Second
	DefaultTopN          = 100

	pollInterval         = 250 * time.Millisecond
	percentageMultiplier = 100
	logFilePermission    = 0600
	directoryPermission  = 0750
)
