package syncer

import "time"

// Stats provides cumulative syncer statistics for the process lifetime
type Stats struct {
	Runs         int
	Synced       int
	StoppedWalks int // walks that ended on a failed replay
	LastRun      time.Time
	LastError    error
}
