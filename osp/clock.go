package osp

import "time"

// Clock abstracts the wall-clock read the time-aiding path (MID 215 sub-ID
// 2) performs, so tests can supply a deterministic instant instead of the
// real system clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now(); the default Clock for production use.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
