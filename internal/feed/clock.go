package feed

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The generator uses it for DTSTAMP values and to pick the default year.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
