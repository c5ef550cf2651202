package feed

import "time"

// Clock abstracts time.Now() so the generator can be tested with a
// fixed date. "Today" and the target anniversary years both derive
// from it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock with the system time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
