package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Today returns the current calendar date in tz.
func Today(tz *time.Location) civil.Date {
	if tz == nil {
		tz = time.UTC
	}
	return civil.DateOf(clock.Now().In(tz))
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}
