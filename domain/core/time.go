package core

import (
	"time"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// WallClock returns the hour and minute of t as seen in loc.
// A nil location means t's own location.
func WallClock(t time.Time, loc *time.Location) (hour, minute int) {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Hour(), t.Minute()
}

// LoadLocation resolves an IANA zone name; empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
