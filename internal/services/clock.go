package services

import (
	"time"

	"verdant/internal/store"
)

// Clock supplies the current time and the zone that decides where a day
// starts.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today returns [local midnight, next local midnight).
func (c Clock) Today() store.TimeRange {
	now := c.Now().In(c.Location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
	return store.TimeRange{From: start, To: start.AddDate(0, 0, 1)}
}
