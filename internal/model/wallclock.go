package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// DateTimeLayout is the canonical ISO local date-time form.
	DateTimeLayout = "2006-01-02T15:04"
)

var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

var (
	// AllDayStart and AllDayEnd bound the window used for all-day events.
	AllDayStart = Clock(8, 0)
	AllDayEnd   = Clock(17, 0)
)

// Wall keeps the wall-clock fields of t and drops its location.
func Wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Date returns midnight (floating) of the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns a time-of-day value on the zero date.
func Clock(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// At combines the calendar date of date with the time-of-day of clock.
func At(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// ClockBefore compares only the time-of-day of a and b.
func ClockBefore(a, b time.Time) bool {
	return sinceMidnight(a) < sinceMidnight(b)
}

func ClockEqual(a, b time.Time) bool {
	return sinceMidnight(a) == sinceMidnight(b)
}

// ParseDateTime parses an ISO local date-time such as 2025-03-04T09:30.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date-time %q, expected YYYY-MM-DDThh:mm", ErrParse, s)
}

// ParseDate parses an ISO date such as 2025-03-04.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrParse, s)
	}
	return t, nil
}

// ShiftZone moves a wall-clock value expressed in from so that it is
// expressed in to. The offset delta is taken at the instant the wall clock
// denotes in from and is applied in whole hours; fractional-hour offset
// differences are truncated toward zero.
func ShiftZone(wall time.Time, from, to *time.Location) time.Time {
	if from == nil {
		from = time.UTC
	}
	if to == nil {
		to = time.UTC
	}
	instant := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), from)
	_, fromOffset := instant.Zone()
	_, toOffset := instant.In(to).Zone()

	hours := (toOffset - fromOffset) / 3600
	return Wall(wall).Add(time.Duration(hours) * time.Hour)
}

// AdjustTimeZone re-bases Start and End from the event's zone into zone.
func (e *Event) AdjustTimeZone(zone *time.Location) {
	if zone == nil {
		zone = time.UTC
	}
	e.Start = ShiftZone(e.Start, e.Zone, zone)
	e.End = ShiftZone(e.End, e.Zone, zone)
	e.Zone = zone
}
