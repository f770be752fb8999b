package model

import (
	"fmt"
	"time"
)

// EventID identifies an event inside one calendar's arena. IDs are never
// reused within a calendar.
type EventID int64

// Status is the visibility of an event.
type Status int

const (
	StatusPublic Status = iota
	StatusPrivate
)

func (s Status) String() string {
	if s == StatusPrivate {
		return "PRIVATE"
	}
	return "PUBLIC"
}

// Event is a single occurrence.
//
// Start and End hold wall-clock values with a UTC location ("floating" time);
// Zone says which zone those wall clocks are expressed in. Use Wall to
// normalize values coming from elsewhere.
type Event struct {
	ID EventID

	Subject     string
	Description string
	Location    string
	Status      Status

	Start time.Time
	End   time.Time

	Zone *time.Location
}

// NewEvent builds an event with empty description/location and public status.
func NewEvent(subject string, start, end time.Time, zone *time.Location) Event {
	if zone == nil {
		zone = time.UTC
	}
	return Event{
		Subject: subject,
		Start:   Wall(start),
		End:     Wall(end),
		Status:  StatusPublic,
		Zone:    zone,
	}
}

// Key is the identity used for duplicate detection.
type Key struct {
	Subject string
	Start   int64
	End     int64
}

// KeyOf builds the duplicate-detection key for a (subject, start, end) tuple.
func KeyOf(subject string, start, end time.Time) Key {
	return Key{
		Subject: subject,
		Start:   Wall(start).UnixNano(),
		End:     Wall(end).UnixNano(),
	}
}

func (e Event) Key() Key {
	return KeyOf(e.Subject, e.Start, e.End)
}

// IsAllDay reports whether the event covers exactly the business-hours window
// of a single day, which is how all-day events are created.
func (e Event) IsAllDay() bool {
	return SameDate(e.Start, e.End) &&
		ClockEqual(e.Start, AllDayStart) &&
		ClockEqual(e.End, AllDayEnd)
}

func (e Event) String() string {
	loc := ""
	if e.Location != "" {
		loc = " in " + e.Location
	}
	return fmt.Sprintf("%s starting on %s at %s, ending on %s at %s%s",
		e.Subject,
		e.Start.Format(DateLayout), e.Start.Format("15:04"),
		e.End.Format(DateLayout), e.End.Format("15:04"),
		loc)
}
