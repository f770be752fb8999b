package model

import (
	"fmt"
	"strings"
	"time"
)

// Property names an editable event field.
type Property int

const (
	PropSubject Property = iota
	PropDescription
	PropLocation
	PropStatus
	PropStart
	PropEnd
)

var propertyNames = map[Property]string{
	PropSubject:     "subject",
	PropDescription: "description",
	PropLocation:    "location",
	PropStatus:      "status",
	PropStart:       "start",
	PropEnd:         "end",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// ParseProperty maps a property name to its Property.
func ParseProperty(name string) (Property, error) {
	for p, n := range propertyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown property %q", ErrParse, name)
}

// ParseStatus accepts PUBLIC or PRIVATE in any case.
func ParseStatus(value string) (Status, error) {
	switch {
	case strings.EqualFold(value, "PUBLIC"):
		return StatusPublic, nil
	case strings.EqualFold(value, "PRIVATE"):
		return StatusPrivate, nil
	default:
		return 0, fmt.Errorf("%w: invalid status %q, must be PUBLIC or PRIVATE", ErrParse, value)
	}
}

// Edit is a change to exactly one property. Only the value field matching
// Property is meaningful.
type Edit struct {
	Property Property
	Text     string
	Time     time.Time
	Status   Status
}

func SetSubject(s string) Edit     { return Edit{Property: PropSubject, Text: s} }
func SetDescription(s string) Edit { return Edit{Property: PropDescription, Text: s} }
func SetLocation(s string) Edit    { return Edit{Property: PropLocation, Text: s} }
func SetStatus(s Status) Edit      { return Edit{Property: PropStatus, Status: s} }
func SetStart(t time.Time) Edit    { return Edit{Property: PropStart, Time: Wall(t)} }
func SetEnd(t time.Time) Edit      { return Edit{Property: PropEnd, Time: Wall(t)} }

// ParseEdit turns a (name, value) pair from a command or request into an Edit.
func ParseEdit(name, value string) (Edit, error) {
	p, err := ParseProperty(name)
	if err != nil {
		return Edit{}, err
	}
	switch p {
	case PropStatus:
		s, err := ParseStatus(value)
		if err != nil {
			return Edit{}, err
		}
		return SetStatus(s), nil
	case PropStart, PropEnd:
		t, err := ParseDateTime(value)
		if err != nil {
			return Edit{}, err
		}
		return Edit{Property: p, Time: t}, nil
	default:
		return Edit{Property: p, Text: value}, nil
	}
}

// IsTime reports whether the edit targets start or end.
func (e Edit) IsTime() bool {
	return e.Property == PropStart || e.Property == PropEnd
}

// ChangesKey reports whether the edit can change the duplicate-detection key.
func (e Edit) ChangesKey() bool {
	return e.Property == PropSubject || e.IsTime()
}

// OnDate returns a copy of a start/end edit moved to date, keeping the
// edit's time-of-day. Other edits are returned unchanged.
func (e Edit) OnDate(date time.Time) Edit {
	if e.IsTime() {
		e.Time = At(date, e.Time)
	}
	return e
}

// Value renders the edit's value for messages and logs.
func (e Edit) Value() string {
	switch e.Property {
	case PropStatus:
		return e.Status.String()
	case PropStart, PropEnd:
		return e.Time.Format(DateTimeLayout)
	default:
		return e.Text
	}
}

// Apply mutates the single field named by edit. It performs no validation
// of the resulting event.
func (e *Event) Apply(edit Edit) error {
	switch edit.Property {
	case PropSubject:
		e.Subject = edit.Text
	case PropDescription:
		e.Description = edit.Text
	case PropLocation:
		e.Location = edit.Text
	case PropStatus:
		if edit.Status != StatusPublic && edit.Status != StatusPrivate {
			return fmt.Errorf("%w: invalid status %d", ErrParse, int(edit.Status))
		}
		e.Status = edit.Status
	case PropStart:
		e.Start = Wall(edit.Time)
	case PropEnd:
		e.End = Wall(edit.Time)
	default:
		return fmt.Errorf("%w: unknown property %s", ErrParse, edit.Property)
	}
	return nil
}

// Preview returns the (subject, start, end) the event would have after edit.
func (e Event) Preview(edit Edit) (subject string, start, end time.Time) {
	subject, start, end = e.Subject, e.Start, e.End
	switch edit.Property {
	case PropSubject:
		subject = edit.Text
	case PropStart:
		start = Wall(edit.Time)
	case PropEnd:
		end = Wall(edit.Time)
	}
	return subject, start, end
}
