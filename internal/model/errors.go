package model

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by the calendar packages wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrZone       = errors.New("time zone conversion error")
)

// NotFoundError reports that no event or series matched a lookup.
type NotFoundError struct {
	Subject string
	Start   time.Time
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event not found: %q at %s", e.Subject, e.Start.Format(DateTimeLayout))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports that an operation would store two events with the
// same subject, start and end.
type ConflictError struct {
	Subject string
	Start   time.Time
	End     time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("would create duplicate event: %q from %s to %s",
		e.Subject, e.Start.Format(DateTimeLayout), e.End.Format(DateTimeLayout))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ZoneError reports that moving a series into another zone would make one of
// its occurrences span two calendar dates.
type ZoneError struct {
	Series string
	Zone   string
}

func (e *ZoneError) Error() string {
	return fmt.Sprintf("cannot change time zone to %q: event series %q would span multiple days", e.Zone, e.Series)
}

func (e *ZoneError) Is(target error) bool { return target == ErrZone }

// Kind returns the taxonomy sentinel err wraps, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrParse, ErrValidation, ErrNotFound, ErrConflict, ErrZone} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
