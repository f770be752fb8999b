package calendar

import (
	"fmt"
	"time"

	"tzcal/internal/model"
)

// ValidateEventTimes rejects an end before the start, and, for events that
// stay on one date, an end time-of-day that is not after the start's.
// Events that cross midnight are not subject to the time-of-day rule.
func ValidateEventTimes(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end %s is before start %s", model.ErrValidation,
			end.Format(model.DateTimeLayout), start.Format(model.DateTimeLayout))
	}
	if model.SameDate(start, end) && !model.ClockBefore(start, end) {
		return fmt.Errorf("%w: end time must be after start time on %s", model.ErrValidation,
			start.Format(model.DateLayout))
	}
	return nil
}

// ValidateSeriesEdit only allows series-wide start/end edits that keep the
// date of originalStart; occurrence dates come from the recurrence rule.
func ValidateSeriesEdit(originalStart time.Time, edit model.Edit) error {
	if !edit.IsTime() {
		return nil
	}
	if !model.SameDate(originalStart, edit.Time) {
		return fmt.Errorf("%w: updated %s must be on %s, got %s", model.ErrValidation,
			edit.Property, originalStart.Format(model.DateLayout), edit.Time.Format(model.DateLayout))
	}
	return nil
}
