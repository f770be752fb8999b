package registry

import (
	"fmt"
	"strconv"
	"time"

	"tzcal/internal/calendar"
	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// copyGroup is either one standalone event or the occurrences of one
// series that fell inside the copied range.
type copyGroup struct {
	inSeries bool
	pattern  string
	events   []model.Event
}

// CopyEvent copies every event of src matching subject and start into dst.
// Copies start at targetStart, read in dst's zone, and keep their duration
// and details. It returns the number of events copied; on error nothing is
// copied.
func (r *Registry) CopyEvent(src, subject string, start time.Time, dst string, targetStart time.Time) (int, error) {
	var matches []model.Event
	if err := r.With(src, func(c *calendar.Calendar) error {
		matches = c.Filter(calendar.SubjectAndStart(subject, start))
		return nil
	}); err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, &model.NotFoundError{Subject: subject, Start: model.Wall(start)}
	}

	targetStart = model.Wall(targetStart)
	return r.stage(dst, func(work *calendar.Calendar) (int, error) {
		for _, ev := range matches {
			length := ev.End.Sub(ev.Start)
			ev.Start = targetStart
			ev.End = targetStart.Add(length)
			if _, err := work.Insert(ev); err != nil {
				return 0, err
			}
		}
		return len(matches), nil
	})
}

// CopyEventsOn copies the events on date in src to targetDate in dst.
func (r *Registry) CopyEventsOn(src string, date time.Time, dst string, targetDate time.Time) (int, error) {
	return r.CopyEventsBetween(src, date, date, dst, targetDate)
}

// CopyEventsBetween copies the events overlapping the dates from..to in src
// so that from lands on targetDate in dst. Wall clocks are re-based from the
// source zone into the target zone. Series occurrences are re-created as a
// series in the target; standalone events are copied one by one.
func (r *Registry) CopyEventsBetween(src string, from, to time.Time, dst string, targetDate time.Time) (int, error) {
	if model.DateOf(to).Before(model.DateOf(from)) {
		return 0, fmt.Errorf("%w: range end %s is before start %s", model.ErrValidation,
			to.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	var groups []copyGroup
	if err := r.With(src, func(c *calendar.Calendar) error {
		groups = groupBySeries(c, c.Filter(calendar.InDateRange(from, to)))
		return nil
	}); err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}

	days := int(model.DateOf(targetDate).Sub(model.DateOf(from)).Hours() / 24)
	return r.stage(dst, func(work *calendar.Calendar) (int, error) {
		copied := 0
		for _, g := range groups {
			shifted := shiftEvents(g.events, work.Zone(), days)
			if !g.inSeries {
				if _, err := work.Insert(shifted[0]); err != nil {
					return 0, err
				}
				copied++
				continue
			}
			if err := addCopiedSeries(work, g, shifted); err != nil {
				return 0, err
			}
			copied += len(shifted)
		}
		return copied, nil
	})
}

// stage applies fn to a copy of the dst calendar and commits the copy only
// when fn succeeds.
func (r *Registry) stage(dst string, fn func(*calendar.Calendar) (int, error)) (int, error) {
	var (
		n    int
		name string
	)
	err := r.Update(dst, func(work *calendar.Calendar) error {
		name = work.Name()
		var err error
		n, err = fn(work)
		return err
	})
	if err != nil {
		return 0, err
	}
	appLog.Info("events copied", "calendar", name, "count", n)
	return n, nil
}

func groupBySeries(c *calendar.Calendar, events []model.Event) []copyGroup {
	groups := make([]copyGroup, 0, len(events))
	index := make(map[*calendar.Series]int)
	for _, ev := range events {
		s, ok := c.SeriesOf(ev.ID)
		if !ok {
			groups = append(groups, copyGroup{events: []model.Event{ev}})
			continue
		}
		i, seen := index[s]
		if !seen {
			i = len(groups)
			index[s] = i
			groups = append(groups, copyGroup{inSeries: true, pattern: s.Pattern()})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	return groups
}

func shiftEvents(events []model.Event, zone *time.Location, days int) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		ev.Start = model.ShiftZone(ev.Start, ev.Zone, zone).AddDate(0, 0, days)
		ev.End = model.ShiftZone(ev.End, ev.Zone, zone).AddDate(0, 0, days)
		ev.Zone = zone
		out = append(out, ev)
	}
	return out
}

// addCopiedSeries re-creates a series from its shifted occurrences. The
// source pattern is reused while the occurrences keep their weekdays;
// otherwise the pattern is derived from the shifted dates. When the rule
// cannot reproduce the copies (a gap left by a detached occurrence, or
// details edited on some occurrences only) they are added one by one.
func addCopiedSeries(work *calendar.Calendar, g copyGroup, shifted []model.Event) error {
	pattern := g.pattern
	if pattern == "" || weekdaysMoved(g.events, shifted) {
		dates := make([]time.Time, 0, len(shifted))
		for _, ev := range shifted[1:] {
			dates = append(dates, ev.Start)
		}
		if len(dates) == 0 {
			dates = append(dates, shifted[0].Start)
		}
		pattern = calendar.PatternOf(dates)
	}

	first := shifted[0]
	req := calendar.RecurringRequest{
		Subject:     first.Subject,
		Start:       first.Start,
		End:         first.End,
		Pattern:     pattern,
		Termination: strconv.Itoa(len(shifted)),
		Description: first.Description,
		Location:    first.Location,
		Status:      first.Status,
	}
	if model.SameDate(first.Start, first.End) && !reproduces(req, work.Zone(), shifted) {
		for _, ev := range shifted {
			if _, err := work.Insert(ev); err != nil {
				return err
			}
		}
		appLog.Debug("series copied as single events", "calendar", work.Name(),
			"subject", first.Subject, "count", len(shifted))
		return nil
	}
	_, err := work.AddRecurringEvent(req)
	return err
}

// reproduces reports whether expanding req yields exactly the events in
// want, dates and details included.
func reproduces(req calendar.RecurringRequest, zone *time.Location, want []model.Event) bool {
	got, err := calendar.Expand(calendar.Rule{
		Subject:     req.Subject,
		StartDate:   req.Start,
		StartTime:   req.Start,
		EndTime:     req.End,
		Pattern:     req.Pattern,
		Termination: req.Termination,
		Zone:        zone,
	})
	if err != nil || len(got) != len(want) {
		return false
	}
	for i, ev := range want {
		if !got[i].Start.Equal(ev.Start) || !got[i].End.Equal(ev.End) || ev.Subject != req.Subject ||
			ev.Description != req.Description || ev.Location != req.Location || ev.Status != req.Status {
			return false
		}
	}
	return true
}

func weekdaysMoved(before, after []model.Event) bool {
	for i := range before {
		if before[i].Start.Weekday() != after[i].Start.Weekday() {
			return true
		}
	}
	return false
}
