package calendar

import (
	"time"

	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// EditEvent changes one property of the event identified by subject, start
// and end. On failure the event is left exactly as it was. Changing the
// start of a series occurrence detaches it from its series.
func (c *Calendar) EditEvent(subject string, start, end time.Time, edit model.Edit) (model.Event, error) {
	id, ok := c.store.lookup(model.KeyOf(subject, start, end))
	if !ok {
		return model.Event{}, &model.NotFoundError{Subject: subject, Start: model.Wall(start)}
	}
	if err := c.applyOne(id, edit); err != nil {
		return model.Event{}, err
	}
	appLog.Debug("event edited", "calendar", c.name, "subject", subject,
		"property", edit.Property, "value", edit.Value())
	return *c.store.get(id), nil
}

// EditEvents edits the occurrence at (subject, start) and every later
// occurrence of its series. A start edit splits those occurrences into a
// series of their own. Without a series it edits every event matching
// subject and start, one at a time.
func (c *Calendar) EditEvents(subject string, start time.Time, edit model.Edit) ([]model.Event, error) {
	s, ok := c.FindSeriesForEvent(subject, start)
	if !ok {
		return c.editAllMatching(subject, start, edit)
	}
	if err := ValidateSeriesEdit(start, edit); err != nil {
		return nil, err
	}
	start = model.Wall(start)

	if edit.Property == model.PropStart {
		original := s.IDs()
		tail := s.split(c.store, start)
		if err := c.applyToEach(tail.ids, edit); err != nil {
			s.unsplit(tail, original)
			return nil, err
		}
		c.series = append(c.series, tail)
		c.pruneSeries()
		appLog.Debug("series split", "calendar", c.name, "subject", subject,
			"from", start.Format(model.DateTimeLayout), "moved", tail.Len())
		return c.eventsOf(tail.ids), nil
	}

	following := make([]model.EventID, 0, s.Len())
	for _, id := range s.ids {
		if !c.store.get(id).Start.Before(start) {
			following = append(following, id)
		}
	}
	if err := c.applyToEach(following, edit); err != nil {
		return nil, err
	}
	return c.eventsOf(following), nil
}

// EditSeries edits every occurrence of the series holding (subject, start).
// Without a series it edits every event matching subject and start, one at
// a time.
func (c *Calendar) EditSeries(subject string, start time.Time, edit model.Edit) ([]model.Event, error) {
	s, ok := c.FindSeriesForEvent(subject, start)
	if !ok {
		return c.editAllMatching(subject, start, edit)
	}
	if err := ValidateSeriesEdit(start, edit); err != nil {
		return nil, err
	}
	ids := s.IDs()
	if err := c.applyToEach(ids, edit); err != nil {
		return nil, err
	}
	appLog.Debug("series edited", "calendar", c.name, "subject", subject,
		"property", edit.Property, "occurrences", len(ids))
	return c.eventsOf(ids), nil
}

// editAllMatching applies edit to each event matching subject and start.
// It stops at the first failure; events edited before it keep the change.
func (c *Calendar) editAllMatching(subject string, start time.Time, edit model.Edit) ([]model.Event, error) {
	ids := c.store.ids(SubjectAndStart(subject, start))
	if len(ids) == 0 {
		return nil, &model.NotFoundError{Subject: subject, Start: model.Wall(start)}
	}

	edited := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		if err := c.applyOne(id, edit); err != nil {
			appLog.Warn("edit stopped partway", "calendar", c.name, "subject", subject,
				"edited", len(edited), "remaining", len(ids)-len(edited), "err", err)
			return edited, err
		}
		edited = append(edited, *c.store.get(id))
	}
	return edited, nil
}

// applyOne is the remove, check, mutate, re-insert cycle for one event. Any
// failure puts the unmodified event back, including its series membership.
func (c *Calendar) applyOne(id model.EventID, edit model.Edit) error {
	ev := c.store.get(id)
	original := *ev
	c.store.remove(id)

	var (
		owner *Series
		pos   = -1
	)
	rollback := func(err error) error {
		*ev = original
		if ierr := c.store.insert(id); ierr != nil {
			appLog.Error("rollback re-insert failed", ierr, "calendar", c.name, "subject", original.Subject)
		}
		if owner != nil && pos >= 0 {
			owner.restore(id, pos)
		}
		return err
	}

	if edit.ChangesKey() {
		subject, start, end := ev.Preview(edit)
		if edit.IsTime() {
			if err := ValidateEventTimes(start, end); err != nil {
				return rollback(err)
			}
		}
		if c.store.containsKey(model.KeyOf(subject, start, end)) {
			return rollback(&model.ConflictError{Subject: subject, Start: start, End: end})
		}
	}
	if edit.Property == model.PropStart {
		if owner, _ = c.SeriesOf(id); owner != nil {
			pos = owner.remove(id)
		}
	}
	if err := ev.Apply(edit); err != nil {
		return rollback(err)
	}
	if err := c.store.insert(id); err != nil {
		return rollback(err)
	}
	c.pruneSeries()
	return nil
}

// applyToEach edits a set of series occurrences as one unit. Start and end
// edits keep each occurrence's date. If any occurrence fails, all of them
// are restored.
func (c *Calendar) applyToEach(ids []model.EventID, edit model.Edit) error {
	backup := make(map[model.EventID]model.Event, len(ids))
	for _, id := range ids {
		backup[id] = *c.store.get(id)
		c.store.remove(id)
	}

	rollback := func(err error) error {
		for _, id := range ids {
			c.store.remove(id)
		}
		for _, id := range ids {
			*c.store.get(id) = backup[id]
			if ierr := c.store.insert(id); ierr != nil {
				appLog.Error("rollback re-insert failed", ierr, "calendar", c.name, "id", id)
			}
		}
		appLog.Warn("series edit rolled back", "calendar", c.name, "property", edit.Property, "err", err)
		return err
	}

	for _, id := range ids {
		ev := c.store.get(id)
		local := edit.OnDate(ev.Start)
		if local.IsTime() {
			_, start, end := ev.Preview(local)
			if err := ValidateEventTimes(start, end); err != nil {
				return rollback(err)
			}
		}
		if err := ev.Apply(local); err != nil {
			return rollback(err)
		}
		if err := c.store.insert(id); err != nil {
			return rollback(err)
		}
	}
	return nil
}

func (c *Calendar) pruneSeries() {
	kept := c.series[:0]
	for _, s := range c.series {
		if s.Len() > 0 {
			kept = append(kept, s)
		}
	}
	c.series = kept
}
