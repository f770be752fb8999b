package calendar

import (
	"fmt"
	"strings"
	"time"

	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// Calendar is a named, zoned collection of events and series. It is not
// safe for concurrent use; callers serialize access per calendar.
type Calendar struct {
	name   string
	zone   *time.Location
	store  *Store
	series []*Series
}

// New creates an empty calendar. A nil zone means UTC.
func New(name string, zone *time.Location) *Calendar {
	if zone == nil {
		zone = time.UTC
	}
	return &Calendar{
		name:  name,
		zone:  zone,
		store: newStore(),
	}
}

func (c *Calendar) Name() string {
	return c.name
}

func (c *Calendar) Zone() *time.Location {
	return c.zone
}

func (c *Calendar) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: calendar name is empty", model.ErrValidation)
	}
	c.name = name
	return nil
}

// Len is the number of stored events.
func (c *Calendar) Len() int {
	return c.store.Len()
}

// AddEvent stores a single event expressed in the calendar's zone and
// returns a copy of it.
func (c *Calendar) AddEvent(subject string, start, end time.Time) (model.Event, error) {
	return c.Insert(model.NewEvent(subject, start, end, c.zone))
}

// AddAllDayEvent stores an event covering the business-hours window of date.
func (c *Calendar) AddAllDayEvent(subject string, date time.Time) (model.Event, error) {
	return c.AddEvent(subject, model.At(date, model.AllDayStart), model.At(date, model.AllDayEnd))
}

// Insert stores a fully populated event, such as one read from an import.
// The event's id is replaced and its zone set to the calendar's.
func (c *Calendar) Insert(ev model.Event) (model.Event, error) {
	ev.Start, ev.End = model.Wall(ev.Start), model.Wall(ev.End)
	ev.Zone = c.zone
	if err := ValidateEventTimes(ev.Start, ev.End); err != nil {
		return model.Event{}, err
	}
	if c.store.containsKey(ev.Key()) {
		return model.Event{}, &model.ConflictError{Subject: ev.Subject, Start: ev.Start, End: ev.End}
	}

	id := c.store.create(ev)
	if err := c.store.insert(id); err != nil {
		c.store.discard(id)
		return model.Event{}, err
	}
	appLog.Debug("event added", "calendar", c.name, "subject", ev.Subject, "start", ev.Start.Format(model.DateTimeLayout))
	return *c.store.get(id), nil
}

// RecurringRequest describes a series to add. Start and End carry the first
// occurrence; their time-of-day is reused for every occurrence. The
// optional details are copied onto every occurrence.
type RecurringRequest struct {
	Subject     string
	Start       time.Time
	End         time.Time
	Pattern     string
	Termination string

	Description string
	Location    string
	Status      model.Status
}

// AddRecurringEvent expands req and stores every occurrence. Either all
// occurrences are stored or none are.
func (c *Calendar) AddRecurringEvent(req RecurringRequest) ([]model.Event, error) {
	if !model.SameDate(req.Start, req.End) {
		return nil, fmt.Errorf("%w: recurring event must start and end on the same date", model.ErrValidation)
	}
	if err := ValidateEventTimes(model.Wall(req.Start), model.Wall(req.End)); err != nil {
		return nil, err
	}

	occurrences, err := Expand(Rule{
		Subject:     req.Subject,
		StartDate:   req.Start,
		StartTime:   req.Start,
		EndTime:     req.End,
		Pattern:     req.Pattern,
		Termination: req.Termination,
		Zone:        c.zone,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]model.EventID, 0, len(occurrences))
	for _, ev := range occurrences {
		ev.Description, ev.Location, ev.Status = req.Description, req.Location, req.Status
		id := c.store.create(ev)
		if err := c.store.insert(id); err != nil {
			c.store.discard(id)
			for _, done := range ids {
				c.store.remove(done)
				c.store.discard(done)
			}
			appLog.Warn("recurring event rolled back", "calendar", c.name, "subject", req.Subject, "err", err)
			return nil, err
		}
		ids = append(ids, id)
	}
	c.series = append(c.series, newSeries(req.Pattern, ids))

	appLog.Debug("series added", "calendar", c.name, "subject", req.Subject,
		"pattern", req.Pattern, "occurrences", len(ids))
	return c.eventsOf(ids), nil
}

// Filter returns, in chronological order, copies of the events matching
// every predicate.
func (c *Calendar) Filter(preds ...Predicate) []model.Event {
	return c.store.snapshot(All(preds...))
}

func (c *Calendar) Events() []model.Event {
	return c.store.snapshot(nil)
}

// IsBusyAt reports whether any event is in progress at instant, inclusive
// of event boundaries.
func (c *Calendar) IsBusyAt(instant time.Time) bool {
	return len(c.Filter(At(instant))) > 0
}

// FindSeriesForEvent returns the series holding an occurrence with subject
// and start.
func (c *Calendar) FindSeriesForEvent(subject string, start time.Time) (*Series, bool) {
	for _, s := range c.series {
		if _, ok := s.find(c.store, subject, start); ok {
			return s, true
		}
	}
	return nil, false
}

// SeriesOf returns the series an event id belongs to.
func (c *Calendar) SeriesOf(id model.EventID) (*Series, bool) {
	for _, s := range c.series {
		if s.contains(id) {
			return s, true
		}
	}
	return nil, false
}

// Series lists the non-empty series of the calendar.
func (c *Calendar) Series() []*Series {
	out := make([]*Series, 0, len(c.series))
	for _, s := range c.series {
		if s.Len() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SeriesEvents returns copies of the occurrences of s in series order.
func (c *Calendar) SeriesEvents(s *Series) []model.Event {
	return c.eventsOf(s.ids)
}

func (c *Calendar) eventsOf(ids []model.EventID) []model.Event {
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, *c.store.get(id))
	}
	return out
}
