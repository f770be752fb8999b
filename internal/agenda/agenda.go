package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"tzcal/internal/calendar"
	appLog "tzcal/internal/log"
	"tzcal/internal/model"
	"tzcal/internal/registry"
)

// Digest is one calendar's events for one date of that calendar's zone.
type Digest struct {
	Calendar string
	Zone     *time.Location
	Date     time.Time
	Events   []model.Event
}

// Build collects, for every calendar in reg, the events on the date that
// now falls on in the calendar's own zone.
func Build(reg *registry.Registry, now time.Time) ([]Digest, error) {
	names := reg.Names()
	out := make([]Digest, 0, len(names))
	for _, name := range names {
		err := reg.With(name, func(c *calendar.Calendar) error {
			date := model.DateOf(model.Wall(now.In(c.Zone())))
			out = append(out, Digest{
				Calendar: c.Name(),
				Zone:     c.Zone(),
				Date:     date,
				Events:   c.Filter(calendar.OnDate(date)),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("agenda for %q: %w", name, err)
		}
	}
	return out, nil
}

// Sink receives each built agenda.
type Sink func([]Digest)

// LogSink writes one log line per event and a summary per calendar.
func LogSink(digests []Digest) {
	for _, d := range digests {
		appLog.Info("agenda", "calendar", d.Calendar, "date", d.Date.Format(model.DateLayout), "events", len(d.Events))
		for _, ev := range d.Events {
			appLog.Info("agenda item", "calendar", d.Calendar, "event", ev.String())
		}
	}
}

// Scheduler runs Build on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	reg  *registry.Registry
	sink Sink
	now  func() time.Time
}

// NewScheduler parses spec (standard five-field cron syntax) evaluated in
// loc. A nil sink logs the agenda.
func NewScheduler(reg *registry.Registry, spec string, loc *time.Location, sink Sink) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if sink == nil {
		sink = LogSink
	}
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		reg:  reg,
		sink: sink,
		now:  time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("%w: agenda schedule %q: %v", model.ErrParse, spec, err)
	}
	return s, nil
}

// RunOnce builds the agenda for the current time and hands it to the sink.
func (s *Scheduler) RunOnce() {
	digests, err := Build(s.reg, s.now())
	if err != nil {
		appLog.Error("agenda build failed", err)
		return
	}
	s.sink(digests)
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	appLog.Info("agenda scheduler started", "entries", len(s.cron.Entries()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("agenda scheduler stopped")
}
