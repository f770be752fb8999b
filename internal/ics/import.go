package ics

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"

	"tzcal/internal/calendar"
	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
	defaultHorizon                = 2 * 365 * 24 * time.Hour
)

// ImportConfig controls how VEVENTs are turned into calendar entries.
type ImportConfig struct {
	// Zone is the target calendar zone. Floating times are read in it and
	// all other times are converted into it. Nil means UTC.
	Zone *time.Location

	// Horizon bounds the expansion of recurrences that do not map onto a
	// weekday series, measured from each event's DTSTART.
	Horizon time.Duration

	// MaxOccurrencesPerEvent caps expansion of one recurring VEVENT.
	MaxOccurrencesPerEvent int
}

// Import is an iCalendar payload translated into calendar operations.
type Import struct {
	Events []model.Event
	Series []calendar.RecurringRequest
	// Truncated records UIDs whose expansion hit the occurrence cap.
	Truncated []string
}

// Parse reads an iCalendar stream for a calendar in cfg.Zone. Weekly
// RRULEs with BYDAY and COUNT or UNTIL become weekday series; any other
// recurrence is expanded into standalone events with EXDATE and
// RECURRENCE-ID overrides applied.
func Parse(r io.Reader, cfg ImportConfig) (*Import, error) {
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = defaultHorizon
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	parsed, err := ParseICS(r, cfg.Zone)
	if err != nil {
		return nil, err
	}

	// Group base events and overrides by UID.
	bases := make([]ParsedEvent, 0, len(parsed))
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range parsed {
		if ev.Recurrence != nil && ev.UID != "" {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			bases = append(bases, ev)
		}
	}

	imp := &Import{}
	for _, ev := range bases {
		overrides := overridesByUID[ev.UID]
		if ev.RawRRule == "" {
			imp.Events = append(imp.Events, toEvent(ev, ev.Start, ev.End, cfg.Zone))
			continue
		}
		if req, ok := toSeries(ev, overrides, cfg.Zone); ok {
			imp.Series = append(imp.Series, req)
			continue
		}
		occ, hitCap := expandRecurringEvent(ev, overrides, cfg)
		imp.Events = append(imp.Events, occ...)
		if hitCap {
			imp.Truncated = append(imp.Truncated, ev.UID)
			appLog.Error("ics import: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}
	return imp, nil
}

// AddTo stores the import in c. Entries that already exist are skipped; any
// other failure stops the import and is returned with the counts so far,
// leaving earlier entries in c. Callers that need all-or-nothing run it on
// a copy (registry.Update).
func (imp *Import) AddTo(c *calendar.Calendar) (added, skipped int, err error) {
	for _, req := range imp.Series {
		evs, err := c.AddRecurringEvent(req)
		if errors.Is(err, model.ErrConflict) {
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, err
		}
		added += len(evs)
	}
	for _, ev := range imp.Events {
		_, err := c.Insert(ev)
		if errors.Is(err, model.ErrConflict) {
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, err
		}
		added++
	}
	if skipped > 0 {
		appLog.Warn("ics import skipped duplicates", "calendar", c.Name(), "skipped", skipped)
	}
	return added, skipped, nil
}

// toEvent converts one occurrence into a calendar event in zone. Date-only
// occurrences use the business-hours window of each covered date.
func toEvent(ev ParsedEvent, start, end time.Time, zone *time.Location) model.Event {
	var out model.Event
	if ev.AllDay {
		last := end.AddDate(0, 0, -1)
		if last.Before(start) {
			last = start
		}
		out = model.NewEvent(ev.Summary, model.At(start, model.AllDayStart), model.At(last, model.AllDayEnd), zone)
	} else {
		out = model.NewEvent(ev.Summary, start.In(zone), end.In(zone), zone)
	}
	out.Description = ev.Description
	out.Location = ev.Location
	if ev.Private {
		out.Status = model.StatusPrivate
	}
	return out
}

// toSeries maps a plain weekly BYDAY rule onto a weekday series request.
func toSeries(ev ParsedEvent, overrides []ParsedEvent, zone *time.Location) (calendar.RecurringRequest, bool) {
	if ev.AllDay || len(ev.ExDates) > 0 || len(overrides) > 0 {
		return calendar.RecurringRequest{}, false
	}
	opt, err := rrule.StrToROptionInLocation(ev.RawRRule, zone)
	if err != nil || opt.Freq != rrule.WEEKLY || opt.Interval > 1 || len(opt.Byweekday) == 0 {
		return calendar.RecurringRequest{}, false
	}
	if len(opt.Bysetpos)+len(opt.Bymonth)+len(opt.Bymonthday)+len(opt.Byyearday)+len(opt.Byweekno)+
		len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond)+len(opt.Byeaster) > 0 {
		return calendar.RecurringRequest{}, false
	}
	if (opt.Count > 0) == !opt.Until.IsZero() {
		return calendar.RecurringRequest{}, false
	}

	first := toEvent(ev, ev.Start, ev.End, zone)
	if !model.SameDate(first.Start, first.End) {
		return calendar.RecurringRequest{}, false
	}

	days := make([]time.Time, 0, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return calendar.RecurringRequest{}, false
		}
		// rrule counts weekdays from Monday; 2024-01-01 was a Monday.
		days = append(days, model.Date(2024, time.January, 1+wd.Day()))
	}

	term := strconv.Itoa(opt.Count)
	if opt.Count == 0 {
		term = model.DateOf(model.Wall(opt.Until.In(zone))).Format(model.DateLayout)
	}
	return calendar.RecurringRequest{
		Subject:     first.Subject,
		Start:       first.Start,
		End:         first.End,
		Pattern:     calendar.PatternOf(days),
		Termination: term,
		Description: first.Description,
		Location:    first.Location,
		Status:      first.Status,
	}, true
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ImportConfig) ([]model.Event, bool) {
	out := make([]model.Event, 0)
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics import: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	occTimes := set.Between(ev.Start, ev.Start.Add(cfg.Horizon), true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	length := ev.End.Sub(ev.Start)
	for _, occStart := range occTimes {
		occEnd := occStart.Add(length)
		base := ev
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			base = o
			occStart, occEnd = o.Start, o.End
		}
		out = append(out, toEvent(base, occStart, occEnd, cfg.Zone))
	}
	return out, hitCap
}

// findOverrideForStart finds the override whose RECURRENCE-ID is the
// instant start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}
