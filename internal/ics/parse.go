package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// ParsedEvent is the normalized representation of a VEVENT. Times are
// absolute (their Location is the TZID zone, UTC, or the floating zone
// passed to ParseICS).
type ParsedEvent struct {
	UID string

	Summary     string
	Description string
	Location    string
	Private     bool

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, set on overridden instances
}

// ParseICS reads every VEVENT of an iCalendar stream. Floating date-times
// are read in floating. Broken VEVENTs are logged and skipped.
func ParseICS(r io.Reader, floating *time.Location) ([]ParsedEvent, error) {
	if floating == nil {
		floating = time.UTC
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, fmt.Errorf("%w: ics: %v", model.ErrParse, err)
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp, floating)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "err", perr, "uid", propertyValue(comp.GetProperty(ical.ComponentPropertyUniqueId)))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, floating *time.Location) (ParsedEvent, error) {
	var out ParsedEvent

	out.UID = strings.TrimSpace(propertyValue(ve.GetProperty(ical.ComponentPropertyUniqueId)))
	out.Summary = strings.TrimSpace(propertyValue(ve.GetProperty(ical.ComponentPropertySummary)))
	if out.Summary == "" {
		return out, errors.New("missing SUMMARY")
	}
	out.Description = propertyValue(ve.GetProperty(ical.ComponentPropertyDescription))
	out.Location = propertyValue(ve.GetProperty(ical.ComponentPropertyLocation))

	switch ical.Classification(strings.ToUpper(propertyValue(ve.GetProperty(ical.ComponentPropertyClass)))) {
	case ical.ClassificationPrivate, ical.ClassificationConfidential:
		out.Private = true
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := parseICSTime(dtStart.Value, dtStart.ICalParameters, floating)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start
	out.AllDay = isAllDay(dtStart)

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		end, err := parseICSTime(dtEnd.Value, dtEnd.ICalParameters, floating)
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.End = end
	}
	if out.End.IsZero() || !out.End.After(out.Start) {
		// A missing or empty DTEND means one day for dates and an instant
		// otherwise; keep a minute so the event stays valid.
		if out.AllDay {
			out.End = out.Start.AddDate(0, 0, 1)
		} else {
			out.End = out.Start.Add(time.Minute)
		}
	}

	out.RawRRule = strings.TrimSpace(propertyValue(ve.GetProperty(ical.ComponentPropertyRrule)))

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, p.ICalParameters, floating); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
		if t, err := parseICSTime(rid.Value, rid.ICalParameters, floating); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

var icsLayouts = []string{
	"20060102T150405Z",
	"20060102T1504Z",
	"20060102T150405",
	"20060102T1504",
	"20060102",
}

// parseICSTime parses a DATE or DATE-TIME value honoring a TZID parameter.
func parseICSTime(value string, params map[string][]string, floating *time.Location) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	loc := floating
	if tzids, ok := params[string(ical.ParameterTzid)]; ok && len(tzids) > 0 && strings.TrimSpace(tzids[0]) != "" {
		tz, err := time.LoadLocation(strings.TrimSpace(tzids[0]))
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown TZID %q", tzids[0])
		}
		loc = tz
	}

	for _, layout := range icsLayouts {
		if strings.HasSuffix(layout, "Z") {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time value %q", v)
}

func isAllDay(p *ical.IANAProperty) bool {
	if p == nil {
		return false
	}
	for _, v := range p.ICalParameters[string(ical.ParameterValue)] {
		if strings.EqualFold(strings.TrimSpace(v), string(ical.ValueDataTypeDate)) {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

func propertyValue(p *ical.IANAProperty) string {
	if p == nil {
		return ""
	}
	return p.Value
}
