package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"tzcal/internal/model"
)

const (
	// maxOccurrencesPerSeries caps expansion of date-terminated rules.
	maxOccurrencesPerSeries = 5000
)

var patternDays = map[rune]time.Weekday{
	'M': time.Monday,
	'T': time.Tuesday,
	'W': time.Wednesday,
	'R': time.Thursday,
	'F': time.Friday,
	'S': time.Saturday,
	'U': time.Sunday,
}

var rruleDays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ParsePattern decodes a weekday pattern such as "MWF" (R is Thursday,
// U is Sunday).
func ParsePattern(pattern string) ([]time.Weekday, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: invalid pattern: empty", model.ErrParse)
	}
	seen := make(map[time.Weekday]bool)
	days := make([]time.Weekday, 0, len(pattern))
	for _, c := range pattern {
		d, ok := patternDays[c]
		if !ok {
			return nil, fmt.Errorf("%w: invalid pattern: %q", model.ErrParse, c)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, nil
}

// Termination ends a series either after Count occurrences or after the
// inclusive date Until. Exactly one is set.
type Termination struct {
	Count int
	Until time.Time
}

// ParseTermination reads a termination as an occurrence count first and as
// an ISO date otherwise.
func ParseTermination(s string) (Termination, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return Termination{}, fmt.Errorf("%w: invalid termination %q: count must be at least 1", model.ErrParse, s)
		}
		return Termination{Count: n}, nil
	}
	until, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return Termination{}, fmt.Errorf("%w: invalid termination %q: expected a count or YYYY-MM-DD", model.ErrParse, s)
	}
	return Termination{Until: until}, nil
}

// Rule describes a weekday-pattern recurrence.
type Rule struct {
	Subject     string
	StartDate   time.Time
	StartTime   time.Time
	EndTime     time.Time
	Pattern     string
	Termination string
	Zone        *time.Location
}

// Expand turns a rule into its occurrences. The first occurrence is always
// on StartDate, whether or not that weekday is in the pattern; later ones
// fall on pattern weekdays after it.
func Expand(r Rule) ([]model.Event, error) {
	days, err := ParsePattern(r.Pattern)
	if err != nil {
		return nil, err
	}
	term, err := ParseTermination(r.Termination)
	if err != nil {
		return nil, err
	}

	first := model.DateOf(r.StartDate)
	dates := []time.Time{first}

	rest, err := weekdayDates(first, days, term)
	if err != nil {
		return nil, err
	}
	dates = append(dates, rest...)

	events := make([]model.Event, 0, len(dates))
	for _, d := range dates {
		events = append(events, model.NewEvent(r.Subject, model.At(d, r.StartTime), model.At(d, r.EndTime), r.Zone))
	}
	return events, nil
}

// weekdayDates lists the pattern dates strictly after first, honoring term
// (whose count includes the anchor occurrence on first).
func weekdayDates(first time.Time, days []time.Weekday, term Termination) ([]time.Time, error) {
	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: first.AddDate(0, 0, 1),
	}
	for _, d := range days {
		opt.Byweekday = append(opt.Byweekday, rruleDays[d])
	}

	switch {
	case term.Count > 0:
		if term.Count == 1 {
			return nil, nil
		}
		if term.Count > maxOccurrencesPerSeries {
			return nil, fmt.Errorf("%w: invalid termination: at most %d occurrences", model.ErrParse, maxOccurrencesPerSeries)
		}
		opt.Count = term.Count - 1
	default:
		if term.Until.Before(opt.Dtstart) {
			return nil, nil
		}
		opt.Until = model.DateOf(term.Until)
		opt.Count = maxOccurrencesPerSeries
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid recurrence: %v", model.ErrParse, err)
	}
	dates := rule.All()
	if term.Count == 0 && len(dates) >= maxOccurrencesPerSeries {
		return nil, fmt.Errorf("%w: invalid termination: at most %d occurrences", model.ErrParse, maxOccurrencesPerSeries)
	}
	for i := range dates {
		dates[i] = model.DateOf(dates[i])
	}
	return dates, nil
}

// PatternOf renders the weekdays of dates as a pattern string in Monday to
// Sunday order. It is used to re-derive a rule for series that were split
// off another one and carry no pattern of their own.
func PatternOf(dates []time.Time) string {
	present := make(map[time.Weekday]bool)
	for _, d := range dates {
		present[d.Weekday()] = true
	}
	var b strings.Builder
	for _, c := range "MTWRFSU" {
		if present[patternDays[c]] {
			b.WriteRune(c)
		}
	}
	return b.String()
}
