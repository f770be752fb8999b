package calendar

import (
	"time"

	"tzcal/internal/model"
)

// Predicate is a pure test over one event.
type Predicate func(model.Event) bool

// OnDate matches events whose date span includes date.
func OnDate(date time.Time) Predicate {
	day := model.DateOf(date)
	return func(ev model.Event) bool {
		return !day.Before(model.DateOf(ev.Start)) && !day.After(model.DateOf(ev.End))
	}
}

// InDateRange matches events whose date span overlaps [from, to], both
// ends inclusive.
func InDateRange(from, to time.Time) Predicate {
	first, last := model.DateOf(from), model.DateOf(to)
	return func(ev model.Event) bool {
		return !model.DateOf(ev.Start).After(last) && !model.DateOf(ev.End).Before(first)
	}
}

// Overlapping matches events that touch the closed interval [from, to].
func Overlapping(from, to time.Time) Predicate {
	from, to = model.Wall(from), model.Wall(to)
	return func(ev model.Event) bool {
		return !ev.End.Before(from) && !ev.Start.After(to)
	}
}

// At matches events in progress at instant, boundaries included.
func At(instant time.Time) Predicate {
	return Overlapping(instant, instant)
}

func SubjectAndStart(subject string, start time.Time) Predicate {
	start = model.Wall(start)
	return func(ev model.Event) bool {
		return ev.Subject == subject && ev.Start.Equal(start)
	}
}

func Exact(subject string, start, end time.Time) Predicate {
	end = model.Wall(end)
	return All(SubjectAndStart(subject, start), func(ev model.Event) bool {
		return ev.End.Equal(end)
	})
}

func WithSubject(subject string) Predicate {
	return func(ev model.Event) bool {
		return ev.Subject == subject
	}
}

// All is the conjunction of preds. With no predicates it matches everything.
func All(preds ...Predicate) Predicate {
	return func(ev model.Event) bool {
		for _, p := range preds {
			if p != nil && !p(ev) {
				return false
			}
		}
		return true
	}
}
