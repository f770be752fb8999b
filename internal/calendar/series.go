package calendar

import (
	"time"

	"tzcal/internal/model"
)

// Series is an ordered set of occurrences generated from one rule. It only
// references events; the calendar's Store owns them.
type Series struct {
	pattern string
	ids     []model.EventID
}

func newSeries(pattern string, ids []model.EventID) *Series {
	return &Series{pattern: pattern, ids: ids}
}

// Pattern is the weekday pattern the series was created from. It is empty
// for a series produced by a split.
func (s *Series) Pattern() string {
	return s.pattern
}

// IDs returns the member ids in occurrence order.
func (s *Series) IDs() []model.EventID {
	return append([]model.EventID(nil), s.ids...)
}

func (s *Series) Len() int {
	return len(s.ids)
}

func (s *Series) contains(id model.EventID) bool {
	return s.indexOf(id) >= 0
}

func (s *Series) indexOf(id model.EventID) int {
	for i, cur := range s.ids {
		if cur == id {
			return i
		}
	}
	return -1
}

// find returns the member with the given subject and start.
func (s *Series) find(st *Store, subject string, start time.Time) (model.EventID, bool) {
	match := SubjectAndStart(subject, start)
	for _, id := range s.ids {
		if match(*st.get(id)) {
			return id, true
		}
	}
	return 0, false
}

// remove detaches id and reports the position it held, or -1.
func (s *Series) remove(id model.EventID) int {
	i := s.indexOf(id)
	if i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
	}
	return i
}

// restore puts id back at position i.
func (s *Series) restore(id model.EventID, i int) {
	if i < 0 || i > len(s.ids) {
		i = len(s.ids)
	}
	s.ids = append(s.ids, 0)
	copy(s.ids[i+1:], s.ids[i:])
	s.ids[i] = id
}

// split detaches every member starting at or after from and returns them as
// a new series without a pattern. The receiver keeps the earlier members.
func (s *Series) split(st *Store, from time.Time) *Series {
	from = model.Wall(from)
	kept := make([]model.EventID, 0, len(s.ids))
	moved := make([]model.EventID, 0)
	for _, id := range s.ids {
		if st.get(id).Start.Before(from) {
			kept = append(kept, id)
		} else {
			moved = append(moved, id)
		}
	}
	s.ids = kept
	return newSeries("", moved)
}

// unsplit merges a split tail back, used when a split edit fails.
func (s *Series) unsplit(tail *Series, original []model.EventID) {
	s.ids = original
	tail.ids = nil
}

func (s *Series) clone() *Series {
	return newSeries(s.pattern, append([]model.EventID(nil), s.ids...))
}
