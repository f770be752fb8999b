package calendar

import (
	"sort"
	"strings"

	"tzcal/internal/model"
)

// Store is the event arena of one calendar plus its chronologically ordered,
// duplicate-free index. Events live in the arena for the calendar's whole
// life; membership in the index is what "stored" means. Series refer to the
// same arena ids.
type Store struct {
	arena  map[model.EventID]*model.Event
	order  []model.EventID
	keys   map[model.Key]model.EventID
	nextID model.EventID
}

func newStore() *Store {
	return &Store{
		arena: make(map[model.EventID]*model.Event),
		keys:  make(map[model.Key]model.EventID),
	}
}

// create places ev in the arena under a fresh id without indexing it.
func (s *Store) create(ev model.Event) model.EventID {
	s.nextID++
	ev.ID = s.nextID
	s.arena[ev.ID] = &ev
	return ev.ID
}

// discard drops an unindexed event from the arena.
func (s *Store) discard(id model.EventID) {
	if !s.has(id) {
		delete(s.arena, id)
	}
}

func (s *Store) get(id model.EventID) *model.Event {
	return s.arena[id]
}

func (s *Store) has(id model.EventID) bool {
	ev := s.arena[id]
	if ev == nil {
		return false
	}
	stored, ok := s.keys[ev.Key()]
	return ok && stored == id
}

func (s *Store) containsKey(k model.Key) bool {
	_, ok := s.keys[k]
	return ok
}

func (s *Store) lookup(k model.Key) (model.EventID, bool) {
	id, ok := s.keys[k]
	return id, ok
}

func (s *Store) Len() int {
	return len(s.order)
}

// insert indexes an arena event. It fails with a ConflictError when an event
// with the same subject, start and end is already indexed.
func (s *Store) insert(id model.EventID) error {
	ev := s.arena[id]
	k := ev.Key()
	if _, ok := s.keys[k]; ok {
		return &model.ConflictError{Subject: ev.Subject, Start: ev.Start, End: ev.End}
	}
	s.keys[k] = id

	i := sort.Search(len(s.order), func(i int) bool {
		return !less(s.arena[s.order[i]], ev)
	})
	s.order = append(s.order, 0)
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = id
	return nil
}

// remove un-indexes an event. The event must not have been mutated since it
// was inserted, because its key locates it.
func (s *Store) remove(id model.EventID) bool {
	if !s.has(id) {
		return false
	}
	delete(s.keys, s.arena[id].Key())
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// reindex rebuilds order and keys after events were changed in place.
func (s *Store) reindex() error {
	s.keys = make(map[model.Key]model.EventID, len(s.order))
	for _, id := range s.order {
		ev := s.arena[id]
		if _, ok := s.keys[ev.Key()]; ok {
			return &model.ConflictError{Subject: ev.Subject, Start: ev.Start, End: ev.End}
		}
		s.keys[ev.Key()] = id
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return less(s.arena[s.order[i]], s.arena[s.order[j]])
	})
	return nil
}

// snapshot copies the indexed events matching pred in order.
func (s *Store) snapshot(pred Predicate) []model.Event {
	out := make([]model.Event, 0)
	for _, id := range s.order {
		ev := s.arena[id]
		if pred == nil || pred(*ev) {
			out = append(out, *ev)
		}
	}
	return out
}

// ids lists the indexed ids matching pred in order.
func (s *Store) ids(pred Predicate) []model.EventID {
	out := make([]model.EventID, 0)
	for _, id := range s.order {
		if pred == nil || pred(*s.arena[id]) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) clone() *Store {
	c := &Store{
		arena:  make(map[model.EventID]*model.Event, len(s.arena)),
		order:  append([]model.EventID(nil), s.order...),
		keys:   make(map[model.Key]model.EventID, len(s.keys)),
		nextID: s.nextID,
	}
	for id, ev := range s.arena {
		cp := *ev
		c.arena[id] = &cp
	}
	for k, id := range s.keys {
		c.keys[k] = id
	}
	return c
}

// less orders by start, then end, then subject.
func less(a, b *model.Event) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	return strings.Compare(a.Subject, b.Subject) < 0
}
