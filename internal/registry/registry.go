package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tzcal/internal/calendar"
	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// entry guards one calendar. The pointer is swapped wholesale when the
// calendar's zone changes or a batch copy commits.
type entry struct {
	mu  sync.Mutex
	cal *calendar.Calendar
}

// Registry maps calendar names to calendars and tracks the active one.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	active  string
}

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func calendarNotFound(name string) error {
	return fmt.Errorf("%w: calendar %q", model.ErrNotFound, name)
}

// Add creates an empty calendar. The first calendar added becomes active.
func (r *Registry) Add(name string, zone *time.Location) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: calendar name is empty", model.ErrValidation)
	}
	if zone == nil {
		zone = time.UTC
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: calendar %q already exists", model.ErrConflict, name)
	}
	r.entries[name] = &entry{cal: calendar.New(name, zone)}
	if r.active == "" {
		r.active = name
	}
	appLog.Info("calendar created", "name", name, "zone", zone.String())
	return nil
}

func (r *Registry) lookup(name string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.active
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, calendarNotFound(name)
	}
	return e, nil
}

// With runs fn with exclusive access to a calendar. An empty name selects
// the active calendar.
func (r *Registry) With(name string, fn func(*calendar.Calendar) error) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cal)
}

// Update runs fn on a copy of a calendar and replaces the calendar with the
// copy only when fn succeeds, so a failing fn leaves no partial changes.
// An empty name selects the active calendar.
func (r *Registry) Update(name string, fn func(*calendar.Calendar) error) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.cal.Clone()
	if err := fn(work); err != nil {
		appLog.Warn("calendar update rejected", "calendar", e.cal.Name(), "err", err)
		return err
	}
	e.cal = work
	return nil
}

func (r *Registry) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: calendar name is empty", model.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[oldName]
	if !ok {
		return calendarNotFound(oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := r.entries[newName]; taken {
		return fmt.Errorf("%w: calendar %q already exists", model.ErrConflict, newName)
	}

	e.mu.Lock()
	err := e.cal.Rename(newName)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	delete(r.entries, oldName)
	r.entries[newName] = e
	if r.active == oldName {
		r.active = newName
	}
	appLog.Info("calendar renamed", "from", oldName, "to", newName)
	return nil
}

// SetZone re-bases every event of the calendar into zone. On failure the
// calendar keeps its previous zone and events.
func (r *Registry) SetZone(name string, zone *time.Location) error {
	if zone == nil {
		return fmt.Errorf("%w: time zone is nil", model.ErrValidation)
	}
	e, err := r.lookup(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.cal.AdjustedTimeZone(zone)
	if err != nil {
		appLog.Error("time zone change failed", err, "calendar", e.cal.Name(), "zone", zone.String())
		return err
	}
	e.cal = next
	return nil
}

func (r *Registry) Zone(name string) (*time.Location, error) {
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cal.Zone(), nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return calendarNotFound(name)
	}
	r.active = name
	return nil
}

// Active returns the name of the active calendar.
func (r *Registry) Active() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return "", fmt.Errorf("%w: no calendar in use", model.ErrNotFound)
	}
	return r.active, nil
}

// Names lists the registered calendars in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
