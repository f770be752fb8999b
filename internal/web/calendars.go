package web

import (
	"net/http"

	"tzcal/internal/calendar"
	"tzcal/internal/registry"
)

type calendarDTO struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active"`
	Events   int    `json:"events"`
}

type calendarsResponse struct {
	Active    string        `json:"active"`
	Calendars []calendarDTO `json:"calendars"`
}

func describeCalendar(reg *registry.Registry, name, active string) (calendarDTO, error) {
	var dto calendarDTO
	err := reg.With(name, func(c *calendar.Calendar) error {
		dto = calendarDTO{
			Name:     c.Name(),
			Timezone: c.Zone().String(),
			Active:   c.Name() == active,
			Events:   c.Len(),
		}
		return nil
	})
	return dto, err
}

// GET /api/calendars
func (s *Server) handleListCalendars(w http.ResponseWriter, _ *http.Request) {
	active, _ := s.reg.Active()
	resp := calendarsResponse{Active: active, Calendars: []calendarDTO{}}
	for _, name := range s.reg.Names() {
		dto, err := describeCalendar(s.reg, name, active)
		if err != nil {
			// Renamed or removed between Names and With.
			continue
		}
		resp.Calendars = append(resp.Calendars, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/calendars {"name": "...", "timezone": "..."}
func (s *Server) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "calendar.create"
	var req struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, op, err)
		return
	}
	zone, err := parseZone(req.Timezone)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	if err := s.reg.Add(req.Name, zone); err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)

	active, _ := s.reg.Active()
	dto, err := describeCalendar(s.reg, req.Name, active)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// POST /api/calendars/active {"name": "..."}
func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	const op = "calendar.use"
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, op, err)
		return
	}
	if err := s.reg.SetActive(req.Name); err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)
	writeJSON(w, http.StatusOK, map[string]string{"active": req.Name})
}

// POST /api/calendars/rename {"from": "...", "to": "..."}
func (s *Server) handleRenameCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "calendar.rename"
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, op, err)
		return
	}
	if err := s.reg.Rename(req.From, req.To); err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)

	active, _ := s.reg.Active()
	dto, err := describeCalendar(s.reg, req.To, active)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// POST /api/calendars/timezone {"name": "...", "timezone": "..."}
func (s *Server) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	const op = "calendar.timezone"
	var req struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, op, err)
		return
	}
	zone, err := parseZone(req.Timezone)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	if err := s.reg.SetZone(req.Name, zone); err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)

	active, _ := s.reg.Active()
	dto, err := describeCalendar(s.reg, req.Name, active)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}
