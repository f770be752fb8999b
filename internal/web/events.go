package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"tzcal/internal/calendar"
	"tzcal/internal/export"
	"tzcal/internal/ics"
	"tzcal/internal/model"
)

type eventDTO struct {
	ID          int64  `json:"id"`
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status"`
	Timezone    string `json:"timezone"`
	Recurring   bool   `json:"recurring"`
}

type eventsResponse struct {
	Calendar string     `json:"calendar"`
	Timezone string     `json:"timezone"`
	Events   []eventDTO `json:"events"`
}

func toDTOs(c *calendar.Calendar, events []model.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		_, recurring := c.SeriesOf(ev.ID)
		out = append(out, eventDTO{
			ID:          int64(ev.ID),
			Subject:     ev.Subject,
			Start:       ev.Start.Format(model.DateTimeLayout),
			End:         ev.End.Format(model.DateTimeLayout),
			AllDay:      ev.IsAllDay(),
			Description: ev.Description,
			Location:    ev.Location,
			Status:      ev.Status.String(),
			Timezone:    ev.Zone.String(),
			Recurring:   recurring,
		})
	}
	return out
}

func respond(c *calendar.Calendar, events []model.Event) eventsResponse {
	return eventsResponse{Calendar: c.Name(), Timezone: c.Zone().String(), Events: toDTOs(c, events)}
}

// GET /api/events?calendar=work&on=2025-03-04
// GET /api/events?calendar=work&from=2025-03-01&to=2025-03-31
//
// Without on/from/to every event is returned. An empty calendar means the
// active one.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	const op = "events.list"
	q := r.URL.Query()

	var preds []calendar.Predicate
	switch {
	case q.Get("on") != "":
		date, err := model.ParseDate(q.Get("on"))
		if err != nil {
			s.fail(w, op, err)
			return
		}
		preds = append(preds, calendar.OnDate(date))
	case q.Get("from") != "" || q.Get("to") != "":
		from, err := model.ParseDate(q.Get("from"))
		if err != nil {
			s.fail(w, op, err)
			return
		}
		to, err := model.ParseDate(q.Get("to"))
		if err != nil {
			s.fail(w, op, err)
			return
		}
		preds = append(preds, calendar.InDateRange(from, to))
	}

	var resp eventsResponse
	err := s.reg.With(q.Get("calendar"), func(c *calendar.Calendar) error {
		resp = respond(c, c.Filter(preds...))
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type createEventRequest struct {
	Calendar string `json:"calendar"`
	Subject  string `json:"subject"`

	// Start and End are YYYY-MM-DDThh:mm. Date (YYYY-MM-DD) instead
	// creates an all-day event.
	Start string `json:"start"`
	End   string `json:"end"`
	Date  string `json:"date"`

	Pattern     string `json:"pattern"`
	Termination string `json:"termination"`

	Description string `json:"description"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}

// POST /api/events
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "events.create", err)
		return
	}

	op := "events.create"
	if req.Pattern != "" || req.Termination != "" {
		op = "events.create_series"
	}

	var resp eventsResponse
	err := s.reg.With(req.Calendar, func(c *calendar.Calendar) error {
		events, err := createEvents(c, req)
		if err != nil {
			return err
		}
		resp = respond(c, events)
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)
	writeJSON(w, http.StatusCreated, resp)
}

func createEvents(c *calendar.Calendar, req createEventRequest) ([]model.Event, error) {
	status := model.StatusPublic
	if req.Status != "" {
		st, err := model.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	var ev model.Event
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		ev = model.NewEvent(req.Subject, model.At(date, model.AllDayStart), model.At(date, model.AllDayEnd), c.Zone())
	} else {
		st, err := model.ParseDateTime(req.Start)
		if err != nil {
			return nil, err
		}
		en, err := model.ParseDateTime(req.End)
		if err != nil {
			return nil, err
		}
		ev = model.NewEvent(req.Subject, st, en, c.Zone())
	}

	if req.Pattern != "" || req.Termination != "" {
		return c.AddRecurringEvent(calendar.RecurringRequest{
			Subject:     req.Subject,
			Start:       ev.Start,
			End:         ev.End,
			Pattern:     req.Pattern,
			Termination: req.Termination,
			Description: req.Description,
			Location:    req.Location,
			Status:      status,
		})
	}

	ev.Description, ev.Location, ev.Status = req.Description, req.Location, status
	added, err := c.Insert(ev)
	if err != nil {
		return nil, err
	}
	return []model.Event{added}, nil
}

type editRequest struct {
	Calendar string `json:"calendar"`
	// Scope is single (default), following or series.
	Scope    string `json:"scope"`
	Subject  string `json:"subject"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

// POST /api/events/edit
func (s *Server) handleEditEvent(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "events.edit", err)
		return
	}
	scope := strings.ToLower(strings.TrimSpace(req.Scope))
	if scope == "" {
		scope = "single"
	}
	op := "events.edit"
	switch scope {
	case "single", "following", "series":
		op += "_" + scope
	}

	edit, err := model.ParseEdit(req.Property, req.Value)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	start, err := model.ParseDateTime(req.Start)
	if err != nil {
		s.fail(w, op, err)
		return
	}

	var resp eventsResponse
	err = s.reg.With(req.Calendar, func(c *calendar.Calendar) error {
		var edited []model.Event
		switch scope {
		case "single":
			end, err := model.ParseDateTime(req.End)
			if err != nil {
				return err
			}
			ev, err := c.EditEvent(req.Subject, start, end, edit)
			if err != nil {
				return err
			}
			edited = []model.Event{ev}
		case "following":
			evs, err := c.EditEvents(req.Subject, start, edit)
			if err != nil {
				return err
			}
			edited = evs
		case "series":
			evs, err := c.EditSeries(req.Subject, start, edit)
			if err != nil {
				return err
			}
			edited = evs
		default:
			return fmt.Errorf("%w: unknown edit scope %q, expected single, following or series", model.ErrParse, req.Scope)
		}
		resp = respond(c, edited)
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)
	writeJSON(w, http.StatusOK, resp)
}

type copyRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`

	// Single event: Subject + Start copied to TargetStart.
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	TargetStart string `json:"target_start"`

	// Dates: Date (through Until when set) copied to TargetDate.
	Date       string `json:"date"`
	Until      string `json:"until"`
	TargetDate string `json:"target_date"`
}

// POST /api/events/copy
func (s *Server) handleCopyEvents(w http.ResponseWriter, r *http.Request) {
	const op = "events.copy"
	var req copyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, op, err)
		return
	}
	n, err := s.copyEvents(req)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)
	writeJSON(w, http.StatusOK, map[string]int{"copied": n})
}

func (s *Server) copyEvents(req copyRequest) (int, error) {
	if req.Subject != "" {
		start, err := model.ParseDateTime(req.Start)
		if err != nil {
			return 0, err
		}
		target, err := model.ParseDateTime(req.TargetStart)
		if err != nil {
			return 0, err
		}
		return s.reg.CopyEvent(req.Source, req.Subject, start, req.Target, target)
	}

	from, err := model.ParseDate(req.Date)
	if err != nil {
		return 0, err
	}
	target, err := model.ParseDate(req.TargetDate)
	if err != nil {
		return 0, err
	}
	if req.Until == "" {
		return s.reg.CopyEventsOn(req.Source, from, req.Target, target)
	}
	to, err := model.ParseDate(req.Until)
	if err != nil {
		return 0, err
	}
	return s.reg.CopyEventsBetween(req.Source, from, to, req.Target, target)
}

// GET /api/status?calendar=work&at=2025-03-04T09:30
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	const op = "events.status"
	q := r.URL.Query()
	at, err := model.ParseDateTime(q.Get("at"))
	if err != nil {
		s.fail(w, op, err)
		return
	}

	var busy bool
	err = s.reg.With(q.Get("calendar"), func(c *calendar.Calendar) error {
		busy = c.IsBusyAt(at)
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	status := "available"
	if busy {
		status = "busy"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"at":     at.Format(model.DateTimeLayout),
		"busy":   busy,
		"status": status,
	})
}

// GET /api/export?calendar=work&format=ics|csv
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "export"
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "ics"
	}

	var (
		buf         bytes.Buffer
		name        string
		contentType string
	)
	err := s.reg.With(q.Get("calendar"), func(c *calendar.Calendar) error {
		name = c.Name()
		switch format {
		case "ics":
			contentType = "text/calendar; charset=utf-8"
			return ics.Export(&buf, ics.ExportOptions{Name: c.Name(), Zone: c.Zone()}, c.Events())
		case "csv":
			contentType = "text/csv; charset=utf-8"
			return export.WriteCSV(&buf, c.Events())
		default:
			return fmt.Errorf("%w: unsupported export format %q, expected ics or csv", model.ErrParse, format)
		}
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// POST /api/import?calendar=work with an iCalendar body. The import is
// applied to a copy of the calendar and kept only if it succeeds entirely.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "import"
	var (
		added, skipped int
		truncated      []string
	)
	err := s.reg.Update(r.URL.Query().Get("calendar"), func(c *calendar.Calendar) error {
		imp, err := ics.Parse(r.Body, ics.ImportConfig{Zone: c.Zone()})
		if err != nil {
			return err
		}
		truncated = imp.Truncated
		added, skipped, err = imp.AddTo(c)
		return err
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.metrics.observe(op, nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"added":     added,
		"skipped":   skipped,
		"truncated": truncated,
	})
}
