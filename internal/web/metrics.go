package web

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tzcal/internal/calendar"
	"tzcal/internal/model"
	"tzcal/internal/registry"
)

type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	operations *prometheus.CounterVec
}

func newMetrics(reg *registry.Registry) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tzcal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tzcal",
			Name:      "operations_total",
			Help:      "Calendar operations by name and result.",
		}, []string{"op", "result"}),
	}

	calendars := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tzcal",
		Name:      "calendars",
		Help:      "Number of calendars in the registry.",
	}, func() float64 {
		return float64(len(reg.Names()))
	})
	events := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tzcal",
		Name:      "events",
		Help:      "Number of events across all calendars.",
	}, func() float64 {
		total := 0
		for _, name := range reg.Names() {
			_ = reg.With(name, func(c *calendar.Calendar) error {
				total += c.Len()
				return nil
			})
		}
		return float64(total)
	})

	m.registry.MustRegister(m.requests, m.operations, calendars, events, collectors.NewGoCollector())
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// observe counts one operation outcome.
func (m *metrics) observe(op string, err error) {
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch model.Kind(err) {
	case model.ErrParse:
		return "parse_error"
	case model.ErrValidation:
		return "invalid"
	case model.ErrNotFound:
		return "not_found"
	case model.ErrConflict:
		return "conflict"
	case model.ErrZone:
		return "zone_error"
	default:
		return "error"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests by the ServeMux pattern that handled them.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
