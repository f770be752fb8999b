package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"tzcal/internal/model"
)

const (
	productID      = "-//tzcal//tzcal//EN"
	icalLocalStamp = "20060102T150405"
)

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("tzcal"))

// ExportOptions describes the calendar being exported.
type ExportOptions struct {
	Name string
	Zone *time.Location
	// Stamp is written as DTSTAMP on every VEVENT; zero means now.
	Stamp time.Time
}

// EventUID derives a stable UID from the event's identity, so exporting the
// same event twice yields the same UID.
func EventUID(ev model.Event) string {
	name := ev.Subject + "\x00" + ev.Start.Format(time.RFC3339) + "\x00" + ev.End.Format(time.RFC3339)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@tzcal"
}

// Export writes events as an iCalendar document. Timed events carry a TZID
// for their zone; business-hours all-day events are written as dates.
func Export(w io.Writer, opts ExportOptions, events []model.Event) error {
	zone := opts.Zone
	if zone == nil {
		zone = time.UTC
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(zone.String())

	for _, ev := range events {
		vev := cal.AddEvent(EventUID(ev))
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Subject)

		if ev.IsAllDay() {
			vev.SetAllDayStartAt(ev.Start)
			vev.SetAllDayEndAt(ev.End.AddDate(0, 0, 1))
		} else {
			tzid := zone.String()
			if ev.Zone != nil {
				tzid = ev.Zone.String()
			}
			vev.SetProperty(ical.ComponentPropertyDtStart, ev.Start.Format(icalLocalStamp), ical.WithTZID(tzid))
			vev.SetProperty(ical.ComponentPropertyDtEnd, ev.End.Format(icalLocalStamp), ical.WithTZID(tzid))
		}

		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
		if ev.Status == model.StatusPrivate {
			vev.SetClass(ical.ClassificationPrivate)
		} else {
			vev.SetClass(ical.ClassificationPublic)
		}
		vev.SetStatus(ical.ObjectStatusConfirmed)
	}

	return cal.SerializeTo(w)
}
