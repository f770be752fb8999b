package calendar

import (
	"time"

	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

// AdjustedTimeZone returns a copy of the calendar with every event re-based
// into zone. Series occurrences must still start and end on one date after
// the shift; if one does not, a ZoneError names the series. The receiver is
// never modified.
func (c *Calendar) AdjustedTimeZone(zone *time.Location) (*Calendar, error) {
	if zone == nil {
		zone = time.UTC
	}
	next := c.Clone()

	inSeries := make(map[model.EventID]bool)
	for _, s := range next.series {
		for _, id := range s.ids {
			ev := next.store.get(id)
			ev.AdjustTimeZone(zone)
			inSeries[id] = true
			if !model.SameDate(ev.Start, ev.End) {
				err := &model.ZoneError{Series: ev.Subject, Zone: zone.String()}
				appLog.Warn("time zone change rejected", "calendar", c.name, "zone", zone.String(), "err", err)
				return nil, err
			}
		}
	}
	for _, id := range next.store.order {
		if !inSeries[id] {
			next.store.get(id).AdjustTimeZone(zone)
		}
	}
	if err := next.store.reindex(); err != nil {
		return nil, err
	}
	next.zone = zone

	appLog.Info("calendar time zone changed", "calendar", c.name, "from", c.zone.String(), "to", zone.String())
	return next, nil
}

// Clone returns an independent deep copy, used to stage a batch of changes
// that is swapped in only if all of them succeed.
func (c *Calendar) Clone() *Calendar {
	next := &Calendar{
		name:   c.name,
		zone:   c.zone,
		store:  c.store.clone(),
		series: make([]*Series, 0, len(c.series)),
	}
	for _, s := range c.series {
		next.series = append(next.series, s.clone())
	}
	return next
}
