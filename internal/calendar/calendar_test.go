package calendar

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzcal/internal/model"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := model.ParseDateTime(s)
	require.NoError(t, err)
	return v
}

func loadZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func addSeries(t *testing.T, c *Calendar, subject, start, end, pattern, term string) []model.Event {
	t.Helper()
	evs, err := c.AddRecurringEvent(RecurringRequest{
		Subject:     subject,
		Start:       at(t, start),
		End:         at(t, end),
		Pattern:     pattern,
		Termination: term,
	})
	require.NoError(t, err)
	return evs
}

func TestAddEvent_DuplicateRejected(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Standup", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:15"))
	require.NoError(t, err)

	_, err = c.AddEvent("Standup", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:15"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConflict)
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Standup", conflict.Subject)
	assert.Equal(t, 1, c.Len())
}

func TestAddEvent_SameSubjectDifferentEndIsDistinct(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Standup", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:15"))
	require.NoError(t, err)
	_, err = c.AddEvent("Standup", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:30"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestAddEvent_TimeValidation(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "same day ordered", start: "2025-03-04T09:00", end: "2025-03-04T10:00"},
		{name: "same day equal", start: "2025-03-04T09:00", end: "2025-03-04T09:00", wantErr: true},
		{name: "same day reversed", start: "2025-03-04T10:00", end: "2025-03-04T09:00", wantErr: true},
		{name: "overnight earlier clock", start: "2025-03-04T22:00", end: "2025-03-05T01:00"},
		{name: "end date before start", start: "2025-03-04T09:00", end: "2025-03-03T10:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("work", time.UTC)
			_, err := c.AddEvent("Review", at(t, tt.start), at(t, tt.end))
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrValidation)
				assert.Equal(t, 0, c.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, c.Len())
		})
	}
}

func TestAddAllDayEvent(t *testing.T) {
	c := New("home", time.UTC)
	ev, err := c.AddAllDayEvent("Holiday", model.Date(2025, time.May, 1))
	require.NoError(t, err)
	assert.True(t, ev.IsAllDay())
	assert.Equal(t, at(t, "2025-05-01T08:00"), ev.Start)
	assert.Equal(t, at(t, "2025-05-01T17:00"), ev.End)
}

func TestEvents_OrderedByStartEndSubject(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("B", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("C", at(t, "2025-03-04T08:00"), at(t, "2025-03-04T11:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("D", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:30"))
	require.NoError(t, err)

	var got []string
	for _, ev := range c.Events() {
		got = append(got, ev.Subject)
	}
	assert.Equal(t, []string{"C", "D", "A", "B"}, got)
}

func TestAddRecurringEvent_FirstOccurrenceIsAnchor(t *testing.T) {
	c := New("work", time.UTC)
	// 2025-03-04 is a Tuesday.
	evs := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	require.Len(t, evs, 3)
	assert.Equal(t, at(t, "2025-03-04T07:00"), evs[0].Start)
	assert.Equal(t, at(t, "2025-03-05T07:00"), evs[1].Start)
	assert.Equal(t, at(t, "2025-03-07T07:00"), evs[2].Start)
	for _, ev := range evs {
		assert.True(t, model.ClockEqual(ev.End, at(t, "2025-03-04T08:00")))
	}
	assert.Equal(t, 3, c.Len())
}

func TestAddRecurringEvent_UntilStartDateYieldsOne(t *testing.T) {
	c := New("work", time.UTC)
	evs := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "2025-03-04")
	require.Len(t, evs, 1)
	assert.Equal(t, at(t, "2025-03-04T07:00"), evs[0].Start)
}

func TestAddRecurringEvent_UntilInclusive(t *testing.T) {
	c := New("work", time.UTC)
	evs := addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MW", "2025-03-12")
	var dates []string
	for _, ev := range evs {
		dates = append(dates, ev.Start.Format(model.DateLayout))
	}
	assert.Equal(t, []string{"2025-03-03", "2025-03-05", "2025-03-10", "2025-03-12"}, dates)
}

func TestAddRecurringEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		pattern string
		term    string
		kind    error
	}{
		{name: "bad pattern", start: "2025-03-04T07:00", end: "2025-03-04T08:00", pattern: "MXF", term: "3", kind: model.ErrParse},
		{name: "empty pattern", start: "2025-03-04T07:00", end: "2025-03-04T08:00", pattern: "", term: "3", kind: model.ErrParse},
		{name: "bad termination", start: "2025-03-04T07:00", end: "2025-03-04T08:00", pattern: "MWF", term: "soon", kind: model.ErrParse},
		{name: "zero count", start: "2025-03-04T07:00", end: "2025-03-04T08:00", pattern: "MWF", term: "0", kind: model.ErrParse},
		{name: "spans dates", start: "2025-03-04T22:00", end: "2025-03-05T01:00", pattern: "MWF", term: "3", kind: model.ErrValidation},
		{name: "end before start", start: "2025-03-04T09:00", end: "2025-03-04T08:00", pattern: "MWF", term: "3", kind: model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("work", time.UTC)
			_, err := c.AddRecurringEvent(RecurringRequest{
				Subject: "Gym", Start: at(t, tt.start), End: at(t, tt.end),
				Pattern: tt.pattern, Termination: tt.term,
			})
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 0, c.Len())
			assert.Empty(t, c.Series())
		})
	}
}

func TestAddRecurringEvent_ConflictRollsBackWholeSeries(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Gym", at(t, "2025-03-07T07:00"), at(t, "2025-03-07T08:00"))
	require.NoError(t, err)

	_, err = c.AddRecurringEvent(RecurringRequest{
		Subject: "Gym", Start: at(t, "2025-03-04T07:00"), End: at(t, "2025-03-04T08:00"),
		Pattern: "MWF", Termination: "3",
	})
	require.ErrorIs(t, err, model.ErrConflict)
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.Series())
}

func TestFilter_InstantOverlapIncludesBoundaries(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Review", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)

	assert.Len(t, c.Filter(At(at(t, "2025-03-04T09:00"))), 1)
	assert.Len(t, c.Filter(At(at(t, "2025-03-04T10:00"))), 1)
	assert.Empty(t, c.Filter(At(at(t, "2025-03-04T10:01"))))
	assert.True(t, c.IsBusyAt(at(t, "2025-03-04T09:30")))
	assert.False(t, c.IsBusyAt(at(t, "2025-03-04T08:59")))
}

func TestFilter_DatePredicates(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Trip", at(t, "2025-03-04T20:00"), at(t, "2025-03-06T09:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("Lunch", at(t, "2025-03-07T12:00"), at(t, "2025-03-07T13:00"))
	require.NoError(t, err)

	assert.Len(t, c.Filter(OnDate(model.Date(2025, time.March, 5))), 1)
	assert.Len(t, c.Filter(InDateRange(model.Date(2025, time.March, 6), model.Date(2025, time.March, 7))), 2)
	assert.Empty(t, c.Filter(InDateRange(model.Date(2025, time.March, 8), model.Date(2025, time.March, 9))))
	assert.Len(t, c.Filter(WithSubject("Lunch"), OnDate(model.Date(2025, time.March, 7))), 1)
	assert.Empty(t, c.Filter(WithSubject("Lunch"), OnDate(model.Date(2025, time.March, 5))))
}

func TestEditEvent_NotFound(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.EditEvent("Nope", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"), model.SetLocation("x"))
	require.ErrorIs(t, err, model.ErrNotFound)
	var nf *model.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Nope", nf.Subject)
	assert.Equal(t, at(t, "2025-03-04T09:00"), nf.Start)
}

func TestEditEvent_ConflictRollsBack(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("B", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)

	_, err = c.EditEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"), model.SetSubject("B"))
	require.ErrorIs(t, err, model.ErrConflict)
	assert.Len(t, c.Filter(WithSubject("A")), 1)
	assert.Equal(t, 2, c.Len())
}

func TestEditEvent_InvalidTimeRollsBack(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)

	_, err = c.EditEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"), model.SetEnd(at(t, "2025-03-04T08:00")))
	require.ErrorIs(t, err, model.ErrValidation)
	evs := c.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, at(t, "2025-03-04T10:00"), evs[0].End)
}

func TestEditEvent_StartReordersIndex(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T18:00"))
	require.NoError(t, err)
	_, err = c.AddEvent("B", at(t, "2025-03-04T10:00"), at(t, "2025-03-04T11:00"))
	require.NoError(t, err)

	_, err = c.EditEvent("A", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T18:00"), model.SetStart(at(t, "2025-03-04T12:00")))
	require.NoError(t, err)
	evs := c.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "B", evs[0].Subject)
	assert.Equal(t, "A", evs[1].Subject)
}

func TestEditEvent_StartDetachesFromSeries(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	_, err := c.EditEvent("Gym", at(t, "2025-03-05T07:00"), at(t, "2025-03-05T08:00"), model.SetStart(at(t, "2025-03-05T06:30")))
	require.NoError(t, err)

	_, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-05T06:30"))
	assert.False(t, ok)
	s, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-04T07:00"))
	require.True(t, ok)
	assert.Equal(t, 2, s.Len())
	_, ok = c.FindSeriesForEvent("Gym", at(t, "2025-03-07T07:00"))
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestEditEvent_FailedStartEditKeepsSeriesMembership(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	_, err := c.EditEvent("Gym", at(t, "2025-03-05T07:00"), at(t, "2025-03-05T08:00"), model.SetStart(at(t, "2025-03-05T09:00")))
	require.ErrorIs(t, err, model.ErrValidation)

	s, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-05T07:00"))
	require.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestEditEvent_LocationKeepsSeries(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	ev, err := c.EditEvent("Gym", at(t, "2025-03-05T07:00"), at(t, "2025-03-05T08:00"), model.SetLocation("Pool"))
	require.NoError(t, err)
	assert.Equal(t, "Pool", ev.Location)
	_, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-05T07:00"))
	assert.True(t, ok)
}

func TestEditSeries_LocationChangesAllKeepsTimes(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "5")

	edited, err := c.EditSeries("Gym", at(t, "2025-03-07T07:00"), model.SetLocation("Pool"))
	require.NoError(t, err)
	require.Len(t, edited, len(before))
	for i, ev := range edited {
		assert.Equal(t, "Pool", ev.Location)
		assert.Equal(t, before[i].Start, ev.Start)
		assert.Equal(t, before[i].End, ev.End)
	}
}

func TestEditSeries_StartOnOtherDateFails(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	_, err := c.EditSeries("Gym", at(t, "2025-03-04T07:00"), model.SetStart(at(t, "2025-03-05T06:00")))
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, before, c.Events())
}

func TestEditSeries_StartKeepsEachDate(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	edited, err := c.EditSeries("Gym", at(t, "2025-03-05T07:00"), model.SetStart(at(t, "2025-03-05T06:15")))
	require.NoError(t, err)
	require.Len(t, edited, 3)
	assert.Equal(t, at(t, "2025-03-04T06:15"), edited[0].Start)
	assert.Equal(t, at(t, "2025-03-05T06:15"), edited[1].Start)
	assert.Equal(t, at(t, "2025-03-07T06:15"), edited[2].Start)

	s, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-07T06:15"))
	require.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestEditSeries_SubjectConflictIsAtomic(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")
	_, err := c.AddEvent("Swim", at(t, "2025-03-07T07:00"), at(t, "2025-03-07T08:00"))
	require.NoError(t, err)

	_, err = c.EditSeries("Gym", at(t, "2025-03-04T07:00"), model.SetSubject("Swim"))
	require.ErrorIs(t, err, model.ErrConflict)
	assert.Len(t, c.Filter(WithSubject("Gym")), len(before))
	assert.Equal(t, 4, c.Len())
}

func TestEditSeries_EndBeforeStartIsAtomic(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-04T07:00", "2025-03-04T08:00", "MWF", "3")

	_, err := c.EditSeries("Gym", at(t, "2025-03-04T07:00"), model.SetEnd(at(t, "2025-03-04T06:00")))
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, before, c.Events())
}

func TestEditEvents_StartSplitsSeries(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MWF", "4")

	moved, err := c.EditEvents("Gym", at(t, "2025-03-05T07:00"), model.SetStart(at(t, "2025-03-05T07:30")))
	require.NoError(t, err)
	require.Len(t, moved, 3)
	assert.Equal(t, at(t, "2025-03-05T07:30"), moved[0].Start)
	assert.Equal(t, at(t, "2025-03-07T07:30"), moved[1].Start)
	assert.Equal(t, at(t, "2025-03-10T07:30"), moved[2].Start)

	head, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-03T07:00"))
	require.True(t, ok)
	assert.Equal(t, 1, head.Len())
	assert.Equal(t, "MWF", head.Pattern())

	tail, ok := c.FindSeriesForEvent("Gym", at(t, "2025-03-10T07:30"))
	require.True(t, ok)
	assert.Equal(t, 3, tail.Len())
	assert.Empty(t, tail.Pattern())
	assert.Len(t, c.Series(), 2)
}

func TestEditEvents_FailedSplitRestoresSeries(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MWF", "4")

	_, err := c.EditEvents("Gym", at(t, "2025-03-05T07:00"), model.SetStart(at(t, "2025-03-05T09:00")))
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, before, c.Events())
	require.Len(t, c.Series(), 1)
	assert.Equal(t, 4, c.Series()[0].Len())
}

func TestEditEvents_StartOnOtherDateFails(t *testing.T) {
	c := New("work", time.UTC)
	before := addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MWF", "4")

	_, err := c.EditEvents("Gym", at(t, "2025-03-05T07:00"), model.SetStart(at(t, "2025-03-06T07:30")))
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, before, c.Events())
	require.Len(t, c.Series(), 1)
	assert.Equal(t, 4, c.Series()[0].Len())
	assert.Equal(t, "MWF", c.Series()[0].Pattern())

	_, err = c.EditEvents("Gym", at(t, "2025-03-05T07:00"), model.SetEnd(at(t, "2025-03-04T09:00")))
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, before, c.Events())
}

func TestEditEvents_EndKeepsEachDate(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MWF", "4")

	edited, err := c.EditEvents("Gym", at(t, "2025-03-05T07:00"), model.SetEnd(at(t, "2025-03-05T08:30")))
	require.NoError(t, err)
	require.Len(t, edited, 3)

	all := c.Events()
	require.Len(t, all, 4)
	assert.Equal(t, at(t, "2025-03-03T08:00"), all[0].End)
	assert.Equal(t, at(t, "2025-03-05T08:30"), all[1].End)
	assert.Equal(t, at(t, "2025-03-07T08:30"), all[2].End)
	assert.Equal(t, at(t, "2025-03-10T08:30"), all[3].End)

	require.Len(t, c.Series(), 1)
	assert.Equal(t, 4, c.Series()[0].Len())
}

func TestEditEvents_DescriptionFromStartOnward(t *testing.T) {
	c := New("work", time.UTC)
	addSeries(t, c, "Gym", "2025-03-03T07:00", "2025-03-03T08:00", "MWF", "4")

	edited, err := c.EditEvents("Gym", at(t, "2025-03-07T07:00"), model.SetDescription("legs"))
	require.NoError(t, err)
	assert.Len(t, edited, 2)

	for _, ev := range c.Events() {
		if ev.Start.Before(at(t, "2025-03-07T07:00")) {
			assert.Empty(t, ev.Description)
		} else {
			assert.Equal(t, "legs", ev.Description)
		}
	}
	assert.Len(t, c.Series(), 1)
}

func TestEditEvents_FallbackEditsAllMatching(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Call", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:30"))
	require.NoError(t, err)
	_, err = c.AddEvent("Call", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)

	edited, err := c.EditEvents("Call", at(t, "2025-03-04T09:00"), model.SetStatus(model.StatusPrivate))
	require.NoError(t, err)
	require.Len(t, edited, 2)
	for _, ev := range c.Events() {
		assert.Equal(t, model.StatusPrivate, ev.Status)
	}

	_, err = c.EditSeries("Missing", at(t, "2025-03-04T09:00"), model.SetLocation("x"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEditAllMatching_NotAtomic(t *testing.T) {
	c := New("work", time.UTC)
	_, err := c.AddEvent("Call", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T09:30"))
	require.NoError(t, err)
	_, err = c.AddEvent("Call", at(t, "2025-03-04T09:00"), at(t, "2025-03-04T10:00"))
	require.NoError(t, err)
	// The first edit succeeds, then the second collides with it.
	edited, err := c.EditEvents("Call", at(t, "2025-03-04T09:00"), model.SetEnd(at(t, "2025-03-04T09:45")))
	require.ErrorIs(t, err, model.ErrConflict)
	require.Len(t, edited, 1)

	ends := []time.Time{}
	for _, ev := range c.Filter(WithSubject("Call")) {
		ends = append(ends, ev.End)
	}
	assert.ElementsMatch(t, []time.Time{at(t, "2025-03-04T09:45"), at(t, "2025-03-04T10:00")}, ends)
}

func TestAdjustedTimeZone_ConvertsCopy(t *testing.T) {
	ny := loadZone(t, "America/New_York")
	la := loadZone(t, "America/Los_Angeles")

	c := New("work", ny)
	addSeries(t, c, "Gym", "2025-03-04T09:00", "2025-03-04T10:00", "TR", "2")
	_, err := c.AddEvent("Flight", at(t, "2025-03-10T01:00"), at(t, "2025-03-10T02:00"))
	require.NoError(t, err)

	next, err := c.AdjustedTimeZone(la)
	require.NoError(t, err)
	assert.Equal(t, la, next.Zone())

	starts := []time.Time{}
	for _, ev := range next.Events() {
		starts = append(starts, ev.Start)
		assert.Equal(t, la, ev.Zone)
	}
	assert.Equal(t, []time.Time{
		at(t, "2025-03-04T06:00"),
		at(t, "2025-03-06T06:00"),
		at(t, "2025-03-09T22:00"),
	}, starts)

	_, ok := next.FindSeriesForEvent("Gym", at(t, "2025-03-06T06:00"))
	assert.True(t, ok)

	// The source calendar is untouched.
	assert.Equal(t, ny, c.Zone())
	assert.Equal(t, at(t, "2025-03-04T09:00"), c.Events()[0].Start)
}

func TestAdjustedTimeZone_SeriesSpanFailsAndLeavesCalendar(t *testing.T) {
	ny := loadZone(t, "America/New_York")
	london := loadZone(t, "Europe/London")

	c := New("work", ny)
	before := addSeries(t, c, "Late", "2025-03-04T18:00", "2025-03-04T20:00", "TR", "2")

	_, err := c.AdjustedTimeZone(london)
	require.ErrorIs(t, err, model.ErrZone)
	var zerr *model.ZoneError
	require.True(t, errors.As(err, &zerr))
	assert.Equal(t, "Late", zerr.Series)
	assert.Equal(t, "Europe/London", zerr.Zone)

	assert.Equal(t, ny, c.Zone())
	assert.Equal(t, before, c.Events())
}

func TestAdjustedTimeZone_StandaloneMayCrossDates(t *testing.T) {
	ny := loadZone(t, "America/New_York")
	london := loadZone(t, "Europe/London")

	c := New("work", ny)
	_, err := c.AddEvent("Late", at(t, "2025-03-04T18:00"), at(t, "2025-03-04T20:00"))
	require.NoError(t, err)

	next, err := c.AdjustedTimeZone(london)
	require.NoError(t, err)
	ev := next.Events()[0]
	assert.Equal(t, at(t, "2025-03-04T23:00"), ev.Start)
	assert.Equal(t, at(t, "2025-03-05T01:00"), ev.End)
}

func TestRename(t *testing.T) {
	c := New("work", nil)
	assert.Equal(t, time.UTC, c.Zone())
	require.NoError(t, c.Rename("office"))
	assert.Equal(t, "office", c.Name())
	assert.ErrorIs(t, c.Rename("  "), model.ErrValidation)
}
