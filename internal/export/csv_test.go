package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzcal/internal/model"
)

func TestWriteCSV(t *testing.T) {
	review := model.NewEvent("Review, Q1", time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC), time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC), nil)
	review.Location = "Room 4"
	review.Status = model.StatusPrivate
	offsite := model.NewEvent("Offsite", model.At(model.Date(2025, 3, 6), model.AllDayStart), model.At(model.Date(2025, 3, 6), model.AllDayEnd), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []model.Event{review, offsite}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"Review, Q1", "2025-03-04", "02:05 PM", "2025-03-04", "03:00 PM", "false", "", "Room 4", "true"}, rows[1])
	assert.Equal(t, []string{"Offsite", "2025-03-06", "08:00 AM", "2025-03-06", "05:00 PM", "true", "", "", "false"}, rows[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Subject,Start Date,Start Time,End Date,End Time,All Day Event,Description,Location,Private\n", buf.String())
}
