package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"tzcal/internal/model"
)

const csvTimeLayout = "03:04 PM"

var csvHeader = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"All Day Event", "Description", "Location", "Private",
}

// WriteCSV writes events in the column layout calendar applications accept
// for CSV import, one row per event after a header row.
func WriteCSV(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write(csvRecord(ev)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(ev model.Event) []string {
	return []string{
		ev.Subject,
		ev.Start.Format(model.DateLayout),
		ev.Start.Format(csvTimeLayout),
		ev.End.Format(model.DateLayout),
		ev.End.Format(csvTimeLayout),
		boolString(ev.IsAllDay()),
		ev.Description,
		ev.Location,
		boolString(ev.Status == model.StatusPrivate),
	}
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}
