package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tzcal/internal/calendar"
	"tzcal/internal/export"
	"tzcal/internal/ics"
	appLog "tzcal/internal/log"
	"tzcal/internal/model"
)

type convertOptions struct {
	in     string
	from   string
	to     string
	format string
	name   string
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Re-base an iCalendar file into another time zone",
		Long: `convert imports an iCalendar file into a calendar in the --from zone,
moves the calendar to the --to zone and writes it to stdout as iCalendar
or CSV. A recurring series that would span two dates in the target zone
fails the conversion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "-", "iCalendar file to read (- for stdin)")
	cmd.Flags().StringVar(&opts.from, "from", "UTC", "Zone the imported events are placed in")
	cmd.Flags().StringVar(&opts.to, "to", "UTC", "Zone to convert to")
	cmd.Flags().StringVar(&opts.format, "format", "ics", "Output format: ics or csv")
	cmd.Flags().StringVar(&opts.name, "name", "converted", "Calendar name written to the output")
	return cmd
}

func runConvert(stdin io.Reader, out io.Writer, opts convertOptions) error {
	from, err := loadZone(opts.from)
	if err != nil {
		return err
	}
	to, err := loadZone(opts.to)
	if err != nil {
		return err
	}

	r := stdin
	if opts.in != "" && opts.in != "-" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	imp, err := ics.Parse(r, ics.ImportConfig{Zone: from})
	if err != nil {
		return err
	}
	src := calendar.New(opts.name, from)
	added, skipped, err := imp.AddTo(src)
	if err != nil {
		return err
	}
	dst, err := src.AdjustedTimeZone(to)
	if err != nil {
		return err
	}
	appLog.Info("convert completed", "from", from.String(), "to", to.String(),
		"added", added, "skipped", skipped, "truncated", len(imp.Truncated))

	switch strings.ToLower(opts.format) {
	case "ics":
		return ics.Export(out, ics.ExportOptions{Name: dst.Name(), Zone: dst.Zone()}, dst.Events())
	case "csv":
		return export.WriteCSV(out, dst.Events())
	default:
		return fmt.Errorf("%w: unsupported format %q, expected ics or csv", model.ErrParse, opts.format)
	}
}

func loadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", model.ErrParse, name)
	}
	return loc, nil
}
