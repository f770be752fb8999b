package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tzcal",
		Short: "Time-zone aware calendars with recurring events",
		Long: `tzcal keeps named calendars, each in its own time zone, and serves them
over a JSON API. Events can recur on weekday patterns, be edited one at a
time, from an occurrence onward, or across a whole series, and be moved
between zones.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "tzcal version %s\n" .Version}}`)

	root.AddCommand(newServeCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tzcal version %s\n", version)
		},
	}
}
