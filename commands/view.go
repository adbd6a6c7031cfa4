package commands

import (
	"github.com/spf13/cobra"

	"junitdash/tui"
)

func newViewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Open the interactive dashboard for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(args[0], a.tracker,
				tui.WithPageSize(a.cfg.PageSize),
				tui.WithParser(a.parser))
		},
	}
}
