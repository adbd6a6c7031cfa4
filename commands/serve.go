package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"junitdash/export"
	"junitdash/logging"
	"junitdash/server"
	"junitdash/testreport"
)

func newServeCommand(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Serve the dashboard API, optionally preloaded with a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Server.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			srv := server.New(a.tracker,
				server.WithLogger(logging.New("server")),
				server.WithPageSize(a.cfg.PageSize),
				server.WithParser(a.parser),
				server.WithExporter(export.NewExporter(a.renderer), a.cfg.Export.Options),
			)
			if len(args) == 1 {
				report, err := a.parser.ParseFile(args[0])
				if err != nil {
					return fmt.Errorf("%s: %s", args[0], testreport.UserMessage(err))
				}
				if err := srv.LoadReport(report); err != nil {
					return err
				}
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	return cmd
}
