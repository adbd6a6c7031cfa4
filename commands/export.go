package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"junitdash/export"
)

type exportFlags struct {
	output   string
	title    string
	author   string
	project  string
	sections []string
	open     bool
}

func newExportCommand(a *app) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Render a report as a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.loadReport(args[0])
			if err != nil {
				return err
			}

			opts := a.cfg.Export.Options
			if cmd.Flags().Changed("title") {
				opts.Title = flags.title
			}
			if cmd.Flags().Changed("author") {
				opts.Author = flags.author
			}
			if cmd.Flags().Changed("project") {
				opts.Project = flags.project
			}
			if cmd.Flags().Changed("sections") {
				if opts.Sections, err = export.ParseSections(flags.sections); err != nil {
					return err
				}
			}

			errOut := cmd.ErrOrStderr()
			exporter := export.NewExporter(a.renderer)
			pdf, err := exporter.Export(cmd.Context(), export.Input{
				Report:   report,
				Failures: a.tracker.Rows(report),
				Progress: a.tracker.Summary(),
			}, opts, func(percent int) {
				fmt.Fprintf(errOut, "Exporting... %d%%\n", percent)
			})
			if err != nil {
				return err
			}

			if err := a.files.WriteFile(flags.output, pdf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", flags.output, len(pdf))
			if flags.open {
				return a.files.Open(flags.output)
			}
			return nil
		},
	}

	flags.AddFlags(cmd.Flags())
	return cmd
}

func (o *exportFlags) AddFlags(f *pflag.FlagSet) {
	f.StringVarP(&o.output, "output", "o", "report.pdf", "Path of the PDF to write")
	f.StringVar(&o.title, "title", "", "Document title (default from config)")
	f.StringVar(&o.author, "author", "", "Author shown on the cover")
	f.StringVar(&o.project, "project", "", "Project shown on the cover")
	f.StringSliceVar(&o.sections, "sections", nil, "Sections to include: "+strings.Join(export.SectionNames, ", "))
	f.BoolVar(&o.open, "open", false, "Open the PDF after writing it")
}
