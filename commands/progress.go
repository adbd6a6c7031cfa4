package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"junitdash/export"
	"junitdash/progress"
	"junitdash/testreport"
)

func newProgressCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect and update the resolution progress of failing tests",
	}
	cmd.AddCommand(newProgressListCommand(a))
	cmd.AddCommand(newProgressMarkCommand(a))
	cmd.AddCommand(newProgressBulkCommand(a))
	cmd.AddCommand(newProgressResetCommand(a))
	return cmd
}

// loadProgress prepares the tracker for FILE, or only loads the stored map
// when no report is given
func (a *app) loadProgress(args []string) (*testreport.Report, error) {
	if len(args) == 0 {
		return nil, a.tracker.InitializeIfAbsent(&testreport.Report{})
	}
	return a.loadReport(args[0])
}

func newProgressListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [FILE]",
		Short: "List tracked failures, joined with the failing tests of FILE when given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.loadProgress(args)
			if err != nil {
				return err
			}
			var rows []progress.Row
			if report != nil {
				rows = a.tracker.Rows(report)
			} else {
				for _, item := range a.tracker.Items() {
					rows = append(rows, progress.Row{Progress: item, Tracked: true})
				}
			}
			return export.WriteProgress(cmd.OutOrStdout(), rows, a.tracker.Summary())
		},
	}
}

func newProgressMarkCommand(a *app) *cobra.Command {
	var (
		file     string
		notes    string
		assignee string
	)
	cmd := &cobra.Command{
		Use:   "mark ID STATUS",
		Short: "Set the status of one failure, keeping notes and assignee unless given",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := progress.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if _, err := a.loadProgress(fileArgs(file)); err != nil {
				return err
			}

			var opts []progress.UpdateOption
			if cmd.Flags().Changed("notes") {
				opts = append(opts, progress.WithNotes(notes))
			}
			if cmd.Flags().Changed("assignee") {
				opts = append(opts, progress.WithAssignee(assignee))
			}
			if err := a.tracker.UpdateStatus(args[0], status, opts...); err != nil {
				return err
			}
			if err := a.syncError(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as %s\n", args[0], status)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "Report used to create the progress map when none is stored")
	f.StringVar(&notes, "notes", "", "Replace the notes")
	f.StringVar(&assignee, "assignee", "", "Replace the assignee")
	return cmd
}

func newProgressBulkCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "bulk STATUS ID...",
		Short: "Set the status of several failures; unknown ids are skipped",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := progress.ParseStatus(args[0])
			if err != nil {
				return err
			}
			if _, err := a.loadProgress(fileArgs(file)); err != nil {
				return err
			}

			sel := progress.NewSelection()
			sel.Select(args[1:]...)
			requested := sel.Len()
			updated, err := a.tracker.BulkUpdateSelection(sel, status)
			if err != nil {
				return err
			}
			if err := a.syncError(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d of %d as %s\n", updated, requested, status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Report used to create the progress map when none is stored")
	return cmd
}

func newProgressResetCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored failure progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "Delete all stored failure progress? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}
			if err := a.tracker.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Failure progress cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func fileArgs(file string) []string {
	if file == "" {
		return nil
	}
	return []string{file}
}
