package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"junitdash/export"
	"junitdash/query"
	"junitdash/testreport"
)

type queryFlags struct {
	search    string
	status    string
	suite     string
	className string
	sortBy    string
	desc      bool
	page      int
	pageSize  int
}

func (q *queryFlags) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&q.search, "search", "", "Case-insensitive substring matched against name, suite and class")
	f.StringVar(&q.status, "status", query.All, "Only show tests with this status")
	f.StringVar(&q.suite, "suite", query.All, "Only show tests of this suite")
	f.StringVar(&q.className, "class", query.All, "Only show tests of this class")
	f.StringVar(&q.sortBy, "sort", string(query.FieldName), "Sort field: name, suite, classname, status or time")
	f.BoolVar(&q.desc, "desc", false, "Sort in descending order")
	f.IntVar(&q.page, "page", 1, "Page to show")
	f.IntVar(&q.pageSize, "page-size", 0, "Rows per page (default from config)")
}

func (q *queryFlags) query(defaultPageSize int) (query.Query, error) {
	field, err := query.ParseField(q.sortBy)
	if err != nil {
		return query.Query{}, err
	}
	dir := query.Ascending
	if q.desc {
		dir = query.Descending
	}
	size := q.pageSize
	if size <= 0 {
		size = defaultPageSize
	}
	return query.Query{
		Filter: query.Filter{
			Search:    q.search,
			Status:    q.status,
			Suite:     q.suite,
			ClassName: q.className,
		},
		Sort:     query.Sort{Field: field, Direction: dir},
		Page:     q.page,
		PageSize: size,
	}, nil
}

type summaryOutput struct {
	Summary      testreport.Summary         `json:"summary"`
	SuccessRate  string                     `json:"successRate"`
	Distribution []query.Segment            `json:"distribution"`
	Suites       []query.SuiteStat          `json:"suites"`
	Timing       query.Timing               `json:"timing"`
	Tests        *query.Page[query.TestRow] `json:"tests,omitempty"`
}

func newSummaryCommand(a *app) *cobra.Command {
	var (
		flags  queryFlags
		tests  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print the totals of a report, optionally followed by its tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.parser.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], testreport.UserMessage(err))
			}

			var page *query.Page[query.TestRow]
			if tests {
				q, err := flags.query(a.cfg.PageSize)
				if err != nil {
					return err
				}
				p := query.Run(query.TestRows(report), q)
				page = &p
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaryOutput{
					Summary:      report.Summary,
					SuccessRate:  query.FormatSuccessRate(report.Summary),
					Distribution: query.Distribution(report.Summary),
					Suites:       query.SuiteStats(report),
					Timing:       query.Timings(report.Records()),
					Tests:        page,
				})
			case "text":
				if err := export.WriteSummary(out, report); err != nil {
					return err
				}
				if page == nil {
					return nil
				}
				return export.WriteTests(out, *page)
			default:
				return fmt.Errorf("unknown output format %q, expected text or json", format)
			}
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&tests, "tests", false, "Also list the tests matching the query flags")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text or json")
	return cmd
}
