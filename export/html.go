package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
)

type document struct {
	Title       string
	Author      string
	Project     string
	GeneratedAt string
	Sections    Sections

	Summary      testreport.Summary
	SuccessRate  string
	Duration     string
	Distribution []query.Segment
	Suites       []query.SuiteStat
	Slowest      []testreport.Record
	Failed       []progress.Row
	Tests        []testreport.Record
	Progress     progress.Summary
	Completion   string
}

func newDocument(in Input, opts Options, now time.Time) document {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	records := in.Report.Records()
	return document{
		Title:        title,
		Author:       opts.Author,
		Project:      opts.Project,
		GeneratedAt:  now.UTC().Format("2006-01-02 15:04 MST"),
		Sections:     opts.Sections,
		Summary:      in.Report.Summary,
		SuccessRate:  query.FormatSuccessRate(in.Report.Summary),
		Duration:     query.FormatDuration(in.Report.Summary.Time),
		Distribution: query.Distribution(in.Report.Summary),
		Suites:       query.SuiteStats(in.Report),
		Slowest:      query.Slowest(records, 10),
		Failed:       in.Failures,
		Tests:        records,
		Progress:     in.Progress,
		Completion:   formatPercent(in.Progress.PercentComplete()),
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

var funcs = template.FuncMap{
	"duration": query.FormatDuration,
}

var reportTemplate = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2933; margin: 32px; }
h1 { margin-bottom: 4px; }
.meta { color: #616e7c; margin-bottom: 24px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; font-size: 12px; }
th, td { border: 1px solid #cbd2d9; padding: 4px 6px; text-align: left; vertical-align: top; }
th { background: #f5f7fa; }
.passed { color: #2f855a; } .failed { color: #c53030; } .skipped { color: #b7791f; }
.bar { display: flex; height: 18px; margin-bottom: 24px; }
.bar div { color: #fff; font-size: 11px; text-align: center; }
.bar .passed { background: #2f855a; } .bar .failed { background: #c53030; } .bar .skipped { background: #b7791f; }
pre { white-space: pre-wrap; margin: 0; font-size: 11px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
{{- if .Project}}Project: {{.Project}} · {{end -}}
{{- if .Author}}Author: {{.Author}} · {{end -}}
Generated {{.GeneratedAt}}
</div>
{{if .Sections.ExecutiveSummary}}
<h2>Executive summary</h2>
<p>{{.Summary.Total}} tests ran in {{.Duration}}: {{.Summary.Passed}} passed, {{.Summary.Failed}} failed and {{.Summary.Skipped}} were skipped. Success rate: <strong>{{.SuccessRate}}</strong>.</p>
<div class="bar">
{{- range .Distribution}}{{if gt .Count 0}}<div class="{{.Status}}" style="width: {{printf "%.2f" .Share}}%">{{if .ShowLabel}}{{.Label}}{{end}}</div>{{end}}{{end -}}
</div>
{{end}}
{{if .Sections.Metrics}}
<h2>Metrics</h2>
<table>
<tr><th>Suite</th><th>Tests</th><th>Passed</th><th>Failed</th><th>Skipped</th><th>Time</th><th>Success rate</th></tr>
{{range .Suites}}<tr><td>{{.Name}}</td><td>{{.Total}}</td><td>{{.Passed}}</td><td>{{.Failed}}</td><td>{{.Skipped}}</td><td>{{duration .Time}}</td><td>{{.Rate}}</td></tr>
{{end}}</table>
{{if .Slowest}}
<h3>Slowest tests</h3>
<table>
<tr><th>Test</th><th>Suite</th><th>Time</th></tr>
{{range .Slowest}}<tr><td>{{.Name}}</td><td>{{.Suite}}</td><td>{{duration .Time}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
{{if .Sections.FailedTests}}
<h2>Failed tests</h2>
{{if .Failed}}<table>
<tr><th>Test</th><th>Suite</th><th>Error</th></tr>
{{range .Failed}}<tr><td>{{.Name}}</td><td>{{.Suite}}</td><td><pre>{{.Message}}</pre></td></tr>
{{end}}</table>{{else}}<p>No failed tests.</p>{{end}}
{{end}}
{{if .Sections.AllTests}}
<h2>All tests</h2>
<table>
<tr><th>Test</th><th>Suite</th><th>Class</th><th>Status</th><th>Time</th></tr>
{{range .Tests}}<tr><td>{{.Name}}</td><td>{{.Suite}}</td><td>{{.ClassName}}</td><td class="{{.Status}}">{{.Status}}</td><td>{{duration .Time}}</td></tr>
{{end}}</table>
{{end}}
{{if .Sections.ResolutionProgress}}
<h2>Resolution progress</h2>
<p>{{.Progress.Completed}} of {{.Progress.Total}} tracked failures resolved ({{.Completion}}), {{.Progress.InProgress}} in progress, {{.Progress.Pending}} pending.</p>
{{if .Failed}}<table>
<tr><th>Test</th><th>Suite</th><th>Status</th><th>Assignee</th><th>Notes</th><th>Updated</th></tr>
{{range .Failed}}<tr><td>{{.Name}}</td><td>{{.Suite}}</td><td>{{.Progress.Status}}</td><td>{{.Progress.Assignee}}</td><td>{{.Progress.Notes}}</td><td>{{.Progress.UpdatedAt}}</td></tr>
{{end}}</table>{{end}}
{{end}}
</body>
</html>
`))

func renderHTML(doc document) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
