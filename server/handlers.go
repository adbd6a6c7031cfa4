package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"junitdash/export"
	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
)

var errNoReport = errors.New("no report loaded")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(l *logrus.Entry, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.WithError(err).Warn("Failed to write response")
	}
}

func writeError(l *logrus.Entry, w http.ResponseWriter, code int, msg string) {
	writeJSON(l, w, code, errorResponse{Error: msg})
}

func (s *Server) healthHandler(l *logrus.Entry, w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(l, w, http.StatusOK, map[string]string{"status": "ok"})
}

// SummaryResponse is the body of GET /api/report/summary
type SummaryResponse struct {
	Summary      testreport.Summary  `json:"summary"`
	SuccessRate  string              `json:"successRate"`
	Distribution []query.Segment     `json:"distribution"`
	Suites       []query.SuiteStat   `json:"suites"`
	Options      query.FilterOptions `json:"options"`
	Progress     progress.Summary    `json:"progress"`
	Persisted    bool                `json:"persisted"`
}

func (s *Server) summaryLocked() SummaryResponse {
	return SummaryResponse{
		Summary:      s.report.Summary,
		SuccessRate:  query.FormatSuccessRate(s.report.Summary),
		Distribution: query.Distribution(s.report.Summary),
		Suites:       query.SuiteStats(s.report),
		Options:      query.Options(s.report.Records()),
		Progress:     s.tracker.Summary(),
		Persisted:    !s.tracker.Dirty(),
	}
}

func (s *Server) uploadReportHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	report, err := s.parser.Parse(body)
	if err != nil {
		s.metrics.parseFailures.Inc()
		l.WithError(err).Info("Rejected report upload")
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		writeError(l, w, code, testreport.UserMessage(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(report); err != nil {
		l.WithError(err).Error("Failed to initialize failure progress")
		writeError(l, w, http.StatusInternalServerError, err.Error())
		return
	}
	l.WithFields(logrus.Fields{"suites": len(report.Suites), "tests": report.Summary.Total}).Info("Loaded report")
	writeJSON(l, w, http.StatusOK, s.summaryLocked())
}

func (s *Server) summaryHandler(l *logrus.Entry, w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		writeError(l, w, http.StatusNotFound, errNoReport.Error())
		return
	}
	writeJSON(l, w, http.StatusOK, s.summaryLocked())
}

// parseQuery reads filter, sort and page parameters
func (s *Server) parseQuery(r *http.Request) (query.Query, error) {
	v := r.URL.Query()
	q := query.Query{
		Filter: query.Filter{
			Search:    v.Get("search"),
			Status:    v.Get("status"),
			Suite:     v.Get("suite"),
			ClassName: v.Get("classname"),
		},
		Sort:     query.DefaultSort,
		Page:     1,
		PageSize: s.pageSize,
	}
	if raw := v.Get("sort"); raw != "" {
		field, err := query.ParseField(raw)
		if err != nil {
			return q, err
		}
		q.Sort.Field = field
	}
	dir, err := query.ParseDirection(v.Get("dir"))
	if err != nil {
		return q, err
	}
	q.Sort.Direction = dir
	if raw := v.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", raw)
		}
		q.Page = page
	}
	if raw := v.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid pageSize %q", raw)
		}
		q.PageSize = size
	}
	return q, nil
}

func (s *Server) testsHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(l, w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		writeError(l, w, http.StatusNotFound, errNoReport.Error())
		return
	}
	writeJSON(l, w, http.StatusOK, query.Run(query.TestRows(s.report), q))
}

func (s *Server) failuresHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(l, w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		writeError(l, w, http.StatusNotFound, errNoReport.Error())
		return
	}
	writeJSON(l, w, http.StatusOK, query.Run(query.FailureRows(s.tracker.Rows(s.report)), q))
}

type updateRequest struct {
	Status   progress.Status `json:"status"`
	Notes    *string         `json:"notes"`
	Assignee *string         `json:"assignee"`
}

// ItemResponse is returned after a single update
type ItemResponse struct {
	Item      progress.Item `json:"item"`
	Persisted bool          `json:"persisted"`
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func progressErrorCode(err error) int {
	switch {
	case errors.Is(err, progress.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, progress.ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) updateFailureHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := strings.TrimPrefix(p.ByName("id"), "/")
	var req updateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(l, w, http.StatusBadRequest, err.Error())
		return
	}
	var opts []progress.UpdateOption
	if req.Notes != nil {
		opts = append(opts, progress.WithNotes(*req.Notes))
	}
	if req.Assignee != nil {
		opts = append(opts, progress.WithAssignee(*req.Assignee))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.UpdateStatus(id, req.Status, opts...); err != nil {
		writeError(l, w, progressErrorCode(err), err.Error())
		return
	}
	s.metrics.progressUpdates.WithLabelValues(string(req.Status)).Inc()
	s.observeStorage()
	item, _ := s.tracker.Item(id)
	writeJSON(l, w, http.StatusOK, ItemResponse{Item: item, Persisted: !s.tracker.Dirty()})
}

type bulkRequest struct {
	IDs    []string        `json:"ids"`
	Status progress.Status `json:"status"`
}

// BulkResponse is returned after a bulk update
type BulkResponse struct {
	Updated   int  `json:"updated"`
	Persisted bool `json:"persisted"`
}

func (s *Server) bulkUpdateHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bulkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(l, w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.tracker.BulkUpdateStatus(req.IDs, req.Status)
	if err != nil {
		writeError(l, w, progressErrorCode(err), err.Error())
		return
	}
	s.metrics.progressUpdates.WithLabelValues(string(req.Status)).Add(float64(updated))
	s.observeStorage()
	writeJSON(l, w, http.StatusOK, BulkResponse{Updated: updated, Persisted: !s.tracker.Dirty()})
}

func (s *Server) clearProgressHandler(l *logrus.Entry, w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.ClearAll(); err != nil {
		writeError(l, w, http.StatusInternalServerError, err.Error())
		return
	}
	s.observeStorage()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportHandler(l *logrus.Entry, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.exporter == nil {
		writeError(l, w, http.StatusNotImplemented, "export is not configured")
		return
	}
	opts := s.exportOpts
	if r.ContentLength != 0 {
		if err := decodeBody(r, &opts); err != nil {
			writeError(l, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.mu.Lock()
	if s.report == nil {
		s.mu.Unlock()
		writeError(l, w, http.StatusNotFound, errNoReport.Error())
		return
	}
	in := export.Input{
		Report:   s.report,
		Failures: s.tracker.Rows(s.report),
		Progress: s.tracker.Summary(),
	}
	s.mu.Unlock()

	pdf, err := s.exporter.Export(r.Context(), in, opts, nil)
	if err != nil {
		s.metrics.exports.WithLabelValues("error").Inc()
		writeError(l, w, http.StatusBadGateway, err.Error())
		return
	}
	s.metrics.exports.WithLabelValues("success").Inc()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="test-report.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		l.WithError(err).Warn("Failed to write export")
	}
}

func (s *Server) exportStatusHandler(l *logrus.Entry, w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if s.exporter == nil {
		writeError(l, w, http.StatusNotImplemented, "export is not configured")
		return
	}
	writeJSON(l, w, http.StatusOK, s.exporter.Status())
}
