package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

type statusCodeCapturingResponseWriter struct {
	http.ResponseWriter
	wroteHeader bool
	statusCode  int
}

func (l *statusCodeCapturingResponseWriter) Write(p []byte) (n int, err error) {
	l.wroteHeader = true
	return l.ResponseWriter.Write(p)
}

func (l *statusCodeCapturingResponseWriter) WriteHeader(code int) {
	if !l.wroteHeader {
		l.statusCode = code
		l.wroteHeader = true
	}
	l.ResponseWriter.WriteHeader(code)
}

type loggedHandle func(*logrus.Entry, http.ResponseWriter, *http.Request, httprouter.Params)

func (s *Server) loggingWrapper(upstream loggedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		l, w, f := s.logFor(r, w)
		defer f()
		upstream(l, w, r, p)
	}
}

func (s *Server) logFor(r *http.Request, w http.ResponseWriter) (l *logrus.Entry, _ http.ResponseWriter, toDefer func()) {
	l = s.log.WithFields(logrus.Fields{"request": uuid.NewString(), "path": r.URL.Path, "method": r.Method})
	loggingWriter := &statusCodeCapturingResponseWriter{w, false, http.StatusOK}
	start := time.Now()
	return l, loggingWriter, func() {
		l = l.WithFields(logrus.Fields{
			"status":   loggingWriter.statusCode,
			"duration": time.Since(start).String(),
		})
		logFunc := l.Debug
		if loggingWriter.statusCode > 499 {
			logFunc = l.Error
		}
		logFunc("responded")
	}
}

// instrumentedRouter records the duration of every routed request
type instrumentedRouter struct {
	*httprouter.Router
	metrics *metrics
}

func (ir *instrumentedRouter) wrap(method, path string, handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		capturingWriter := &statusCodeCapturingResponseWriter{w, false, http.StatusOK}
		start := time.Now()
		handler(capturingWriter, r, p)
		ir.metrics.requestDuration.WithLabelValues(method, path, strconv.Itoa(capturingWriter.statusCode)).Observe(time.Since(start).Seconds())
	}
}

func (ir *instrumentedRouter) GET(path string, handle httprouter.Handle) {
	ir.Router.GET(path, ir.wrap(http.MethodGet, path, handle))
}

func (ir *instrumentedRouter) POST(path string, handle httprouter.Handle) {
	ir.Router.POST(path, ir.wrap(http.MethodPost, path, handle))
}

func (ir *instrumentedRouter) PUT(path string, handle httprouter.Handle) {
	ir.Router.PUT(path, ir.wrap(http.MethodPut, path, handle))
}

func (ir *instrumentedRouter) DELETE(path string, handle httprouter.Handle) {
	ir.Router.DELETE(path, ir.wrap(http.MethodDelete, path, handle))
}
