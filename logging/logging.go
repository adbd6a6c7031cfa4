package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger. If w is nil, os.Stderr is
// used. Format must be "text" or "json".
func Init(level, format string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("cannot parse log-level: %w", err)
	}

	logrus.SetOutput(w)
	logrus.SetLevel(lvl)

	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		// millisecond precision in timestamps
		formatter := new(logrus.TextFormatter)
		formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
		formatter.FullTimestamp = true
		logrus.SetFormatter(formatter)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// New returns an entry with a "component" field for package-scoped logging
func New(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
