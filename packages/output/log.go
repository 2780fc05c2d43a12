package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// LogReporter emits every line as a structured logrus entry. The most recent
// header is attached to following entries as the "section" field.
type LogReporter struct {
	logger  logrus.FieldLogger
	section string
}

// NewLogReporter creates a reporter on logger, or on the standard logger when nil.
func NewLogReporter(logger logrus.FieldLogger) *LogReporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogReporter{logger: logger}
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	if w != nil {
		l.SetOutput(w)
	}
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

func (r *LogReporter) entry() *logrus.Entry {
	return r.logger.WithField("section", r.section)
}

func (r *LogReporter) WriteHeader(title string) {
	r.section = title
}

func (r *LogReporter) WriteLine(format string, args ...any) {
	r.entry().Info(fmt.Sprintf(format, args...))
}

func (r *LogReporter) WritePass(name string) {
	r.entry().WithField("check", name).Info("passed")
}

func (r *LogReporter) WriteFail(name string) {
	r.entry().WithField("check", name).Warn("failed")
}

func (r *LogReporter) WriteSummary(passed, failed int, elapsed time.Duration) {
	r.logger.WithFields(logrus.Fields{
		"passed":     passed,
		"failed":     failed,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("run finished")
}

func (r *LogReporter) WriteError(err error) {
	r.logger.WithError(err).Error("run error")
}
