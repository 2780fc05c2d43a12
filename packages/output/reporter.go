package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Reporter receives diagnostic and pass/fail lines from a response snapshot.
type Reporter interface {
	WriteHeader(title string)
	WriteLine(format string, args ...any)
	WritePass(name string)
	WriteFail(name string)
}

// RunReporter extends Reporter with the run level events written by the CLI.
type RunReporter interface {
	Reporter
	WriteSummary(passed, failed int, elapsed time.Duration)
	WriteError(err error)
}

// Kind names a reporter implementation.
type Kind string

const (
	KindConsole Kind = "console"
	KindLog     Kind = "log"
	KindTAP     Kind = "tap"
)

// New builds the reporter named by kind writing to w.
func New(kind Kind, w io.Writer, noColor bool) (RunReporter, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindConsole, "":
		return NewConsoleReporter(WithWriter(w), WithNoColor(noColor)), nil
	case KindLog:
		return NewLogReporter(newLogger(w)), nil
	case KindTAP:
		return NewTAPReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown reporter: %s", kind)
	}
}

// JoinValues renders a multi-valued header on one line.
func JoinValues(values []string) string {
	return strings.Join(values, ", ")
}
