package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TAPReporter streams results in TAP (Test Anything Protocol) format.
// Headers and lines become diagnostics, the plan is written by WriteSummary.
type TAPReporter struct {
	writer    io.Writer
	testCount int
	started   bool
}

func NewTAPReporter(w io.Writer) *TAPReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TAPReporter{writer: w}
}

func (f *TAPReporter) begin() {
	if !f.started {
		fmt.Fprintf(f.writer, "TAP version 13\n")
		f.started = true
	}
}

func (f *TAPReporter) WriteHeader(title string) {
	f.begin()
	fmt.Fprintf(f.writer, "# %s\n", title)
}

func (f *TAPReporter) WriteLine(format string, args ...any) {
	f.begin()
	for _, line := range strings.Split(fmt.Sprintf(format, args...), "\n") {
		fmt.Fprintf(f.writer, "# %s\n", line)
	}
}

func (f *TAPReporter) WritePass(name string) {
	f.begin()
	f.testCount++
	fmt.Fprintf(f.writer, "ok %d - %s\n", f.testCount, name)
}

func (f *TAPReporter) WriteFail(name string) {
	f.begin()
	f.testCount++
	fmt.Fprintf(f.writer, "not ok %d - %s\n", f.testCount, name)
}

func (f *TAPReporter) WriteSummary(passed, failed int, elapsed time.Duration) {
	f.begin()
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)
	fmt.Fprintf(f.writer, "# suites passed %d, failed %d, time %dms\n", passed, failed, elapsed.Milliseconds())
}

func (f *TAPReporter) WriteError(err error) {
	f.begin()
	fmt.Fprintf(f.writer, "Bail out! %s\n", escapeYAML(err.Error()))
}

func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
