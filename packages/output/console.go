package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// ConsoleReporter writes colored, human-readable lines.
type ConsoleReporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
}

// ConsoleOption configures a ConsoleReporter
type ConsoleOption func(*ConsoleReporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ConsoleOption {
	return func(r *ConsoleReporter) {
		if w != nil {
			r.writer = w
		}
	}
}

// WithNoColor disables colored output
func WithNoColor(nc bool) ConsoleOption {
	return func(r *ConsoleReporter) {
		r.noColor = nc
	}
}

func NewConsoleReporter(opts ...ConsoleOption) *ConsoleReporter {
	r := &ConsoleReporter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	if r.noColor {
		for _, c := range []*color.Color{r.green, r.red, r.cyan, r.bold} {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) WriteHeader(title string) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "%s\n", title)
}

func (r *ConsoleReporter) WriteLine(format string, args ...any) {
	fmt.Fprintf(r.writer, "  "+format+"\n", args...)
}

func (r *ConsoleReporter) WritePass(name string) {
	fmt.Fprintf(r.writer, "  %s %s\n", r.green.Sprint("✓"), name)
}

func (r *ConsoleReporter) WriteFail(name string) {
	fmt.Fprintf(r.writer, "  %s %s\n", r.red.Sprint("✗"), name)
}

func (r *ConsoleReporter) WriteSummary(passed, failed int, elapsed time.Duration) {
	fmt.Fprintf(r.writer, "\n")
	fmt.Fprintf(r.writer, "Suites: ")
	if passed > 0 {
		fmt.Fprintf(r.writer, "%s, ", r.green.Sprintf("%d passed", passed))
	}
	if failed > 0 {
		fmt.Fprintf(r.writer, "%s, ", r.red.Sprintf("%d failed", failed))
	}
	fmt.Fprintf(r.writer, "%d total\n", passed+failed)
	fmt.Fprintf(r.writer, "Time:   %s\n", r.cyan.Sprintf("%dms", elapsed.Milliseconds()))
}

func (r *ConsoleReporter) WriteError(err error) {
	fmt.Fprintf(r.writer, "%s %v\n", r.red.Sprint("Error:"), err)
}
