package response

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitcheck/packages/load"
	"github.com/abdul-hamid-achik/hitcheck/packages/output"
	"github.com/abdul-hamid-achik/hitcheck/packages/schema"
)

// Capture is the response data handed over by whoever performed the call.
type Capture struct {
	StatusCode      int
	ContentType     string
	ContentEncoding string
	ContentLength   int64 // -1 when unknown
	Body            string
	Headers         map[string][]string
	Load            []load.Call
}

// Predicate checks the parsed body. Returning an error, or panicking, counts
// as a failed check.
type Predicate func(body Value) (bool, error)

// SchemaState tracks whether a schema check has run and how it ended.
type SchemaState int

const (
	SchemaUnchecked SchemaState = iota
	SchemaValid
	SchemaInvalid
)

func (s SchemaState) String() string {
	switch s {
	case SchemaValid:
		return "valid"
	case SchemaInvalid:
		return "invalid"
	default:
		return "unchecked"
	}
}

// RuleResult is the recorded outcome of one rule.
type RuleResult struct {
	Name   string
	Passed bool
}

// Snapshot is one captured response plus the rule and schema outcomes
// recorded against it. It is not safe for concurrent use.
type Snapshot struct {
	capture Capture
	body    Value

	rules []RuleResult
	index map[string]int

	schemaState  SchemaState
	schemaErrors []string

	reporter output.Reporter
	strict   bool
	err      error
}

// Option is a functional option for configuring a Snapshot.
type Option func(*Snapshot)

// WithReporter sets where Debug and WriteAssertions write to.
func WithReporter(r output.Reporter) Option {
	return func(s *Snapshot) {
		s.reporter = r
	}
}

// WithStrictAssert makes Assert fail for names that were never registered.
func WithStrictAssert() Option {
	return func(s *Snapshot) {
		s.strict = true
	}
}

// New parses the captured body and returns a Snapshot. Only content types
// containing "json" are accepted.
func New(c Capture, opts ...Option) (*Snapshot, error) {
	if !strings.Contains(c.ContentType, "json") {
		return nil, fmt.Errorf("(%s) %w", c.ContentType, ErrUnsupportedContentType)
	}

	body, err := Parse(c.Body)
	if err != nil {
		return nil, err
	}

	if c.Load == nil {
		c.Load = []load.Call{}
	}

	s := &Snapshot{
		capture: c,
		body:    body,
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = output.NewConsoleReporter()
	}
	return s, nil
}

func (s *Snapshot) StatusCode() int         { return s.capture.StatusCode }
func (s *Snapshot) ContentType() string     { return s.capture.ContentType }
func (s *Snapshot) ContentEncoding() string { return s.capture.ContentEncoding }
func (s *Snapshot) ContentLength() int64    { return s.capture.ContentLength }
func (s *Snapshot) Content() string         { return s.capture.Body }
func (s *Snapshot) Body() Value             { return s.body }
func (s *Snapshot) Load() []load.Call       { return s.capture.Load }

// Header returns the values of a header, matching the name case-insensitively.
func (s *Snapshot) Header(name string) []string {
	for k, v := range s.capture.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// Test evaluates predicate once and records the outcome under name. A
// registration error is kept and reported by Err.
func (s *Snapshot) Test(name string, predicate Predicate) *Snapshot {
	s.record(s.AddRule(name, predicate))
	return s
}

// AddRule is Test without chaining: it returns ErrDuplicateRule when name is
// taken, leaving the recorded outcomes untouched.
func (s *Snapshot) AddRule(name string, predicate Predicate) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("(%s) %w", name, ErrDuplicateRule)
	}

	s.index[name] = len(s.rules)
	s.rules = append(s.rules, RuleResult{Name: name, Passed: evaluate(predicate, s.body)})
	return nil
}

func evaluate(predicate Predicate, body Value) (passed bool) {
	defer func() {
		if recover() != nil {
			passed = false
		}
	}()
	ok, err := predicate(body)
	return err == nil && ok
}

// Schema validates the body against schemaText. A schema that cannot be
// parsed is kept as an error and reported by Err.
func (s *Snapshot) Schema(schemaText string) *Snapshot {
	s.record(s.CheckSchema(schemaText))
	return s
}

// CheckSchema is Schema without chaining. It returns ErrInvalidSchema when the
// schema cannot be parsed, leaving the previous schema state untouched. A
// body that does not conform is not an error; see AssertSchema.
//
// The raw body is parsed again here, independently of the parse done by New.
func (s *Snapshot) CheckSchema(schemaText string) error {
	sch, err := schema.Parse(schemaText)
	if err != nil {
		return err
	}

	res := sch.Validate(s.capture.Body)
	if res.Valid {
		s.schemaState = SchemaValid
	} else {
		s.schemaState = SchemaInvalid
	}
	s.schemaErrors = res.Errors
	return nil
}

func (s *Snapshot) record(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded by Test or Schema.
func (s *Snapshot) Err() error {
	return s.err
}

// Assert fails when name was recorded as failed. An unregistered name
// passes unless the snapshot was built WithStrictAssert.
func (s *Snapshot) Assert(name string) error {
	i, ok := s.index[name]
	if !ok {
		if s.strict {
			return fmt.Errorf("(%s) %w", name, ErrUnknownRule)
		}
		return nil
	}
	if !s.rules[i].Passed {
		return &AssertionError{Rule: name}
	}
	return nil
}

// AssertAll fails on the first failed rule in registration order.
func (s *Snapshot) AssertAll() error {
	for _, r := range s.rules {
		if !r.Passed {
			return &AssertionError{Rule: r.Name}
		}
	}
	return nil
}

// AssertSchema fails unless the last schema check passed. Calling it before
// any schema check fails.
func (s *Snapshot) AssertSchema() error {
	if s.schemaState != SchemaValid {
		return &AssertionError{Rule: SchemaRule}
	}
	return nil
}

// Results returns the rule outcomes in registration order.
func (s *Snapshot) Results() []RuleResult {
	out := make([]RuleResult, len(s.rules))
	copy(out, s.rules)
	return out
}

// Passed looks up the outcome of one rule.
func (s *Snapshot) Passed(name string) (passed, ok bool) {
	i, ok := s.index[name]
	if !ok {
		return false, false
	}
	return s.rules[i].Passed, true
}

func (s *Snapshot) SchemaState() SchemaState { return s.schemaState }

// SchemaErrors returns the violations found by the last schema check.
func (s *Snapshot) SchemaErrors() []string {
	out := make([]string, len(s.schemaErrors))
	copy(out, s.schemaErrors)
	return out
}
