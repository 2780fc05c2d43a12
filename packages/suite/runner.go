package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/hitcheck/packages/http"
	"github.com/abdul-hamid-achik/hitcheck/packages/load"
	"github.com/abdul-hamid-achik/hitcheck/packages/output"
	"github.com/abdul-hamid-achik/hitcheck/packages/response"
	"github.com/abdul-hamid-achik/hitcheck/packages/rules"
)

// ErrRequestFailed marks a suite that never got a response to check.
var ErrRequestFailed = errors.New("request failed")

const statusRule = "status"

type Runner struct {
	client   *http.Client
	reporter output.Reporter
	verbose  bool
	strict   bool
}

type Option func(*Runner)

func WithClient(c *http.Client) Option {
	return func(r *Runner) {
		if c != nil {
			r.client = c
		}
	}
}

func WithReporter(rep output.Reporter) Option {
	return func(r *Runner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithVerbose dumps the full response after the assertions.
func WithVerbose(v bool) Option {
	return func(r *Runner) {
		r.verbose = v
	}
}

// WithStrict makes every suite assert strictly, as if it set strict itself.
func WithStrict(s bool) Option {
	return func(r *Runner) {
		r.strict = s
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.NewClient()
	}
	if r.reporter == nil {
		r.reporter = output.NewConsoleReporter()
	}
	return r
}

type Result struct {
	Name     string
	Passed   bool
	Failures []string
	Snapshot *response.Snapshot
	Duration time.Duration
	// Err is set when the suite could not be checked.
	Err error
}

// Run sends the suite request, drives the load run and checks the response.
// Failed checks are reported in the result; the error is reserved for suites
// that could not be checked at all.
func (r *Runner) Run(ctx context.Context, s *Suite) (*Result, error) {
	start := time.Now()
	result := &Result{Name: s.Name}

	req := http.NewRequest(s.Request.Method, s.Request.URL).SetBody(s.Request.Body)
	for k, v := range s.Request.Query {
		req.SetQueryParam(k, v)
	}
	for k, v := range s.Request.Headers {
		req.SetHeader(k, v)
	}
	if a := s.Request.Auth; a != nil {
		switch {
		case a.Basic != nil:
			req.SetBasicAuth(a.Basic.Username, a.Basic.Password)
		case a.Bearer != "":
			req.SetBearerToken(a.Bearer)
		}
	}
	if s.Request.Timeout > 0 {
		req.SetTimeout(s.Request.Timeout)
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("(%s) %w: %w", s.Name, ErrRequestFailed, err)
	}

	var calls []load.Call
	if s.Load != nil && s.Load.Calls > 0 {
		calls, err = r.client.Load(ctx, req, s.Load)
		if err != nil {
			return nil, fmt.Errorf("(%s) load: %w", s.Name, err)
		}
	}

	opts := []response.Option{response.WithReporter(r.reporter)}
	if r.strict || s.Strict {
		opts = append(opts, response.WithStrictAssert())
	}
	snap, err := resp.Snapshot(calls, opts...)
	if err != nil {
		return nil, fmt.Errorf("(%s) %w", s.Name, err)
	}
	result.Snapshot = snap

	if s.Status != 0 {
		want := s.Status
		snap.Test(statusRule, func(response.Value) (bool, error) {
			return snap.StatusCode() == want, nil
		})
	}
	if err := rules.Apply(snap, s.Rules); err != nil {
		return nil, fmt.Errorf("(%s) %w", s.Name, err)
	}
	if s.HasSchema() {
		snap.Schema(s.schemaText)
	}
	if err := snap.Err(); err != nil {
		return nil, fmt.Errorf("(%s) %w", s.Name, err)
	}

	r.reporter.WriteHeader(s.Name)
	snap.WriteAssertions()
	if r.verbose {
		snap.Debug()
	}

	for _, rr := range snap.Results() {
		if !rr.Passed {
			result.Failures = append(result.Failures, rr.Name)
		}
	}
	if s.HasSchema() && snap.AssertSchema() != nil {
		result.Failures = append(result.Failures, response.SchemaRule)
	}

	result.Passed = len(result.Failures) == 0
	result.Duration = time.Since(start)
	return result, nil
}

// RunAll runs suites in order and stops early only when ctx is done. A suite
// that cannot be checked is reported and counted as failed.
func (r *Runner) RunAll(ctx context.Context, suites []*Suite) ([]*Result, error) {
	var results []*Result
	for _, s := range suites {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := r.Run(ctx, s)
		if err != nil {
			if rr, ok := r.reporter.(output.RunReporter); ok {
				rr.WriteError(err)
			}
			res = &Result{Name: s.Name, Failures: []string{err.Error()}, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}
