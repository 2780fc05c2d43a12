package response

import (
	"sort"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/hitcheck/packages/load"
	"github.com/abdul-hamid-achik/hitcheck/packages/output"
)

const noData = "no data"

// Debug writes everything known about the response to the reporter.
func (s *Snapshot) Debug() *Snapshot {
	r := s.reporter

	r.WriteHeader("status code")
	r.WriteLine("%d", s.capture.StatusCode)

	r.WriteHeader("content type")
	r.WriteLine("%s", s.capture.ContentType)

	r.WriteHeader("content length")
	r.WriteLine("%d", s.capture.ContentLength)

	r.WriteHeader("content encoding")
	r.WriteLine("%s", s.capture.ContentEncoding)

	r.WriteHeader("response headers")
	names := make([]string, 0, len(s.capture.Headers))
	for name := range s.capture.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.WriteLine("%s : %s", name, output.JoinValues(s.capture.Headers[name]))
	}

	r.WriteHeader("content")
	r.WriteLine("%s", s.capture.Body)

	r.WriteHeader("assertions")
	for _, rule := range s.rules {
		r.WriteLine("%s : %t", rule.Name, rule.Passed)
	}

	r.WriteHeader("schema errors")
	for _, msg := range s.schemaErrors {
		r.WriteLine("%s", msg)
	}

	s.writeLoad(load.Summarize(s.capture.Load))
	return s
}

func (s *Snapshot) writeLoad(sum load.Summary) {
	r := s.reporter

	r.WriteHeader("load test result")
	r.WriteLine("%d total call", sum.Total)
	r.WriteLine("%d total succeeded", sum.Succeeded)
	r.WriteLine("%d total lost", sum.Lost)

	if !sum.HasLatency {
		r.WriteLine("%s average ttl ms", noData)
		r.WriteLine("%s max ttl ms", noData)
		r.WriteLine("%s min ttl ms", noData)
		r.WriteLine("%s p50 ttl ms", noData)
		r.WriteLine("%s p95 ttl ms", noData)
		r.WriteLine("%s p99 ttl ms", noData)
		return
	}
	r.WriteLine("%s average ttl ms", millis(sum.Mean))
	r.WriteLine("%s max ttl ms", millis(sum.Max))
	r.WriteLine("%s min ttl ms", millis(sum.Min))
	r.WriteLine("%s p50 ttl ms", millis(sum.P50))
	r.WriteLine("%s p95 ttl ms", millis(sum.P95))
	r.WriteLine("%s p99 ttl ms", millis(sum.P99))
}

func millis(d time.Duration) string {
	f := float64(d) / float64(time.Millisecond)
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteAssertions writes pass or fail for every rule and for the schema.
func (s *Snapshot) WriteAssertions() *Snapshot {
	r := s.reporter

	r.WriteHeader("assertions")
	for _, rule := range s.rules {
		if rule.Passed {
			r.WritePass(rule.Name)
		} else {
			r.WriteFail(rule.Name)
		}
	}

	r.WriteHeader("schema validation")
	if s.schemaState == SchemaValid {
		r.WritePass(SchemaRule)
	} else {
		r.WriteFail(SchemaRule)
	}
	return s
}
