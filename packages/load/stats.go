package load

import (
	"net/http"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LostStatus is the status code recorded for a call that got no response.
const LostStatus = -1

const (
	// histogram range in microseconds: 1us to 60s
	minTrackable = 1
	maxTrackable = 60_000_000
)

// Call is the outcome of one load call.
type Call struct {
	StatusCode int
	Elapsed    time.Duration
}

// Succeeded reports whether the call returned 200 OK.
func (c Call) Succeeded() bool {
	return c.StatusCode == http.StatusOK
}

// Lost reports whether the call got no response at all.
func (c Call) Lost() bool {
	return c.StatusCode == LostStatus
}

// Summary holds aggregate statistics over a set of calls. Latency fields
// cover successful calls only and are zero when HasLatency is false.
type Summary struct {
	Total     int
	Succeeded int
	Lost      int

	HasLatency bool
	Mean       time.Duration
	Min        time.Duration
	Max        time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
}

// Summarize computes the summary of calls. The slice is only read.
func Summarize(calls []Call) Summary {
	s := Summary{Total: len(calls)}

	histogram := hdrhistogram.New(minTrackable, maxTrackable, 3)
	var sum time.Duration

	for _, c := range calls {
		if c.Lost() {
			s.Lost++
			continue
		}
		if !c.Succeeded() {
			continue
		}

		if s.Succeeded == 0 || c.Elapsed < s.Min {
			s.Min = c.Elapsed
		}
		if s.Succeeded == 0 || c.Elapsed > s.Max {
			s.Max = c.Elapsed
		}
		s.Succeeded++
		sum += c.Elapsed

		_ = histogram.RecordValue(clampMicros(c.Elapsed))
	}

	if s.Succeeded == 0 {
		return s
	}

	s.HasLatency = true
	s.Mean = sum / time.Duration(s.Succeeded)
	s.P50 = time.Duration(histogram.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
	return s
}

// SuccessRate returns the share of calls that succeeded, 0 for no calls.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

func clampMicros(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minTrackable {
		us = minTrackable
	}
	if us > maxTrackable {
		us = maxTrackable
	}
	return us
}
