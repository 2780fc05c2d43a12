// Package load aggregates the results of repeated calls to one endpoint.
//
// A Call records the status code and elapsed time of a single invocation;
// a status of LostStatus marks a call that never produced a response.
// Summarize reduces a slice of calls to counts and latency statistics,
// and Driver issues calls with bounded concurrency and an optional rate.
package load
