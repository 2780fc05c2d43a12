package http

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcheck/packages/load"
	"github.com/abdul-hamid-achik/hitcheck/packages/response"
)

type Response struct {
	StatusCode      int
	Status          string
	Headers         map[string][]string
	Body            []byte
	ContentLength   int64 // -1 when unknown
	ContentEncoding string
	Duration        time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the first value of a header, matching case-insensitively.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// Capture converts the response into snapshot input, attaching the results
// of any load calls made against the same request.
func (r *Response) Capture(calls []load.Call) response.Capture {
	return response.Capture{
		StatusCode:      r.StatusCode,
		ContentType:     r.ContentType(),
		ContentEncoding: r.ContentEncoding,
		ContentLength:   r.ContentLength,
		Body:            r.BodyString(),
		Headers:         r.Headers,
		Load:            calls,
	}
}

// Snapshot builds a response.Snapshot from the response.
func (r *Response) Snapshot(calls []load.Call, opts ...response.Option) (*response.Snapshot, error) {
	return response.New(r.Capture(calls), opts...)
}
