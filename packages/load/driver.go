package load

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CallFunc performs one call and returns its status code. A non-nil error
// marks the call as lost.
type CallFunc func(ctx context.Context) (int, error)

// Driver issues a fixed number of calls with bounded concurrency.
type Driver struct {
	Calls       int     // total calls to issue
	Concurrency int     // max in-flight calls, defaults to 1
	Rate        float64 // calls per second, 0 means unlimited
}

// Validate checks if the driver settings are usable
func (d *Driver) Validate() error {
	if d.Calls < 0 {
		return fmt.Errorf("calls cannot be negative")
	}
	if d.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	if d.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	return nil
}

// Run issues the calls and returns their results in issue order. When ctx is
// cancelled no further calls are started; the results of the calls already
// issued are returned together with the context error.
func (d *Driver) Run(ctx context.Context, fn CallFunc) ([]Call, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if d.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.Rate), 1)
	}

	results := make([]Call, d.Calls)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	issued := 0
	var runErr error

loop:
	for i := 0; i < d.Calls; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		}

		issued++
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()
			status, err := fn(ctx)
			elapsed := time.Since(start)

			if err != nil {
				status = LostStatus
			}
			results[idx] = Call{StatusCode: status, Elapsed: elapsed}
		}(i)
	}

	wg.Wait()
	return results[:issued], runErr
}
