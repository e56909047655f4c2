package retrier

import (
	"context"
	"time"
)

const (
	defaultBackoffStep = 2 * time.Second
	defaultMaxRetries  = 3
)

// Retrier executes a function with a bounded retry budget and linearly
// increasing backoff: the n-th retry waits n * step.
type Retrier struct {
	step       time.Duration
	maxRetries int
}

// Option configures the Retrier.
type Option func(*Retrier)

// WithBackoffStep sets the linear backoff step.
func WithBackoffStep(d time.Duration) Option {
	return func(r *Retrier) {
		r.step = d
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) {
		r.maxRetries = n
	}
}

// New creates a Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		step:       defaultBackoffStep,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do executes fn until it succeeds or the retry budget is exhausted. The last
// error is returned unwrapped so callers can inspect its type.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * r.step):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
	}

	return err
}

// DoWithData executes fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
