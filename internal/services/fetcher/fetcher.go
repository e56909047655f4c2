// Package fetcher implements the rate-limited byte fetch capability that
// source adapters are built on. Each adapter owns a private fetcher, so
// limiter state is never shared between sources.
package fetcher

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/pkg/retrier"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	breakerTimeout      = 30 * time.Second
	breakerMaxFailures  = 5
	breakerHalfOpenMax  = 1
	defaultBackoffStep  = 2 * time.Second
	defaultMaxRetries   = 3
	defaultMinDelay     = 1 * time.Second
	defaultMaxDelay     = 3 * time.Second
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindTimeout
	KindHTTPStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "network"
	}
}

// FetchError is the expected failure mode of Fetch. Callers treat it as a
// normal outcome and degrade to synthetic data, never as a fatal condition.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher is the byte-level fetch capability injected into source adapters.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RateLimited fetches URLs with a randomized per-request delay window,
// linearly backed-off retries, and a circuit breaker that fails fast once a
// source keeps erroring. State is private to one adapter.
type RateLimited struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	retry   *retrier.Retrier
	logger  *zap.Logger

	minDelay time.Duration
	maxDelay time.Duration

	retries     int
	backoffStep time.Duration

	mu   sync.Mutex
	last time.Time
	rng  *rand.Rand
}

// Option configures a RateLimited fetcher.
type Option func(*RateLimited)

// WithDelayWindow sets the [min,max] random delay window between requests.
func WithDelayWindow(min, max time.Duration) Option {
	return func(f *RateLimited) {
		f.minDelay = min
		f.maxDelay = max
	}
}

// WithMaxRetries sets the retry budget per Fetch call.
func WithMaxRetries(n int) Option {
	return func(f *RateLimited) {
		f.retries = n
	}
}

// WithBackoffStep sets the linear backoff step between retries.
func WithBackoffStep(d time.Duration) Option {
	return func(f *RateLimited) {
		f.backoffStep = d
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *RateLimited) {
		f.client.SetTimeout(d)
	}
}

// NewRateLimited creates a fetcher for one source. The name scopes breaker
// state and log fields.
func NewRateLimited(name string, logger *zap.Logger, opts ...Option) *RateLimited {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("fetcher", name))

	f := &RateLimited{
		client: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", defaultUserAgent),
		logger:      logger,
		minDelay:    defaultMinDelay,
		maxDelay:    defaultMaxDelay,
		retries:     defaultMaxRetries,
		backoffStep: defaultBackoffStep,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenMax,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	for _, opt := range opts {
		opt(f)
	}
	f.retry = retrier.New(retrier.WithBackoffStep(f.backoffStep), retrier.WithMaxRetries(f.retries))

	return f
}

// Fetch retrieves the URL body. It waits out the rate-limit window before
// every attempt and retries transient failures with linear backoff. On
// exhaustion it returns a *FetchError.
func (f *RateLimited) Fetch(ctx context.Context, url string) ([]byte, error) {
	return retrier.DoWithData(f.retry, ctx, func(ctx context.Context) ([]byte, error) {
		if err := f.waitTurn(ctx); err != nil {
			return nil, err
		}

		body, err := f.breaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, &FetchError{Kind: KindNetwork, URL: url, Err: err}
			}
			return nil, err
		}

		return body.([]byte), nil
	})
}

func (f *RateLimited) doFetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchError{Kind: classify(err), URL: url, Err: err}
	}
	if resp.StatusCode() >= 400 {
		return nil, &FetchError{Kind: KindHTTPStatus, URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// waitTurn blocks until a randomly chosen delay within the configured window
// has elapsed since the last request of this fetcher.
func (f *RateLimited) waitTurn(ctx context.Context) error {
	f.mu.Lock()
	delay := f.minDelay
	if f.maxDelay > f.minDelay {
		delay += time.Duration(f.rng.Int63n(int64(f.maxDelay - f.minDelay)))
	}
	elapsed := time.Since(f.last)
	wait := delay - elapsed
	f.last = time.Now().Add(maxDuration(wait, 0))
	f.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
