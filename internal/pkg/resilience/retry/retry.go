// Package retry runs operations again, with exponential backoff, until they
// succeed, run out of attempts or their context is done. It is a thin layer
// over github.com/avast/retry-go.
//
//	r := retry.New(retry.WithAttempts(5), retry.WithDelay(200*time.Millisecond))
//	err := r.Execute(ctx, func() error {
//	    return sink.Publish(ctx, doc)
//	})
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes an operation under a retry policy.
type Retry interface {
	// Execute calls operation until it returns nil, the attempts are spent,
	// the error is marked with Permanent, or ctx is done.
	//
	// operation must be safe to call more than once.
	Execute(ctx context.Context, operation func() error) error
}

// config holds the retry policy.
type config struct {
	attempts    uint          // total calls, first one included
	delay       time.Duration // backoff base
	maxDelay    time.Duration // backoff cap
	lastErrOnly bool          // return the final error instead of all of them
	onRetry     func(attempt uint, err error)
}

// Option customizes the retry policy.
type Option func(*config)

type retrier struct {
	cfg config
}

// Compile-time assertion that retrier implements Retry interface
var _ Retry = (*retrier)(nil)

// New returns a Retry with the given options applied over these defaults:
// 3 attempts, 1s base delay, 5s maximum delay, last error only.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{cfg: cfg}
}

func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
	}

	if r.cfg.onRetry != nil {
		options = append(options, retry.OnRetry(func(n uint, err error) {
			r.cfg.onRetry(n+1, err)
		}))
	}

	return retry.Do(operation, options...)
}

// Permanent marks err so that Execute returns it without further attempts.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// WithAttempts sets the total number of calls, the first one included.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the delay before the first retry. Later delays double.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly chooses between returning the final error (true) and
// every attempt's error combined (false).
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}

// WithOnRetry registers fn to run after every failed attempt that will be
// retried. attempt starts at 1.
func WithOnRetry(fn func(attempt uint, err error)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}
