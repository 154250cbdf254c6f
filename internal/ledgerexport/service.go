// Package ledgerexport delivers chain exports to every configured sink.
package ledgerexport

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/resilience/retry"
)

var (
	// ErrEmptyDocument is returned when asked to publish a document without blocks.
	ErrEmptyDocument = errors.New("export document has no blocks")

	// ErrPublishFailed wraps the error of every sink that could not be reached
	// after its retries.
	ErrPublishFailed = errors.New("export publication failed")
)

// Publisher delivers a chain export to one destination.
type Publisher interface {
	Publish(ctx context.Context, doc ledger.Document) error
}

// Service fans an export out to every sink.
type Service interface {
	// Publish sends doc to each sink, retrying each one independently. Every
	// sink is attempted even when an earlier one fails; the failures are
	// joined, each wrapping ErrPublishFailed.
	Publish(ctx context.Context, doc ledger.Document) error
}

type sink struct {
	name      string
	publisher Publisher
}

// Option configures the service.
type Option func(*service)

// WithPublisher adds a sink. name identifies it in logs and errors.
func WithPublisher(name string, p Publisher) Option {
	return func(s *service) {
		s.sinks = append(s.sinks, sink{name: name, publisher: p})
	}
}

// WithRetry sets the retry policy applied to every sink.
func WithRetry(r retry.Retry) Option {
	return func(s *service) {
		s.retry = r
	}
}

type service struct {
	sinks []sink
	retry retry.Retry
}

var _ Service = (*service)(nil)

func (s *service) publish(ctx context.Context, sk sink, doc ledger.Document) error {
	ctx = logger.Derive(ctx, "sink", sk.name)

	err := s.retry.Execute(ctx, func() error {
		return sk.publisher.Publish(ctx, doc)
	})
	if err != nil {
		logger.Error(ctx, "error publishing chain export", "error", err)
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, sk.name, err)
	}

	logger.Info(ctx, "chain export published", "chain.length", len(doc))
	return nil
}

func (s *service) Publish(ctx context.Context, doc ledger.Document) error {
	if len(doc) == 0 {
		return ErrEmptyDocument
	}

	var errs []error
	for _, sk := range s.sinks {
		if err := s.publish(ctx, sk, doc); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// New builds the publication service. Without WithRetry each sink gets the
// default retry policy.
func New(opts ...Option) *service {
	s := new(service)
	for _, opt := range opts {
		opt(s)
	}

	if s.retry == nil {
		s.retry = retry.New()
	}

	return s
}
