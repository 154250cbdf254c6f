// Package blockproc runs the single block producer of a process: transaction
// batches submitted from any goroutine are sealed into blocks one at a time,
// in submission order, by a background loop that owns the ledger's append path.
package blockproc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/powledger/internal/ledger"
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	//
	// The service must be started only once per lifecycle.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrServiceNotStarted is returned by Submit before Start or after Close.
	ErrServiceNotStarted = errors.New("service not started")
)

// Ledger is the append path the producer drives.
type Ledger interface {
	// AppendTransactions seals txs into a block linked to the current tip,
	// mines it and appends it, returning the stored block.
	AppendTransactions(ctx context.Context, txs []ledger.Transaction) (ledger.Block, error)
}

// Service defines the block producer lifecycle.
type Service interface {
	// Start launches the producer loop and returns the channel on which every
	// submitted batch is reported once sealed (or once sealing failed). The
	// channel is closed when the loop stops.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	// Call Close to shut down the loop.
	Start(ctx context.Context) (<-chan Sealed, error)

	// Submit queues a batch for sealing. It blocks until the loop accepts the
	// batch or ctx is done.
	//
	// Returns ErrServiceNotStarted if the service is not running.
	Submit(ctx context.Context, batch Batch) error

	// Close stops the loop and waits for it to exit. A batch being mined is
	// abandoned. It is safe to call Close even if the service was never started.
	Close()
}

// Option configures the service.
type Option func(*service)

// WithMiningTimeout bounds the time spent sealing a single batch. Zero means
// no bound.
func WithMiningTimeout(d time.Duration) Option {
	return func(s *service) {
		s.miningTimeout = d
	}
}

// WithQueueSize sets how many batches may wait for the loop before Submit blocks.
func WithQueueSize(n int) Option {
	return func(s *service) {
		s.queueSize = n
	}
}

// closeFunc cancels the loop and waits for it to finish.
type closeFunc func()

// service is the internal implementation of the Service interface.
type service struct {
	mu        sync.Mutex      // protects lifecycle state
	isStarted bool            // ensures Start is called only once
	closeFunc closeFunc       // cancels the loop context and waits for the loop
	inbox     chan Batch      // batches waiting to be sealed
	stopped   <-chan struct{} // done channel of the loop context

	ledger        Ledger
	miningTimeout time.Duration
	queueSize     int
}

// Compile-time check to ensure *service implements the Service interface.
var _ Service = new(service)

// Start launches the producer loop.
func (s *service) Start(ctx context.Context) (<-chan Sealed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	s.inbox = make(chan Batch, s.queueSize)
	s.stopped = ctx.Done()
	sealedCh := make(chan Sealed)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(sealedCh)

		s.seal(ctx, s.inbox, sealedCh)
	}()

	s.closeFunc = func() {
		cancel()
		wg.Wait()
	}
	s.isStarted = true

	return sealedCh, nil
}

// Submit queues batch for the loop.
func (s *service) Submit(ctx context.Context, batch Batch) error {
	s.mu.Lock()
	inbox, stopped, started := s.inbox, s.stopped, s.isStarted
	s.mu.Unlock()

	if !started {
		return ErrServiceNotStarted
	}

	// A buffered inbox may still accept sends after the loop stopped.
	select {
	case <-stopped:
		return ErrServiceNotStarted
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopped:
		return ErrServiceNotStarted
	case inbox <- batch:
		return nil
	}
}

// Close shuts the loop down.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

// New creates a block producer appending to l.
func New(l Ledger, opts ...Option) *service {
	s := &service{ledger: l}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
