package ledgerexport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/pkg/resilience/retry"
)

// writerPublisher prints the pretty JSON export to an io.Writer.
type writerPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Publisher = (*writerPublisher)(nil)

// NewWriterPublisher returns a Publisher writing each export to w as indented
// JSON followed by a newline.
func NewWriterPublisher(w io.Writer) *writerPublisher {
	return &writerPublisher{w: w}
}

func (p *writerPublisher) Publish(_ context.Context, doc ledger.Document) error {
	data, err := doc.JSON()
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode export: %w", err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	return nil
}
