package blockproc

import (
	"time"

	"github.com/gabapcia/powledger/internal/ledger"

	"github.com/google/uuid"
)

// Batch is a group of transactions to be sealed together in one block.
type Batch struct {
	Transactions []ledger.Transaction
}

// Sealed reports the outcome of sealing one batch. Exactly one of Block and
// Err is meaningful: Err is nil when the block was appended.
type Sealed struct {
	ProcessingID string        // UUIDv7 assigned when the loop picked the batch up
	Block        ledger.Block  // the appended block
	Err          error         // why sealing failed
	ReceivedAt   time.Time     // when the loop picked the batch up
	Duration     time.Duration // time spent mining and appending
}

// processingState tracks one batch from pickup to finalization.
type processingState struct {
	processingID string
	receivedAt   time.Time
	batch        Batch
	block        ledger.Block
	err          error
	finalized    bool
	finalizedAt  time.Time
}

// newProcessingState stamps batch with a fresh processing id and pickup time.
func newProcessingState(batch Batch) processingState {
	return processingState{
		processingID: uuid.Must(uuid.NewV7()).String(),
		receivedAt:   time.Now().UTC(),
		batch:        batch,
	}
}

// finalizeWithSuccess records the appended block. No-op once finalized.
func (s *processingState) finalizeWithSuccess(block ledger.Block) {
	if s.finalized {
		return
	}

	s.finalized = true
	s.finalizedAt = time.Now().UTC()
	s.block = block
}

// finalizeWithFailure records why the batch could not be sealed. No-op once
// finalized.
func (s *processingState) finalizeWithFailure(err error) {
	if s.finalized {
		return
	}

	s.finalized = true
	s.finalizedAt = time.Now().UTC()
	s.err = err
}

// asSealed converts a finalized state into its report. A state that is not
// finalized yields the zero value.
func (s processingState) asSealed() Sealed {
	if !s.finalized {
		return Sealed{}
	}

	return Sealed{
		ProcessingID: s.processingID,
		Block:        s.block,
		Err:          s.err,
		ReceivedAt:   s.receivedAt,
		Duration:     s.finalizedAt.Sub(s.receivedAt),
	}
}
