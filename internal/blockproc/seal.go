package blockproc

import (
	"context"

	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/x/chflow"
)

// sealBatch appends one batch to the ledger under the configured mining
// timeout and returns the finalized state.
func (s *service) sealBatch(ctx context.Context, batch Batch) processingState {
	state := newProcessingState(batch)
	ctx = logger.Derive(ctx, "processing_id", state.processingID)

	if s.miningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.miningTimeout)
		defer cancel()
	}

	block, err := s.ledger.AppendTransactions(ctx, batch.Transactions)
	if err != nil {
		logger.Error(ctx, "error sealing batch",
			"batch.transactions", len(batch.Transactions),
			"error", err,
		)

		state.finalizeWithFailure(err)
		return state
	}

	logger.Info(ctx, "batch sealed",
		"block.index", block.Index,
		"block.hash", block.Hash,
	)

	state.finalizeWithSuccess(block)
	return state
}

// seal consumes batches in order until ctx is done, reporting every outcome
// on sealedCh.
func (s *service) seal(ctx context.Context, inbox <-chan Batch, sealedCh chan<- Sealed) {
	for {
		batch, ok := chflow.Receive(ctx, inbox)
		if !ok {
			return
		}

		state := s.sealBatch(ctx, batch)
		if !chflow.Send(ctx, sealedCh, state.asSealed()) {
			return
		}
	}
}
