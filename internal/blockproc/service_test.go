package blockproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/powledger/internal/blockproc/mocks"
	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

func receive(t *testing.T, ch <-chan Sealed) Sealed {
	t.Helper()

	select {
	case sealed, ok := <-ch:
		require.True(t, ok, "sealed channel closed")
		return sealed
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a sealed batch")
		return Sealed{}
	}
}

func TestStart(t *testing.T) {
	t.Run("should seal a submitted batch", func(t *testing.T) {
		l := mocks.NewLedger(t)

		txs := []ledger.Transaction{ledger.GenesisTransaction()}
		block := ledger.Block{Index: 1, Hash: crypto.DigestString("block 1")}

		l.EXPECT().AppendTransactions(mock.Anything, txs).Return(block, nil).Once()

		svc := New(l)
		sealedCh, err := svc.Start(t.Context())
		require.NoError(t, err)
		defer svc.Close()

		require.NoError(t, svc.Submit(t.Context(), Batch{Transactions: txs}))

		sealed := receive(t, sealedCh)
		assert.NoError(t, sealed.Err)
		assert.Equal(t, block, sealed.Block)
		assert.False(t, sealed.ReceivedAt.IsZero())

		id, err := uuid.Parse(sealed.ProcessingID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
	})

	t.Run("should report a failed batch and keep going", func(t *testing.T) {
		l := mocks.NewLedger(t)

		failing := []ledger.Transaction{{Sender: "Alice", Recipient: "Bob", Amount: 1}}
		passing := []ledger.Transaction{{Sender: "Bob", Recipient: "Alice", Amount: 2}}
		expectedErr := errors.New("mining exhausted")

		l.EXPECT().AppendTransactions(mock.Anything, failing).Return(ledger.Block{}, expectedErr).Once()
		l.EXPECT().AppendTransactions(mock.Anything, passing).Return(ledger.Block{Index: 1}, nil).Once()

		svc := New(l)
		sealedCh, err := svc.Start(t.Context())
		require.NoError(t, err)
		defer svc.Close()

		require.NoError(t, svc.Submit(t.Context(), Batch{Transactions: failing}))
		require.NoError(t, svc.Submit(t.Context(), Batch{Transactions: passing}))

		first := receive(t, sealedCh)
		assert.ErrorIs(t, first.Err, expectedErr)

		second := receive(t, sealedCh)
		assert.NoError(t, second.Err)
		assert.Equal(t, uint64(1), second.Block.Index)
	})

	t.Run("should bound sealing with the mining timeout", func(t *testing.T) {
		l := mocks.NewLedger(t)

		l.EXPECT().AppendTransactions(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ []ledger.Transaction) (ledger.Block, error) {
				<-ctx.Done()
				return ledger.Block{}, ctx.Err()
			}).Once()

		svc := New(l, WithMiningTimeout(10*time.Millisecond))
		sealedCh, err := svc.Start(t.Context())
		require.NoError(t, err)
		defer svc.Close()

		require.NoError(t, svc.Submit(t.Context(), Batch{}))

		sealed := receive(t, sealedCh)
		assert.ErrorIs(t, sealed.Err, context.DeadlineExceeded)
	})

	t.Run("should fail when already started", func(t *testing.T) {
		svc := New(mocks.NewLedger(t))

		_, err := svc.Start(t.Context())
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.Start(t.Context())
		assert.ErrorIs(t, err, ErrServiceAlreadyStarted)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("should fail before start", func(t *testing.T) {
		svc := New(mocks.NewLedger(t))
		assert.ErrorIs(t, svc.Submit(t.Context(), Batch{}), ErrServiceNotStarted)
	})

	t.Run("should fail after close", func(t *testing.T) {
		svc := New(mocks.NewLedger(t))

		_, err := svc.Start(t.Context())
		require.NoError(t, err)
		svc.Close()

		assert.ErrorIs(t, svc.Submit(t.Context(), Batch{}), ErrServiceNotStarted)
	})

	t.Run("should refuse a batch once the loop stopped even with queue room", func(t *testing.T) {
		stopped := make(chan struct{})
		close(stopped)

		// state seen by a Submit that read the lifecycle fields right before Close
		svc := New(mocks.NewLedger(t), WithQueueSize(64))
		svc.isStarted = true
		svc.inbox = make(chan Batch, 64)
		svc.stopped = stopped

		for range 64 {
			assert.ErrorIs(t, svc.Submit(t.Context(), Batch{}), ErrServiceNotStarted)
		}
		assert.Empty(t, svc.inbox)
	})

	t.Run("should honour the caller context while the queue is full", func(t *testing.T) {
		l := mocks.NewLedger(t)

		release := make(chan struct{})
		l.EXPECT().AppendTransactions(mock.Anything, mock.Anything).
			RunAndReturn(func(context.Context, []ledger.Transaction) (ledger.Block, error) {
				<-release
				return ledger.Block{}, nil
			}).Maybe()

		svc := New(l)
		_, err := svc.Start(t.Context())
		require.NoError(t, err)
		defer svc.Close()
		defer close(release)

		// the first batch occupies the loop, the second cannot be handed over
		require.NoError(t, svc.Submit(t.Context(), Batch{}))

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, svc.Submit(ctx, Batch{}), context.DeadlineExceeded)
	})
}

func TestClose(t *testing.T) {
	t.Run("should close the sealed channel", func(t *testing.T) {
		svc := New(mocks.NewLedger(t))

		sealedCh, err := svc.Start(t.Context())
		require.NoError(t, err)

		svc.Close()

		_, ok := <-sealedCh
		assert.False(t, ok)
	})

	t.Run("should be safe without start", func(t *testing.T) {
		svc := New(mocks.NewLedger(t))
		assert.NotPanics(t, svc.Close)
	})
}

func TestProducerWithChain(t *testing.T) {
	c, err := ledger.New(t.Context(), ledger.WithDifficulty(1))
	require.NoError(t, err)

	pub, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	svc := New(c, WithQueueSize(4))
	sealedCh, err := svc.Start(t.Context())
	require.NoError(t, err)
	defer svc.Close()

	for amount := uint64(1); amount <= 3; amount++ {
		tx, err := ledger.NewTransaction("Alice", "Bob", amount, crypto.EncodePublicKey(pub))
		require.NoError(t, err)
		require.NoError(t, tx.Sign(priv))
		require.NoError(t, svc.Submit(t.Context(), Batch{Transactions: []ledger.Transaction{tx}}))
	}

	for amount := uint64(1); amount <= 3; amount++ {
		sealed := receive(t, sealedCh)
		require.NoError(t, sealed.Err)
		assert.Equal(t, amount, sealed.Block.Index)
		assert.Equal(t, amount, sealed.Block.Transactions[0].Amount)
	}

	assert.Equal(t, 4, c.Len())
	assert.True(t, c.Validate(t.Context()))
}
