package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should hold a single mined genesis block", func(t *testing.T) {
		c := newTestChain(t)

		blocks := c.Blocks()
		require.Len(t, blocks, 1)

		genesis := blocks[0]
		assert.Equal(t, uint64(0), genesis.Index)
		assert.Equal(t, GenesisPreviousHash, genesis.PreviousHash)
		assert.Equal(t, []Transaction{GenesisTransaction()}, genesis.Transactions)
		assert.True(t, genesis.Hash.HasZeroPrefix(testDifficulty))

		hash, err := genesis.RecomputeHash()
		require.NoError(t, err)
		assert.Equal(t, hash, genesis.Hash)

		assert.True(t, c.Validate(t.Context()))
	})

	t.Run("should use the default difficulty", func(t *testing.T) {
		c, err := New(t.Context())
		require.NoError(t, err)

		assert.Equal(t, DefaultDifficulty, c.Difficulty())
		assert.True(t, c.Tip().Hash.HasZeroPrefix(DefaultDifficulty))
	})

	t.Run("should fail with ErrInvalidArgument on an unreachable difficulty", func(t *testing.T) {
		_, err := New(t.Context(), WithDifficulty(MaxDifficulty+1))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("should pass the mining budget to genesis", func(t *testing.T) {
		_, err := New(t.Context(), WithDifficulty(MaxDifficulty), WithMineOptions(WithMaxAttempts(5)))
		assert.ErrorIs(t, err, ErrMiningExhausted)
	})
}

func TestChainAppend(t *testing.T) {
	alice := newKeyPair(t)

	t.Run("should grow by one and stay valid", func(t *testing.T) {
		c := newTestChain(t)

		for i := range 3 {
			before := c.Len()
			tip := c.Tip()

			b, err := NewBlock(tip.Index+1, []Transaction{signedTransaction(t, "Alice", "Bob", uint64(i+1), alice)}, tip.Hash)
			require.NoError(t, err)
			require.NoError(t, c.Append(t.Context(), b))

			assert.Equal(t, before+1, c.Len())
			assert.True(t, b.Hash.HasZeroPrefix(testDifficulty))
			assert.Equal(t, b.Hash, c.TipHash())
			assert.True(t, c.Validate(t.Context()))
		}
	})

	t.Run("should store a mis-linked block and report it afterwards", func(t *testing.T) {
		c := newTestChain(t)

		b, err := NewBlock(1, []Transaction{signedTransaction(t, "Alice", "Bob", 50, alice)}, GenesisPreviousHash)
		require.NoError(t, err)
		require.NoError(t, c.Append(t.Context(), b))

		assert.Equal(t, 2, c.Len())
		assert.False(t, c.Validate(t.Context()))
		assert.Equal(t, []Violation{{Block: 1, Transaction: -1, Kind: BrokenLink}}, c.Audit(t.Context()))
	})

	t.Run("should fail with ErrInvalidArgument on a nil block", func(t *testing.T) {
		c := newTestChain(t)
		assert.ErrorIs(t, c.Append(t.Context(), nil), ErrInvalidArgument)
	})

	t.Run("should leave the chain untouched when mining is cancelled", func(t *testing.T) {
		c := newTestChain(t)
		c.difficulty = MaxDifficulty

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		tip := c.Tip()
		b, err := NewBlock(tip.Index+1, nil, tip.Hash)
		require.NoError(t, err)

		err = c.Append(ctx, b)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, c.Len())
	})
}

func TestChainAppendTransactions(t *testing.T) {
	alice := newKeyPair(t)

	t.Run("should link the new block to the tip", func(t *testing.T) {
		c := newTestChain(t)
		genesis := c.Tip()

		b, err := c.AppendTransactions(t.Context(), []Transaction{signedTransaction(t, "Alice", "Bob", 50, alice)})
		require.NoError(t, err)

		assert.Equal(t, uint64(1), b.Index)
		assert.Equal(t, genesis.Hash, b.PreviousHash)
		assert.Equal(t, b, c.Tip())
		assert.True(t, c.Validate(t.Context()))
	})

	t.Run("should serialize concurrent appends", func(t *testing.T) {
		c := newTestChain(t)

		var wg sync.WaitGroup
		for i := range 8 {
			tx := signedTransaction(t, "Alice", "Bob", uint64(i+1), alice)

			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.AppendTransactions(t.Context(), []Transaction{tx})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		blocks := c.Blocks()
		require.Len(t, blocks, 9)
		for i, b := range blocks {
			assert.Equal(t, uint64(i), b.Index)
		}
		assert.True(t, c.Validate(t.Context()))
	})
}

func TestChainBlocks(t *testing.T) {
	t.Run("should return a copy", func(t *testing.T) {
		c := newTestChain(t)

		blocks := c.Blocks()
		blocks[0].Transactions[0].Amount = 999
		blocks[0].Hash = "tampered"

		assert.Equal(t, uint64(0), c.Blocks()[0].Transactions[0].Amount)
		assert.NotEqual(t, "tampered", c.TipHash().String())
	})
}

func TestChainValidateAndAudit(t *testing.T) {
	alice := newKeyPair(t)
	bob := newKeyPair(t)

	build := func(t *testing.T) *Chain {
		c := newTestChain(t)

		_, err := c.AppendTransactions(t.Context(), []Transaction{signedTransaction(t, "Alice", "Bob", 50, alice)})
		require.NoError(t, err)

		_, err = c.AppendTransactions(t.Context(), []Transaction{
			signedTransaction(t, "Bob", "Charlie", 30, bob),
			signedTransaction(t, "Bob", "Dave", 5, bob),
		})
		require.NoError(t, err)

		return c
	}

	t.Run("should detect a tampered amount", func(t *testing.T) {
		c := build(t)
		require.True(t, c.Validate(t.Context()))

		c.blocks[1].Transactions[0].Amount = 999

		assert.False(t, c.Validate(t.Context()))
		assert.Equal(t, []Violation{
			{Block: 1, Transaction: -1, Kind: HashMismatch},
			{Block: 1, Transaction: 0, Kind: InvalidSignature},
		}, c.Audit(t.Context()))
	})

	t.Run("should detect a re-mined block as a broken link downstream", func(t *testing.T) {
		c := build(t)

		c.blocks[1].Transactions[0].Amount = 999
		require.NoError(t, c.blocks[1].Mine(t.Context(), testDifficulty))

		violations := c.Audit(t.Context())
		require.Len(t, violations, 2)
		assert.Equal(t, Violation{Block: 1, Transaction: 0, Kind: InvalidSignature}, violations[0])
		assert.Equal(t, Violation{Block: 2, Transaction: -1, Kind: BrokenLink}, violations[1])
	})

	t.Run("should itemize a malformed signature with its error", func(t *testing.T) {
		c := build(t)

		c.blocks[2].Transactions[1].Signature = ""
		hash, err := c.blocks[2].RecomputeHash()
		require.NoError(t, err)
		c.blocks[2].Hash = hash

		violations := c.Audit(t.Context())
		require.Len(t, violations, 1)
		assert.Equal(t, 2, violations[0].Block)
		assert.Equal(t, 1, violations[0].Transaction)
		assert.Equal(t, InvalidSignature, violations[0].Kind)
		assert.Error(t, violations[0].Err)
	})

	t.Run("should not inspect genesis", func(t *testing.T) {
		c := build(t)
		c.blocks[0].Nonce++

		// the stale genesis hash is still what block 1 links to
		assert.True(t, c.Validate(t.Context()))
	})
}

func TestChainExport(t *testing.T) {
	alice := newKeyPair(t)

	c := newTestChain(t)
	_, err := c.AppendTransactions(t.Context(), []Transaction{signedTransaction(t, "Alice", "Bob", 50, alice)})
	require.NoError(t, err)

	t.Run("should mirror the chain", func(t *testing.T) {
		doc := c.Export()
		blocks := c.Blocks()
		require.Len(t, doc, len(blocks))

		for i, b := range blocks {
			assert.Equal(t, b.Index, doc[i].Index)
			assert.Equal(t, b.Hash, doc[i].Hash)
			assert.Equal(t, b.PreviousHash, doc[i].PreviousHash)
			assert.Equal(t, b.Nonce, doc[i].Nonce)
			assert.Equal(t, b.Timestamp, doc[i].Timestamp)

			root, err := b.MerkleRoot()
			require.NoError(t, err)
			assert.Equal(t, root, doc[i].MerkleRoot)
		}

		tip, ok := doc.Tip()
		require.True(t, ok)
		assert.Equal(t, c.TipHash(), tip.Hash)
	})

	t.Run("should encode absent keys and signatures as null", func(t *testing.T) {
		data, err := c.Export().JSON()
		require.NoError(t, err)

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		require.Len(t, raw, 2)

		for _, field := range []string{"index", "timestamp", "previousHash", "hash", "nonce", "transactions"} {
			assert.Contains(t, raw[0], field)
		}

		genesisTx := raw[0]["transactions"].([]any)[0].(map[string]any)
		assert.Nil(t, genesisTx["senderPublicKey"])
		assert.Nil(t, genesisTx["signature"])

		transfer := raw[1]["transactions"].([]any)[0].(map[string]any)
		assert.Equal(t, alice.encoded, transfer["senderPublicKey"])
		assert.NotEmpty(t, transfer["signature"])
		assert.Equal(t, float64(50), transfer["amount"])
	})

	t.Run("should report no tip for an empty document", func(t *testing.T) {
		_, ok := Document{}.Tip()
		assert.False(t, ok)
	})
}

func TestEndToEnd(t *testing.T) {
	alice := newKeyPair(t)

	c, err := New(t.Context(), WithDifficulty(4))
	require.NoError(t, err)

	tx, err := NewTransaction("Alice", "Bob", 50, alice.encoded)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(alice.priv))

	b, err := NewBlock(1, []Transaction{tx}, c.Tip().Hash)
	require.NoError(t, err)
	require.NoError(t, c.Append(t.Context(), b))

	assert.True(t, c.Validate(t.Context()))
	assert.Len(t, c.Blocks(), 2)

	c.blocks[1].Transactions[0].Amount = 999
	assert.False(t, c.Validate(t.Context()))
}
