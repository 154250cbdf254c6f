package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/merkle"
	"github.com/gabapcia/powledger/internal/pkg/types"
)

// GenesisPreviousHash is the previous-hash sentinel of block 0.
const GenesisPreviousHash types.Digest = "0"

// now is the block clock, replaced in tests.
var now = time.Now

// Block binds an ordered list of transactions to its predecessor's hash.
//
// Hash always covers PreviousHash, Timestamp, Transactions and Nonce. Any field
// changed without running RecomputeHash leaves Hash stale, which is exactly
// what chain validation detects.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    int64         `json:"timestamp"` // unix milliseconds
	Transactions []Transaction `json:"transactions"`
	PreviousHash types.Digest  `json:"previousHash"`
	Nonce        uint64        `json:"nonce"`
	Hash         types.Digest  `json:"hash"`
}

// NewBlock creates an unmined block at index linked to previousHash.
//
// The transactions are copied, so later changes to the caller's slice do not
// reach the block. The nonce starts at zero and a provisional hash is computed.
func NewBlock(index uint64, transactions []Transaction, previousHash types.Digest) (*Block, error) {
	b := &Block{
		Index:        index,
		Timestamp:    now().UnixMilli(),
		Transactions: cloneTransactions(transactions),
		PreviousHash: previousHash,
	}

	hash, err := b.RecomputeHash()
	if err != nil {
		return nil, err
	}

	b.Hash = hash
	return b, nil
}

// cloneTransactions copies txs, normalizing nil to an empty list so both encode
// the same way.
func cloneTransactions(txs []Transaction) []Transaction {
	if txs == nil {
		return []Transaction{}
	}
	return slices.Clone(txs)
}

// canonicalTransactions is the order-preserving JSON encoding used as hash material.
func canonicalTransactions(txs []Transaction) ([]byte, error) {
	if txs == nil {
		txs = []Transaction{}
	}
	return json.Marshal(txs)
}

// RecomputeHash derives the block hash from its current fields:
// Digest(previousHash ∥ decimal(timestamp) ∥ canonical(transactions) ∥ decimal(nonce)).
func (b *Block) RecomputeHash() (types.Digest, error) {
	payload, err := canonicalTransactions(b.Transactions)
	if err != nil {
		return "", fmt.Errorf("%w: encode transactions of block %d: %w", crypto.ErrHashComputation, b.Index, err)
	}

	var material bytes.Buffer
	material.WriteString(string(b.PreviousHash))
	material.WriteString(strconv.FormatInt(b.Timestamp, 10))
	material.Write(payload)
	material.WriteString(strconv.FormatUint(b.Nonce, 10))

	return crypto.Digest(material.Bytes()), nil
}

// MerkleRoot folds the transaction ids into a Merkle root. It is not part of
// the hash material. A block without transactions fails with merkle.ErrNoLeaves.
func (b *Block) MerkleRoot() (types.Digest, error) {
	leaves := make([]types.Digest, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		id, err := tx.ID()
		if err != nil {
			return "", err
		}
		leaves = append(leaves, id)
	}

	return merkle.Root(leaves)
}

// clone returns a copy that shares no mutable state with b.
func (b *Block) clone() Block {
	c := *b
	c.Transactions = cloneTransactions(b.Transactions)
	return c
}
