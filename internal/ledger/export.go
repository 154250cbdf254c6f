package ledger

import (
	"encoding/json"

	"github.com/gabapcia/powledger/internal/pkg/types"
)

// TransactionDocument is the exported form of a Transaction. Absent keys and
// signatures are encoded as null.
type TransactionDocument struct {
	Sender          string  `json:"sender"`
	Recipient       string  `json:"recipient"`
	Amount          uint64  `json:"amount"`
	SenderPublicKey *string `json:"senderPublicKey"`
	Signature       *string `json:"signature"`
}

// BlockDocument is the exported form of a Block.
type BlockDocument struct {
	Index        uint64                `json:"index"`
	Timestamp    int64                 `json:"timestamp"`
	PreviousHash types.Digest          `json:"previousHash"`
	Hash         types.Digest          `json:"hash"`
	Nonce        uint64                `json:"nonce"`
	MerkleRoot   types.Digest          `json:"merkleRoot,omitempty"`
	Transactions []TransactionDocument `json:"transactions"`
}

// Document is a read-only snapshot of a chain, ordered from genesis to tip.
type Document []BlockDocument

// Tip returns the last block of the document, or false when it is empty.
func (d Document) Tip() (BlockDocument, bool) {
	if len(d) == 0 {
		return BlockDocument{}, false
	}
	return d[len(d)-1], true
}

// JSON renders the document with two-space indentation.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func exportBlock(b Block) BlockDocument {
	doc := BlockDocument{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		Hash:         b.Hash,
		Nonce:        b.Nonce,
		Transactions: make([]TransactionDocument, 0, len(b.Transactions)),
	}

	// a block whose transactions cannot be rooted is exported without one
	if root, err := b.MerkleRoot(); err == nil {
		doc.MerkleRoot = root
	}

	for _, tx := range b.Transactions {
		doc.Transactions = append(doc.Transactions, TransactionDocument{
			Sender:          tx.Sender,
			Recipient:       tx.Recipient,
			Amount:          tx.Amount,
			SenderPublicKey: optional(tx.SenderPublicKey),
			Signature:       optional(tx.Signature),
		})
	}

	return doc
}

// Export snapshots the chain into a Document.
func (c *Chain) Export() Document {
	blocks := c.Blocks()

	doc := make(Document, 0, len(blocks))
	for _, b := range blocks {
		doc = append(doc, exportBlock(b))
	}

	return doc
}
