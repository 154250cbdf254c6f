package ledger

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/types"
	"github.com/gabapcia/powledger/internal/pkg/validator"
)

// Identifiers of the distinguished genesis transfer.
const (
	GenesisSender    = "Genesis"
	GenesisRecipient = "System"
)

// Transaction records a transfer between two identifiers. Every field except
// Signature is fixed at construction; Signature is filled in by Sign.
//
// Keys and signatures are carried as base64 strings. An empty string means
// absent.
type Transaction struct {
	Sender          string `json:"sender" validate:"required"`
	Recipient       string `json:"recipient" validate:"required"`
	Amount          uint64 `json:"amount"`
	SenderPublicKey string `json:"senderPublicKey"`
	Signature       string `json:"signature"`
}

// isGenesisPair reports whether sender and recipient name the genesis transfer.
func isGenesisPair(sender, recipient string) bool {
	return sender == GenesisSender && recipient == GenesisRecipient
}

// NewTransaction builds an unsigned transaction.
//
// The sender public key is required unless (sender, recipient) is the genesis
// pair, in which case any supplied key is dropped. Missing identifiers or a
// missing key fail with ErrInvalidArgument.
func NewTransaction(sender, recipient string, amount uint64, senderPublicKey string) (Transaction, error) {
	tx := Transaction{
		Sender:          sender,
		Recipient:       recipient,
		Amount:          amount,
		SenderPublicKey: senderPublicKey,
	}

	if err := validator.Validate(tx); err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if isGenesisPair(sender, recipient) {
		tx.SenderPublicKey = ""
		return tx, nil
	}

	if senderPublicKey == "" {
		return Transaction{}, fmt.Errorf("%w: sender public key is required for transfer %s -> %s", ErrInvalidArgument, sender, recipient)
	}

	return tx, nil
}

// GenesisTransaction returns the distinguished first transfer of every chain.
func GenesisTransaction() Transaction {
	return Transaction{
		Sender:    GenesisSender,
		Recipient: GenesisRecipient,
		Amount:    0,
	}
}

// IsGenesis reports whether t is the keyless genesis transfer.
func (t Transaction) IsGenesis() bool {
	return isGenesisPair(t.Sender, t.Recipient) && t.SenderPublicKey == ""
}

// signingMessage is sender ∥ recipient ∥ decimal(amount).
func (t Transaction) signingMessage() []byte {
	return []byte(t.Sender + t.Recipient + strconv.FormatUint(t.Amount, 10))
}

// Sign signs the transfer with key and stores the signature, replacing any
// previous one. Errors wrap crypto.ErrSigning.
func (t *Transaction) Sign(key ed25519.PrivateKey) error {
	sig, err := crypto.Sign(t.signingMessage(), key)
	if err != nil {
		return fmt.Errorf("sign transfer %s -> %s: %w", t.Sender, t.Recipient, err)
	}

	t.Signature = crypto.EncodeSignature(sig)
	return nil
}

// Verify reports whether the stored signature matches the transfer under the
// stored sender public key.
//
// A missing or undecodable key or signature fails with crypto.ErrVerification;
// a well-formed signature that does not match returns false.
func (t Transaction) Verify() (bool, error) {
	if t.SenderPublicKey == "" {
		return false, fmt.Errorf("%w: transfer %s -> %s has no sender public key", crypto.ErrVerification, t.Sender, t.Recipient)
	}

	if t.Signature == "" {
		return false, fmt.Errorf("%w: transfer %s -> %s is not signed", crypto.ErrVerification, t.Sender, t.Recipient)
	}

	pub, err := crypto.DecodePublicKey(t.SenderPublicKey)
	if err != nil {
		return false, err
	}

	sig, err := crypto.DecodeSignature(t.Signature)
	if err != nil {
		return false, err
	}

	return crypto.Verify(t.signingMessage(), sig, pub)
}

// ID returns the digest of the transaction's canonical encoding. It is the
// leaf used for the block's Merkle root.
func (t Transaction) ID() (types.Digest, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("%w: encode transaction: %w", crypto.ErrHashComputation, err)
	}

	return crypto.Digest(payload), nil
}
