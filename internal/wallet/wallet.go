// Package wallet holds an ed25519 key pair on behalf of a ledger participant.
package wallet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/gabapcia/powledger/internal/pkg/crypto"

	"github.com/cosmos/btcutil/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address format is fixed to RIPEMD-160
)

// AddressVersion is the version byte prefixed to every address payload.
const AddressVersion byte = 0x00

// ErrInvalidAddress is returned when an address fails its base58 checksum or
// carries an unexpected version byte.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Wallet is an ed25519 key pair. The zero value is not usable; build one with
// New or FromPrivateKey.
type Wallet struct {
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// New generates a wallet with a fresh key pair.
func New() (*Wallet, error) {
	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	return &Wallet{publicKey: pub, privateKey: priv}, nil
}

// FromPrivateKey restores a wallet from a base64 encoded private key.
func FromPrivateKey(encoded string) (*Wallet, error) {
	priv, err := crypto.DecodePrivateKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("restore wallet: %w", err)
	}

	return &Wallet{
		publicKey:  priv.Public().(ed25519.PublicKey),
		privateKey: priv,
	}, nil
}

// PublicKey returns the raw public key.
func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.publicKey
}

// EncodedPublicKey returns the public key in the base64 form carried by
// transactions.
func (w *Wallet) EncodedPublicKey() string {
	return crypto.EncodePublicKey(w.publicKey)
}

// PrivateKey returns the signing key.
func (w *Wallet) PrivateKey() ed25519.PrivateKey {
	return w.privateKey
}

// EncodedPrivateKey returns the private key in base64, suitable for FromPrivateKey.
func (w *Wallet) EncodedPrivateKey() string {
	return crypto.EncodePrivateKey(w.privateKey)
}

// Address returns base58check(version ∥ RIPEMD160(SHA256(publicKey))).
func (w *Wallet) Address() string {
	return AddressOf(w.publicKey)
}

// AddressOf derives the address of any public key.
func AddressOf(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)

	h := ripemd160.New()
	h.Write(sum[:])

	return base58.CheckEncode(h.Sum(nil), AddressVersion)
}

// ValidateAddress checks the checksum, version and payload length of address.
func ValidateAddress(address string) error {
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	if version != AddressVersion {
		return fmt.Errorf("%w: unexpected version 0x%02x", ErrInvalidAddress, version)
	}

	if len(payload) != ripemd160.Size {
		return fmt.Errorf("%w: payload must have %d bytes, got %d", ErrInvalidAddress, ripemd160.Size, len(payload))
	}

	return nil
}
