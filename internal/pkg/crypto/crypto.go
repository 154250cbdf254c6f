// Package crypto is the digest and signature provider of the ledger. It wraps
// SHA-256 for digests and Ed25519 for signatures, and carries keys and
// signatures across package boundaries as base64 strings so callers never
// depend on a concrete key representation.
package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/gabapcia/powledger/internal/pkg/types"

	"filippo.io/edwards25519"
)

var (
	// ErrSigning is returned when the private key is malformed or the
	// signature primitive rejects the operation.
	ErrSigning = errors.New("signing failed")

	// ErrVerification is returned when a stored public key or signature cannot
	// be decoded. A well-formed signature that does not match is not an error.
	ErrVerification = errors.New("malformed verification input")

	// ErrHashComputation is returned when the material to be hashed cannot be
	// produced.
	ErrHashComputation = errors.New("hash computation failed")
)

// Digest returns the SHA-256 digest of data as 64 lowercase hex characters.
func Digest(data []byte) types.Digest {
	return types.DigestFromBytes(sha256.Sum256(data))
}

// DigestString is Digest over the UTF-8 bytes of s.
func DigestString(s string) types.Digest {
	return Digest([]byte(s))
}

// GenerateKeyPair creates a fresh Ed25519 key pair from crypto/rand.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to generate key pair: %w", err)
	}
	return pub, priv, nil
}

// Sign signs message with key.
//
// It fails with ErrSigning if the key is nil, has the wrong length, or its
// embedded public half does not match the one derived from its seed.
func Sign(message []byte, key ed25519.PrivateKey) ([]byte, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must have %d bytes, got %d", ErrSigning, ed25519.PrivateKeySize, len(key))
	}

	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: private key seed does not match its public key", ErrSigning)
	}

	return ed25519.Sign(key, message), nil
}

// Verify reports whether signature is a valid signature of message under pub.
//
// A mismatching signature yields (false, nil). A public key or signature with
// the wrong length, or a public key that is not a point on edwards25519, yields
// ErrVerification.
func Verify(message, signature []byte, pub ed25519.PublicKey) (bool, error) {
	if err := checkPublicKey(pub); err != nil {
		return false, err
	}

	if len(signature) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: signature must have %d bytes, got %d", ErrVerification, ed25519.SignatureSize, len(signature))
	}

	return ed25519.Verify(pub, message, signature), nil
}

// checkPublicKey validates length and curve membership of an encoded point.
func checkPublicKey(pub []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key must have %d bytes, got %d", ErrVerification, ed25519.PublicKeySize, len(pub))
	}

	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return fmt.Errorf("%w: public key is not a valid curve point: %w", ErrVerification, err)
	}

	return nil
}
