package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// EncodePublicKey renders a public key as standard base64.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// DecodePublicKey parses a base64 public key and checks it is a usable
// Ed25519 point. Failures wrap ErrVerification.
func DecodePublicKey(encoded string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to base64 decode public key: %w", ErrVerification, err)
	}

	if err := checkPublicKey(raw); err != nil {
		return nil, err
	}

	return ed25519.PublicKey(raw), nil
}

// EncodePrivateKey renders a private key as standard base64.
func EncodePrivateKey(priv ed25519.PrivateKey) string {
	return base64.StdEncoding.EncodeToString(priv)
}

// DecodePrivateKey parses a base64 private key. Failures wrap ErrSigning
// because a private key is only ever decoded to sign.
func DecodePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to base64 decode private key: %w", ErrSigning, err)
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must have %d bytes, got %d", ErrSigning, ed25519.PrivateKeySize, len(raw))
	}

	return ed25519.PrivateKey(raw), nil
}

// EncodeSignature renders a signature as standard base64.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// DecodeSignature parses a base64 signature. Failures wrap ErrVerification.
func DecodeSignature(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to base64 decode signature: %w", ErrVerification, err)
	}

	return raw, nil
}
