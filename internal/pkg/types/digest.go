package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DigestLength is the number of hex characters in a rendered SHA-256 digest.
const DigestLength = 64

// Digest represents a SHA-256 digest rendered as 64 lowercase hex characters
// (e.g., "0000a3f1..."). It provides validation, JSON marshaling/unmarshaling
// and proof-of-work prefix checks.
type Digest string

// DigestFromBytes renders a raw 32-byte digest as a Digest.
func DigestFromBytes(b [32]byte) Digest {
	return Digest(hex.EncodeToString(b[:]))
}

// DigestFromString validates the input string and returns a Digest value if valid.
func DigestFromString(s string) (Digest, error) {
	if err := validateDigest(s); err != nil {
		return "", err
	}
	return Digest(s), nil
}

// validateDigest checks whether a string is exactly 64 lowercase hexadecimal characters.
func validateDigest(s string) error {
	if len(s) != DigestLength {
		return fmt.Errorf("digest must have %d characters, got %d", DigestLength, len(s))
	}

	if strings.ToLower(s) != s {
		return fmt.Errorf("digest must be lowercase hex")
	}

	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("invalid hexadecimal digest: %w", err)
	}

	return nil
}

// MarshalJSON encodes the Digest as a JSON string.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// UnmarshalJSON parses a JSON string into a Digest. Only well-formed digests
// are accepted.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid digest string: %w", err)
	}

	if err := validateDigest(s); err != nil {
		return err
	}

	*d = Digest(s)
	return nil
}

// HasZeroPrefix reports whether the first n hex characters are all '0'.
// A non-positive n is always satisfied.
func (d Digest) HasZeroPrefix(n int) bool {
	if n <= 0 {
		return true
	}

	if n > len(d) {
		return false
	}

	return strings.Count(string(d[:n]), "0") == n
}

// String returns the digest as a plain string.
func (d Digest) String() string {
	return string(d)
}
