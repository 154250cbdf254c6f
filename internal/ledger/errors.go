package ledger

import "errors"

var (
	// ErrInvalidArgument is returned for malformed input: a non-genesis
	// transaction without a sender public key, missing identifiers, a nil
	// block, or a difficulty outside [0, MaxDifficulty].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMiningExhausted is returned when a mining attempt budget runs out
	// before a nonce satisfying the difficulty is found.
	ErrMiningExhausted = errors.New("mining attempt budget exhausted")
)
