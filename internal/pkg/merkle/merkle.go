// Package merkle folds an ordered list of leaf digests into a single root by
// pairwise hashing, and builds inclusion proofs against that root.
//
// Leaves are combined as Digest(left + right) over their hex renderings. When a
// level has an odd number of nodes the last one is paired with itself. The
// result depends on leaf order; no sorting takes place.
package merkle

import (
	"errors"
	"fmt"

	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/types"
)

var (
	// ErrInvalidArgument is the root of every input error raised by this package.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoLeaves is returned when a root or proof is requested for an empty leaf list.
	ErrNoLeaves = fmt.Errorf("%w: merkle tree needs at least one leaf", ErrInvalidArgument)

	// ErrLeafOutOfRange is returned when a proof is requested for an index outside the leaf list.
	ErrLeafOutOfRange = fmt.Errorf("%w: leaf index out of range", ErrInvalidArgument)
)

// Side tells on which side of the running hash a proof sibling sits.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Step is one level of an inclusion proof.
type Step struct {
	Sibling types.Digest `json:"sibling"`
	Side    Side         `json:"side"`
}

// combine hashes two nodes into their parent.
func combine(left, right types.Digest) types.Digest {
	return crypto.DigestString(string(left) + string(right))
}

// nextLevel folds one level of the tree, duplicating the last node when the
// level has an odd length.
func nextLevel(level []types.Digest) []types.Digest {
	parents := make([]types.Digest, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		left := level[i]
		right := left
		if i+1 < len(level) {
			right = level[i+1]
		}
		parents = append(parents, combine(left, right))
	}
	return parents
}

// Root returns the Merkle root of leaves. A single leaf is its own root.
func Root(leaves []types.Digest) (types.Digest, error) {
	if len(leaves) == 0 {
		return "", ErrNoLeaves
	}

	level := leaves
	for len(level) > 1 {
		level = nextLevel(level)
	}

	return level[0], nil
}

// Proof returns the sibling path that links leaves[index] to the root.
// The proof of a single-leaf tree is empty.
func Proof(leaves []types.Digest, index int) ([]Step, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLeafOutOfRange, index, len(leaves))
	}

	var (
		steps []Step
		level = leaves
	)
	for len(level) > 1 {
		var step Step
		if index%2 == 0 {
			step.Side = Right
			step.Sibling = level[index]
			if index+1 < len(level) {
				step.Sibling = level[index+1]
			}
		} else {
			step.Side = Left
			step.Sibling = level[index-1]
		}

		steps = append(steps, step)
		level = nextLevel(level)
		index /= 2
	}

	return steps, nil
}

// VerifyProof reports whether folding leaf along proof yields root.
func VerifyProof(leaf types.Digest, proof []Step, root types.Digest) bool {
	current := leaf
	for _, step := range proof {
		switch step.Side {
		case Left:
			current = combine(step.Sibling, current)
		case Right:
			current = combine(current, step.Sibling)
		default:
			return false
		}
	}
	return current == root
}
