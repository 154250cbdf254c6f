package ledger

import (
	"context"
	"fmt"

	"github.com/gabapcia/powledger/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ViolationKind names the check a block failed.
type ViolationKind string

const (
	// HashMismatch means the stored hash differs from a fresh recomputation.
	HashMismatch ViolationKind = "hash_mismatch"

	// BrokenLink means the previous hash differs from the prior block's hash.
	BrokenLink ViolationKind = "broken_link"

	// InvalidSignature means a transaction failed signature verification.
	InvalidSignature ViolationKind = "invalid_signature"
)

// Violation describes one failed integrity check.
type Violation struct {
	Block       int           // index into the chain
	Transaction int           // index into the block; -1 for block-level checks
	Kind        ViolationKind // which check failed
	Err         error         // verification error, if the check could not run cleanly
}

func (v Violation) String() string {
	if v.Transaction < 0 {
		return fmt.Sprintf("block %d: %s", v.Block, v.Kind)
	}

	if v.Err != nil {
		return fmt.Sprintf("block %d transaction %d: %s: %v", v.Block, v.Transaction, v.Kind, v.Err)
	}

	return fmt.Sprintf("block %d transaction %d: %s", v.Block, v.Transaction, v.Kind)
}

// inspect runs the integrity checks over blocks from index 1 onward. In each
// block it checks the hash, then the link, then every transaction signature.
// Genesis is never inspected. With stopAtFirst it returns as soon as one
// violation is found.
func inspect(blocks []Block, stopAtFirst bool) []Violation {
	var violations []Violation
	report := func(v Violation) bool {
		violations = append(violations, v)
		return stopAtFirst
	}

	for i := 1; i < len(blocks); i++ {
		current, previous := &blocks[i], &blocks[i-1]

		hash, err := current.RecomputeHash()
		if err != nil || hash != current.Hash {
			if report(Violation{Block: i, Transaction: -1, Kind: HashMismatch, Err: err}) {
				return violations
			}
		}

		if current.PreviousHash != previous.Hash {
			if report(Violation{Block: i, Transaction: -1, Kind: BrokenLink}) {
				return violations
			}
		}

		for j, tx := range current.Transactions {
			ok, err := tx.Verify()
			if ok && err == nil {
				continue
			}

			if report(Violation{Block: i, Transaction: j, Kind: InvalidSignature, Err: err}) {
				return violations
			}
		}
	}

	return violations
}

// Validate reports whether every non-genesis block has an up-to-date hash, is
// linked to its predecessor and carries only correctly signed transactions.
// It stops at the first failure.
func (c *Chain) Validate(ctx context.Context) bool {
	violations := inspect(c.Blocks(), true)
	valid := len(violations) == 0

	validationRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("chain.valid", valid)))

	if !valid {
		logger.Warn(ctx, "chain validation failed", "violation", violations[0].String())
	}

	return valid
}

// Audit runs the same checks as Validate without stopping, and returns every
// violation found in chain order. An empty result means the chain is valid.
func (c *Chain) Audit(ctx context.Context) []Violation {
	violations := inspect(c.Blocks(), false)

	validationRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("chain.valid", len(violations) == 0)))

	for _, v := range violations {
		logger.Warn(ctx, "chain integrity violation",
			"block.index", v.Block,
			"transaction.index", v.Transaction,
			"violation.kind", v.Kind,
		)
	}

	return violations
}
