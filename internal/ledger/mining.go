package ledger

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MaxDifficulty is the largest satisfiable difficulty: every hex character zero.
const MaxDifficulty = types.DigestLength

// mineConfig holds the bounds of a single proof-of-work search.
type mineConfig struct {
	maxAttempts uint64 // 0 means unbounded
}

// MineOption configures a proof-of-work search.
type MineOption func(*mineConfig)

// WithMaxAttempts caps the number of nonces tried. Zero means no cap.
func WithMaxAttempts(n uint64) MineOption {
	return func(c *mineConfig) {
		c.maxAttempts = n
	}
}

// checkDifficulty rejects difficulties that cannot be expressed as a hex prefix.
func checkDifficulty(difficulty int) error {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty must be within [0, %d], got %d", ErrInvalidArgument, MaxDifficulty, difficulty)
	}
	return nil
}

// randomNonce draws a non-negative 63-bit value from crypto/rand.
func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("draw random nonce: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]) & math.MaxInt64, nil
}

// nextNonce increments n, restarting from a random 63-bit value instead of
// wrapping past the top of the range.
func nextNonce(n uint64) (uint64, error) {
	if n == math.MaxUint64 {
		return randomNonce()
	}
	return n + 1, nil
}

// Mine searches nonces until the block hash starts with difficulty '0' hex
// characters. Nonce and Hash are updated together, so the block stays
// self-consistent even when the search is interrupted.
//
// The search stops early when ctx is done (returning the context error) or
// when a WithMaxAttempts budget runs out (returning ErrMiningExhausted).
// Expected work grows as 16^difficulty.
func (b *Block) Mine(ctx context.Context, difficulty int, opts ...MineOption) (err error) {
	if err := checkDifficulty(difficulty); err != nil {
		return err
	}

	var cfg mineConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := tracer.Start(ctx, "ledger.Block.Mine", trace.WithAttributes(
		attribute.Int64("block.index", int64(b.Index)),
		attribute.Int("mining.difficulty", difficulty),
	))

	var (
		attempts uint64
		started  = time.Now()
	)
	defer func() {
		attrs := metric.WithAttributes(
			attribute.Int("mining.difficulty", difficulty),
			attribute.Bool("mining.success", err == nil),
		)
		miningAttempts.Add(ctx, int64(attempts), attrs)
		miningDuration.Record(ctx, time.Since(started).Seconds(), attrs)

		span.SetAttributes(attribute.Int64("mining.attempts", int64(attempts)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	hash, err := b.RecomputeHash()
	if err != nil {
		return err
	}
	b.Hash = hash

	for !b.Hash.HasZeroPrefix(difficulty) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("mining block %d aborted after %d attempts: %w", b.Index, attempts, err)
		}

		if cfg.maxAttempts > 0 && attempts >= cfg.maxAttempts {
			return fmt.Errorf("%w: block %d after %d attempts", ErrMiningExhausted, b.Index, attempts)
		}

		nonce, err := nextNonce(b.Nonce)
		if err != nil {
			return err
		}

		prevNonce := b.Nonce
		b.Nonce = nonce
		hash, err := b.RecomputeHash()
		if err != nil {
			b.Nonce = prevNonce
			return err
		}

		b.Hash = hash
		attempts++
	}

	logger.Debug(ctx, "block mined",
		"block.index", b.Index,
		"block.hash", b.Hash,
		"block.nonce", b.Nonce,
		"mining.attempts", attempts,
	)

	return nil
}
