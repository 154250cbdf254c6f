package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast() []Option {
	return []Option{WithDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}
}

func TestExecute(t *testing.T) {
	t.Run("should call a succeeding operation once", func(t *testing.T) {
		calls := 0

		err := New(fast()...).Execute(t.Context(), func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("should retry until the operation succeeds", func(t *testing.T) {
		calls := 0
		var retried []uint

		r := New(append(fast(), WithAttempts(3), WithOnRetry(func(attempt uint, _ error) {
			retried = append(retried, attempt)
		}))...)

		err := r.Execute(t.Context(), func() error {
			calls++
			if calls < 3 {
				return errors.New("sink unavailable")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []uint{1, 2}, retried)
	})

	t.Run("should return the last error once attempts are spent", func(t *testing.T) {
		calls := 0
		expectedErr := errors.New("sink unavailable")

		err := New(append(fast(), WithAttempts(2))...).Execute(t.Context(), func() error {
			calls++
			return expectedErr
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, 2, calls)
	})

	t.Run("should stop on a permanent error", func(t *testing.T) {
		calls := 0
		expectedErr := errors.New("document cannot be encoded")

		err := New(append(fast(), WithAttempts(5))...).Execute(t.Context(), func() error {
			calls++
			return Permanent(expectedErr)
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, 1, calls)
	})

	t.Run("should stop when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0

		err := New(WithAttempts(5), WithDelay(time.Second)).Execute(ctx, func() error {
			calls++
			cancel()
			return errors.New("sink unavailable")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestNew(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		r, ok := New().(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(3), r.cfg.attempts)
		assert.Equal(t, time.Second, r.cfg.delay)
		assert.Equal(t, 5*time.Second, r.cfg.maxDelay)
		assert.True(t, r.cfg.lastErrOnly)
	})

	t.Run("should apply options", func(t *testing.T) {
		r, ok := New(WithAttempts(7), WithLastErrorOnly(false)).(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(7), r.cfg.attempts)
		assert.False(t, r.cfg.lastErrOnly)
	})
}
