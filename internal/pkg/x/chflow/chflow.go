// Package chflow wraps channel sends and receives so they give up when a
// context is done.
package chflow

import "context"

// Receive returns the next value from ch. ok is false when ctx is done first
// or ch is closed.
func Receive[T any](ctx context.Context, ch <-chan T) (value T, ok bool) {
	select {
	case <-ctx.Done():
		return value, false
	case value, ok = <-ch:
		return value, ok
	}
}

// ReceiveN collects up to n values from ch. It stops early, returning what it
// has and false, when ctx is done or ch is closed.
func ReceiveN[T any](ctx context.Context, ch <-chan T, n int) ([]T, bool) {
	values := make([]T, 0, n)
	for len(values) < n {
		v, ok := Receive(ctx, ch)
		if !ok {
			return values, false
		}
		values = append(values, v)
	}

	return values, true
}

// Send delivers value on ch. It reports false if ctx was done before the
// value was taken.
func Send[T any](ctx context.Context, ch chan<- T, value T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- value:
		return true
	}
}
