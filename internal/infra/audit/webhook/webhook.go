// Package webhook posts chain exports to an HTTP audit endpoint.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/ledgerexport"
	"github.com/gabapcia/powledger/internal/pkg/resilience/retry"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnexpectedStatus is returned when the endpoint answers outside 2xx.
var ErrUnexpectedStatus = errors.New("unexpected webhook response status")

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

type sink struct {
	client *retryablehttp.Client
	url    string
}

// Compile-time assertion to ensure sink implements the Publisher interface.
var _ ledgerexport.Publisher = (*sink)(nil)

// New returns a Publisher that POSTs every export as JSON to url.
func New(client *retryablehttp.Client, url string) *sink {
	return &sink{client: client, url: url}
}

// isClientError reports whether resending the same export cannot succeed.
// 408 and 429 are left to the retry policy.
func isClientError(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}

	return status >= 400 && status < 500
}

func (s *sink) Publish(ctx context.Context, doc ledger.Document) error {
	body, err := doc.JSON()
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode export: %w", err))
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	if tip, ok := doc.Tip(); ok {
		req.Header.Set("X-Ledger-Tip", tip.Hash.String())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post export to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(msg))
		if isClientError(resp.StatusCode) {
			return retry.Permanent(err)
		}

		return err
	}

	return nil
}
