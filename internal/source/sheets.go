// Package source pulls raw rows from the published spreadsheet endpoint (an
// Apps Script web app returning a JSON array of objects). Every failure is
// classified into the sync error taxonomy before it leaves this package.
package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brunovinte3/controlsst/internal/normalize"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

const (
	maxBodyBytes    = 16 << 20
	defaultAttempts = 3
)

// Client fetches rows from a sheet endpoint.
type Client struct {
	http       *http.Client
	attempts   int
	retryDelay time.Duration
}

// NewClient builds a Client whose requests are bounded by timeout. A hanging
// source must never block the host process indefinitely. Transient failures
// (network errors, 5xx, 429) are retried a bounded number of times.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		attempts:   defaultAttempts,
		retryDelay: 500 * time.Millisecond,
	}
}

// FetchRows pulls the row collection from url. The returned error is always
// one of the classified sync errors:
//
//   - SYNC_TRANSPORT for network failures and non-success statuses
//   - SYNC_AUTHORIZATION when the endpoint serves a login page instead of data
//   - SYNC_SCHEMA when the payload is not an array of objects
//   - SYNC_EMPTY when the array has zero rows
func (c *Client) FetchRows(ctx context.Context, url string) ([]normalize.Row, error) {
	if strings.TrimSpace(url) == "" {
		return nil, appErrors.ErrSyncNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrSyncTransport.Code, appErrors.ErrSyncTransport.Status, appErrors.ErrSyncTransport.Message)
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
		rows, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return rows, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// fetchOnce performs a single request. retryable marks failures worth another
// attempt: network errors and 5xx/429 statuses. Authorization and payload
// shape problems will not heal on retry.
func (c *Client) fetchOnce(ctx context.Context, url string) (rows []normalize.Row, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrSyncTransport.Code, appErrors.ErrSyncTransport.Status, "invalid source url")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrSyncTransport.Code, appErrors.ErrSyncTransport.Status, appErrors.ErrSyncTransport.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrSyncTransport.Code, appErrors.ErrSyncTransport.Status, "failed to read source response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, false, appErrors.ErrSyncAuthorization
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, appErrors.Clone(appErrors.ErrSyncTransport, "external source answered with status "+resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, appErrors.Clone(appErrors.ErrSyncTransport, "external source answered with status "+resp.Status)
	}

	// A Google login page means the deployment is not public. It arrives with
	// a 200 and an HTML body, so sniff the payload rather than the status.
	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		return nil, false, appErrors.ErrSyncAuthorization
	}

	rows, err = decodeRows(body)
	return rows, false, err
}

func decodeRows(body []byte) ([]normalize.Row, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, appErrors.ErrSyncEmpty
	}

	if strings.HasPrefix(trimmed, "{") {
		// Error payloads come back as an object with an error field.
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
			return nil, appErrors.Clone(appErrors.ErrSyncSchema, "external source reported: "+payload.Error)
		}
		return nil, appErrors.ErrSyncSchema
	}

	var rows []normalize.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSyncSchema.Code, appErrors.ErrSyncSchema.Status, appErrors.ErrSyncSchema.Message)
	}
	if len(rows) == 0 {
		return nil, appErrors.ErrSyncEmpty
	}
	return rows, nil
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
