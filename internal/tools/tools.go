// Package tools implements the stateless command collaborators: weather
// lookup, news headlines and image generation. None of them retries.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured is returned when the tool has no credential.
	ErrNotConfigured = errors.New("tool not configured")
	// ErrUnavailable is returned for any non-success response or timeout.
	ErrUnavailable = errors.New("service unavailable")
	// ErrNotFound is returned when the service does not know the query.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery is returned when a required argument is blank.
	ErrEmptyQuery = errors.New("empty query")
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

func newHTTPClient(c *http.Client, timeout time.Duration) *http.Client {
	if c != nil {
		return c
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and decodes a 2xx JSON body into out. 404 maps to
// ErrNotFound, every other failure to ErrUnavailable.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}
	return nil
}
