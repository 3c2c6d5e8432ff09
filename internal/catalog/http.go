package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// doGetJSON performs a GET request and unmarshals the JSON response into the result type.
// The endpoint is the path after the base API URL (e.g., "amiibo/?name=mario").
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	url := c.resolveURL(endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from the configured base URL
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "(could not read error body)"
	}
	return strings.TrimSpace(string(body))
}

// IsNotFoundError returns true if the error indicates a 404 Not Found response.
// The catalog API answers 404 for searches with no matches.
func IsNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "status 404")
}
