package tgtg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError represents an error response from the TGTG API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tgtg api error %d: %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the session was rejected.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// post performs an authenticated POST and decodes the JSON response into
// result. A rejected session triggers one token refresh and one replay;
// beyond that, errors surface to the caller and the next poll cycle is the
// retry policy.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	body, err := c.doRequest(ctx, path, payload, true)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		c.logger.Debug("session rejected, refreshing", "path", path)
		if err := c.RefreshSession(ctx); err != nil {
			return err
		}
		body, err = c.doRequest(ctx, path, payload, true)
	}
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// doRequest performs a single POST with the app headers. When authed is
// false the bearer token is omitted (the token refresh call authenticates
// through its body instead).
func (c *Client) doRequest(ctx context.Context, path string, payload any, authed bool) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("User-Agent", c.userAgent)

	c.mu.Lock()
	if authed && c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	c.rotateCookie(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// rotateCookie keeps the latest datadome cookie issued by the API.
func (c *Client) rotateCookie(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name == "datadome" {
			c.mu.Lock()
			c.cookie = ck.Name + "=" + ck.Value
			c.mu.Unlock()
			return
		}
	}
}
