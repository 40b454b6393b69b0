package swyftx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// authRefreshPath is the token exchange endpoint. It is served from the public
// API root and is the only POST endpoint that takes the API key in its body.
const authRefreshPath = "auth/refresh/"

// Authenticate exchanges the configured API key for a fresh bearer token and
// stores it in the session slot, unconditionally overwriting any previous
// token. The raw response is returned for diagnostic use.
//
// The token's server-side expiry is not exposed, so there is no proactive
// refresh; callers rely on ensureAuthenticated to refresh only when the slot
// is empty. A token rejected by the exchange is not cleared here either - the
// caller must re-authenticate explicitly.
func (c *Client) Authenticate(ctx context.Context) (map[string]any, error) {
	payload, err := json.Marshal(map[string]string{"apiKey": c.apiKey})
	if err != nil {
		return nil, fmt.Errorf("swyftx: marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+authRefreshPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("swyftx: create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swyftx: auth request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swyftx: read auth response: %w", err)
	}
	if err := classifyResponse(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		// Error status with a body the classifier could not read an error
		// field from.
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrExchange, resp.StatusCode, string(respBody))
	}

	var decoded map[string]any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("swyftx: decode auth response: %w", err)
	}

	token, _ := decoded["accessToken"].(string)
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()

	return decoded, nil
}

// HasValidToken reports whether the session slot holds a token. There is no
// expiry check; a token is treated as valid until a request fails for an
// authentication reason.
func (c *Client) HasValidToken() bool {
	return c.token() != ""
}

// ensureAuthenticated refreshes the token only when the session has none.
// Concurrent callers that race on an empty slot share a single refresh call
// through the singleflight group instead of each issuing their own.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.HasValidToken() {
		return nil
	}
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		if c.HasValidToken() {
			return nil, nil
		}
		return c.Authenticate(ctx)
	})
	return err
}
