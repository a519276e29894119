package tgtg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshPath = "/auth/v3/token/refresh"

// sessionMargin is how long before expiry a token is treated as stale.
const sessionMargin = time.Minute

// defaultTokenLifetime is assumed when a refresh response carries no TTL and
// the token itself has no readable expiry.
const defaultTokenLifetime = 4 * time.Hour

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	AccessTokenTTL int64  `json:"access_token_ttl_seconds"`
}

// RefreshSession exchanges the refresh token for a fresh access token. The
// API may rotate the refresh token and the datadome cookie at the same time;
// both are kept.
func (c *Client) RefreshSession(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	body, err := c.doRequest(ctx, refreshPath, refreshRequest{RefreshToken: refreshToken}, false)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal refresh response: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("refresh session: no access token in response")
	}

	expiresAt := accessTokenExpiry(resp.AccessToken)
	if expiresAt.IsZero() {
		ttl := defaultTokenLifetime
		if resp.AccessTokenTTL > 0 {
			ttl = time.Duration(resp.AccessTokenTTL) * time.Second
		}
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		c.refreshToken = resp.RefreshToken
	}
	c.expiresAt = expiresAt
	c.mu.Unlock()

	c.logger.Debug("session refreshed", "expires_at", expiresAt)
	return nil
}

// ensureSession refreshes the access token when it is about to expire. A
// token with no readable expiry is trusted until the API rejects it.
func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	valid := c.accessToken != "" && (c.expiresAt.IsZero() || time.Until(c.expiresAt) > sessionMargin)
	c.mu.Unlock()

	if valid {
		return nil
	}
	return c.RefreshSession(ctx)
}

// accessTokenExpiry reads the exp claim from a TGTG access token. The tokens
// are JWTs issued by TGTG; we only consume them, so the signature is not
// checked. Returns the zero time when the token does not parse or carries no
// expiry.
func accessTokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
