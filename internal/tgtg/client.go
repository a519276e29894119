package tgtg

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultBaseURL is the production TooGoodToGo app API root.
const DefaultBaseURL = "https://apptoogoodtogo.com/api"

// defaultUserAgent mimics the Android app; the API rejects unknown agents.
const defaultUserAgent = "TGTG/24.4.10 Dalvik/2.1.0 (Linux; U; Android 10; SM-G935F Build/NRD90M)"

// Credentials holds the session tokens captured from the TGTG app.
type Credentials struct {
	AccessToken  string // Bearer token for API calls
	RefreshToken string // Long-lived token used to renew the session
	Cookie       string // datadome cookie captured alongside the tokens
	UserID       string // Optional account user ID, sent in request bodies
	Email        string // Optional account email, informational only
}

// Validate checks that the fields required for API access are present.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("refresh token is required")
	}
	if c.Cookie == "" {
		return fmt.Errorf("cookie is required")
	}
	return nil
}

// Client provides access to the TooGoodToGo app REST API.
type Client struct {
	baseURL    string
	userAgent  string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger

	// Session state; the API rotates all three over time.
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	cookie       string
	expiresAt    time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new TGTG API client from app session credentials.
func NewClient(creds Credentials, opts ...ClientOption) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		userID:    creds.UserID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		accessToken:  creds.AccessToken,
		refreshToken: creds.RefreshToken,
		cookie:       creds.Cookie,
		expiresAt:    accessTokenExpiry(creds.AccessToken),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent overrides the app user agent sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
