// Package wfmarket provides a thin client for the public warframe.market API.
package wfmarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.warframe.market/v1"
	defaultLanguageCode         = "en"
	defaultPlatformLabel        = "pc"
	errorBodyReadLimit    int64 = 1024
)

// ItemRecord is one tradable item from the marketplace feed.
type ItemRecord struct {
	ID       string `json:"id"`
	ItemName string `json:"item_name"`
	URLName  string `json:"url_name"`
	Thumb    string `json:"thumb"`
}

// Client talks to the warframe.market REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	platform   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the marketplace base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLanguage sets the Language header sent with feed requests.
func WithLanguage(code string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(code)
		if trimmed != "" {
			c.language = trimmed
		}
	}
}

// WithPlatform sets the Platform header sent with feed requests.
func WithPlatform(label string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			c.platform = trimmed
		}
	}
}

// WithTimeout bounds each feed request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a marketplace client with sane defaults.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		language:   defaultLanguageCode,
		platform:   defaultPlatformLabel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// ListItems fetches the full tradable-item feed.
func (c *Client) ListItems(ctx context.Context) ([]ItemRecord, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "marketplace client not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build items request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Language", c.language)
	req.Header.Set("Platform", c.platform)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute items request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeUpstream,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"items request failed",
		)
	}

	var apiResp struct {
		Payload struct {
			Items []ItemRecord `json:"items"`
		} `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode items response")
	}

	return apiResp.Payload.Items, nil
}
