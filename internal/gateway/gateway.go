package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/livinlefevreloca/stockroom/internal/ops"
)

// RequestIDHeader carries a per-request id for log correlation
const RequestIDHeader = "X-Request-Id"

// Config holds the remote API settings
type Config struct {
	URL string `toml:"url"`

	// Method is "POST" (JSON body) or "GET" (query string)
	Method string `toml:"method"`

	// Timeout is applied to the HTTP client; 0 leaves it unbounded
	Timeout time.Duration `toml:"timeout"`
}

// DefaultConfig returns gateway defaults. URL has no default.
func DefaultConfig() Config {
	return Config{
		Method: http.MethodPost,
	}
}

// Validate checks the gateway configuration
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("gateway url must be specified")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gateway url must be an absolute http(s) URL, got %q", c.URL)
	}
	if c.Method != http.MethodPost && c.Method != http.MethodGet {
		return fmt.Errorf("gateway method must be POST or GET, got %q", c.Method)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("gateway timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}

// Gateway performs a single remote call for one action
type Gateway interface {
	Do(ctx context.Context, action string, params ops.Params) (ops.Response, error)
}

// Client is the HTTP implementation of Gateway. Each Do is exactly one
// request: no retries.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a gateway client
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// Do sends action with params and decodes the JSON object in the reply
func (c *Client) Do(ctx context.Context, action string, params ops.Params) (ops.Response, error) {
	req, err := c.newRequest(ctx, action, params)
	if err != nil {
		return nil, &NetworkError{Action: action, Err: err}
	}

	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("gateway request failed",
			"action", action,
			"request_id", requestID,
			"error", err)
		return nil, &NetworkError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		c.logger.Debug("gateway request rejected",
			"action", action,
			"request_id", requestID,
			"status", resp.StatusCode)
		return nil, &NetworkError{Action: action, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Action: action, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var data ops.Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &MalformedResponseError{Action: action, Err: err}
	}
	if data == nil {
		return nil, &MalformedResponseError{Action: action, Err: fmt.Errorf("response is not a JSON object")}
	}

	c.logger.Debug("gateway request completed",
		"action", action,
		"request_id", requestID,
		"status", data.Status(),
		"duration", time.Since(start))

	return data, nil
}

func (c *Client) newRequest(ctx context.Context, action string, params ops.Params) (*http.Request, error) {
	if c.config.Method == http.MethodGet {
		u, err := url.Parse(c.config.URL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("action", action)
		for k, v := range params {
			q.Set(k, queryValue(v))
		}
		u.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	payload := make(map[string]any, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["action"] = action

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// Apps Script web apps only accept simple, non-preflighted content types
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	return req, nil
}

func queryValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
