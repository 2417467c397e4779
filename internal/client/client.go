package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/server"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second
)

// Client talks to a running "lanscan serve" instance
type Client struct {
	// BaseURL is the server's base URL (e.g., "http://127.0.0.1:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Dialer opens the websocket feed
	Dialer *websocket.Dialer

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a client. A bare host:port is treated as http.
func NewClient(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		Dialer:                websocket.DefaultDialer,
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// retry runs attempt until it succeeds, fails with a non-retryable error,
// or the attempts are used up
func (c *Client) retry(ctx context.Context, attempt func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// Latest fetches the server's most recent scan result
func (c *Client) Latest(ctx context.Context) (*discovery.ScanResult, error) {
	var result *discovery.ScanResult
	err := c.retry(ctx, func() error {
		var err error
		result, err = c.latestAttempt(ctx)
		return err
	})
	return result, err
}

func (c *Client) latestAttempt(ctx context.Context) (*discovery.ScanResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/scan", nil)
	if err != nil {
		return nil, ClassifyNetworkError("failed to create GET request", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyNetworkError("failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, serverMessage(resp.StatusCode, body))
	}

	var result discovery.ScanResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewParseError("failed to parse scan result", err)
	}
	return &result, nil
}

// Trigger asks the server to scan now. It returns the server's status,
// "started" or "already running".
func (c *Client) Trigger(ctx context.Context) (string, error) {
	var status string
	err := c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/scan", nil)
		if err != nil {
			return ClassifyNetworkError("failed to create POST request", err)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return ClassifyNetworkError("POST request failed", err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusAccepted {
			return NewHTTPError(resp.StatusCode, serverMessage(resp.StatusCode, body))
		}

		var tr struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &tr); err != nil {
			return NewParseError("failed to parse trigger response", err)
		}
		status = tr.Status
		return nil
	})
	return status, err
}

// Follow streams live feed events to fn until ctx ends, the server closes
// the feed, or fn returns an error
func (c *Client) Follow(ctx context.Context, fn func(server.Event) error) error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	conn, resp, err := c.Dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return NewHTTPError(resp.StatusCode, "websocket handshake failed")
		}
		return ClassifyNetworkError("websocket dial failed", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadJSON when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var ev server.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return ClassifyNetworkError("websocket read failed", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", c.BaseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// serverMessage extracts the "error" field of an API error body
func serverMessage(status int, body []byte) string {
	var er struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		return er.Error
	}
	return fmt.Sprintf("unexpected status code: %d", status)
}
