package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to a single opencode server over its REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a client for the server at baseURL. The timeout bounds
// every request unless a shorter context deadline applies.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BaseURL returns the server address this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListSessions returns the sessions known to the server. This is also the
// reachability probe used by discovery and health polling.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/session", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a new session. An empty title lets the server pick
// its own.
func (c *Client) CreateSession(ctx context.Context, title string) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/session", createSessionRequest{Title: title}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Chat sends one user text message to a session. The response body is
// discarded; callers fetch the session's messages to see the reply, which
// also covers partially completed replies after an abort.
func (c *Client) Chat(ctx context.Context, sessionID, providerID, modelID, text string) error {
	req := chatRequest{
		ProviderID: providerID,
		ModelID:    modelID,
		Parts:      []TextInput{{Type: PartText, Text: text}},
	}
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/message", req, nil)
}

// Messages fetches all messages in a session, oldest first.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, "/session/"+sessionID+"/message", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Abort asks the server to stop generating the session's in-flight response.
func (c *Client) Abort(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/abort", nil, nil)
}

// Providers fetches the provider/model catalog.
func (c *Client) Providers(ctx context.Context) (*Catalog, error) {
	var catalog Catalog
	if err := c.do(ctx, http.MethodGet, "/config/providers", nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("server request", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFrom(resp)
	}
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// apiErrorFrom extracts the server's error message from a failed response.
// The body may be a structured error envelope or plain text.
func apiErrorFrom(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	var wire struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Data.Message != "" {
			msg = wire.Data.Message
		} else if wire.Message != "" {
			msg = wire.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// AsAPIError unwraps err into an APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsConnection reports whether err is a transport-level failure (refused,
// reset, timed out) rather than a server-side rejection.
func IsConnection(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
