// Package gateway implements the HTTP boundary to the spreadsheet-backed
// remote store. The store is a Google Apps Script web app with a single
// endpoint: reads are GET requests carrying an action name plus parameters
// in the query string, writes are POST requests carrying a JSON body. Every
// response is the envelope {success, data?, message?}.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the decoded response envelope. Transport failures are folded
// into a failure Result at this boundary, so callers never see a raw
// network error.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RemoteError is an application-level failure reported by the remote store.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// Err returns nil for a success result and a *RemoteError otherwise.
func (r Result) Err(action string) error {
	if r.Success {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = "remote store reported failure"
	}
	return &RemoteError{Action: action, Message: msg}
}

// Client talks to one Apps Script deployment.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New returns a client for the given web app URL.
func New(baseURL string) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("missing Apps Script URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid Apps Script URL %q", baseURL)
	}
	return &Client{
		baseURL: baseURL,
		httpc:   newPooledHTTPClient(),
	}, nil
}

// NewWithHTTPClient is New with an injected http.Client, for tests.
func NewWithHTTPClient(baseURL string, httpc *http.Client) (*Client, error) {
	c, err := New(baseURL)
	if err != nil {
		return nil, err
	}
	if httpc != nil {
		c.httpc = httpc
	}
	return c, nil
}

// Fetch runs a read-only query. params may be nil.
func (c *Client) Fetch(ctx context.Context, action string, params map[string]string) Result {
	q := url.Values{}
	q.Set("action", action)
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return failure(err)
	}
	return c.do(req)
}

// Mutate runs a write. The action name is merged into the payload object,
// and the JSON body is sent as text/plain: Apps Script does not answer
// CORS preflights, so the original client avoided application/json and the
// server parses the raw body instead.
func (c *Client) Mutate(ctx context.Context, action string, payload map[string]any) Result {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = action

	raw, err := json.Marshal(body)
	if err != nil {
		return failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	return c.do(req)
}

func (c *Client) do(req *http.Request) Result {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return failure(err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Message: fmt.Sprintf("remote store returned HTTP %d", resp.StatusCode)}
	}

	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return failure(fmt.Errorf("decode response: %w", err))
	}
	return r
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// newPooledHTTPClient builds an HTTP client with connection pooling and
// keep-alive tuned for repeated calls against one host. Apps Script
// responds slowly, hence the generous overall timeout.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
