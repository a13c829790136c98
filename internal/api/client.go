// Package api speaks the assistant server's HTTP protocol: password and
// Google-based authentication, document management, and retrieval-backed
// question answering. All document indexing and answer generation happens
// server side; this client moves opaque payloads and decodes results.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Allow longer-running answers (retrieval plus generation often needs >60s)
// and rely on the caller's context for cancellation.
const defaultHTTPTimeout = 3 * time.Minute

// Service is the full surface the UI drives. *Client implements it; tests
// substitute fakes.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, reg Registration) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	CompletePasswordReset(ctx context.Context, email, newPassword string) (string, error)
	Query(ctx context.Context, question string) (string, error)
	ListDocuments(ctx context.Context) ([]string, error)
	UploadDocument(ctx context.Context, filename string, content io.Reader) (Upload, error)
	DeleteDocument(ctx context.Context, filename string) error
	SaveDriveFolder(ctx context.Context, folderID string) (string, error)
	SyncDrive(ctx context.Context) (string, error)
	GoogleLoginURL() string
}

// Config describes how to build a client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a thread-safe HTTP client bound to one server. A bearer token,
// once set, rides along on every request until cleared.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// New builds a client for the server at cfg.BaseURL.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
	}
}

// SetToken attaches a bearer token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token from subsequent requests.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do runs the request and returns the raw response body. Transport failures
// and error statuses come back as *Error values; fallback describes the
// failure when the server supplies no detail of its own.
func (c *Client) do(req *http.Request, op, fallback string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		detail := parseDetail(body)
		if detail == "" {
			detail = fallback
		}
		return nil, &Error{Op: op, Status: resp.StatusCode, Detail: detail}
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, op, fallback string) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, fallback)
}

func messageOf(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Message)
}
