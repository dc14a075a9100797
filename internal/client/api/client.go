// Package api is the HTTP client for the shelfsync server used by the CLI.
// The session cookie issued on login is kept in a SessionStore and replayed
// on every request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
)

type User struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Marketplace string `json:"marketplace"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RequiresOTP bool   `json:"requires_otp"`
	SessionID   string `json:"session_id,omitempty"`
	User        *User  `json:"user,omitempty"`
}

type MeResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SyncStatus struct {
	IsSyncing     bool       `json:"is_syncing"`
	LastSync      *time.Time `json:"last_sync"`
	StatusMessage string     `json:"status_message"`
	State         string     `json:"state"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session SessionStore
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithSessionStore(s SessionStore) Option {
	return func(cl *Client) { cl.session = s }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		session: &MemorySession{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Login sends the password step. A response with RequiresOTP set carries
// the SessionID for VerifyOTP.
func (c *Client) Login(ctx context.Context, username string, password []byte, marketplace string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username":    username,
		"password":    string(password),
		"marketplace": marketplace,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, sessionID, code string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", map[string]string{
		"session_id": sessionID,
		"otp_code":   code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout clears the server cookie and the local session, even when the
// server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, &out)
	if cerr := c.session.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *Client) TestAccess(ctx context.Context) (*MessageResponse, error) {
	return c.message(ctx, http.MethodGet, "/auth/test")
}

func (c *Client) TriggerSync(ctx context.Context) (*MessageResponse, error) {
	return c.message(ctx, http.MethodPost, "/sync/trigger")
}

func (c *Client) ResetSync(ctx context.Context) (*MessageResponse, error) {
	return c.message(ctx, http.MethodPost, "/sync/reset-status")
}

func (c *Client) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	var out SyncStatus
	if err := c.do(ctx, http.MethodGet, "/sync/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the decoded body for 503 answers too.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	var apiErr *Error
	if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && out.Status != "") {
		return nil, err
	}
	return &out, nil
}

func (c *Client) message(ctx context.Context, method, path string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, method, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.session.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.keepSession(resp); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.Unmarshal(data, out)
	}

	if out != nil {
		_ = json.Unmarshal(data, out)
	}
	var msg MessageResponse
	if json.Unmarshal(data, &msg) != nil || msg.Message == "" {
		msg.Message = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg.Message}
}

// keepSession mirrors the server's session cookie into the store.
func (c *Client) keepSession(resp *http.Response) error {
	for _, ck := range resp.Cookies() {
		if ck.Name != common.SessionCookieName {
			continue
		}
		if ck.Value == "" || ck.MaxAge < 0 {
			return c.session.Clear()
		}
		return c.session.Save(ck.Value)
	}
	return nil
}
