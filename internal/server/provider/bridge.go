package provider

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
)

const (
	bridgeTimeout     = 60 * time.Second
	maxBridgeResponse = 1 << 20
)

// Refresher renews the access token of a bundle.
type Refresher interface {
	Refresh(ctx context.Context, b *Bundle) (*Bundle, error)
}

// BridgeClient talks JSON over HTTP to an auth-bridge sidecar that performs
// the interactive marketplace login on our behalf.
type BridgeClient struct {
	baseURL   string
	http      *http.Client
	refresher Refresher
}

type BridgeOption func(*BridgeClient)

// WithHTTPClient overrides the HTTP client used to reach the bridge.
func WithHTTPClient(c *http.Client) BridgeOption {
	return func(b *BridgeClient) { b.http = c }
}

// WithRefresher makes Refresh use r instead of the bridge endpoint.
func WithRefresher(r Refresher) BridgeOption {
	return func(b *BridgeClient) { b.refresher = r }
}

func NewBridgeClient(baseURL string, opts ...BridgeOption) *BridgeClient {
	c := &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: bridgeTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Client = (*BridgeClient)(nil)

type bridgeError struct {
	Error *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *BridgeClient) Login(ctx context.Context, req LoginRequest) (*Bundle, error) {
	var b Bundle
	if err := c.post(ctx, "/login", req, &b); err != nil {
		return nil, err
	}
	if err := checkBundle(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// checkBundle rejects a 200 reply that carries no access token ({} or null).
func checkBundle(b *Bundle) error {
	if b.AccessToken == "" {
		return &Error{Kind: KindUnknown, Message: "auth bridge returned no access token"}
	}
	return nil
}

func (c *BridgeClient) Refresh(ctx context.Context, in *Bundle) (*Bundle, error) {
	if in == nil {
		return nil, errors.New("provider: nil bundle")
	}
	if c.refresher != nil {
		return c.refresher.Refresh(ctx, in)
	}

	var b Bundle
	if err := c.post(ctx, "/refresh", in, &b); err != nil {
		return nil, err
	}
	if err := checkBundle(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *BridgeClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("provider: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: "auth bridge unreachable", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBridgeResponse))
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: "reading auth bridge response", Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Kind: KindUnavailable, Message: fmt.Sprintf("auth bridge returned %d", resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusOK {
		return decodeBridgeError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("provider: decode response: %w", err)
	}
	return nil
}

func decodeBridgeError(status int, data []byte) error {
	var be bridgeError
	if err := json.Unmarshal(data, &be); err != nil || be.Error == nil {
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("auth bridge returned %d", status)}
	}

	kind := Kind(be.Error.Kind)
	switch kind {
	case KindChallenge, KindInvalidCredentials, KindUnavailable:
	default:
		kind = KindUnknown
	}
	return &Error{Kind: kind, Message: be.Error.Message}
}
