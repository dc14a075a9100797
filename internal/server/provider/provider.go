// Package provider describes the marketplace identity provider consumed by
// the auth service: a two-call client contract, the credential bundle it
// produces, typed errors and the classification of login failures.
package provider

import (
	"context"
	"time"
)

// LoginRequest carries the user's marketplace credentials. Code is the
// one-time verification code and is empty on the first attempt.
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Marketplace string `json:"marketplace"`
	Code        string `json:"code,omitempty"`
}

// Client is the identity provider contract.
type Client interface {
	// Login authenticates and returns the full credential bundle, or an
	// error that Classify can map (typically *Error).
	Login(ctx context.Context, req LoginRequest) (*Bundle, error)
	// Refresh exchanges the bundle's refresh token for new access tokens.
	Refresh(ctx context.Context, b *Bundle) (*Bundle, error)
}

// Bundle is the provider credential material. Its JSON form is the
// envelope that gets sealed by the vault; field names are fixed.
type Bundle struct {
	WebsiteCookies            map[string]string `json:"website_cookies"`
	AdpToken                  string            `json:"adp_token"`
	AccessToken               string            `json:"access_token"`
	RefreshToken              string            `json:"refresh_token"`
	DevicePrivateKey          string            `json:"device_private_key"`
	StoreAuthenticationCookie map[string]any    `json:"store_authentication_cookie"`
	DeviceInfo                map[string]any    `json:"device_info"`
	CustomerInfo              map[string]any    `json:"customer_info"`
	Expires                   float64           `json:"expires"`
	LocaleCode                string            `json:"locale_code"`
	WithUsername              bool              `json:"with_username"`
	ActivationBytes           *string           `json:"activation_bytes"`
}

// Envelope returns a copy of the bundle stamped with the marketplace it was
// obtained for; this is the value persisted for the user.
func (b Bundle) Envelope(marketplace string) Bundle {
	b.LocaleCode = marketplace
	return b
}

// ExpiresAt converts Expires (unix seconds) to a time. Zero means unknown.
func (b Bundle) ExpiresAt() *time.Time {
	if b.Expires <= 0 {
		return nil
	}
	sec := int64(b.Expires)
	nsec := int64((b.Expires - float64(sec)) * float64(time.Second))
	t := time.Unix(sec, nsec).UTC()
	return &t
}

// Expired reports whether the access token has passed its expiry at now.
// A bundle without expiry is never considered expired.
func (b Bundle) Expired(now time.Time) bool {
	exp := b.ExpiresAt()
	return exp != nil && now.After(*exp)
}

// Session is a ready-to-use set of provider credentials for one user.
type Session struct {
	UserID      string
	Marketplace string
	Bundle      *Bundle
	// Refreshed is set when the access token was renewed while loading.
	Refreshed bool
}
