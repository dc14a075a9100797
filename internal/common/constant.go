package common

import "time"

// SessionCookieName is the cookie that carries the signed session token
// between the web client and the server.
const SessionCookieName = "auth_token"

// ProviderAudible is the provider name recorded on users created through
// marketplace login.
const ProviderAudible = "audible"

// DefaultMarketplace is used when a login request omits the marketplace.
const DefaultMarketplace = "us"

const (
	SessionValidity   = 24 * time.Hour
	ChallengeValidity = 15 * time.Minute
	SyncTimeout       = 5 * time.Minute
)
