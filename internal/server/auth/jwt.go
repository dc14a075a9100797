// Package auth issues and verifies the stateless session tokens carried in
// the web session cookie. There is no server-side session record: a token is
// valid while its signature verifies and it has not expired.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed session payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Marketplace string `json:"marketplace"`
}

// Issuer signs session tokens with HS256.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewIssuer returns an Issuer. A non-positive validity falls back to
// common.SessionValidity (24h).
func NewIssuer(secret []byte, validity time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if validity <= 0 {
		validity = common.SessionValidity
	}
	return &Issuer{secret: secret, validity: validity, now: time.Now}, nil
}

// Validity is the lifetime of issued tokens.
func (i *Issuer) Validity() time.Duration { return i.validity }

// Issue signs a token for the given identity.
func (i *Issuer) Issue(userID, username, marketplace string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID:      userID,
		Username:    username,
		Marketplace: marketplace,
	})

	return token.SignedString(i.secret)
}

// Verify returns the claims of a valid token. Bad signatures, other signing
// methods, malformed or expired tokens all yield (nil, false).
func (i *Issuer) Verify(tokenString string) (*Claims, bool) {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Parse is Verify with the failure reason, always wrapping
// common.ErrTokenInvalidOrExpired.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrTokenInvalidOrExpired
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, errors.Join(common.ErrTokenInvalidOrExpired, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrTokenInvalidOrExpired
	}

	return claims, nil
}
