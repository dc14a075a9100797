package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var marketplaceTLD = map[string]string{
	"us": "com",
	"uk": "co.uk",
	"de": "de",
	"fr": "fr",
	"ca": "ca",
	"it": "it",
	"es": "es",
	"jp": "co.jp",
	"au": "com.au",
	"in": "in",
}

// TokenURL returns the token endpoint for a marketplace code, falling back
// to the US endpoint for unknown codes.
func TokenURL(marketplace string) string {
	tld, ok := marketplaceTLD[marketplace]
	if !ok {
		tld = marketplaceTLD["us"]
	}
	return "https://api.amazon." + tld + "/auth/o2/token"
}

// OAuthRefresher renews access tokens with the refresh_token grant.
type OAuthRefresher struct {
	clientID string
	http     *http.Client
	// tokenURL is swapped in tests.
	tokenURL func(marketplace string) string
}

func NewOAuthRefresher(clientID string, httpClient *http.Client) *OAuthRefresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OAuthRefresher{clientID: clientID, http: httpClient, tokenURL: TokenURL}
}

var _ Refresher = (*OAuthRefresher)(nil)

// Refresh exchanges the bundle's refresh token and returns an updated copy.
// The input bundle is not modified.
func (r *OAuthRefresher) Refresh(ctx context.Context, in *Bundle) (*Bundle, error) {
	if in == nil || in.RefreshToken == "" {
		return nil, &Error{Kind: KindInvalidCredentials, Message: "no refresh token"}
	}

	cfg := &oauth2.Config{
		ClientID: r.clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  r.tokenURL(in.LocaleCode),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.http)
	expired := &oauth2.Token{
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		Expiry:       time.Unix(1, 0),
	}

	tok, err := cfg.TokenSource(ctx, expired).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return nil, &Error{Kind: KindInvalidCredentials, Message: "refresh rejected", Err: err}
		}
		return nil, &Error{Kind: KindUnavailable, Message: "token endpoint", Err: err}
	}

	out := *in
	out.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		out.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		out.Expires = float64(tok.Expiry.UnixNano()) / float64(time.Second)
	}
	return &out, nil
}
