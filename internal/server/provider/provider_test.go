package provider

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_EnvelopeKeys(t *testing.T) {
	ab := "deadbeef"
	b := Bundle{
		WebsiteCookies:  map[string]string{"session-id": "1"},
		AccessToken:     "at",
		RefreshToken:    "rt",
		Expires:         1700000000.5,
		LocaleCode:      "de",
		WithUsername:    true,
		ActivationBytes: &ab,
	}

	env := b.Envelope("uk")
	assert.Equal(t, "uk", env.LocaleCode)
	assert.Equal(t, "de", b.LocaleCode, "receiver is a copy")

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, k := range []string{
		"website_cookies", "adp_token", "access_token", "refresh_token",
		"device_private_key", "store_authentication_cookie", "device_info",
		"customer_info", "expires", "locale_code", "with_username", "activation_bytes",
	} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, 12)
}

func TestBundle_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, Bundle{}.ExpiresAt())
	assert.False(t, Bundle{}.Expired(now), "unknown expiry is not expired")

	past := Bundle{Expires: float64(now.Add(-time.Minute).Unix())}
	assert.True(t, past.Expired(now))

	future := Bundle{Expires: float64(now.Add(time.Hour).Unix())}
	assert.False(t, future.Expired(now))
	assert.Equal(t, now.Add(time.Hour), *future.ExpiresAt())
}
