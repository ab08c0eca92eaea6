package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, typ string, ttl time.Duration) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-123",
		"type": typ,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
		"jti":  "jti-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func requestWithCookies(access, refresh string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/editor", nil)
	if access != "" {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
	}
	if refresh != "" {
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
	}
	return r
}

func TestCurrentUserWithFreshAccessToken(t *testing.T) {
	r := requestWithCookies(mintToken(t, "access", time.Hour), "")

	u := CurrentUser(r)
	require.NotNil(t, u)
	assert.Equal(t, "user-123", u.Subject)
	assert.True(t, IsAuthenticated(r))
}

func TestExpiredAccessTokenIsUnauthenticated(t *testing.T) {
	r := requestWithCookies(mintToken(t, "access", -time.Minute), "")

	assert.Nil(t, CurrentUser(r))
	assert.False(t, IsAuthenticated(r))
}

// A valid refresh token alone never authenticates a request; the
// refresh orchestrator must mint a fresh access token first.
func TestRefreshTokenAloneIsUnauthenticated(t *testing.T) {
	r := requestWithCookies("", mintToken(t, "refresh", time.Hour))

	assert.False(t, IsAuthenticated(r))
}

func TestMistypedTokenIsUnauthenticated(t *testing.T) {
	// Refresh token stuffed into the access slot.
	r := requestWithCookies(mintToken(t, "refresh", time.Hour), "")

	assert.False(t, IsAuthenticated(r))
}

func TestMalformedAccessTokenIsUnauthenticated(t *testing.T) {
	r := requestWithCookies("garbage", "")

	assert.Nil(t, CurrentUser(r))
	assert.False(t, IsAuthenticated(r))
}
