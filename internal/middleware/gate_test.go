package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetd2005/Forge-Frontend/internal/refresh"
	"github.com/meetd2005/Forge-Frontend/internal/session"
)

func mintToken(t *testing.T, typ string, ttl time.Duration) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-123",
		"email": "reader@example.com",
		"name":  "Reader",
		"type":  typ,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
		"jti":   "jti-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

// forwarded records whether the inner handler ran and what it saw.
type forwarded struct {
	called  bool
	request *http.Request
}

func (f *forwarded) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.called = true
		f.request = r
		w.WriteHeader(http.StatusOK)
	})
}

func newTestGate(authBase string) *Gate {
	return NewGate(refresh.New(authBase), nil, session.Options(false, ""))
}

func setCookies(t *testing.T, rr *httptest.ResponseRecorder) map[string]*http.Cookie {
	t.Helper()
	out := map[string]*http.Cookie{}
	for _, c := range rr.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestProtectedRouteWithoutSessionRedirects(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/editor", nil)
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login?from=%2Feditor", rr.Header().Get("Location"))
	assert.False(t, next.called)
}

func TestAuthRouteWithFreshSessionBounces(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: mintToken(t, "access", time.Hour)})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.False(t, next.called)
}

func TestAuthRouteBounceHonorsFromParameter(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login?from=%2Feditor", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: mintToken(t, "access", time.Hour)})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/editor", rr.Header().Get("Location"), "from honored and stripped")
}

func TestStaleAccessTokenRefreshedAndForwarded(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:  session.AccessCookie,
			Value: mintToken(t, "access", 15*time.Minute),
		})
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	next := &forwarded{}
	gate := newTestGate(backend.URL)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/editor", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: mintToken(t, "access", 100*time.Second)})
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: mintToken(t, "refresh", 24*time.Hour)})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called, "request forwarded, not redirected")

	issued := setCookies(t, rr)
	require.Contains(t, issued, session.AccessCookie)
	assert.Greater(t, issued[session.AccessCookie].MaxAge, 0)

	// The forwarded request carries the refreshed token, not the
	// stale one it arrived with.
	fwd, err := next.request.Cookie(session.AccessCookie)
	require.NoError(t, err)
	assert.Equal(t, issued[session.AccessCookie].Value, fwd.Value)
}

func TestFailedRefreshClearsSessionAndRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	next := &forwarded{}
	gate := newTestGate(backend.URL)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/editor", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: mintToken(t, "access", 100*time.Second)})
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "expired-refresh"})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login?from=%2Feditor", rr.Header().Get("Location"))
	assert.False(t, next.called)

	issued := setCookies(t, rr)
	require.Contains(t, issued, session.AccessCookie)
	require.Contains(t, issued, session.RefreshCookie)
	assert.Less(t, issued[session.AccessCookie].MaxAge, 0, "access cookie cleared")
	assert.Less(t, issued[session.RefreshCookie].MaxAge, 0, "refresh cookie cleared")
}

// An access token missing entirely still triggers a refresh attempt
// when a refresh token is present.
func TestAbsentAccessTokenStillRefreshes(t *testing.T) {
	refreshed := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshed = true
		http.SetCookie(w, &http.Cookie{
			Name:  session.AccessCookie,
			Value: mintToken(t, "access", 15*time.Minute),
		})
	}))
	defer backend.Close()

	next := &forwarded{}
	gate := newTestGate(backend.URL)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/editor", nil)
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: mintToken(t, "refresh", 24*time.Hour)})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.True(t, refreshed)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called)
}

func TestAPIRouteGetsIdentityHeaders(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: mintToken(t, "access", time.Hour)})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	require.True(t, next.called)
	assert.Equal(t, "user-123", next.request.Header.Get(HeaderUserID))
	assert.Equal(t, "reader@example.com", next.request.Header.Get(HeaderUserEmail))
	assert.Equal(t, "Reader", next.request.Header.Get(HeaderUserName))
	assert.Equal(t, "access", next.request.Header.Get(HeaderAuthType))
}

func TestAPIRouteWithoutUserForwardsWithoutHeaders(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts/1", nil)
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	require.True(t, next.called)
	assert.Empty(t, next.request.Header.Get(HeaderUserID))
}

func TestAssetRequestsBypassTheGate(t *testing.T) {
	next := &forwarded{}
	// A nil refresher would panic if the gate ran its refresh logic.
	gate := NewGate(nil, nil, session.Options(false, ""))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_next/static/chunk.js", nil)
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "anything"})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called)
	assert.Empty(t, rr.Result().Cookies(), "asset responses are untouched")
}

// The gate fails open: an internal failure clears session cookies but
// still forwards the request instead of locking the user out.
func TestGateFailsOpenOnInternalError(t *testing.T) {
	next := &forwarded{}
	// nil refresher panics once a refresh is attempted.
	gate := NewGate(nil, nil, session.Options(false, ""))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "present"})
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.True(t, next.called, "request still forwarded")
	assert.Equal(t, http.StatusOK, rr.Code)

	issued := setCookies(t, rr)
	require.Contains(t, issued, session.AccessCookie)
	require.Contains(t, issued, session.RefreshCookie)
	assert.Less(t, issued[session.AccessCookie].MaxAge, 0)
}

// Fail-open covers the gate's own steps only. A panic raised by the
// downstream handler propagates instead of being swallowed, and the
// handler is never re-invoked: in a proxying gateway a second
// invocation would resend a non-idempotent upstream request.
func TestDownstreamPanicIsNotRetried(t *testing.T) {
	var calls int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		panic("downstream blew up")
	})

	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)

	assert.PanicsWithValue(t, "downstream blew up", func() {
		gate.Handle(next).ServeHTTP(rr, req)
	})
	assert.Equal(t, 1, calls, "downstream handler runs at most once")
	assert.Empty(t, rr.Result().Cookies(), "downstream failures leave the session alone")
}

// http.ErrAbortHandler in particular must keep its meaning for the
// server machinery above the gate.
func TestDownstreamAbortHandlerPropagates(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		gate.Handle(next).ServeHTTP(rr, req)
	})
}

func TestPublicRouteForwardsUntouched(t *testing.T) {
	next := &forwarded{}
	gate := newTestGate("http://unused.invalid")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	gate.Handle(next.handler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called)
}
