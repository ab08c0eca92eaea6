package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meetd2005/Forge-Frontend/internal/session"
	"github.com/meetd2005/Forge-Frontend/internal/token"
)

// Window before access-token expiry in which a refresh is attempted.
const refreshWindow = 5 * time.Minute

// backendTimeout bounds the refresh call so a hanging backend cannot
// stall the request pipeline. Timeout is treated like any other
// failure.
const backendTimeout = 5 * time.Second

// ShouldRefresh reports whether the access token is absent, unusable,
// or inside the refresh window.
func ShouldRefresh(accessToken string) bool {
	return ShouldRefreshAt(accessToken, time.Now())
}

// ShouldRefreshAt is ShouldRefresh with an explicit clock.
func ShouldRefreshAt(accessToken string, now time.Time) bool {
	c := token.Decode(accessToken)
	if !token.UsableAt(c, token.TypeAccess, now) {
		return true
	}
	return c.ExpiresAt-now.Unix() < int64(refreshWindow/time.Second)
}

// Orchestrator exchanges a refresh token for a new access token via
// the auth backend.
type Orchestrator struct {
	authBase string
	client   *http.Client
}

func New(authBase string) *Orchestrator {
	return &Orchestrator{
		authBase: authBase,
		client:   &http.Client{Timeout: backendTimeout},
	}
}

// Refresh calls the backend refresh endpoint with the refresh token
// attached as a cookie and extracts the new access token from the
// response's Set-Cookie headers. Any network failure, non-2xx status,
// or missing cookie reports failure; Refresh never returns an error
// because a failed refresh is an expected steady state, not an
// exception.
func (o *Orchestrator) Refresh(ctx context.Context, refreshToken string) (string, bool) {
	attempt := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.authBase+"/refresh", nil)
	if err != nil {
		return "", false
	}
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: refreshToken})

	resp, err := o.client.Do(req)
	if err != nil {
		slog.Warn("token refresh failed", "attempt", attempt, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("token refresh rejected", "attempt", attempt, "status", resp.StatusCode)
		return "", false
	}

	for _, c := range resp.Cookies() {
		if c.Name == session.AccessCookie && c.Value != "" {
			slog.Debug("access token refreshed", "attempt", attempt)
			return c.Value, true
		}
	}

	slog.Warn("token refresh response missing access cookie", "attempt", attempt)
	return "", false
}
