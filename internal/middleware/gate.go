package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/meetd2005/Forge-Frontend/internal/metrics"
	"github.com/meetd2005/Forge-Frontend/internal/refresh"
	"github.com/meetd2005/Forge-Frontend/internal/revocation"
	"github.com/meetd2005/Forge-Frontend/internal/routes"
	"github.com/meetd2005/Forge-Frontend/internal/session"
)

// Identity headers injected for API routes that need user context.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderAuthType  = "X-Auth-Type"
)

// Gate is the per-request auth middleware: refresh-if-needed, route
// protection, identity header injection. It keeps no mutable state
// between requests; each invocation reads only its own request and
// writes only its own response.
type Gate struct {
	refresher *refresh.Orchestrator
	denylist  *revocation.Denylist // optional, may be nil
	cookies   session.CookieOptions
}

func NewGate(
	refresher *refresh.Orchestrator,
	denylist *revocation.Denylist,
	cookies session.CookieOptions,
) *Gate {
	return &Gate{
		refresher: refresher,
		denylist:  denylist,
		cookies:   cookies,
	}
}

func (g *Gate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Assets bypass everything; classifying them risks redirect
		// loops on chunk and image requests.
		if routes.IsAsset(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if g.apply(w, r) {
			next.ServeHTTP(w, r)
		}
	})
}

// apply runs the session steps and reports whether the request should
// be forwarded. Its recover covers only these steps: a failure here
// clears possibly-corrupt session state and still forwards, but a
// panic raised by the downstream handler propagates untouched — the
// handler must never run twice, and http.ErrAbortHandler must keep
// its meaning.
func (g *Gate) apply(w http.ResponseWriter, r *http.Request) (forward bool) {
	path := r.URL.Path

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("gate failure, continuing unauthenticated",
				"path", path, "panic", rec)
			metrics.GateErrors.Inc()
			session.ClearAll(w, g.cookies)
			forward = true
		}
	}()

	pair := session.Read(r)

	// Silent refresh. Classification below must observe the
	// post-refresh token, so this runs first and the outcome is
	// synced into the request's cookies.
	if refresh.ShouldRefresh(pair.AccessToken) && pair.RefreshToken != "" {
		if newTok, ok := g.refresher.Refresh(r.Context(), pair.RefreshToken); ok {
			session.Set(w, session.AccessCookie, newTok, g.cookies)
			session.Sync(r, session.AccessCookie, newTok)
			metrics.RefreshAttempts.WithLabelValues("success").Inc()
		} else {
			// A failed refresh invalidates the whole session, on the
			// request as well as the response.
			session.ClearAll(w, g.cookies)
			session.Sync(r, session.AccessCookie, "")
			session.Sync(r, session.RefreshCookie, "")
			metrics.RefreshAttempts.WithLabelValues("failure").Inc()
		}
	}

	user := session.CurrentUser(r)

	if user != nil && g.denylist.Revoked(r.Context(), user.TokenID) {
		metrics.RevocationHits.Inc()
		session.ClearAll(w, g.cookies)
		user = nil
	}

	authenticated := user != nil

	// Bounce authenticated users off login/signup pages, back to
	// wherever they were headed.
	if authenticated && routes.IsAuthRoute(path) {
		metrics.Redirects.WithLabelValues("auth_route_bounce").Inc()
		redirectBack(w, r)
		return false
	}

	if routes.IsProtected(path) && !authenticated {
		metrics.Redirects.WithLabelValues("unauthenticated").Inc()
		redirectToLogin(w, r)
		return false
	}

	if routes.NeedsUserContext(path) && user != nil {
		r.Header.Set(HeaderUserID, user.Subject)
		r.Header.Set(HeaderUserEmail, user.Email)
		r.Header.Set(HeaderUserName, user.Name)
		r.Header.Set(HeaderAuthType, user.Type)
	}

	return true
}

// redirectBack sends the user to the path recorded in the "from" query
// parameter, defaulting to "/", with the parameter stripped.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("from")
	if target == "" {
		target = "/"
	}

	q := r.URL.Query()
	q.Del("from")

	dest := url.URL{Path: target, RawQuery: q.Encode()}
	http.Redirect(w, r, dest.String(), http.StatusFound)
}

// redirectToLogin records the original path in "from" so the login page
// can return the user afterwards.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("from", r.URL.Path)

	dest := url.URL{Path: "/login", RawQuery: q.Encode()}
	http.Redirect(w, r, dest.String(), http.StatusFound)
}
