package session

import (
	"net/http"

	"github.com/meetd2005/Forge-Frontend/internal/token"
)

// CurrentUser returns the decoded identity carried by the access
// cookie, or nil when the request has no usable access token. A valid
// refresh token alone does not make a request authenticated; freshness
// must be restored by the refresh orchestrator first.
func CurrentUser(r *http.Request) *token.Claims {
	c := token.Decode(Read(r).AccessToken)
	if !token.Usable(c, token.TypeAccess) {
		return nil
	}
	return c
}

// IsAuthenticated reports whether the request carries a usable access
// token.
func IsAuthenticated(r *http.Request) bool {
	return CurrentUser(r) != nil
}
