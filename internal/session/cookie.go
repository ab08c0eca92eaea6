package session

import (
	"net/http"
	"time"
)

// Cookie names are fixed across all Forge services; changing one here
// breaks interoperability with the auth backend.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	AccessMaxAge  = 15 * 60          // 15 minutes, in seconds
	RefreshMaxAge = 7 * 24 * 60 * 60 // 7 days, in seconds
)

// CookieOptions is the shared attribute contract for both session
// cookies. The same options value must be used for issuing and clearing
// a cookie, or browsers may fail to delete it.
type CookieOptions struct {
	Path     string
	Domain   string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// Options builds the base policy for a deployment. Secure is only set
// in production so local HTTP development keeps working.
func Options(production bool, domain string) CookieOptions {
	return CookieOptions{
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	}
}

// normalize applies safe defaults without breaking callers.
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Pair holds the raw values of the two session cookies. Either side may
// be empty.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Read returns the session cookie pair from the request. Pure lookup,
// no side effects.
func Read(r *http.Request) Pair {
	var p Pair
	if c, err := r.Cookie(AccessCookie); err == nil {
		p.AccessToken = c.Value
	}
	if c, err := r.Cookie(RefreshCookie); err == nil {
		p.RefreshToken = c.Value
	}
	return p
}

// Set issues a session cookie with the base policy plus the per-cookie
// max age.
func Set(w http.ResponseWriter, name, value string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   maxAgeFor(name),
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// Clear writes an immediately-expired cookie with the identical base
// policy so the browser deletes it even if attributes changed between
// issuance and clearing.
func Clear(w http.ResponseWriter, name string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearAll clears both session cookies. A failed refresh invalidates
// the whole session; partial cookie state is never left behind.
func ClearAll(w http.ResponseWriter, opts CookieOptions) {
	Clear(w, AccessCookie, opts)
	Clear(w, RefreshCookie, opts)
}

// Sync rewrites the named cookie inside the request itself so that
// later reads observe post-refresh state. An empty value removes the
// cookie. Unrelated cookies are preserved.
func Sync(r *http.Request, name, value string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")

	seen := false
	for _, c := range cookies {
		if c.Name == name {
			seen = true
			if value == "" {
				continue
			}
			c.Value = value
		}
		r.AddCookie(c)
	}

	if !seen && value != "" {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func maxAgeFor(name string) int {
	if name == RefreshCookie {
		return RefreshMaxAge
	}
	return AccessMaxAge
}
