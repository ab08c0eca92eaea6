package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meetd2005/Forge-Frontend/internal/forms"
)

// User is the profile shape returned by the users service.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar,omitempty"`
	Bio           string `json:"bio,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	IsActive      bool   `json:"isActive"`
	LastLoginAt   string `json:"lastLoginAt,omitempty"`
	LoginCount    int    `json:"loginCount"`
	CreatedAt     string `json:"createdAt"`
}

// Client mirrors the browser-side auth context: it owns the session
// state and is the only component that mutates it. Session cookies are
// set by backend responses and carried in the client's cookie jar; the
// client itself never writes a cookie.
type Client struct {
	http      *http.Client
	endpoints Endpoints

	mu      sync.Mutex
	user    *User
	loading bool
	lastErr string

	// refreshing is the single-flight guard for identity fetches:
	// several triggers (initial load, focus revalidation) may want a
	// refresh at once, and at most one request should go out.
	refreshing atomic.Bool
}

// New builds a client against the given auth and users REST bases.
func New(authBase, usersBase string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
		endpoints: NewEndpoints(authBase, usersBase),
		loading:   true,
	}, nil
}

// Load resolves the initial session state with one identity fetch.
func (c *Client) Load(ctx context.Context) {
	c.RefreshUser(ctx)
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// OnFocus re-validates the session when the window regains focus and
// no user is loaded, covering cookies cleared or renewed in another
// tab.
func (c *Client) OnFocus(ctx context.Context) {
	c.mu.Lock()
	idle := c.user == nil && !c.loading
	c.mu.Unlock()

	if idle {
		c.RefreshUser(ctx)
	}
}

// CurrentUser returns the loaded profile, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the message of the most recent failed mutation,
// for display.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) ClearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// RefreshUser fetches the current identity. An unauthenticated answer
// is an expected steady state, not an error: any non-2xx or transport
// failure resolves to "no session". Overlapping calls collapse to one
// request; the loser returns immediately.
func (c *Client) RefreshUser(ctx context.Context) {
	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer c.refreshing.Store(false)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Me, nil)
	if err != nil {
		c.setUser(nil)
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.setUser(nil)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var u User
		if json.NewDecoder(resp.Body).Decode(&u) == nil {
			c.setUser(&u)
		} else {
			c.setUser(nil)
		}
	case resp.StatusCode == http.StatusUnauthorized:
		// An anonymous visitor stays anonymous; an already-loaded
		// user survives a racing 401 until the next navigation
		// re-resolves it.
	default:
		c.setUser(nil)
	}
}

// Login authenticates with the form-encoded credentials flow. The
// backend sets both session cookies on success and returns the user
// profile.
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) error {
	form := forms.Login{Email: email, Password: password, RememberMe: rememberMe}
	if err := forms.Validate(form); err != nil {
		return c.fail(err)
	}

	c.setLoading(true)
	defer c.setLoading(false)

	body := url.Values{}
	body.Set("username", email)
	body.Set("password", password)
	if rememberMe {
		body.Set("rememberMe", "true")
	}

	resp, err := c.postForm(ctx, c.endpoints.Login, body)
	if err != nil {
		return c.fail(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(apiError(raw, "login failed"))
	}

	// Backend returns { user: ..., message: ... }.
	var payload struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.User == nil {
		return c.fail(errors.New("login failed"))
	}

	c.setUser(payload.User)
	c.ClearError()
	return nil
}

// Signup registers a new account. The backend responds with a message
// only; the user must verify their email before logging in, so no
// session state changes here.
func (c *Client) Signup(ctx context.Context, email, password, name string) error {
	form := forms.Signup{Name: name, Email: email, Password: password}
	if err := forms.Validate(form); err != nil {
		return c.fail(err)
	}

	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.Register, map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, "registration failed")
}

// Logout ends the server-side session. Local state is cleared even if
// the backend call fails; the UI must never stay "logged in" against a
// dead backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.logout(ctx, c.endpoints.Logout)
}

// LogoutAll ends every session for the user across devices.
func (c *Client) LogoutAll(ctx context.Context) error {
	return c.logout(ctx, c.endpoints.LogoutAll)
}

func (c *Client) logout(ctx context.Context, endpoint string) error {
	defer func() {
		c.setUser(nil)
		c.ClearError()
	}()

	resp, err := c.post(ctx, endpoint, "", nil)
	if err != nil {
		return nil // optimistic: local state is cleared regardless
	}
	resp.Body.Close()
	return nil
}

// RefreshToken forces a token refresh, then re-resolves the identity.
func (c *Client) RefreshToken(ctx context.Context) error {
	resp, err := c.post(ctx, c.endpoints.Refresh, "", nil)
	if err != nil {
		c.setUser(nil)
		return err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.setUser(nil)
		return errors.New("token refresh failed")
	}

	c.RefreshUser(ctx)
	return nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.ForgotPassword, map[string]string{
		"email": email,
	}, "failed to send reset email")
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	form := forms.PasswordReset{Token: resetToken, NewPassword: newPassword}
	if err := forms.Validate(form); err != nil {
		return c.fail(err)
	}

	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.ResetPassword, map[string]string{
		"token":       resetToken,
		"newPassword": newPassword,
	}, "failed to reset password")
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	form := forms.PasswordChange{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := forms.Validate(form); err != nil {
		return c.fail(err)
	}

	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.ChangePassword, map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}, "failed to change password")
}

// ResendVerificationEmail re-sends the verification mail for the
// currently loaded account.
func (c *Client) ResendVerificationEmail(ctx context.Context) error {
	u := c.CurrentUser()
	if u == nil || u.Email == "" {
		return c.fail(errors.New("no email address found"))
	}

	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.ResendVerification, map[string]string{
		"email": u.Email,
	}, "failed to resend verification email")
}

// VerifyEmail confirms an address with the emailed token. The account
// still has to log in afterwards; no session state changes.
func (c *Client) VerifyEmail(ctx context.Context, verificationToken string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	return c.postJSON(ctx, c.endpoints.VerifyEmail, map[string]string{
		"token": verificationToken,
	}, "email verification failed")
}

func (c *Client) setUser(u *User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}

func (c *Client) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// fail records the error message for the UI and re-throws it to the
// caller.
func (c *Client) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
	return err
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

func (c *Client) postForm(ctx context.Context, endpoint string, body url.Values) (*http.Response, error) {
	return c.post(ctx, endpoint, "application/x-www-form-urlencoded",
		strings.NewReader(body.Encode()))
}

// postJSON sends a JSON mutation and converts any non-2xx response
// into an error carrying the backend's message.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, fallback string) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return c.fail(err)
	}

	resp, err := c.post(ctx, endpoint, "application/json", bytes.NewReader(buf))
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", fallback, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return c.fail(apiError(raw, fallback))
	}

	c.ClearError()
	return nil
}

// apiError extracts the backend's message from an error body, falling
// back to a generic string.
func apiError(raw []byte, fallback string) error {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Detail != "" {
			return errors.New(body.Detail)
		}
		if body.Message != "" {
			return errors.New(body.Message)
		}
	}
	return errors.New(fallback)
}
