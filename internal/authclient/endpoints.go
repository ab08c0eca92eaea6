package authclient

// Endpoints maps the auth/users backend operations consumed by the
// client. The same prefixes are used across development, staging and
// production; only the bases change.
type Endpoints struct {
	Login              string
	Register           string
	Refresh            string
	Logout             string
	LogoutAll          string
	ForgotPassword     string
	ResetPassword      string
	ChangePassword     string
	VerifyEmail        string
	ResendVerification string
	Me                 string
}

// NewEndpoints derives the endpoint map from the two REST base
// prefixes, e.g. http://127.0.0.1:8000/api/auth and .../api/users.
func NewEndpoints(authBase, usersBase string) Endpoints {
	return Endpoints{
		Login:              authBase + "/login",
		Register:           authBase + "/register",
		Refresh:            authBase + "/refresh",
		Logout:             authBase + "/logout",
		LogoutAll:          authBase + "/logout-all",
		ForgotPassword:     authBase + "/forgot-password",
		ResetPassword:      authBase + "/reset-password",
		ChangePassword:     authBase + "/change-password",
		VerifyEmail:        authBase + "/verify-email",
		ResendVerification: authBase + "/resend-verification",
		Me:                 usersBase + "/me",
	}
}
