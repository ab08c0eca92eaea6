package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Token type slot a decoded token must match to be usable.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the decoded payload of a session token. Signature validity
// is the backend's responsibility; the gateway decodes without verifying
// and uses the result only for routing decisions, never as a security
// control.
type Claims struct {
	Subject   string // user id
	Email     string
	Name      string
	Type      string // access or refresh
	IssuedAt  int64
	ExpiresAt int64
	TokenID   string // issuance id, used for revocation bookkeeping
}

var parser = jwt.NewParser()

// Decode parses a session token without verifying its signature.
// Any malformed input yields nil: a bad token is treated as an absent
// token everywhere downstream.
func Decode(raw string) *Claims {
	if raw == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}

	sub, _ := claims["sub"].(string)
	exp, ok := asUnix(claims["exp"])
	if sub == "" || !ok {
		return nil
	}

	iat, _ := asUnix(claims["iat"])
	typ, _ := claims["type"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	jti, _ := claims["jti"].(string)

	return &Claims{
		Subject:   sub,
		Email:     email,
		Name:      name,
		Type:      typ,
		IssuedAt:  iat,
		ExpiresAt: exp,
		TokenID:   jti,
	}
}

// Usable reports whether c can occupy the expected token slot right now.
func Usable(c *Claims, expectedType string) bool {
	return UsableAt(c, expectedType, time.Now())
}

// UsableAt is Usable with an explicit clock, for deterministic expiry
// checks. Expired or mis-typed tokens are treated as absent.
func UsableAt(c *Claims, expectedType string, now time.Time) bool {
	if c == nil {
		return false
	}
	if c.Type != expectedType {
		return false
	}
	return c.ExpiresAt > now.Unix()
}

// asUnix normalizes the numeric claim encodings produced by JSON
// decoding (float64) and by jwt.NewNumericDate round-trips.
func asUnix(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case jwt.NumericDate:
		return n.Unix(), true
	}
	return 0, false
}
