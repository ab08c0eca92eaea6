package routes

import (
	"regexp"
	"strings"
	"sync"
)

// Route tables for the Forge web app. A path may be both protected and
// user-context-injecting; it must never appear in both the protected
// and auth lists.

// ProtectedRoutes require an authenticated session.
var ProtectedRoutes = []string{
	"/profile",
	"/editor",
	"/bookmarks",
}

// AuthRoutes bounce already-authenticated users back to where they
// came from.
var AuthRoutes = []string{
	"/login",
	"/signup",
	"/forgot-password",
}

// PublicRoutes are reachable without a session.
var PublicRoutes = []string{
	"/",
	"/search",
	"/article",
	"/maintenance",
	"/unauthorized",
	"/_next",
	"/api",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
}

// APIUserRoutes receive identity headers when a user is resolvable.
var APIUserRoutes = []string{
	"/api/auth",
	"/api/users",
	"/api/posts",
	"/api/social",
	"/api/uploads",
}

// Classification is the set of categories a path falls into. Protected
// and APIUserContext are independent; Protected and AuthOnly are
// mutually exclusive by construction of the tables.
type Classification struct {
	Public         bool
	AuthOnly       bool
	Protected      bool
	APIUserContext bool
}

// Classify categorizes a request path against the static route tables.
// Asset paths should be filtered with IsAsset before calling.
func Classify(path string) Classification {
	return Classification{
		Public:         matchesAny(path, PublicRoutes),
		AuthOnly:       matchesAny(path, AuthRoutes),
		Protected:      matchesAny(path, ProtectedRoutes),
		APIUserContext: matchesAny(path, APIUserRoutes),
	}
}

func IsProtected(path string) bool      { return matchesAny(path, ProtectedRoutes) }
func IsAuthRoute(path string) bool      { return matchesAny(path, AuthRoutes) }
func IsPublic(path string) bool         { return matchesAny(path, PublicRoutes) }
func NeedsUserContext(path string) bool { return matchesAny(path, APIUserRoutes) }

// IsAsset reports whether the path is a static file or a framework
// internal. Assets bypass classification entirely; checking this first
// avoids redirect loops on asset requests.
func IsAsset(path string) bool {
	return strings.HasPrefix(path, "/_next/") ||
		strings.HasPrefix(path, "/static/") ||
		strings.Contains(path, ".") ||
		path == "/favicon.ico"
}

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// matchesAny implements the shared matching rule: exact match or
// "pattern/" prefix; a trailing "*" matches by bare prefix; bracketed
// segments match any single path segment.
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matches(path, pattern) {
			return true
		}
	}
	return false
}

func matches(path, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	if strings.Contains(pattern, "[") {
		re := segmentPattern(pattern)
		if re == nil {
			return false
		}
		return re.MatchString(path)
	}
	return path == pattern || strings.HasPrefix(path, pattern+"/")
}

// bracketSegment matches an escaped [param] segment inside a
// QuoteMeta'd pattern.
var bracketSegment = regexp.MustCompile(`\\\[[^/]*?\\\]`)

func segmentPattern(pattern string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()

	if re, ok := patternCache[pattern]; ok {
		return re
	}

	expr := "^" + bracketSegment.ReplaceAllString(regexp.QuoteMeta(pattern), "[^/]+") + "$"

	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	patternCache[pattern] = re
	return re
}
