package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment names understood by the gateway. They select cookie
// security attributes and default backend endpoints.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Config struct {
	AppPort     string
	Environment string

	// UpstreamURL is the origin the gateway fronts (the rendered web app).
	UpstreamURL string

	// Backend REST prefixes, e.g. http://127.0.0.1:8000/api/auth.
	AuthBaseURL  string
	UsersBaseURL string

	RedisAddr     string
	RedisPassword string

	// CookieDomain is only set for production deployments where the
	// cookie must span subdomains. Empty means host-only cookies.
	CookieDomain string
}

func Load() Config {

	// A missing .env file is fine; real deployments use the environment.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		AppPort:     getenv("APP_PORT", "3000"),
		Environment: getenv("APP_ENV", EnvDevelopment),

		UpstreamURL: getenv("UPSTREAM_URL", "http://127.0.0.1:3001"),

		AuthBaseURL:  getenv("AUTH_BASE_URL", "http://127.0.0.1:8000/api/auth"),
		UsersBaseURL: getenv("USERS_BASE_URL", "http://127.0.0.1:8000/api/users"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
	}

	return cfg
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
