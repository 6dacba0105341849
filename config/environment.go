package config

import (
	"net/http"
	"os"
	"strings"
)

// Environment holds the session cookie settings.
type Environment struct {
	IsDevelopment bool
	Name          string
	Domain        string
	CookieSecure  bool
	SameSite      http.SameSite
}

func loadEnvironment() Environment {
	// Get domain from environment variable
	domain := os.Getenv("COOKIE_DOMAIN")

	// If no domain is set, we're in development
	isDev := domain == ""

	env := Environment{
		IsDevelopment: isDev,
		Name:          getenv("COOKIE_NAME", "bxcrd"),
		Domain:        domain,
		CookieSecure:  !isDev,
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		env.CookieSecure = v == "true"
	}

	switch strings.ToLower(os.Getenv("COOKIE_SAMESITE")) {
	case "none":
		env.SameSite = http.SameSiteNoneMode
	case "lax":
		env.SameSite = http.SameSiteLaxMode
	default:
		env.SameSite = http.SameSiteStrictMode
	}

	return env
}
