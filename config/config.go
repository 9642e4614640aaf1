package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Google sign-in and mock authentication
//   - redis.go: session and flag storage
//   - http.go: HTTP server configuration
//   - backend.go: registration backend API client
//   - flags.go: registration gating flags
//   - ratelimit.go: per-client request throttling
//   - observability.go: StatsD and Prometheus metrics
//   - logging.go: log level and format
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, secure cookies).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Redis RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Backend BackendConfig `envPrefix:"BACKEND_"`

	Flags FlagsConfig `envPrefix:"FLAGS_"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	Observability ObservabilityConfig

	Log LogConfig `envPrefix:"LOG_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Flags.Sanitize()
	c.RateLimit.Sanitize()
	c.Observability.Sanitize()
	c.Log.Sanitize()

	c.detectDevMode()
}

// Validate reports settings the portal cannot start with. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.Backend.BaseURL)
	switch {
	case c.Backend.BaseURL == "":
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("BACKEND_BASE_URL: %w", err))
	case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("BACKEND_BASE_URL must be an absolute http(s) URL, got %q", c.Backend.BaseURL))
	}

	if c.Auth.Mode == AuthModeOAuth {
		if strings.TrimSpace(c.Auth.OAuth.ClientID) == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_ID is required when AUTH_MODE=oauth"))
		}
		if strings.TrimSpace(c.Auth.OAuth.ClientSecret) == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_SECRET is required when AUTH_MODE=oauth"))
		}
	}

	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
