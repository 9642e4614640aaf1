package config

import (
	"strings"
	"time"
)

const (
	defaultBackendTimeout    = 10 * time.Second
	defaultBackendErrorsPath = "errors"
)

// BackendConfig configures the client for the registration backend API.
type BackendConfig struct {
	// BaseURL is the scheme and host of the backend, e.g. "https://api.example.com".
	BaseURL string `env:"BASE_URL,required"`

	// Timeout bounds every outbound call. No retries are attempted.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// ErrorsPath is a JMESPath expression locating field errors in a
	// registration response body.
	ErrorsPath string `env:"ERRORS_PATH" envDefault:"errors"`
}

// Sanitize trims the base URL and restores defaults for invalid values.
func (c *BackendConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultBackendTimeout
	}
	if c.ErrorsPath = strings.TrimSpace(c.ErrorsPath); c.ErrorsPath == "" {
		c.ErrorsPath = defaultBackendErrorsPath
	}
}
