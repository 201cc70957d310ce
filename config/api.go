package config

import (
	"strings"
	"time"
)

const defaultAPIBaseURL = "http://localhost:3001/api"

// APIConfig configures the client for the remote REST API that owns users, projects and tasks.
type APIConfig struct {
	// BaseURL is prefixed to every API path (e.g., "/auth/login").
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3001/api"`

	// Timeout bounds a single API round-trip.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// ErrorMessagePath is a JMESPath expression selecting the human-readable
	// message from a non-2xx response body.
	ErrorMessagePath string `env:"ERROR_MESSAGE_PATH" envDefault:"error"`
}

// Sanitize normalises API client settings.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.ErrorMessagePath = strings.TrimSpace(c.ErrorMessagePath)
	if c.ErrorMessagePath == "" {
		c.ErrorMessagePath = "error"
	}
}
