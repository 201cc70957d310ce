package config

import (
	"strings"
	"time"
)

const (
	defaultClientCookieName   = "vista_client"
	defaultRegistryCapacity   = 10000
	defaultRegistryIdleTTL    = 30 * time.Minute
	defaultClientCookieMaxAge = 365 * 24 * time.Hour
)

// SessionConfig controls the per-browser session registry.
type SessionConfig struct {
	// CookieName names the cookie that identifies a browser client.
	CookieName string `env:"COOKIE_NAME" envDefault:"vista_client"`

	// CookieMaxAge is the lifetime of the client cookie.
	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE" envDefault:"8760h"`

	// RegistryCapacity bounds the number of in-memory session stores.
	RegistryCapacity int `env:"REGISTRY_CAPACITY" envDefault:"10000"`

	// RegistryIdleTTL evicts session stores that have not been used for this long.
	// Evicted stores are rehydrated from persisted storage on next access.
	RegistryIdleTTL time.Duration `env:"REGISTRY_IDLE_TTL" envDefault:"30m"`

	// LogoutOnUnauthorized logs the browser out when an authenticated API call returns 401.
	LogoutOnUnauthorized bool `env:"LOGOUT_ON_UNAUTHORIZED" envDefault:"false"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	c.CookieName = strings.TrimSpace(c.CookieName)
	if c.CookieName == "" {
		c.CookieName = defaultClientCookieName
	}
	if c.CookieMaxAge <= 0 {
		c.CookieMaxAge = defaultClientCookieMaxAge
	}
	if c.RegistryCapacity <= 0 {
		c.RegistryCapacity = defaultRegistryCapacity
	}
	if c.RegistryIdleTTL <= 0 {
		c.RegistryIdleTTL = defaultRegistryIdleTTL
	}
}
