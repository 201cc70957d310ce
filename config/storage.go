package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageDriver selects the backend that persists per-client key-value state.
type StorageDriver string

const (
	// StorageDriverMemory keeps client storage in process memory (development and tests).
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverRedis keeps client storage in Redis.
	StorageDriverRedis StorageDriver = "redis"
	// StorageDriverPostgres keeps client storage in PostgreSQL.
	StorageDriverPostgres StorageDriver = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageDriver.
func (d *StorageDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis", "postgres":
		*d = StorageDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageDriver: %q (valid options: memory, redis, postgres)", v)
	}
}

// StorageConfig contains client storage configuration.
type StorageConfig struct {
	Driver StorageDriver `env:"DRIVER" envDefault:"redis"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"vista:storage:"`

	// TTL expires Redis entries; zero keeps them until removed.
	TTL time.Duration `env:"TTL" envDefault:"0s"`
}

// Sanitize applies guardrails to storage configuration values.
func (c *StorageConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = StorageDriverRedis
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "vista:storage:"
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
}
