package config

import (
	"strings"
	"time"
)

// FlagsConfig controls storage of the per-browser registration flags.
type FlagsConfig struct {
	// Prefix namespaces flag hashes in Redis.
	Prefix string `env:"PREFIX" envDefault:"flags:"`

	// TTL expires a browser's flags after inactivity. Zero keeps them forever.
	TTL time.Duration `env:"TTL" envDefault:"0s"`
}

// Sanitize normalises the key prefix and clamps negative TTLs.
func (c *FlagsConfig) Sanitize() {
	c.Prefix = strings.TrimSpace(c.Prefix)
	if c.Prefix == "" {
		c.Prefix = "flags:"
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
}
