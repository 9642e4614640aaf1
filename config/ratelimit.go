package config

// RateLimitConfig throttles state-changing requests per client address.
type RateLimitConfig struct {
	Enabled bool    `env:"ENABLED" envDefault:"true"`
	RPS     float64 `env:"RPS"     envDefault:"2"`
	Burst   int     `env:"BURST"   envDefault:"5"`
}

// Sanitize disables the limiter when the rate is unusable.
func (c *RateLimitConfig) Sanitize() {
	if c.RPS <= 0 {
		c.Enabled = false
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
}
