package prompts

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config bounds the version-number retry loop.
type Config struct {
	MaxAttempts int    `toml:"max_attempts"`
	RetryDelay  string `toml:"retry_delay"`
	MaxJitter   string `toml:"max_jitter"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxAttempts string
	RetryDelay  string
	MaxJitter   string
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *Config) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// MaxJitterDuration returns MaxJitter as a time.Duration.
func (c *Config) MaxJitterDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxJitter)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.MaxJitter != "" {
		c.MaxJitter = overlay.MaxJitter
	}
}

func (c *Config) loadDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "10ms"
	}
	if c.MaxJitter == "" {
		c.MaxJitter = "25ms"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
	if env.RetryDelay != "" {
		if v := os.Getenv(env.RetryDelay); v != "" {
			c.RetryDelay = v
		}
	}
	if env.MaxJitter != "" {
		if v := os.Getenv(env.MaxJitter); v != "" {
			c.MaxJitter = v
		}
	}
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be between 1 and 10")
	}
	if d, err := time.ParseDuration(c.RetryDelay); err != nil || d < 0 {
		return fmt.Errorf("invalid retry_delay: %q", c.RetryDelay)
	}
	if d, err := time.ParseDuration(c.MaxJitter); err != nil || d <= 0 {
		return fmt.Errorf("invalid max_jitter: %q", c.MaxJitter)
	}
	return nil
}
