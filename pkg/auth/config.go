package auth

import (
	"fmt"
	"os"
)

const (
	ModeHeader = "header"
	ModeHMAC   = "hmac"
	ModeOIDC   = "oidc"
)

// Config selects and parameterizes the identity verifier.
// Mode defaults to hmac; header mode trusts the client and must be chosen explicitly.
type Config struct {
	Mode     string `toml:"mode"`
	Secret   string `toml:"secret"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
	Header   string `toml:"header"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode     string
	Secret   string
	Issuer   string
	ClientID string
	Header   string
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
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.Header != "" {
		c.Header = overlay.Header
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHMAC
	}
	if c.Header == "" {
		c.Header = "X-User-ID"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.Header != "" {
		if v := os.Getenv(env.Header); v != "" {
			c.Header = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeHeader:
		return nil
	case ModeHMAC:
		if len(c.Secret) < 32 {
			return fmt.Errorf("secret must be at least 32 bytes for hmac mode")
		}
		return nil
	case ModeOIDC:
		if c.Issuer == "" {
			return fmt.Errorf("issuer required for oidc mode")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id required for oidc mode")
		}
		return nil
	}
	return fmt.Errorf("invalid mode: %q", c.Mode)
}
