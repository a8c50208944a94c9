package middleware

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// AnyOrigin in Origins admits every request origin.
const AnyOrigin = "*"

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override each CORSConfig field.
// List values are comma separated.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Booleans always apply; lists apply when
// present in the overlay and MaxAge when non-negative.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for dst, src := range map[*[]string][]string{
		&c.Origins:        overlay.Origins,
		&c.AllowedMethods: overlay.AllowedMethods,
		&c.AllowedHeaders: overlay.AllowedHeaders,
		&c.ExposedHeaders: overlay.ExposedHeaders,
	} {
		if src != nil {
			*dst = src
		}
	}
	if overlay.MaxAge >= 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// allows reports whether origin may make cross-origin requests.
func (c *CORSConfig) allows(origin string) bool {
	if origin == "" {
		return false
	}
	return slices.Contains(c.Origins, AnyOrigin) || slices.Contains(c.Origins, origin)
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "aeg-event-type"}
	}
	if len(c.ExposedHeaders) == 0 {
		c.ExposedHeaders = []string{"X-Cache", "X-Fingerprint"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	if v, ok := lookup(env.Enabled); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v, ok := lookup(env.AllowCredentials); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowCredentials = b
		}
	}
	if v, ok := lookup(env.MaxAge); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAge = n
		}
	}
	for dst, name := range map[*[]string]string{
		&c.Origins:        env.Origins,
		&c.AllowedMethods: env.AllowedMethods,
		&c.AllowedHeaders: env.AllowedHeaders,
		&c.ExposedHeaders: env.ExposedHeaders,
	} {
		if v, ok := lookup(name); ok {
			*dst = splitList(v)
		}
	}
}

func (c *CORSConfig) validate() error {
	if c.AllowCredentials && slices.Contains(c.Origins, AnyOrigin) {
		return fmt.Errorf("cors: allow_credentials cannot be combined with origin %q", AnyOrigin)
	}
	return nil
}

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
