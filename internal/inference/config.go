package inference

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds orchestrator behavior settings.
// Fields are pointers so an overlay that omits them leaves the base value intact.
type Config struct {
	// FixedPrecision prints the confidence percentage with Precision decimals.
	// When unset or false the shortest exact representation is printed.
	FixedPrecision *bool `toml:"fixed_precision"`
	Precision      *int  `toml:"precision"`
	// SingleFlight coalesces concurrent misses for the same fingerprint.
	SingleFlight *bool `toml:"single_flight"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	FixedPrecision string
	Precision      string
	SingleFlight   string
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites the fields set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.FixedPrecision != nil {
		c.FixedPrecision = overlay.FixedPrecision
	}
	if overlay.Precision != nil {
		c.Precision = overlay.Precision
	}
	if overlay.SingleFlight != nil {
		c.SingleFlight = overlay.SingleFlight
	}
}

// Coalesce reports whether single-flight is enabled.
func (c *Config) Coalesce() bool {
	return c.SingleFlight != nil && *c.SingleFlight
}

// Decimals returns the fixed number of percentage decimals, or -1 for the
// shortest representation.
func (c *Config) Decimals() int {
	if c.FixedPrecision == nil || !*c.FixedPrecision {
		return -1
	}
	if c.Precision == nil {
		return 0
	}
	return *c.Precision
}

func (c *Config) loadEnv(env *Env) {
	if v, ok := lookupEnv(env.FixedPrecision); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FixedPrecision = &b
		}
	}
	if v, ok := lookupEnv(env.Precision); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Precision = &n
		}
	}
	if v, ok := lookupEnv(env.SingleFlight); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SingleFlight = &b
		}
	}
}

func (c *Config) validate() error {
	if c.Precision != nil && (*c.Precision < 0 || *c.Precision > 8) {
		return fmt.Errorf("invalid precision: %d", *c.Precision)
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}
