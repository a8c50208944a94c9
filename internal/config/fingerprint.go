package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/glimpse/internal/fingerprint"
)

const EnvFingerprintAlgorithm = "GLIMPSE_FINGERPRINT_ALGORITHM"

// FingerprintConfig selects the digest used to key cache entries.
// Changing it orphans every stored entry.
type FingerprintConfig struct {
	Algorithm string `toml:"algorithm"`
}

// Deriver returns the configured fingerprint deriver.
func (c *FingerprintConfig) Deriver() (fingerprint.Deriver, error) {
	d, err := fingerprint.New(fingerprint.Algorithm(c.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("algorithm %q: %w", c.Algorithm, err)
	}
	return d, nil
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *FingerprintConfig) Finalize() error {
	if c.Algorithm == "" {
		c.Algorithm = string(fingerprint.SHA256)
	}
	if v := os.Getenv(EnvFingerprintAlgorithm); v != "" {
		c.Algorithm = strings.ToLower(v)
	}
	_, err := c.Deriver()
	return err
}

// Merge overwrites non-zero fields from overlay.
func (c *FingerprintConfig) Merge(overlay *FingerprintConfig) {
	if overlay.Algorithm != "" {
		c.Algorithm = overlay.Algorithm
	}
}
