package storage

import (
	"fmt"
	"os"
)

// Config holds Azure Blob Storage connection parameters.
// Credentials are resolved in order: ConnectionString, Account with AccountKey,
// then Account with the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	Account          string `toml:"account"`
	AccountKey       string `toml:"account_key"`
	ServiceURL       string `toml:"service_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	Account          string
	AccountKey       string
	ServiceURL       string
}

// URL returns ServiceURL, or the public blob endpoint derived from Account.
func (c *Config) URL() string {
	if c.ServiceURL != "" {
		return c.ServiceURL
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.Account)
}

// Configured reports whether any credential source is set.
func (c *Config) Configured() bool {
	return c.ConnectionString != "" || c.Account != "" || c.ServiceURL != ""
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.Account != "" {
		c.Account = overlay.Account
	}
	if overlay.AccountKey != "" {
		c.AccountKey = overlay.AccountKey
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "images"
	}
}

func (c *Config) loadEnv(env *Env) {
	fields := []struct {
		name string
		dst  *string
	}{
		{env.ContainerName, &c.ContainerName},
		{env.ConnectionString, &c.ConnectionString},
		{env.Account, &c.Account},
		{env.AccountKey, &c.AccountKey},
		{env.ServiceURL, &c.ServiceURL},
	}
	for _, f := range fields {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.dst = v
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.AccountKey != "" && c.Account == "" {
		return fmt.Errorf("account required with account_key")
	}
	return nil
}
