package openapi

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the document metadata written into the generated spec.
// ServerURL, when set, replaces the API base path as the advertised server.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ServerURL   string `toml:"server_url"`
}

// ConfigEnv names the environment variables that override each Config field.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Glimpse API"
	}
	if c.Description == "" {
		c.Description = "Content-addressed image classification with a shared result cache."
	}

	if env != nil {
		for name, dst := range map[string]*string{
			env.Title:       &c.Title,
			env.Description: &c.Description,
			env.ServerURL:   &c.ServerURL,
		} {
			if v := os.Getenv(name); name != "" && v != "" {
				*dst = v
			}
		}
	}

	if c.ServerURL != "" {
		if _, err := url.Parse(c.ServerURL); err != nil {
			return fmt.Errorf("invalid server_url: %w", err)
		}
	}
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.ServerURL != "" {
		c.ServerURL = overlay.ServerURL
	}
}
