package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/glimpse/pkg/formatting"
	"github.com/JaimeStill/glimpse/pkg/middleware"
	"github.com/JaimeStill/glimpse/pkg/openapi"
)

const (
	EnvAPIBasePath      = "GLIMPSE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "GLIMPSE_API_MAX_UPLOAD_SIZE"
)

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "GLIMPSE_OPENAPI_TITLE",
	Description: "GLIMPSE_OPENAPI_DESCRIPTION",
	ServerURL:   "GLIMPSE_OPENAPI_SERVER_URL",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "GLIMPSE_CORS_ENABLED",
	Origins:          "GLIMPSE_CORS_ORIGINS",
	AllowedMethods:   "GLIMPSE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "GLIMPSE_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "GLIMPSE_CORS_EXPOSED_HEADERS",
	AllowCredentials: "GLIMPSE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "GLIMPSE_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload limits, CORS, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
