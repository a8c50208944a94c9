package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/glimpse/internal/events"
	"github.com/JaimeStill/glimpse/internal/inference"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/internal/scoring"
	"github.com/JaimeStill/glimpse/pkg/database"
	"github.com/JaimeStill/glimpse/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvGlimpseEnv             = "GLIMPSE_ENV"
	EnvGlimpseShutdownTimeout = "GLIMPSE_SHUTDOWN_TIMEOUT"
	EnvGlimpseVersion         = "GLIMPSE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "GLIMPSE_DB_HOST",
	Port:            "GLIMPSE_DB_PORT",
	Name:            "GLIMPSE_DB_NAME",
	User:            "GLIMPSE_DB_USER",
	Password:        "GLIMPSE_DB_PASSWORD",
	SSLMode:         "GLIMPSE_DB_SSL_MODE",
	MaxOpenConns:    "GLIMPSE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "GLIMPSE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "GLIMPSE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "GLIMPSE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "GLIMPSE_STORAGE_CONTAINER_NAME",
	ConnectionString: "GLIMPSE_STORAGE_CONNECTION_STRING",
	Account:          "GLIMPSE_STORAGE_ACCOUNT",
	AccountKey:       "GLIMPSE_STORAGE_ACCOUNT_KEY",
	ServiceURL:       "GLIMPSE_STORAGE_SERVICE_URL",
}

var resultsEnv = &results.Env{
	Backend:         "GLIMPSE_RESULTS_BACKEND",
	CosmosAccount:   "GLIMPSE_COSMOS_ACCOUNT",
	CosmosEndpoint:  "GLIMPSE_COSMOS_ENDPOINT",
	CosmosKey:       "GLIMPSE_COSMOS_KEY",
	CosmosDatabase:  "GLIMPSE_COSMOS_DATABASE",
	CosmosContainer: "GLIMPSE_COSMOS_CONTAINER",
}

var eventsEnv = &events.Env{
	TopicHost:     "GLIMPSE_EVENTS_TOPIC_HOST",
	TopicEndpoint: "GLIMPSE_EVENTS_TOPIC_ENDPOINT",
	TopicKey:      "GLIMPSE_EVENTS_TOPIC_KEY",
}

var scoringEnv = &scoring.Env{
	ModelPath:         "GLIMPSE_MODEL_PATH",
	LabelsPath:        "GLIMPSE_LABELS_PATH",
	SharedLibraryPath: "GLIMPSE_ONNXRUNTIME_LIB",
	InputName:         "GLIMPSE_MODEL_INPUT_NAME",
	OutputName:        "GLIMPSE_MODEL_OUTPUT_NAME",
	InputWidth:        "GLIMPSE_MODEL_INPUT_WIDTH",
	InputHeight:       "GLIMPSE_MODEL_INPUT_HEIGHT",
	Classes:           "GLIMPSE_MODEL_CLASSES",
	Layout:            "GLIMPSE_MODEL_LAYOUT",
}

var inferenceEnv = &inference.Env{
	FixedPrecision: "GLIMPSE_INFERENCE_FIXED_PRECISION",
	Precision:      "GLIMPSE_INFERENCE_PRECISION",
	SingleFlight:   "GLIMPSE_INFERENCE_SINGLE_FLIGHT",
}

// Config is the root configuration for the Glimpse service and its CGI entry points.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	API             APIConfig         `toml:"api"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Results         results.Config    `toml:"results"`
	Events          events.Config     `toml:"events"`
	Scoring         scoring.Config    `toml:"scoring"`
	Inference       inference.Config  `toml:"inference"`
	Fingerprint     FingerprintConfig `toml:"fingerprint"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the GLIMPSE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGlimpseEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path. The overlay is
// resolved relative to the working directory.
func LoadFile(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Results.Merge(&overlay.Results)
	c.Events.Merge(&overlay.Events)
	c.Scoring.Merge(&overlay.Scoring)
	c.Inference.Merge(&overlay.Inference)
	c.Fingerprint.Merge(&overlay.Fingerprint)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Results.Finalize(resultsEnv); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if c.Results.Backend == results.BackendPostgres {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Scoring.Finalize(scoringEnv); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Inference.Finalize(inferenceEnv); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Fingerprint.Finalize(); err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGlimpseShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGlimpseVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvGlimpseEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
