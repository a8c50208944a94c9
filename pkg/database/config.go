package database

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection and pool parameters.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override each Config field.
// Empty names are skipped.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime parsed. Finalize guarantees it parses.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout parsed. Finalize guarantees it parses.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// URL returns the connection parameters as a postgres:// URL.
// Both the pgx driver and the migration runner accept this form.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Redacted is URL with the password masked, for logging.
func (c *Config) Redacted() string {
	u, _ := url.Parse(c.URL())
	return u.Redacted()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.Host, overlay.Host)
	mergeInt(&c.Port, overlay.Port)
	mergeString(&c.Name, overlay.Name)
	mergeString(&c.User, overlay.User)
	mergeString(&c.Password, overlay.Password)
	mergeString(&c.SSLMode, overlay.SSLMode)
	mergeInt(&c.MaxOpenConns, overlay.MaxOpenConns)
	mergeInt(&c.MaxIdleConns, overlay.MaxIdleConns)
	mergeString(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	mergeString(&c.ConnTimeout, overlay.ConnTimeout)
}

func (c *Config) loadDefaults() {
	defaults := Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "glimpse",
		User:            "glimpse",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	defaults.Merge(c)
	*c = defaults
}

func (c *Config) loadEnv(env *Env) {
	envString(&c.Host, env.Host)
	envInt(&c.Port, env.Port)
	envString(&c.Name, env.Name)
	envString(&c.User, env.User)
	envString(&c.Password, env.Password)
	envString(&c.SSLMode, env.SSLMode)
	envInt(&c.MaxOpenConns, env.MaxOpenConns)
	envInt(&c.MaxIdleConns, env.MaxIdleConns)
	envString(&c.ConnMaxLifetime, env.ConnMaxLifetime)
	envString(&c.ConnTimeout, env.ConnTimeout)
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if d, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("conn_timeout must be positive: %s", c.ConnTimeout)
	}
	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func envString(dst *string, name string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if name == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		*dst = n
	}
}
