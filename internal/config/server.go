package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "GLIMPSE_SERVER_HOST"
	EnvServerPort              = "GLIMPSE_SERVER_PORT"
	EnvServerReadTimeout       = "GLIMPSE_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "GLIMPSE_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "GLIMPSE_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "GLIMPSE_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "GLIMPSE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Read and write timeouts bound
// a single classify request, so they must cover an upload at MaxUploadSize
// plus one model run.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeouts holds the parsed server durations.
type Timeouts struct {
	Read       time.Duration
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
}

// Timeouts returns the parsed durations. Call after Finalize.
func (c *ServerConfig) Timeouts() Timeouts {
	parse := func(s string) time.Duration {
		d, _ := time.ParseDuration(s)
		return d
	}
	return Timeouts{
		Read:       parse(c.ReadTimeout),
		ReadHeader: parse(c.ReadHeaderTimeout),
		Write:      parse(c.WriteTimeout),
		Idle:       parse(c.IdleTimeout),
		Shutdown:   parse(c.ShutdownTimeout),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.durations(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

type durationField struct {
	name string
	env  string
	dst  *string
	src  *string
	def  string
}

// durations pairs each duration field of c with the same field of other.
func (c *ServerConfig) durations(other *ServerConfig) []durationField {
	if other == nil {
		other = &ServerConfig{}
	}
	return []durationField{
		{"read_timeout", EnvServerReadTimeout, &c.ReadTimeout, &other.ReadTimeout, "30s"},
		{"read_header_timeout", EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout, &other.ReadHeaderTimeout, "5s"},
		{"write_timeout", EnvServerWriteTimeout, &c.WriteTimeout, &other.WriteTimeout, "1m"},
		{"idle_timeout", EnvServerIdleTimeout, &c.IdleTimeout, &other.IdleTimeout, "2m"},
		{"shutdown_timeout", EnvServerShutdownTimeout, &c.ShutdownTimeout, &other.ShutdownTimeout, "30s"},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, f := range c.durations(nil) {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.durations(nil) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations(nil) {
		d, err := time.ParseDuration(*f.dst)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", f.name)
		}
	}
	return nil
}
