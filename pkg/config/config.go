package config

import (
	"fmt"
	"strings"

	"mcp-file-gateway/pkg/logging"
)

// Server identity reported during MCP initialization
const (
	ServerName      = "mcp-file-gateway"
	ServerVersion   = "1.0.0"
	ProtocolVersion = "2024-11-05"
)

// Configuration sources
const (
	DefaultConfigFile = "config.json"
	EnvPrefix         = "MCP_GATEWAY"
)

// Transport names
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Defaults
const (
	DefaultHTTPAddr     = "127.0.0.1:8080"
	DefaultPublicDir    = "public"
	DefaultMaxReadBytes = 10 << 20
	DefaultLogLevel     = "INFO"
)

// Config is the process configuration, read once at startup
type Config struct {
	AllowedDirs  []string   `mapstructure:"allowed_dirs" json:"allowed_dirs"`
	LogLevel     string     `mapstructure:"log_level" json:"log_level"`
	Transport    string     `mapstructure:"transport" json:"transport"`
	HTTP         HTTPConfig `mapstructure:"http" json:"http"`
	MaxReadBytes int64      `mapstructure:"max_read_bytes" json:"max_read_bytes"`
}

// HTTPConfig configures the HTTP transport
type HTTPConfig struct {
	Addr      string `mapstructure:"addr" json:"addr"`
	PublicDir string `mapstructure:"public_dir" json:"public_dir"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		AllowedDirs: []string{},
		LogLevel:    DefaultLogLevel,
		Transport:   TransportStdio,
		HTTP: HTTPConfig{
			Addr:      DefaultHTTPAddr,
			PublicDir: DefaultPublicDir,
		},
		MaxReadBytes: DefaultMaxReadBytes,
	}
}

// Validate checks the configuration for values the server cannot start with.
// An empty allow-list is accepted; every path tool then denies.
func (c *Config) Validate() error {
	for i, dir := range c.AllowedDirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("allowed_dirs[%d] is empty", i)
		}
	}

	if !logging.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (expected DEBUG, INFO, WARN or ERROR)", c.LogLevel)
	}

	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if strings.TrimSpace(c.HTTP.Addr) == "" {
			return fmt.Errorf("http.addr is required for the http transport")
		}
	default:
		return fmt.Errorf("invalid transport %q (expected %s or %s)", c.Transport, TransportStdio, TransportHTTP)
	}

	if c.MaxReadBytes <= 0 {
		return fmt.Errorf("max_read_bytes must be positive, got %d", c.MaxReadBytes)
	}

	return nil
}
