package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader reads configuration from a JSON file, MCP_GATEWAY_* environment
// variables and bound command-line flags, in increasing precedence.
type Loader struct {
	configPath string
	explicit   bool
	v          *viper.Viper
}

// NewLoader creates a loader. An empty configPath selects config.json in the
// working directory, which may be absent.
func NewLoader(configPath string) *Loader {
	l := &Loader{
		configPath: configPath,
		explicit:   configPath != "",
		v:          viper.New(),
	}
	if !l.explicit {
		l.configPath = DefaultConfigFile
	}

	defaults := DefaultConfig()
	l.v.SetDefault("allowed_dirs", defaults.AllowedDirs)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("transport", defaults.Transport)
	l.v.SetDefault("http.addr", defaults.HTTP.Addr)
	l.v.SetDefault("http.public_dir", defaults.HTTP.PublicDir)
	l.v.SetDefault("max_read_bytes", defaults.MaxReadBytes)

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	return l
}

// BindFlag makes a command-line flag override key when the flag was set
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	return l.configPath
}

// Load reads and validates the configuration
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.configPath); err != nil {
		if !os.IsNotExist(err) || l.explicit {
			return nil, fmt.Errorf("failed to access config file %s: %w", l.configPath, err)
		}
	} else {
		l.v.SetConfigFile(l.configPath)
		l.v.SetConfigType("json")
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}
