// Package config loads tool configuration from file and environment and
// bootstraps the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cartography CartographyConfig `yaml:"cartography" mapstructure:"cartography"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// CartographyConfig configures the cartography API replay client.
type CartographyConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	APIToken       string  `yaml:"api_token" mapstructure:"api_token"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// Timeout returns the per-request timeout.
func (c CartographyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ExtractConfig configures the extraction pipeline.
type ExtractConfig struct {
	WaitCeilingMillis  int `yaml:"wait_ceiling_ms" mapstructure:"wait_ceiling_ms"`
	PollIntervalMillis int `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
}

// WaitCeiling returns how long to wait for an intercepted cartography payload
// before attempting the single manual replay.
func (c ExtractConfig) WaitCeiling() time.Duration {
	return time.Duration(c.WaitCeilingMillis) * time.Millisecond
}

// PollInterval returns the polling interval of the bounded wait.
func (c ExtractConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// ExportConfig maps record section names to an include-in-export flag.
// The core always computes every section; this only filters serialization.
type ExportConfig struct {
	Sections map[string]bool `yaml:"sections" mapstructure:"sections"`
}

// Include reports whether a section should be serialized. Unlisted sections
// are included.
func (e ExportConfig) Include(section string) bool {
	if e.Sections == nil {
		return true
	}
	include, ok := e.Sections[section]
	if !ok {
		return true
	}
	return include
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PAPEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cartography.base_url", "https://api.pappers.fr/v2")
	v.SetDefault("cartography.timeout_secs", 15)
	v.SetDefault("cartography.requests_per_sec", 1.0)
	v.SetDefault("extract.wait_ceiling_ms", 3000)
	v.SetDefault("extract.poll_interval_ms", 200)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
