package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	AWS     AWSConfig     `mapstructure:"aws"`
	Deploy  DeployConfig  `mapstructure:"deploy"`
	Journal JournalConfig `mapstructure:"journal"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AWSConfig holds AWS client configuration. Empty values fall back to the
// SDK's default chain (AWS_REGION, ~/.aws/config, instance roles).
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	Endpoint        string `mapstructure:"endpoint"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// DeployConfig holds promotion settings.
type DeployConfig struct {
	AppSpecPath       string        `mapstructure:"appspec_path"`
	ConflictWait      time.Duration `mapstructure:"conflict_wait"`   // wait for another deployment on the group
	CompletionWait    time.Duration `mapstructure:"completion_wait"` // wait for our own deployment
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	DescriptionPrefix string        `mapstructure:"description_prefix"`
}

// JournalConfig holds the local promotion journal configuration.
type JournalConfig struct {
	DSN string `mapstructure:"dsn"` // empty disables the journal
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"region":     "aws.region",
	"profile":    "aws.profile",
	"endpoint":   "aws.endpoint",
	"appspec":    "deploy.appspec_path",
	"journal":    "journal.dsn",
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from defaults, file, environment and flags,
// in increasing order of precedence. flags may be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.session_token", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.max_retries", 0) // SDK default
	v.SetDefault("deploy.appspec_path", "./appspec.yml")
	v.SetDefault("deploy.conflict_wait", "10m")
	v.SetDefault("deploy.completion_wait", "60m")
	v.SetDefault("deploy.poll_interval", "15s")
	v.SetDefault("deploy.description_prefix", "Created by promoter")
	v.SetDefault("journal.dsn", "")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PROMOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check by type alone.
func (c *Config) Validate() error {
	if c.Deploy.ConflictWait <= 0 {
		return fmt.Errorf("deploy.conflict_wait must be positive")
	}
	if c.Deploy.CompletionWait <= 0 {
		return fmt.Errorf("deploy.completion_wait must be positive")
	}
	if c.Deploy.PollInterval <= 0 {
		return fmt.Errorf("deploy.poll_interval must be positive")
	}
	if c.Deploy.PollInterval > c.Deploy.ConflictWait {
		return fmt.Errorf("deploy.poll_interval must not exceed deploy.conflict_wait")
	}
	if c.Deploy.PollInterval > c.Deploy.CompletionWait {
		return fmt.Errorf("deploy.poll_interval must not exceed deploy.completion_wait")
	}
	if c.Deploy.AppSpecPath == "" {
		return fmt.Errorf("deploy.appspec_path is required")
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
