// Package config loads sieve settings from defaults, an optional config
// file and SIEVE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/sieve/internal/query"
)

// EnvPrefix prefixes every environment variable, e.g. SIEVE_QUERY_MAX_LIMIT.
const EnvPrefix = "SIEVE"

// Config holds all runtime settings.
type Config struct {
	// Database is the SQLite file used by store-backed commands.
	Database string `mapstructure:"database"`

	// Collection is the default collection name.
	Collection string `mapstructure:"collection"`

	// Output is the CLI output format, "text" or "json".
	Output string `mapstructure:"output"`

	Query QueryConfig `mapstructure:"query"`
	Log   LogConfig   `mapstructure:"log"`
}

// QueryConfig bounds query execution.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`

	// Pushdown compiles queries to SQL when reading from the store instead
	// of evaluating them in memory.
	Pushdown bool `mapstructure:"pushdown"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := query.DefaultOptions()
	return Config{
		Database:   "sieve.db",
		Collection: "records",
		Output:     "text",
		Query: QueryConfig{
			DefaultLimit: opts.DefaultLimit,
			MaxLimit:     opts.MaxLimit,
			Pushdown:     true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration. When path is empty, a sieve.yaml (or .json,
// .toml) in the working directory is used if present. An explicit path
// must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sieve")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can find it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database", d.Database)
	v.SetDefault("collection", d.Collection)
	v.SetDefault("output", d.Output)
	v.SetDefault("query.default_limit", d.Query.DefaultLimit)
	v.SetDefault("query.max_limit", d.Query.MaxLimit)
	v.SetDefault("query.pushdown", d.Query.Pushdown)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Query.DefaultLimit < 1 {
		return fmt.Errorf("query.default_limit must be at least 1, got %d", c.Query.DefaultLimit)
	}
	if c.Query.MaxLimit < 0 {
		return fmt.Errorf("query.max_limit must not be negative, got %d", c.Query.MaxLimit)
	}
	if c.Query.MaxLimit > 0 && c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("query.default_limit %d exceeds query.max_limit %d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("output must be text or json, got %q", c.Output)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// QueryOptions converts the query settings for query.RunWith.
func (c Config) QueryOptions() query.Options {
	return query.Options{DefaultLimit: c.Query.DefaultLimit, MaxLimit: c.Query.MaxLimit}
}

// SlogLevel parses Log.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
