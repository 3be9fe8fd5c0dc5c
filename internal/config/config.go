// Package config loads client settings from defaults, an optional config
// file, AGD_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load. Flags bound to viper must use these names.
const (
	KeyAPIURL         = "api_url"
	KeyDataDir        = "data_dir"
	KeyProfile        = "profile"
	KeyMapToken       = "map_token"
	KeyStorageKey     = "storage_key"
	KeyRequestTimeout = "request_timeout"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyOutput         = "output"
)

// Output formats for command results.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds client settings.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	DataDir        string        `mapstructure:"data_dir"`
	Profile        string        `mapstructure:"profile"`
	MapToken       string        `mapstructure:"map_token"`
	StorageKey     string        `mapstructure:"storage_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	Output         string        `mapstructure:"output"`
}

// DefaultDataDir is <user config dir>/agd, or ./.agd when the user config
// dir cannot be determined.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".agd"
	}
	return filepath.Join(dir, "agd")
}

// SetDefaults registers defaults and environment lookup on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix("AGD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIURL, "http://localhost:8000")
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyProfile, "default")
	v.SetDefault(KeyMapToken, "")
	v.SetDefault(KeyStorageKey, "")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyOutput, OutputTable)
}

// Load reads v into a Config. A config.yaml in the data dir or the working
// directory is merged when present. SetDefaults must have been called.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString(KeyDataDir))
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("%s: %w", KeyAPIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: %q is not an http(s) URL", KeyAPIURL, c.APIURL)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%s: unknown format %q (want table, json or yaml)", KeyOutput, c.Output)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s: unknown format %q (want text or json)", KeyLogFormat, c.LogFormat)
	}
	if c.Profile == "" {
		return fmt.Errorf("%s: must not be empty", KeyProfile)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%s: must not be negative", KeyRequestTimeout)
	}
	return nil
}

// StoragePath is the bbolt file holding durable client state.
func (c Config) StoragePath() string {
	return filepath.Join(c.DataDir, "agd.db")
}

// Logger builds the structured logger described by the config.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return level, nil
}
