// Package config loads pokerd's settings from defaults, an optional TOML
// file, POKERD_* environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "POKERD"
	configName = "pokerd"
	configType = "toml"
)

// Keys shared by viper, the config file and the command-line flags.
const (
	KeyListenAddr       = "listen_addr"
	KeyMaxSessions      = "max_sessions"
	KeyMaxParticipants  = "max_participants"
	KeySessionTimeout   = "session_timeout"
	KeyGracePeriod      = "grace_period"
	KeyGraceWarning     = "grace_warning"
	KeySweepInterval    = "sweep_interval"
	KeySubscriberBuffer = "subscriber_buffer"
	KeyHistorySize      = "history_size"
	KeyDeltaMaxGap      = "delta_max_gap"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
)

// Config is the effective server configuration.
type Config struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	MaxSessions      int           `mapstructure:"max_sessions"`
	MaxParticipants  int           `mapstructure:"max_participants"`
	SessionTimeout   time.Duration `mapstructure:"session_timeout"`
	GracePeriod      time.Duration `mapstructure:"grace_period"`
	GraceWarning     time.Duration `mapstructure:"grace_warning"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	SubscriberBuffer int           `mapstructure:"subscriber_buffer"`
	HistorySize      int           `mapstructure:"history_size"`
	DeltaMaxGap      int           `mapstructure:"delta_max_gap"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:       ":8080",
		MaxSessions:      3,
		MaxParticipants:  16,
		SessionTimeout:   10 * time.Minute,
		GracePeriod:      5 * time.Minute,
		GraceWarning:     time.Minute,
		SweepInterval:    30 * time.Second,
		SubscriberBuffer: 100,
		HistorySize:      32,
		DeltaMaxGap:      5,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// NewViper returns a viper instance carrying the defaults and bound to the
// POKERD_ environment.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyListenAddr, d.ListenAddr)
	v.SetDefault(KeyMaxSessions, d.MaxSessions)
	v.SetDefault(KeyMaxParticipants, d.MaxParticipants)
	v.SetDefault(KeySessionTimeout, d.SessionTimeout)
	v.SetDefault(KeyGracePeriod, d.GracePeriod)
	v.SetDefault(KeyGraceWarning, d.GraceWarning)
	v.SetDefault(KeySweepInterval, d.SweepInterval)
	v.SetDefault(KeySubscriberBuffer, d.SubscriberBuffer)
	v.SetDefault(KeyHistorySize, d.HistorySize)
	v.SetDefault(KeyDeltaMaxGap, d.DeltaMaxGap)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration through v. An explicit configFile must
// exist; otherwise pokerd.toml is looked up in the working directory and in
// $HOME/.config/pokerd and silently skipped when absent.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = NewViper()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	positive := []struct {
		key   string
		value int64
	}{
		{KeyMaxSessions, int64(c.MaxSessions)},
		{KeyMaxParticipants, int64(c.MaxParticipants)},
		{KeySessionTimeout, int64(c.SessionTimeout)},
		{KeyGracePeriod, int64(c.GracePeriod)},
		{KeySweepInterval, int64(c.SweepInterval)},
		{KeySubscriberBuffer, int64(c.SubscriberBuffer)},
		{KeyHistorySize, int64(c.HistorySize)},
		{KeyDeltaMaxGap, int64(c.DeltaMaxGap)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", p.key))
		}
	}
	if c.GraceWarning < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyGraceWarning))
	}
	if c.HistorySize > 0 && c.DeltaMaxGap > c.HistorySize {
		errs = append(errs, fmt.Errorf("%s (%d) exceeds %s (%d)", KeyDeltaMaxGap, c.DeltaMaxGap, KeyHistorySize, c.HistorySize))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return level, nil
}

// fileConfig is the on-disk layout; durations are written as Go duration
// strings so the file reads back through Load.
type fileConfig struct {
	ListenAddr       string `toml:"listen_addr"`
	MaxSessions      int    `toml:"max_sessions"`
	MaxParticipants  int    `toml:"max_participants"`
	SessionTimeout   string `toml:"session_timeout"`
	GracePeriod      string `toml:"grace_period"`
	GraceWarning     string `toml:"grace_warning"`
	SweepInterval    string `toml:"sweep_interval"`
	SubscriberBuffer int    `toml:"subscriber_buffer"`
	HistorySize      int    `toml:"history_size"`
	DeltaMaxGap      int    `toml:"delta_max_gap"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
}

// Encode renders c as a pokerd.toml document.
func (c Config) Encode() ([]byte, error) {
	out, err := toml.Marshal(fileConfig{
		ListenAddr:       c.ListenAddr,
		MaxSessions:      c.MaxSessions,
		MaxParticipants:  c.MaxParticipants,
		SessionTimeout:   c.SessionTimeout.String(),
		GracePeriod:      c.GracePeriod.String(),
		GraceWarning:     c.GraceWarning.String(),
		SweepInterval:    c.SweepInterval.String(),
		SubscriberBuffer: c.SubscriberBuffer,
		HistorySize:      c.HistorySize,
		DeltaMaxGap:      c.DeltaMaxGap,
		LogLevel:         c.LogLevel,
		LogFormat:        c.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
