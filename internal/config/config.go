// Package config provides configuration for the next-salah CLI.
//
// Settings are read from a YAML file at ~/.config/next-salah/config.yaml
// (XDG-compliant) and from NEXT_SALAH_* environment variables. The merge
// priority is: CLI flags > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

const (
	configDirName  = "next-salah"
	configFileName = "config.yaml"

	// EnvPrefix is prepended to upper-cased keys, e.g. NEXT_SALAH_LATITUDE.
	EnvPrefix = "NEXT_SALAH"
)

// Defaults for a fresh install: Cairo, UTC+2, Egyptian method.
const (
	DefaultLatitude     = 30.0
	DefaultLongitude    = 31.0
	DefaultTimeDelta    = 2.0
	DefaultTimeFormat   = "24h"
	DefaultActiveWindow = "20m"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"latitude", "longitude",
	"timedelta",
	"sunrise",
	"method", "asr",
	"time_format",
	"format",
	"log_level",
	"active_window",
}

// Static error definitions for better error handling.
var (
	// ErrUnknownKey indicates a config key outside ValidKeys.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
)

// Config holds all user-configurable settings.
type Config struct {
	// Latitude of the location in degrees north.
	Latitude float64 `mapstructure:"latitude" yaml:"latitude"`
	// Longitude of the location in degrees east.
	Longitude float64 `mapstructure:"longitude" yaml:"longitude"`
	// TimeDelta is the offset from UTC in hours.
	TimeDelta float64 `mapstructure:"timedelta" yaml:"timedelta"`
	// Sunrise makes sunrise (duha) a candidate for next/nearest selection.
	Sunrise bool `mapstructure:"sunrise" yaml:"sunrise"`
	// Method is the calculation method key, e.g. "egypt".
	Method string `mapstructure:"method" yaml:"method"`
	// Asr is the asr juristic method, "standard" or "hanafi".
	Asr string `mapstructure:"asr" yaml:"asr"`
	// TimeFormat is "12h" or "24h".
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
	// Format is the output mode or a Go template.
	Format string `mapstructure:"format" yaml:"format"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// ActiveWindow is how long after its time a prayer stays current, e.g. "20m".
	ActiveWindow string `mapstructure:"active_window" yaml:"active_window"`

	// Parsed fields, set by Validate.
	ParsedOffset       prayer.Offset   `mapstructure:"-" yaml:"-"`
	ParsedMethod       astro.Method    `mapstructure:"-" yaml:"-"`
	ParsedAsr          astro.AsrMethod `mapstructure:"-" yaml:"-"`
	ParsedLogLevel     zapcore.Level   `mapstructure:"-" yaml:"-"`
	ParsedActiveWindow time.Duration   `mapstructure:"-" yaml:"-"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Latitude:     DefaultLatitude,
		Longitude:    DefaultLongitude,
		TimeDelta:    DefaultTimeDelta,
		Method:       astro.DefaultMethod.String(),
		Asr:          astro.AsrStandard.String(),
		TimeFormat:   DefaultTimeFormat,
		Format:       prayer.FormatHuman,
		LogLevel:     logger.DefaultLevel.String(),
		ActiveWindow: DefaultActiveWindow,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the default config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set are left alone.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the config file and environment on top of the defaults.
// An empty path means the default location. A missing default file is not
// an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	return load(path, true, true)
}

// LoadFile reads the config file on top of the defaults, ignoring the
// environment. `config set` uses it so env overrides are not persisted.
// A missing file, explicit or not, yields the defaults so it can be created.
func LoadFile(path string) (*Config, error) {
	return load(path, false, false)
}

// load merges the file at path over the defaults. With strict set, a
// missing explicit path is an error.
func load(path string, withEnv, strict bool) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = Path(); err != nil {
			return nil, err
		}
	}

	v := newViper(withEnv)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if (explicit && strict) || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// newViper returns a viper instance seeded with defaults and, when withEnv
// is set, bound to the NEXT_SALAH_* environment.
func newViper(withEnv bool) *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault("latitude", d.Latitude)
	v.SetDefault("longitude", d.Longitude)
	v.SetDefault("timedelta", d.TimeDelta)
	v.SetDefault("sunrise", d.Sunrise)
	v.SetDefault("method", d.Method)
	v.SetDefault("asr", d.Asr)
	v.SetDefault("time_format", d.TimeFormat)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("active_window", d.ActiveWindow)

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
	}

	return v
}

// Validate checks the configuration and fills the Parsed* fields.
// Every failure wraps prayer.ErrInvalidArgument. Coordinates are range-checked
// by the calculator, which reports them as computation errors.
func Validate(cfg *Config) error {
	offset := prayer.Offset(cfg.TimeDelta)
	if err := offset.Validate(); err != nil {
		return err
	}
	cfg.ParsedOffset = offset

	method, err := astro.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}
	cfg.ParsedMethod = method

	asr, err := astro.ParseAsrMethod(cfg.Asr)
	if err != nil {
		return err
	}
	cfg.ParsedAsr = asr

	if cfg.TimeFormat != "12h" && cfg.TimeFormat != "24h" {
		return fmt.Errorf("%w: invalid time_format %q: must be \"12h\" or \"24h\"", prayer.ErrInvalidArgument, cfg.TimeFormat)
	}

	if err := prayer.ValidateFormat(cfg.Format); err != nil {
		return err
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %w: '%s'", prayer.ErrInvalidArgument, ErrUnknownLogLevel, cfg.LogLevel)
	}
	cfg.ParsedLogLevel = level

	window, err := time.ParseDuration(cfg.ActiveWindow)
	if err != nil {
		return fmt.Errorf("%w: invalid active_window %q: %v", prayer.ErrInvalidArgument, cfg.ActiveWindow, err)
	}
	if window <= 0 {
		return fmt.Errorf("%w: active_window must be positive", prayer.ErrInvalidArgument)
	}
	cfg.ParsedActiveWindow = window

	return nil
}

// TimeLayout returns the Go time layout for the configured clock style.
func (c *Config) TimeLayout() string {
	if c.TimeFormat == "12h" {
		return prayer.TimeLayout12h
	}
	return prayer.TimeLayout24h
}

// Location returns the configured coordinates.
func (c *Config) Location() prayer.Location {
	return prayer.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

// SaveTo writes the config as YAML to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	next := *c

	switch key {
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) || v < -90 || v > 90 {
			return fmt.Errorf("%w: invalid latitude %q: must be a number between -90 and 90", prayer.ErrInvalidArgument, value)
		}
		next.Latitude = v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) || v < -180 || v > 180 {
			return fmt.Errorf("%w: invalid longitude %q: must be a number between -180 and 180", prayer.ErrInvalidArgument, value)
		}
		next.Longitude = v
	case "timedelta":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid timedelta %q: must be a number of hours", prayer.ErrInvalidArgument, value)
		}
		next.TimeDelta = v
	case "sunrise":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: invalid sunrise %q: must be true or false", prayer.ErrInvalidArgument, value)
		}
		next.Sunrise = v
	case "method":
		next.Method = strings.ToLower(value)
	case "asr":
		next.Asr = strings.ToLower(value)
	case "time_format":
		next.TimeFormat = value
	case "format":
		next.Format = value
	case "log_level":
		next.LogLevel = value
	case "active_window":
		next.ActiveWindow = value
	default:
		return fmt.Errorf("%w %q; valid keys: %s", ErrUnknownKey, key, strings.Join(ValidKeys, ", "))
	}

	if err := Validate(&next); err != nil {
		return err
	}

	*c = next
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "latitude":
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "timedelta":
		return strconv.FormatFloat(c.TimeDelta, 'f', -1, 64), nil
	case "sunrise":
		return strconv.FormatBool(c.Sunrise), nil
	case "method":
		return c.Method, nil
	case "asr":
		return c.Asr, nil
	case "time_format":
		return c.TimeFormat, nil
	case "format":
		return c.Format, nil
	case "log_level":
		return c.LogLevel, nil
	case "active_window":
		return c.ActiveWindow, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
}
