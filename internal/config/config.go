// Package config handles termcursor configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Command line flags (applied by the caller)
//  2. Environment variables (TERMCURSOR_*)
//  3. Config file ($XDG_CONFIG_HOME/termcursor/config.yaml, or $TERMCURSOR_CONFIG)
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/musher-dev/termcursor/internal/paths"
)

// Keys.
const (
	KeyQueryTimeout = "query.timeout"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyLogFile      = "log.file"
	KeyLogStderr    = "log.stderr"
)

const (
	// DefaultQueryTimeout is how long a cursor query waits for the terminal.
	DefaultQueryTimeout = time.Second
	// DefaultLogLevel is the default structured log level.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default structured log format.
	DefaultLogFormat = "json"
	// DefaultLogStderr logs to stderr only when it is not a terminal.
	DefaultLogStderr = "auto"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TERMCURSOR"
	// EnvConfigFile points at an alternative config file.
	EnvConfigFile = "TERMCURSOR_CONFIG"
)

// ErrUnknownKey is returned by Set for keys termcursor does not read.
var ErrUnknownKey = errors.New("unknown configuration key")

var allowed = map[string][]string{
	KeyLogLevel:  {"error", "warn", "info", "debug"},
	KeyLogFormat: {"json", "text"},
	KeyLogStderr: {"auto", "on", "off"},
}

// Config holds the termcursor configuration.
type Config struct {
	v    *viper.Viper
	file string
}

// Load reads configuration from all sources. A missing config file is not
// an error; an unreadable or malformed one is.
func Load() (*Config, error) {
	file, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFile(file)
}

// LoadFile is Load with an explicit config file location.
func LoadFile(file string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(file)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", file, err)
	}

	return &Config{v: v, file: file}, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyQueryTimeout, DefaultQueryTimeout.String())
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogStderr, DefaultLogStderr)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Path returns the config file location: $TERMCURSOR_CONFIG if set, else
// config.yaml in the user config directory.
func Path() (string, error) {
	if file := strings.TrimSpace(os.Getenv(EnvConfigFile)); file != "" {
		return file, nil
	}

	file, err := paths.ConfigFile()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}

	return file, nil
}

// File returns the config file this Config was loaded from.
func (c *Config) File() string {
	return c.file
}

// Keys returns every key termcursor reads, sorted.
func Keys() []string {
	return []string{KeyLogFile, KeyLogFormat, KeyLogLevel, KeyLogStderr, KeyQueryTimeout}
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// QueryTimeout returns query.timeout. Plain integers are read as seconds.
func (c *Config) QueryTimeout() (time.Duration, error) {
	return parseTimeout(c.v.Get(KeyQueryTimeout))
}

// LogLevel returns log.level.
func (c *Config) LogLevel() string {
	return c.GetString(KeyLogLevel)
}

// LogFormat returns log.format.
func (c *Config) LogFormat() string {
	return c.GetString(KeyLogFormat)
}

// LogFile returns log.file.
func (c *Config) LogFile() string {
	return c.GetString(KeyLogFile)
}

// LogStderr returns log.stderr.
func (c *Config) LogStderr() string {
	return c.GetString(KeyLogStderr)
}

// All returns the effective value of every key as a nested map.
func (c *Config) All() map[string]any {
	return c.v.AllSettings()
}

// Validate checks every key's effective value.
func (c *Config) Validate() error {
	for _, key := range Keys() {
		if err := validate(key, c.v.Get(key)); err != nil {
			return err
		}
	}

	return nil
}

// Set validates value, writes it to the config file and applies it to c.
// Only the file's own contents are persisted, not defaults or environment
// overrides.
func (c *Config) Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if err := validate(key, value); err != nil {
		return err
	}

	fv := viper.New()
	fv.SetConfigType("yaml")
	fv.SetConfigFile(c.file)

	if err := fv.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("read config file %s: %w", c.file, err)
	}

	fv.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(c.file), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := fv.WriteConfigAs(c.file); err != nil {
		return fmt.Errorf("write config file %s: %w", c.file, err)
	}

	c.v.Set(key, value)

	return nil
}

func validate(key string, value any) error {
	if key == KeyQueryTimeout {
		if _, err := parseTimeout(value); err != nil {
			return err
		}

		return nil
	}

	choices, ok := allowed[key]
	if !ok {
		return nil
	}

	s := strings.ToLower(strings.TrimSpace(cast.ToString(value)))
	if !slices.Contains(choices, s) {
		return fmt.Errorf("invalid %s %q (allowed: %s)", key, value, strings.Join(choices, ", "))
	}

	return nil
}

func parseTimeout(value any) (time.Duration, error) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)

		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}

		value = s
	}

	secs, err := cast.ToInt64E(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: want a duration such as 500ms or 2s", KeyQueryTimeout, value)
	}

	return time.Duration(secs) * time.Second, nil
}
