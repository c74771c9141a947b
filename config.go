package lumen

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxTreeDepth  = 32
	defaultMaxChildCount = 1000
)

// Config controls optional graph behavior. The zero value is usable; unset
// limits fall back to their defaults.
type Config struct {
	// Debug enables tree-shape warnings and per-refresh timing logs.
	Debug bool `yaml:"debug" toml:"debug"`

	// MaxTreeDepth is the node depth above which debug mode warns.
	MaxTreeDepth int `yaml:"max_tree_depth" toml:"max_tree_depth"`

	// MaxChildCount is the child count above which debug mode warns.
	MaxChildCount int `yaml:"max_child_count" toml:"max_child_count"`

	// LogLevel is one of debug, info, warn, error. It only applies when
	// Logger is nil, in which case a text logger on stderr is built.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// Logger receives all graph diagnostics. Defaults to slog.Default().
	Logger *slog.Logger `yaml:"-" toml:"-"`
}

// DefaultConfig returns the configuration used by [NewGraph].
func DefaultConfig() Config {
	return Config{
		MaxTreeDepth:  defaultMaxTreeDepth,
		MaxChildCount: defaultMaxChildCount,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxTreeDepth <= 0 {
		c.MaxTreeDepth = defaultMaxTreeDepth
	}
	if c.MaxChildCount <= 0 {
		c.MaxChildCount = defaultMaxChildCount
	}
	if c.Logger == nil && c.LogLevel != "" {
		if lvl, err := parseLogLevel(c.LogLevel); err == nil {
			c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		}
	}
	return c
}

// Validate reports the first invalid field. [ParseConfig] returns this error;
// [NewGraphWithConfig] panics with it.
func (c Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := parseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) config file.
// Fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseConfig decodes config data in the given format ("yaml", "yml" or "toml").
// Unknown fields are rejected in both formats.
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, errors.Wrap(err, "parse yaml config")
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(err, "parse toml config")
		}
	default:
		return Config{}, errors.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", s)
	}
	return lvl, nil
}
