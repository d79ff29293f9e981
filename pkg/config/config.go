// Package config handles oaesh configuration loading.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/session"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the root configuration structure.
type Config struct {
	// Insecure disables TLS verification unless overridden by --insecure.
	Insecure bool `yaml:"insecure"`

	// URL is the target used when -U is not given.
	URL string `yaml:"url"`

	// HistoryFile stores interactive history. "~" expands to $HOME.
	HistoryFile string `yaml:"history_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// RequestTimeout bounds each remote call. Zero means none.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Output OutputConfig `yaml:"output"`

	// Contexts exposes extra commands per command context.
	Contexts map[string][]string `yaml:"contexts,omitempty"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  string `yaml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		HistoryFile: "~/.oaesh_history",
		LogLevel:    "warn",
		Output: OutputConfig{
			Format: FormatJSON,
			Color:  ColorAuto,
		},
	}
}

// Load loads configuration from a file. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.AttachSuggestions(errors.ConfigError(errors.ErrConfigNotFound,
				fmt.Sprintf("configuration file %s does not exist", path)).
				WithContext("path", path))
		}
		return nil, errors.ConfigError(errors.ErrConfigNotFound, "failed to read config").
			WithCause(err).WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.AttachSuggestions(errors.ConfigError(errors.ErrConfigParse,
			fmt.Sprintf("failed to parse %s: %s", path, err)).
			WithCause(err).WithContext("path", path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default if the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated values and context names.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.AttachSuggestions(errors.ConfigError(errors.ErrConfigInvalid, fmt.Sprintf(format, args...)))
	}
	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return invalid("output.format must be %q or %q, got %q", FormatJSON, FormatYAML, c.Output.Format)
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return invalid("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.RequestTimeout < 0 {
		return invalid("request_timeout must not be negative")
	}
	for name := range c.Contexts {
		if _, err := session.ParseContext(name); err != nil {
			return invalid("contexts: %s", err)
		}
	}
	return nil
}

// ContextExtensions returns the configured extra commands keyed by context,
// in a stable order.
func (c *Config) ContextExtensions() map[session.CommandContext][]string {
	out := make(map[session.CommandContext][]string, len(c.Contexts))
	for name, cmds := range c.Contexts {
		ctx, err := session.ParseContext(name)
		if err != nil {
			continue
		}
		sorted := append([]string(nil), cmds...)
		sort.Strings(sorted)
		out[ctx] = sorted
	}
	return out
}

// HistoryPath returns the history file with "~" expanded. Empty disables
// history.
func (c *Config) HistoryPath() string {
	return ExpandHome(c.HistoryFile)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ConfigError(errors.ErrConfigWrite, "failed to create config directory").WithCause(err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.ConfigError(errors.ErrConfigWrite, "failed to marshal config").WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ConfigError(errors.ErrConfigWrite, "failed to write config file").WithCause(err)
	}
	return nil
}

// DefaultConfigPath returns ~/.config/oaesh/config.yaml, honouring
// $XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "oaesh", "config.yaml")
}

// InitConfig creates a default config file if it doesn't exist. It reports
// whether a file was written.
func InitConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Default().Save(path)
}
