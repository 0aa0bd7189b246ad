// Package config loads the console's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"nucleus-console/pkg/kvstore"
)

const appDirName = "nucleus-console"

// Environment overrides.
const (
	EnvConfig = "NUCLEUS_CONSOLE_CONFIG"
	EnvTheme  = "NUCLEUS_CONSOLE_THEME"
)

// Config represents the full YAML configuration.
//
// Example YAML:
//
// store:
//   backend: redis
//   redis:
//     addr: 127.0.0.1:6379
//
// collaborator:
//   backend: ollama
//   timeout: 60s
//   options:
//     model: llama3.1
//
// pacing_ms: 100
// theme: dark
type Config struct {
	Store        StoreConfig        `yaml:"store"`
	Collaborator CollaboratorConfig `yaml:"collaborator"`

	// PacingMS is the delay between streamed scan lines. Unset means the
	// default; 0 disables pacing.
	PacingMS *int `yaml:"pacing_ms,omitempty"`

	Transcript TranscriptConfig `yaml:"transcript"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Theme      string           `yaml:"theme,omitempty"`
}

// StoreConfig selects where hosts and identity are persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend,omitempty"` // file | redis | memory
	Path    string      `yaml:"path,omitempty"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// CollaboratorConfig selects the text generator. Options are passed through
// to the backend untouched.
type CollaboratorConfig struct {
	Backend string         `yaml:"backend,omitempty"` // static | ollama | command
	Timeout time.Duration  `yaml:"timeout,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

type TranscriptConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// ErrConfigNotFound is returned when no configuration file can be located.
var ErrConfigNotFound = errors.New("config not found")

// Load discovers and loads the YAML configuration.
// If explicitPath is empty, it searches common locations in order:
// 1. $NUCLEUS_CONSOLE_CONFIG
// 2. $XDG_CONFIG_HOME/nucleus-console/config.yaml
// 3. ~/.config/nucleus-console/config.yaml
//
// Returns the parsed Config and the path that was used. When nothing is found
// the defaults are returned together with ErrConfigNotFound.
func Load(explicitPath string) (*Config, string, error) {
	for _, p := range ConfigPathCandidates(explicitPath) {
		p = expandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, p, fmt.Errorf("read config %s: %w", p, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return nil, p, fmt.Errorf("config %s: %w", p, err)
		}
		return cfg, p, nil
	}
	return Default(), "", ErrConfigNotFound
}

// Parse decodes and validates YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default is the configuration used when no file exists.
func Default() *Config {
	return &Config{}
}

// ConfigPathCandidates returns possible configuration file paths, in priority order.
// If explicitPath is provided, it is returned first.
func ConfigPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, appDirName, "config.yaml"))
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		out = append(out, filepath.Join(home, ".config", appDirName, "config.yaml"))
	}
	return out
}

// DefaultConfigDir is the directory holding config, state, logs and transcripts.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return filepath.Join(os.TempDir(), appDirName)
	}
	return filepath.Join(home, ".config", appDirName)
}

// Validate performs basic sanity checks on the configuration.
//
// - store.backend must be one of: "" | file | redis | memory
// - store.redis.addr is required for the redis backend
// - collaborator.backend must be one of: "" | static | ollama | command
// - pacing_ms and collaborator.timeout must not be negative
// - theme must be one of: "" | dark | light | none
// - log.level must be one of: "" | debug | info | warn | error
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store.Backend)) {
	case "", kvstore.BackendFile, kvstore.BackendMemory:
	case kvstore.BackendRedis:
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			return errors.New("store.redis.addr is required when store.backend is redis")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported (use file, redis or memory)", c.Store.Backend)
	}

	switch strings.ToLower(strings.TrimSpace(c.Collaborator.Backend)) {
	case "", "static", "ollama", "command":
	default:
		return fmt.Errorf("collaborator.backend %q is not supported (use static, ollama or command)", c.Collaborator.Backend)
	}
	if c.Collaborator.Timeout < 0 {
		return fmt.Errorf("collaborator.timeout must be >= 0 (got %s)", c.Collaborator.Timeout)
	}
	if c.PacingMS != nil && *c.PacingMS < 0 {
		return fmt.Errorf("pacing_ms must be >= 0 (got %d)", *c.PacingMS)
	}

	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "", "dark", "light", "none":
	default:
		return fmt.Errorf("theme %q is not supported (use dark, light or none)", c.Theme)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// StoreOptions maps the store section onto kvstore.Open options.
func (c *Config) StoreOptions() kvstore.OpenOptions {
	return kvstore.OpenOptions{
		Backend:       strings.ToLower(strings.TrimSpace(c.Store.Backend)),
		Path:          expandPath(c.Store.Path),
		RedisAddr:     c.Store.Redis.Addr,
		RedisPassword: c.Store.Redis.Password,
		RedisDB:       c.Store.Redis.DB,
		RedisPrefix:   c.Store.Redis.Prefix,
	}
}

// Pacing returns the configured line pacing, or def when unset.
func (c *Config) Pacing(def time.Duration) time.Duration {
	if c.PacingMS == nil {
		return def
	}
	return time.Duration(*c.PacingMS) * time.Millisecond
}

// CollaboratorTimeout returns the configured timeout, or def when unset.
func (c *Config) CollaboratorTimeout(def time.Duration) time.Duration {
	if c.Collaborator.Timeout == 0 {
		return def
	}
	return c.Collaborator.Timeout
}

// LogFile returns the structured log destination.
func (c *Config) LogFile() string {
	if p := expandPath(c.Log.File); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), "console.log")
}

// LogLevel returns the slog level (info when unset).
func (c *Config) LogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

// TranscriptDir returns the transcript base directory.
func (c *Config) TranscriptDir() string {
	if p := expandPath(c.Transcript.Dir); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), "transcripts")
}

// ThemeName resolves the theme: $NUCLEUS_CONSOLE_THEME, then the config
// value, then "dark".
func (c *Config) ThemeName() string {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvTheme))); v != "" {
		return v
	}
	if v := strings.ToLower(strings.TrimSpace(c.Theme)); v != "" {
		return v
	}
	return "dark"
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not supported (use debug, info, warn or error)", s)
}

// expandPath expands leading "~" and environment variables in a path.
// If the input is empty, returns "".
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
