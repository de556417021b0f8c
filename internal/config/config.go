// Package config loads daemon settings from a YAML file, POWERSUSPEND_*
// environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/powersuspend/powersuspend-go/pkg/discovery"
	"github.com/powersuspend/powersuspend-go/pkg/dispatch"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "POWERSUSPEND_"

const (
	defaultListen      = ":8080"
	defaultEventBuffer = 64
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the daemon configuration.
type Config struct {
	Mode     string         `yaml:"mode"`
	HTTP     HTTPConfig     `yaml:"http"`
	MDNS     MDNSConfig     `yaml:"mdns"`
	Log      LogConfig      `yaml:"log"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	// Listen is the TCP listen address. Empty disables the API.
	Listen      string `yaml:"listen"`
	EventBuffer int    `yaml:"event_buffer"`
}

// MDNSConfig configures DNS-SD advertisement.
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	// Interface restricts advertisement to one network interface.
	Interface string `yaml:"interface"`
}

// LogConfig configures process logging and the event journal.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Journal is the CBOR journal path. Empty disables the journal.
	Journal string `yaml:"journal"`
}

// DispatchConfig configures the callback dispatcher.
type DispatchConfig struct {
	SlowHandlerThreshold time.Duration `yaml:"slow_handler_threshold"`
}

// Flags holds command-line overrides. Empty strings and nil pointers
// leave the lower layers untouched.
type Flags struct {
	Mode        string
	Listen      string
	MDNS        *bool
	Instance    string
	LogLevel    string
	LogFormat   string
	Journal     string
	SlowHandler string
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Mode: powerstate.DefaultMode.String(),
		HTTP: HTTPConfig{
			Listen:      defaultListen,
			EventBuffer: defaultEventBuffer,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Dispatch: DispatchConfig{
			SlowHandlerThreshold: dispatch.DefaultSlowHandlerThreshold,
		},
	}
}

// Load resolves configuration from flags > env > config file > defaults.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string, flags Flags) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(flags); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.powersuspend/config.yaml if it exists.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".powersuspend", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Mode, "MODE")
	setString(&c.HTTP.Listen, "HTTP_LISTEN")
	setString(&c.MDNS.Instance, "MDNS_INSTANCE")
	setString(&c.MDNS.Interface, "MDNS_INTERFACE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.Journal, "JOURNAL")

	if v, ok := lookup("MDNS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sMDNS_ENABLED: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.MDNS.Enabled = b
	}
	if v, ok := lookup("HTTP_EVENT_BUFFER"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sHTTP_EVENT_BUFFER: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.HTTP.EventBuffer = n
	}
	if v, ok := lookup("SLOW_HANDLER_THRESHOLD"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sSLOW_HANDLER_THRESHOLD: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.Dispatch.SlowHandlerThreshold = d
	}
	return nil
}

func (c *Config) applyFlags(f Flags) error {
	override(&c.Mode, f.Mode)
	override(&c.HTTP.Listen, f.Listen)
	override(&c.MDNS.Instance, f.Instance)
	override(&c.Log.Level, f.LogLevel)
	override(&c.Log.Format, f.LogFormat)
	override(&c.Log.Journal, f.Journal)
	if f.MDNS != nil {
		c.MDNS.Enabled = *f.MDNS
	}
	if f.SlowHandler != "" {
		d, err := time.ParseDuration(f.SlowHandler)
		if err != nil {
			return fmt.Errorf("%w: --slow-handler: %v", ErrInvalidConfig, err)
		}
		c.Dispatch.SlowHandlerThreshold = d
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.PowerMode(); err != nil {
		return fmt.Errorf("%w: mode: %v", ErrInvalidConfig, err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want text or json)", ErrInvalidConfig, c.Log.Format)
	}
	if c.HTTP.EventBuffer < 0 {
		return fmt.Errorf("%w: http.event_buffer must not be negative", ErrInvalidConfig)
	}
	if c.Dispatch.SlowHandlerThreshold < 0 {
		return fmt.Errorf("%w: dispatch.slow_handler_threshold must not be negative", ErrInvalidConfig)
	}
	if c.MDNS.Enabled {
		if c.HTTP.Listen == "" {
			return fmt.Errorf("%w: mdns requires http.listen", ErrInvalidConfig)
		}
		if c.MDNS.Instance != "" {
			if err := discovery.ValidateInstanceName(c.MDNS.Instance); err != nil {
				return fmt.Errorf("%w: mdns.instance: %v", ErrInvalidConfig, err)
			}
		}
	}
	return nil
}

// PowerMode parses Mode.
func (c *Config) PowerMode() (powerstate.Mode, error) {
	return powerstate.ParseMode(c.Mode)
}

// LogLevel returns the slog level for Log.Level, Info when unparsable.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger creates the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", raw)
	}
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
