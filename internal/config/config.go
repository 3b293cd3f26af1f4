package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/compcheck/internal/protocol/session"
)

// Config is the resolved compcheck run configuration.
type Config struct {
	RuntimeDir  string
	Sockets     []string
	Format      string
	MetricsFile string
	LogLevel    string
	Session     session.Config
}

type fileConfig struct {
	RuntimeDir      string   `toml:"runtime_dir"`
	Sockets         []string `toml:"sockets"`
	Format          string   `toml:"format"`
	MetricsFile     string   `toml:"metrics_file"`
	LogLevel        string   `toml:"log_level"`
	ConnectTimeout  string   `toml:"connect_timeout"`
	ConnectAttempts int      `toml:"connect_attempts"`
	ReadTimeout     string   `toml:"read_timeout"`
	WriteTimeout    string   `toml:"write_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Format:  "text",
		Session: session.DefaultConfig(),
	}
}

// Load overlays the keys defined in the TOML file at path onto defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("runtime_dir") {
		cfg.RuntimeDir = strings.TrimSpace(raw.RuntimeDir)
	}
	if meta.IsDefined("sockets") {
		cfg.Sockets = normalizeSockets(raw.Sockets)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("connect_attempts") {
		cfg.Session.ConnectAttempts = raw.ConnectAttempts
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	switch cfg.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("format must be text or yaml, got %q", cfg.Format)
	}
	if cfg.Session.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be at least 1")
	}
	if cfg.Session.ConnectTimeout < 0 || cfg.Session.ReadTimeout < 0 || cfg.Session.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func normalizeSockets(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		v := strings.TrimSpace(s)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
