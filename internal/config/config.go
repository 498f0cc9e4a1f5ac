package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// report fields by their TOML key
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// Config holds gridmap configuration.
type Config struct {
	Source SourceConfig `toml:"source"`
	View   ViewConfig   `toml:"view"`
	Log    LogConfig    `toml:"log"`
	Serve  ServeConfig  `toml:"serve"`
	Export ExportConfig `toml:"export"`
}

// SourceConfig selects where knowledge graph snapshots come from.
type SourceConfig struct {
	Kind    string   `toml:"kind" validate:"oneof=http file"`
	BaseURL string   `toml:"base_url" validate:"omitempty,url"`
	Dataset string   `toml:"dataset"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout" validate:"gt=0"`
}

// ViewConfig holds the initial view state.
type ViewConfig struct {
	Locale  string       `toml:"locale" validate:"required,bcp47_language_tag"`
	Visible taxonomy.Set `toml:"visible"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServeConfig controls the HTTP surface.
type ServeConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// ExportConfig controls multi-group exports.
type ExportConfig struct {
	Concurrency int `toml:"concurrency" validate:"min=1,max=64"`
}

// Duration is a time.Duration written as "10s" in TOML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Kind: SourceHTTP, BaseURL: "http://localhost:3000", Timeout: Duration(10 * time.Second)},
		View:   ViewConfig{Locale: "en", Visible: taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool)},
		Log:    LogConfig{Level: "warn", Format: "console"},
		Serve:  ServeConfig{Addr: "localhost:8088"},
		Export: ExportConfig{Concurrency: 4},
	}
}

// ConfigDir returns the gridmap config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gridmap")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads and validates the config at path. Keys absent from the file
// keep their default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints and the requirements of the selected source.
func (c *Config) Validate() error {
	var msgs []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			msgs = append(msgs, formatFieldError(e))
		}
	}

	switch {
	case c.Source.Kind == SourceHTTP && c.Source.BaseURL == "":
		msgs = append(msgs, "source.base_url: required when kind is http")
	case c.Source.Kind == SourceFile && c.Source.Dataset == "":
		msgs = append(msgs, "source.dataset: required when kind is file")
	}

	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return field + ": field is required"
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", field, e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s: must not exceed %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s: invalid URL %q", field, e.Value())
	case "hostname_port":
		return fmt.Sprintf("%s: expected host:port, got %q", field, e.Value())
	case "bcp47_language_tag":
		return fmt.Sprintf("%s: invalid language tag %q", field, e.Value())
	default:
		return fmt.Sprintf("%s: failed %s validation", field, e.Tag())
	}
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
