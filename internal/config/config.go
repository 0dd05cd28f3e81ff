package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. ESES_DATASET.
const EnvPrefix = "ESES_"

// Config is the persistent application configuration
type Config struct {
	// DataDir holds logs, the event log and the default database.
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`

	// Dataset is a CSV/TSV file or a .db/.sqlite database. Empty means
	// the built-in knowledge base.
	Dataset string `yaml:"dataset" env:"DATASET"`

	// Database is where `eses import` writes. Empty means DataDir/eses.db.
	Database string `yaml:"database" env:"DB"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Workers bounds concurrent evaluations in `eses batch`.
	Workers int `yaml:"workers" env:"WORKERS"`

	UI UIConfig `yaml:"ui" envPrefix:"UI_"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	// MarkdownStyle is a glamour style name; "auto" picks from the terminal.
	MarkdownStyle string `yaml:"markdown_style" env:"MARKDOWN_STYLE"`
	WrapWidth     int    `yaml:"wrap_width" env:"WRAP_WIDTH"`
	RingSize      int    `yaml:"ring_size" env:"RING_SIZE"` // debug overlay history
	// TraceKeys logs one ui.key event per key press.
	TraceKeys bool `yaml:"trace_keys" env:"TRACE_KEYS"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:  filepath.Join(home, ".eses"),
		LogLevel: "info",
		Workers:  4,
		UI: UIConfig{
			MarkdownStyle: "auto",
			WrapWidth:     80,
			RingSize:      512,
		},
	}
}

// DefaultPath returns the path to the config file
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".eses", "config.yaml")
}

// Load builds the effective configuration: defaults, then the YAML file,
// then ESES_* environment variables. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize expands ~ and restores defaults for zeroed numeric settings.
func (c *Config) normalize() {
	def := DefaultConfig()
	c.DataDir = expandHome(c.DataDir)
	c.Dataset = expandHome(c.Dataset)
	c.Database = expandHome(c.Database)
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.UI.WrapWidth <= 0 {
		c.UI.WrapWidth = def.UI.WrapWidth
	}
	if c.UI.RingSize <= 0 {
		c.UI.RingSize = def.UI.RingSize
	}
	if c.UI.MarkdownStyle == "" {
		c.UI.MarkdownStyle = def.UI.MarkdownStyle
	}
}

// Save writes config to path as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LogDir is where the dated log files go.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// EventLogPath is the JSONL event log.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// DatabasePath returns Database, or DataDir/eses.db when unset.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.DataDir, "eses.db")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
