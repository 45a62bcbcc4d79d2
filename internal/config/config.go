// Package config loads the schemconv YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfig  = "SCHEMCONV_CONFIG"
	EnvDataDir = "SCHEMCONV_DATA_DIR"
	EnvWorkers = "SCHEMCONV_WORKERS"
)

// Config is the root of the configuration file.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Database string         `yaml:"database"`
	Workers  int            `yaml:"workers"`
	Log      LogConfig      `yaml:"log"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Metadata MetadataConfig `yaml:"metadata"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultsConfig holds the versions used when a request leaves them unset.
type DefaultsConfig struct {
	LitematicaVersion    int  `yaml:"litematica_version"`
	LitematicaSubVersion int  `yaml:"litematica_sub_version"`
	WorldEditVersion     int  `yaml:"worldedit_version"`
	GadgetsVersion       int  `yaml:"gadgets_version"`
	DataVersion          int  `yaml:"data_version"`
	FillAir              bool `yaml:"fill_air"`
}

type MetadataConfig struct {
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Defaults: DefaultsConfig{
			LitematicaVersion:    6,
			LitematicaSubVersion: 1,
			WorldEditVersion:     3,
			GadgetsVersion:       1,
		},
	}
}

// Load reads the YAML file at path on top of Default. An empty path falls
// back to SCHEMCONV_CONFIG, and to the defaults alone when that is unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a fixed range.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	switch v := c.Defaults.LitematicaVersion; v {
	case 0, 6, 7:
	default:
		return fmt.Errorf("unsupported litematica version %d", v)
	}
	switch v := c.Defaults.WorldEditVersion; v {
	case 0, 2, 3:
	default:
		return fmt.Errorf("unsupported worldedit version %d", v)
	}
	switch v := c.Defaults.GadgetsVersion; v {
	case 0, 1, 2:
	default:
		return fmt.Errorf("unsupported gadgets version %d", v)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// GetDataDir returns the storage root with priority config -> env -> default.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return "data"
}

// GetDatabase returns the catalog path, relative paths resolved against the
// data directory.
func (c *Config) GetDatabase() string {
	db := c.Database
	if db == "" {
		db = "schematics.db"
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(c.GetDataDir(), db)
}

// GetWorkers returns the worker count with priority config -> env -> 0,
// where 0 lets the format layer pick.
func (c *Config) GetWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// Logger builds the slog logger described by the log section.
func (c *Config) Logger() *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
