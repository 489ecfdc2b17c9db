// Package config loads stackflow settings from a TOML file.
//
// A missing file is not an error for [LoadOrDefault]; every key is
// optional and falls back to [Default]:
//
//	[layout]
//	spacing_x = 20
//	spacing_y = 80
//	margin = 20
//	visible_left = 0
//
//	[canvas]
//	width = 1200
//	height = 800
//
//	[store]
//	backend = "file"          # file | sqlite | redis | mongo | memory
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//
//	[editor]
//	spacing_x = 2
//	spacing_y = 2
//	block_height = 3
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/store"
)

const appName = "stackflow"

// Config is the full configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Canvas CanvasConfig `toml:"canvas"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Editor EditorConfig `toml:"editor"`
}

type LayoutConfig struct {
	SpacingX    float64 `toml:"spacing_x"`
	SpacingY    float64 `toml:"spacing_y"`
	Margin      float64 `toml:"margin"`
	VisibleLeft float64 `toml:"visible_left"`
}

type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type StoreConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
	SQLitePath      string   `toml:"sqlite_path"`
	TTL             Duration `toml:"ttl"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EditorConfig sizes the terminal editor, in terminal cells.
type EditorConfig struct {
	SpacingX    int `toml:"spacing_x"`
	SpacingY    int `toml:"spacing_y"`
	BlockHeight int `toml:"block_height"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), appName)
	}
	return Config{
		Layout: LayoutConfig{SpacingX: 20, SpacingY: 80, Margin: 20},
		Canvas: CanvasConfig{Width: 1200, Height: 800},
		Store: StoreConfig{
			Backend:         store.BackendFile,
			Dir:             filepath.Join(dataDir, "charts"),
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "charts",
			SQLitePath:      filepath.Join(dataDir, "charts.db"),
		},
		Server: ServerConfig{Addr: ":8080"},
		Editor: EditorConfig{SpacingX: 2, SpacingY: 2, BlockHeight: 3},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("open %s: %w", path, err)
		}
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
// An empty path means [Path].
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := apperrors.ValidateSpacing(c.Layout.SpacingX, c.Layout.SpacingY); err != nil {
		return err
	}
	if c.Layout.Margin < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout.margin must be non-negative")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "canvas size must be positive")
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendSQLite, store.BackendRedis, store.BackendMongo, store.BackendMemory:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.TTL.Duration < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "store.ttl must be non-negative")
	}
	if c.Editor.SpacingX < 1 || c.Editor.SpacingY < 1 || c.Editor.BlockHeight < 3 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "editor spacing must be at least 1 and block_height at least 3")
	}
	return nil
}

// Spacing returns the layout spacing.
func (c Config) Spacing() geometry.Spacing {
	return geometry.Spacing{X: c.Layout.SpacingX, Y: c.Layout.SpacingY}
}

// Viewport returns the layout viewport: the visible area starts at
// VisibleLeft and the whole canvas is the drop region.
func (c Config) Viewport() layout.Viewport {
	return layout.Viewport{
		VisibleLeft: c.Layout.VisibleLeft,
		Margin:      c.Layout.Margin,
		Drop:        geometry.Rect{Width: c.Canvas.Width, Height: c.Canvas.Height},
	}
}

// StoreOptions converts the [store] section for [store.Open].
func (c Config) StoreOptions() store.Config {
	s := c.Store
	return store.Config{
		Backend:    s.Backend,
		TTL:        s.TTL.Duration,
		Dir:        s.Dir,
		SQLitePath: s.SQLitePath,
		Redis:      store.RedisConfig{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB},
		Mongo:      store.MongoConfig{URI: s.MongoURI, Database: s.MongoDatabase, Collection: s.MongoCollection},
	}
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/stackflow/config.toml or ~/.config/stackflow/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DataDir returns $XDG_DATA_HOME/stackflow or ~/.local/share/stackflow.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
