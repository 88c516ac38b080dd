package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds everything tunable about the demo. Defaults reproduce the
// classic 24x24 map with a 16x16 viewport of 32 px tiles; an optional
// tileviewer.yaml in the working directory overrides them.
type Config struct {
	Window   Window
	World    World
	Sheet    Sheet
	Controls Controls
	Paths    Paths
	Log      Log
}

type Window struct {
	Width  int
	Height int
	Title  string
}

// World describes the logical grid and the visible viewport, in tiles.
type World struct {
	GridWidth  int `mapstructure:"grid_width"`
	GridHeight int `mapstructure:"grid_height"`
	ViewWidth  int `mapstructure:"view_width"`
	ViewHeight int `mapstructure:"view_height"`
	TileSize   int `mapstructure:"tile_size"`
}

// Sheet describes the tile-sheet layout: a Columns x Rows grid of
// TileSize-pixel tiles.
type Sheet struct {
	Columns  int
	Rows     int
	TileSize int `mapstructure:"tile_size"`
}

type Controls struct {
	PanSpeed    float64 `mapstructure:"pan_speed"`
	ZoomSpeed   float64 `mapstructure:"zoom_speed"`
	ScrollSpeed float64 `mapstructure:"scroll_speed"`
}

// Paths optionally point at on-disk replacements for the embedded assets.
type Paths struct {
	TileSheet string `mapstructure:"tile_sheet"`
	MapScript string `mapstructure:"map_script"`
}

type Log struct {
	Level string
}

var (
	instance *Config
	once     sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "UBO Tilemap")

	v.SetDefault("world.grid_width", 24)
	v.SetDefault("world.grid_height", 24)
	v.SetDefault("world.view_width", 16)
	v.SetDefault("world.view_height", 16)
	v.SetDefault("world.tile_size", 32)

	v.SetDefault("sheet.columns", 14)
	v.SetDefault("sheet.rows", 9)
	v.SetDefault("sheet.tile_size", 32)

	v.SetDefault("controls.pan_speed", 10.0)
	v.SetDefault("controls.zoom_speed", 10.0)
	v.SetDefault("controls.scroll_speed", 1.0)

	v.SetDefault("paths.tile_sheet", "")
	v.SetDefault("paths.map_script", "")

	v.SetDefault("log.level", "info")
}

func read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Get returns the process-wide configuration, loading tileviewer.yaml from
// the working directory on first use. Load errors fall back to defaults.
func Get() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetConfigName("tileviewer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		setDefaults(v)

		cfg, err := read(v)
		if err != nil {
			logrus.WithError(err).Warn("using default configuration")
			d := viper.New()
			setDefaults(d)
			cfg = &Config{}
			d.Unmarshal(cfg)
		}
		instance = cfg
	})
	return instance
}

// Load reads configuration from an explicit file path, without touching the
// process-wide instance.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	return read(v)
}
