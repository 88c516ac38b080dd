package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tileviewer.yaml")
	body := `
window:
  title: custom title
world:
  grid_width: 48
  grid_height: 48
controls:
  scroll_speed: 2.5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Window.Title != "custom title" {
		t.Fatalf("window title = %q, want override", cfg.Window.Title)
	}
	if cfg.World.GridWidth != 48 || cfg.World.GridHeight != 48 {
		t.Fatalf("grid = %dx%d, want 48x48", cfg.World.GridWidth, cfg.World.GridHeight)
	}
	if cfg.Controls.ScrollSpeed != 2.5 {
		t.Fatalf("scroll speed = %v, want 2.5", cfg.Controls.ScrollSpeed)
	}

	// untouched keys keep their defaults
	if cfg.World.ViewWidth != 16 || cfg.World.TileSize != 32 {
		t.Fatalf("viewport defaults lost: view_width=%d tile_size=%d",
			cfg.World.ViewWidth, cfg.World.TileSize)
	}
	if cfg.Sheet.Columns != 14 || cfg.Sheet.Rows != 9 {
		t.Fatalf("sheet defaults lost: %dx%d", cfg.Sheet.Columns, cfg.Sheet.Rows)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestGetReturnsStableInstance(t *testing.T) {
	a := Get()
	b := Get()
	if a != b {
		t.Fatal("Get must return the same instance")
	}
	if a.World.GridWidth <= 0 || a.Window.Width <= 0 {
		t.Fatalf("implausible defaults: %+v", a)
	}
}
