package worldgen

import (
	"testing"

	"tileviewer/assets"
	"tileviewer/internal/tilemap"
)

type nullSink struct{}

func (nullSink) UploadTiles([]tilemap.Record) {}
func (nullSink) SetScroll(float32, float32)   {}

func TestLoadInlineScript(t *testing.T) {
	src := []byte(`
fill := [1, 7]
tiles := [
    [1, 3, 5, 0],
    [2, 3, 6, 0]
]
`)
	layout, err := Load(src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if layout.Fill != (tilemap.Record{1, 7, 0, 0}) {
		t.Fatalf("fill = %v, want [1 7 0 0]", layout.Fill)
	}
	if len(layout.Tiles) != 2 {
		t.Fatalf("placements = %d, want 2", len(layout.Tiles))
	}
	p := layout.Tiles[0]
	if p.X != 1 || p.Y != 3 || p.Rec != (tilemap.Record{5, 0, 0, 0}) {
		t.Fatalf("tiles[0] = %+v, want (1,3) [5 0 0 0]", p)
	}
}

func TestLoadComputedScript(t *testing.T) {
	// scripts may build the layout programmatically
	src := []byte(`
fill := [0, 0]
tiles := []
for x := 0; x < 3; x++ {
    tiles = append(tiles, [x, x, 2, 1])
}
`)
	layout, err := Load(src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(layout.Tiles) != 3 {
		t.Fatalf("placements = %d, want 3", len(layout.Tiles))
	}
	if p := layout.Tiles[2]; p.X != 2 || p.Y != 2 {
		t.Fatalf("tiles[2] = %+v, want (2,2)", p)
	}
}

func TestLoadRejectsMalformedScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `fill := [`},
		// tengo rejects a trailing comma before a closing bracket on its
		// own line
		{"trailing comma in tile list", "fill := [1, 7]\ntiles := [\n    [1, 2, 3, 4],\n]"},
		{"short fill", `fill := [1]` + "\n" + `tiles := []`},
		{"short placement", `fill := [1, 7]` + "\n" + `tiles := [[1, 2, 3]]`},
		{"non-numeric placement", `fill := [1, 7]` + "\n" + `tiles := [["a", 2, 3, 4]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.src)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApplyBoundsChecksPlacements(t *testing.T) {
	g, err := tilemap.NewGrid(8, 8, 4, 4, 32, nullSink{})
	if err != nil {
		t.Fatal(err)
	}
	layout := &Layout{
		Fill:  tilemap.Record{1, 1, 0, 0},
		Tiles: []Placement{{X: 9, Y: 0, Rec: tilemap.Record{2, 2, 0, 0}}},
	}
	if err := layout.Apply(g); err == nil {
		t.Fatal("expected error for out-of-grid placement")
	}
}

func TestDefaultMapScript(t *testing.T) {
	layout, err := Load(assets.WorldMap)
	if err != nil {
		t.Fatalf("embedded map script: %v", err)
	}
	if layout.Fill != (tilemap.Record{1, 7, 0, 0}) {
		t.Fatalf("fill = %v, want [1 7 0 0]", layout.Fill)
	}

	g, err := tilemap.NewGrid(24, 24, 16, 16, 32, nullSink{})
	if err != nil {
		t.Fatal(err)
	}
	if err := layout.Apply(g); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := g.Tile(1, 3); got != (tilemap.Record{5, 0, 0, 0}) {
		t.Fatalf("tile (1,3) = %v, want [5 0 0 0]", got)
	}
	if got := g.Tile(6, 11); got != (tilemap.Record{2, 2, 0, 0}) {
		t.Fatalf("tile (6,11) = %v, want [2 2 0 0]", got)
	}
	if got := g.Tile(20, 20); got != layout.Fill {
		t.Fatalf("tile (20,20) = %v, want fill", got)
	}
}
