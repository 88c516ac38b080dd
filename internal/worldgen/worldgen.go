package worldgen

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"tileviewer/internal/tilemap"
)

// Placement assigns a tile-sheet record to one grid cell.
type Placement struct {
	X, Y int
	Rec  tilemap.Record
}

// Layout is a map description produced by a tengo script. The script exports
// two globals: `fill`, a [column, row] pair applied to every cell, and
// `tiles`, a list of [x, y, column, row] placements layered on top.
type Layout struct {
	Fill  tilemap.Record
	Tiles []Placement
}

// Load compiles and runs a map script and extracts its layout globals.
func Load(src []byte) (*Layout, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling map script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("running map script: %w", err)
	}

	fill, err := recordFrom(compiled.Get("fill").Array())
	if err != nil {
		return nil, fmt.Errorf("map script global fill: %w", err)
	}

	layout := &Layout{Fill: fill}
	for i, raw := range compiled.Get("tiles").Array() {
		entry, ok := raw.([]interface{})
		if !ok || len(entry) != 4 {
			return nil, fmt.Errorf("map script tiles[%d]: want [x, y, column, row]", i)
		}
		x, okX := toInt(entry[0])
		y, okY := toInt(entry[1])
		rec, err := recordFrom(entry[2:])
		if !okX || !okY || err != nil {
			return nil, fmt.Errorf("map script tiles[%d]: non-numeric entry %v", i, entry)
		}
		layout.Tiles = append(layout.Tiles, Placement{X: x, Y: y, Rec: rec})
	}
	return layout, nil
}

// Apply fills the grid and sets each placement. Placements outside the grid
// come from script data, not code, so they are reported as an error rather
// than a panic.
func (l *Layout) Apply(g *tilemap.Grid) error {
	w, h := g.GridSize()
	for i, p := range l.Tiles {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			return fmt.Errorf("map script tiles[%d]: (%d,%d) outside %dx%d grid", i, p.X, p.Y, w, h)
		}
	}
	g.Fill(l.Fill)
	for _, p := range l.Tiles {
		g.SetTile(p.X, p.Y, p.Rec)
	}
	return nil
}

func recordFrom(vals []interface{}) (tilemap.Record, error) {
	if len(vals) != 2 {
		return tilemap.Record{}, fmt.Errorf("want [column, row], got %d values", len(vals))
	}
	var rec tilemap.Record
	for i, v := range vals {
		f, ok := toFloat(v)
		if !ok {
			return tilemap.Record{}, fmt.Errorf("non-numeric value %v", v)
		}
		rec[i] = f
	}
	return rec, nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func toFloat(v interface{}) (float32, bool) {
	switch n := v.(type) {
	case int64:
		return float32(n), true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	}
	return 0, false
}
