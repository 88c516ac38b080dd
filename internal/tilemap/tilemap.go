package tilemap

import "fmt"

// MaxPlaneRecords is the capacity of the GPU-resident record buffer. A
// 4096-entry vec4 array exactly fills the default 64 KiB uniform binding
// limit, so viewports of any shape up to 64x64 share one buffer size.
const MaxPlaneRecords = 4096

// Record is the per-tile payload consumed by the shader: tile-sheet column,
// tile-sheet row, and two reserved fields that keep the entry vec4-aligned.
type Record [4]float32

// Axis selects the scroll direction for ApplyOffset.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Sink receives viewport state bound for the GPU. renderer.Plane is the real
// implementation; tests substitute a recorder.
type Sink interface {
	// UploadTiles replaces the GPU record buffer contents, starting at
	// offset 0, with the given visible window.
	UploadTiles(recs []Record)
	// SetScroll sets the sub-tile scroll offsets, in pixels.
	SetScroll(x, y float32)
}

// Grid owns the full logical tile grid plus the smaller visible window that
// gets mirrored into the Sink. Focus is the grid coordinate of the window's
// top-left corner; the sub-tile offsets pan smoothly within one tile while
// focus snaps a whole tile at a time, so the rendered image never jumps.
type Grid struct {
	tiles  []Record
	window []Record

	gridW, gridH int
	viewW, viewH int
	tileSize     float32

	focusX, focusY int
	limitX, limitY int
	offX, offY     float32

	sink Sink
}

// NewGrid builds a gridW x gridH logical grid with a viewW x viewH viewport.
// The viewport must fit inside the grid and within MaxPlaneRecords.
func NewGrid(gridW, gridH, viewW, viewH int, tileSize float32, sink Sink) (*Grid, error) {
	if gridW <= 0 || gridH <= 0 || viewW <= 0 || viewH <= 0 {
		return nil, fmt.Errorf("grid %dx%d with viewport %dx%d: all dimensions must be positive", gridW, gridH, viewW, viewH)
	}
	if viewW > gridW || viewH > gridH {
		return nil, fmt.Errorf("viewport %dx%d does not fit inside grid %dx%d", viewW, viewH, gridW, gridH)
	}
	if n := viewW * viewH; n > MaxPlaneRecords {
		return nil, fmt.Errorf("viewport %dx%d needs %d records, buffer capacity is %d", viewW, viewH, n, MaxPlaneRecords)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size %v must be positive", tileSize)
	}
	if sink == nil {
		return nil, fmt.Errorf("nil sink")
	}
	return &Grid{
		tiles:    make([]Record, gridW*gridH),
		window:   make([]Record, viewW*viewH),
		gridW:    gridW,
		gridH:    gridH,
		viewW:    viewW,
		viewH:    viewH,
		tileSize: tileSize,
		limitX:   gridW - viewW,
		limitY:   gridH - viewH,
		sink:     sink,
	}, nil
}

func (g *Grid) index(x, y int) int {
	return y*g.gridW + x
}

// SetTile overwrites the record at (x, y). Coordinates outside the grid are
// a programming error and panic.
func (g *Grid) SetTile(x, y int, rec Record) {
	if x < 0 || x >= g.gridW || y < 0 || y >= g.gridH {
		panic(fmt.Sprintf("tilemap: tile (%d,%d) outside %dx%d grid", x, y, g.gridW, g.gridH))
	}
	g.tiles[g.index(x, y)] = rec
}

// Tile returns the record at (x, y), panicking outside the grid.
func (g *Grid) Tile(x, y int) Record {
	if x < 0 || x >= g.gridW || y < 0 || y >= g.gridH {
		panic(fmt.Sprintf("tilemap: tile (%d,%d) outside %dx%d grid", x, y, g.gridW, g.gridH))
	}
	return g.tiles[g.index(x, y)]
}

// Fill sets every grid record to rec. The viewport is not refreshed until
// the next SetFocus.
func (g *Grid) Fill(rec Record) {
	for i := range g.tiles {
		g.tiles[i] = rec
	}
}

// SetFocus moves the viewport's top-left corner to (fx, fy), copies the
// visible window out of the grid and uploads it through the sink. Focus past
// the scroll limit is a programming error and panics.
func (g *Grid) SetFocus(fx, fy int) {
	if fx < 0 || fy < 0 || fx > g.limitX || fy > g.limitY {
		panic(fmt.Sprintf("tilemap: focus (%d,%d) outside limit (%d,%d)", fx, fy, g.limitX, g.limitY))
	}
	g.focusX, g.focusY = fx, fy
	for cy := 0; cy < g.viewH; cy++ {
		for cx := 0; cx < g.viewW; cx++ {
			g.window[cy*g.viewW+cx] = g.tiles[g.index(fx+cx, fy+cy)]
		}
	}
	g.sink.UploadTiles(g.window)
}

// ApplyOffset accumulates a sub-tile scroll delta on one axis. When the
// accumulated offset crosses a tile boundary the focus snaps one tile in
// that direction (refreshing the window via SetFocus) and the offset wraps,
// keeping it in [0, tileSize). At the grid edges the offset clamps to 0.
func (g *Grid) ApplyOffset(axis Axis, delta float32) {
	var off *float32
	var focus, limit int
	switch axis {
	case AxisX:
		off, focus, limit = &g.offX, g.focusX, g.limitX
	case AxisY:
		off, focus, limit = &g.offY, g.focusY, g.limitY
	default:
		panic(fmt.Sprintf("tilemap: unknown axis %d", int(axis)))
	}

	next := *off + delta
	moved := focus
	switch {
	case next < 0:
		if focus == 0 {
			next = 0
		} else {
			next = g.tileSize + next
			moved = focus - 1
		}
	case focus == limit:
		next = 0
	case next >= g.tileSize:
		next = next - g.tileSize
		moved = focus + 1
	}

	if moved != focus {
		if axis == AxisX {
			g.SetFocus(moved, g.focusY)
		} else {
			g.SetFocus(g.focusX, moved)
		}
	}
	*off = next
	g.sink.SetScroll(g.offX, g.offY)
}

// Focus returns the viewport's top-left grid coordinate.
func (g *Grid) Focus() (int, int) {
	return g.focusX, g.focusY
}

// Offset returns the current sub-tile scroll offset for one axis, in pixels.
func (g *Grid) Offset(axis Axis) float32 {
	if axis == AxisX {
		return g.offX
	}
	return g.offY
}

// Limit returns the maximum valid focus coordinate.
func (g *Grid) Limit() (int, int) {
	return g.limitX, g.limitY
}

// GridSize returns the logical grid dimensions in tiles.
func (g *Grid) GridSize() (int, int) {
	return g.gridW, g.gridH
}

// ViewSize returns the viewport dimensions in tiles.
func (g *Grid) ViewSize() (int, int) {
	return g.viewW, g.viewH
}
