package renderer

// Vertex carries the plane position plus bufPos, the vertex's tile
// coordinate inside the viewport. bufPos interpolates across each quad, so
// the fragment shader can recover both the tile index and the position
// within the tile.
type Vertex struct {
	Pos    [3]float32
	BufPos [2]float32
}

// BuildPlaneMesh subdivides a plane into w x h quads of tileSize pixels,
// centered on the origin. Returns (w+1)*(h+1) vertices and 6*w*h indices.
func BuildPlaneMesh(w, h, tileSize int) ([]Vertex, []uint32) {
	halfW := float32(w*tileSize) / 2
	halfH := float32(h*tileSize) / 2

	verts := make([]Vertex, 0, (w+1)*(h+1))
	for j := 0; j <= h; j++ {
		for i := 0; i <= w; i++ {
			rawX := float32(i)/float32(w)*2 - 1
			rawY := float32(j)/float32(h)*2 - 1
			verts = append(verts, Vertex{
				Pos:    [3]float32{halfW * rawX, halfH * rawY, 0},
				BufPos: [2]float32{float32(i), float32(j)},
			})
		}
	}

	idx := make([]uint32, 0, 6*w*h)
	stride := uint32(w + 1)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			a := uint32(j)*stride + uint32(i)
			b := a + 1
			c := a + stride
			d := c + 1
			idx = append(idx, a, b, d, a, d, c)
		}
	}
	return verts, idx
}
