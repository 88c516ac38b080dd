package camera

import "github.com/go-gl/mathgl/mgl32"

const (
	MinDistance = 100
	MaxDistance = 2000

	DefaultDistance = 800
)

// Camera holds the eye position over the tilemap plane. X/Y pan across the
// plane, Distance moves the eye along the view axis for zooming.
type Camera struct {
	X        float32
	Y        float32
	Distance float32

	PanSpeed  float32
	ZoomSpeed float32
}

func New(panSpeed, zoomSpeed float32) *Camera {
	return &Camera{
		Distance:  DefaultDistance,
		PanSpeed:  panSpeed,
		ZoomSpeed: zoomSpeed,
	}
}

// Pan moves the eye by one speed step in the given direction. dirX/dirY are
// expected in {-1, 0, 1} from held keys.
func (c *Camera) Pan(dirX, dirY float32) {
	c.X += dirX * c.PanSpeed
	c.Y += dirY * c.PanSpeed
}

// ZoomIn moves the eye closer to the plane, clamped at MinDistance.
func (c *Camera) ZoomIn() {
	c.Distance -= c.ZoomSpeed
	if c.Distance < MinDistance {
		c.Distance = MinDistance
	}
}

// ZoomOut moves the eye away from the plane, clamped at MaxDistance.
func (c *Camera) ZoomOut() {
	c.Distance += c.ZoomSpeed
	if c.Distance > MaxDistance {
		c.Distance = MaxDistance
	}
}

// ViewMatrix returns the look-at transform for the current eye position.
// The eye looks straight down the -Z axis at the plane; Y is negated so
// positive pan moves the view up-screen.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	eye := mgl32.Vec3{c.X, -c.Y, c.Distance}
	center := mgl32.Vec3{c.X, -c.Y, 0}
	return mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
}
