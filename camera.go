package tether

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	defaultViewHeight = 20.0 // world units visible vertically at Zoom 1
	defaultNear       = -1000.0
	defaultFar        = 1000.0
)

// DefaultCameraPosition is where NewCamera places the camera: south of and
// above the origin, looking down at it.
var DefaultCameraPosition = mgl64.Vec3{0, -5, 10}

// Camera is an orthographic 3D camera. Z is up. Zoom scales the visible area
// rather than moving the camera, so distance to the target does not change
// apparent size.
type Camera struct {
	// Position is the camera origin in world space.
	Position mgl64.Vec3
	// Quaternion orients the camera; it looks down its local -Z axis.
	Quaternion mgl64.Quat
	// Up is the world direction LookAt keeps pointing up on screen.
	Up mgl64.Vec3
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// ViewHeight is the world-space height of the visible area at Zoom 1.
	ViewHeight float64
	// Near and Far bound the orthographic depth range.
	Near, Far float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	projection mgl64.Mat4
	dirty      bool
}

// NewCamera creates a camera at DefaultCameraPosition looking at the origin.
func NewCamera(viewport Rect) *Camera {
	c := &Camera{
		Position:   DefaultCameraPosition,
		Quaternion: mgl64.QuatIdent(),
		Up:         mgl64.Vec3{0, 0, 1},
		Zoom:       1.0,
		ViewHeight: defaultViewHeight,
		Near:       defaultNear,
		Far:        defaultFar,
		Viewport:   viewport,
	}
	c.LookAt(mgl64.Vec3{})
	c.UpdateProjectionMatrix()
	return c
}

// LookAt rotates the camera so its forward axis points at target.
func (c *Camera) LookAt(target mgl64.Vec3) {
	if target.ApproxEqual(c.Position) {
		return
	}
	view := mgl64.LookAtV(c.Position, target, c.Up)
	// The view rotation maps world to camera; its transpose maps back.
	c.Quaternion = mgl64.Mat4ToQuat(view.Mat3().Transpose().Mat4()).Normalize()
	c.dirty = true
}

// Matrix returns the camera's local-to-world matrix.
func (c *Camera) Matrix() mgl64.Mat4 {
	return composeMatrix(c.Position, c.Quaternion, mgl64.Vec3{1, 1, 1})
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	return c.Matrix().Inv()
}

// UpdateProjectionMatrix recomputes the orthographic projection from Zoom,
// ViewHeight and the viewport aspect ratio. Call it after changing any of
// them directly.
func (c *Camera) UpdateProjectionMatrix() {
	halfH := c.ViewHeight / 2 / c.Zoom
	aspect := 1.0
	if c.Viewport.Height > 0 {
		aspect = c.Viewport.Width / c.Viewport.Height
	}
	halfW := halfH * aspect
	c.projection = mgl64.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	c.dirty = true
}

// ProjectionMatrix returns the cached projection matrix.
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	return c.projection
}

// Forward returns the unit direction the camera is looking along.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Quaternion.Rotate(mgl64.Vec3{0, 0, -1})
}

// PixelsPerUnit returns how many screen pixels one world unit spans.
func (c *Camera) PixelsPerUnit() float64 {
	if c.ViewHeight == 0 {
		return 0
	}
	return c.Viewport.Height * c.Zoom / c.ViewHeight
}

// WorldToScreen projects a world point to screen coordinates.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy float64) {
	clip := c.projection.Mul4(c.ViewMatrix()).Mul4x1(p.Vec4(1))
	w := clip[3]
	if w == 0 {
		w = 1
	}
	nx, ny := clip[0]/w, clip[1]/w
	sx = c.Viewport.X + (nx+1)/2*c.Viewport.Width
	sy = c.Viewport.Y + (1-ny)/2*c.Viewport.Height
	return sx, sy
}

var errSingularProjection = errors.New("tether: camera view-projection is singular")

// ScreenRay returns the world-space ray under a screen point.
func (c *Camera) ScreenRay(sx, sy float64) (origin, dir mgl64.Vec3, err error) {
	if c.Viewport.Width == 0 || c.Viewport.Height == 0 {
		return origin, dir, errSingularProjection
	}
	vp := c.projection.Mul4(c.ViewMatrix())
	if det := vp.Det(); det > -1e-12 && det < 1e-12 {
		return origin, dir, errSingularProjection
	}
	inv := vp.Inv()
	nx := (sx-c.Viewport.X)/c.Viewport.Width*2 - 1
	ny := 1 - (sy-c.Viewport.Y)/c.Viewport.Height*2
	near := inv.Mul4x1(mgl64.Vec4{nx, ny, -1, 1})
	far := inv.Mul4x1(mgl64.Vec4{nx, ny, 1, 1})
	origin = near.Vec3().Mul(1 / near[3])
	end := far.Vec3().Mul(1 / far[3])
	dir = end.Sub(origin).Normalize()
	return origin, dir, nil
}

// MarkDirty flags the camera as changed so the next draw picks it up.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// consumeDirty reports and clears the dirty flag.
func (c *Camera) consumeDirty() bool {
	d := c.dirty
	c.dirty = false
	return d
}
