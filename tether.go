package tether

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA for ebiten draw calls.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for screen-space positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Pose is a position and orientation, JSON-compatible with geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// Point is a JSON-compatible geometry_msgs/Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 converts the point to a math vector.
func (p Point) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// pointFromVec3 converts a math vector to a wire point.
func pointFromVec3(v mgl64.Vec3) Point {
	return Point{X: v[0], Y: v[1], Z: v[2]}
}

// Quaternion is a JSON-compatible geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Quat converts to a math quaternion. An all-zero quaternion (the ROS
// "unset" value) maps to identity.
func (q Quaternion) Quat() mgl64.Quat {
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}.Normalize()
}

// quaternionFromQuat converts a math quaternion to a wire quaternion.
func quaternionFromQuat(q mgl64.Quat) Quaternion {
	return Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // auxiliary (middle) mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// EventKind identifies a kind of raw input event delivered by a Surface.
type EventKind uint8

const (
	EventMouseDown   EventKind = iota // a mouse button was pressed
	EventMouseMove                    // the cursor moved
	EventMouseUp                      // a mouse button was released
	EventMouseOut                     // the cursor left the surface
	EventDoubleClick                  // two primary presses in quick succession
	EventWheel                        // the scroll wheel moved
	EventContextMenu                  // secondary press that would open a context menu
	EventTouchStart                   // a finger touched the surface
	EventTouchMove                    // one or more fingers moved
	EventTouchEnd                     // a finger left the surface

	numEventKinds
)

// GestureMode is the navigation operation currently driven by input.
type GestureMode int8

const (
	GestureNone   GestureMode = iota - 1 // no active gesture
	GestureRotate                        // orbit around the focus center
	GestureZoom                          // change the zoom factor
	GesturePan                           // translate camera and center together
)

// String returns a readable mode name.
func (m GestureMode) String() string {
	switch m {
	case GestureRotate:
		return "rotate"
	case GestureZoom:
		return "zoom"
	case GesturePan:
		return "pan"
	default:
		return "none"
	}
}
