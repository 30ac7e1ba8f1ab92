package tether

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-6

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func testViewport() Rect {
	return Rect{X: 0, Y: 0, Width: 800, Height: 600}
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(testViewport())
	if cam.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom)
	}
	if cam.Position != DefaultCameraPosition {
		t.Errorf("Position = %v, want %v", cam.Position, DefaultCameraPosition)
	}
	if cam.Up != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("Up = %v, want +Z", cam.Up)
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
}

func TestCameraLooksAtOrigin(t *testing.T) {
	cam := NewCamera(testViewport())
	want := DefaultCameraPosition.Mul(-1).Normalize()
	assertVec(t, "forward", cam.Forward(), want)

	// Screen up should point toward world +Z.
	up := cam.Quaternion.Rotate(mgl64.Vec3{0, 1, 0})
	if up.Z() <= 0 {
		t.Errorf("camera up = %v, want positive Z", up)
	}
}

func TestCameraLookAtSamePointIsNoop(t *testing.T) {
	cam := NewCamera(testViewport())
	before := cam.Quaternion
	cam.LookAt(cam.Position)
	if cam.Quaternion != before {
		t.Error("LookAt(position) changed orientation")
	}
}

func TestCameraWorldToScreenCenter(t *testing.T) {
	cam := NewCamera(testViewport())
	sx, sy := cam.WorldToScreen(mgl64.Vec3{})
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(origin) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraPixelsPerUnit(t *testing.T) {
	cam := NewCamera(testViewport())
	assertNear(t, "ppu", cam.PixelsPerUnit(), 30)

	// One world unit along +X (screen right when looking north) spans ppu pixels.
	sx0, _ := cam.WorldToScreen(mgl64.Vec3{})
	sx1, _ := cam.WorldToScreen(mgl64.Vec3{1, 0, 0})
	assertNear(t, "screen dx", sx1-sx0, 30)
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera(testViewport())
	cam.Zoom = 2
	cam.UpdateProjectionMatrix()

	sx0, _ := cam.WorldToScreen(mgl64.Vec3{})
	sx1, _ := cam.WorldToScreen(mgl64.Vec3{1, 0, 0})
	assertNear(t, "screen dx", sx1-sx0, 60)
	assertNear(t, "ppu", cam.PixelsPerUnit(), 60)
}

func TestCameraScreenRay(t *testing.T) {
	cam := NewCamera(testViewport())
	origin, dir, err := cam.ScreenRay(400, 300)
	if err != nil {
		t.Fatalf("ScreenRay: %v", err)
	}
	assertVec(t, "dir", dir, cam.Forward())

	// The ray through the screen center passes through the world origin.
	toOrigin := mgl64.Vec3{}.Sub(origin)
	if c := toOrigin.Cross(dir).Len(); c > 1e-6 {
		t.Errorf("ray misses origin by %v", c)
	}
}

func TestCameraScreenRayRoundTrip(t *testing.T) {
	cam := NewCamera(testViewport())
	p := mgl64.Vec3{2, 3, 0}
	sx, sy := cam.WorldToScreen(p)
	origin, dir, err := cam.ScreenRay(sx, sy)
	if err != nil {
		t.Fatalf("ScreenRay: %v", err)
	}
	// Intersect with z = 0.
	tHit := -origin.Z() / dir.Z()
	assertVec(t, "hit", origin.Add(dir.Mul(tHit)), p)
}

func TestCameraScreenRayEmptyViewport(t *testing.T) {
	cam := NewCamera(Rect{})
	if _, _, err := cam.ScreenRay(0, 0); err == nil {
		t.Error("expected error for empty viewport")
	}
}

func TestCameraDirtyFlag(t *testing.T) {
	cam := NewCamera(testViewport())
	if !cam.consumeDirty() {
		t.Error("new camera should be dirty")
	}
	if cam.consumeDirty() {
		t.Error("dirty flag should clear after consume")
	}
	cam.MarkDirty()
	if !cam.consumeDirty() {
		t.Error("MarkDirty should set the flag")
	}
}
