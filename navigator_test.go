package tether

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func newTestNavigator() (*Navigator, *Surface) {
	surface := NewSurface(testViewport())
	cam := NewCamera(testViewport())
	return NewNavigator(cam, surface, NavigatorConfig{}), surface
}

func TestNavigatorDefaults(t *testing.T) {
	n, s := newTestNavigator()
	if !n.Enabled {
		t.Error("navigator should start enabled")
	}
	if n.PanSpeed != 0.01 || n.ZoomSpeed != 0.1 || n.RotationSpeed != 0.005 {
		t.Errorf("speeds = %v/%v/%v", n.PanSpeed, n.ZoomSpeed, n.RotationSpeed)
	}
	if n.MinZoom != 0.01 || n.MaxZoom != 1000 {
		t.Errorf("zoom limits = [%v, %v]", n.MinZoom, n.MaxZoom)
	}
	if n.Mode() != GestureNone {
		t.Errorf("Mode = %v, want none", n.Mode())
	}
	// context menu, down, wheel, touch start/move/end
	if got := s.ListenerCount(); got != 6 {
		t.Errorf("ListenerCount = %d, want 6", got)
	}
}

func TestNavigatorConfigOverrides(t *testing.T) {
	cam := NewCamera(testViewport())
	n := NewNavigator(cam, NewSurface(testViewport()), NavigatorConfig{PanSpeed: 1, MaxZoom: 5})
	if n.PanSpeed != 1 || n.MaxZoom != 5 {
		t.Errorf("overrides not applied: pan=%v max=%v", n.PanSpeed, n.MaxZoom)
	}
	if n.ZoomSpeed != defaultZoomSpeed {
		t.Errorf("ZoomSpeed = %v, want default", n.ZoomSpeed)
	}
}

func TestRotatePreservesPolarAngle(t *testing.T) {
	n, _ := newTestNavigator()
	start := n.State()

	deltas := []float64{10, -250, 3.5, 1000, -0.25, 40000}
	for _, dx := range deltas {
		n.Rotate(mgl64.Vec3{dx, 77, 0})
		st := n.State()
		assertNear(t, "polar", st.Polar, start.Polar)
		assertNear(t, "radius", st.Position.Sub(st.FocusCenter).Len(), start.Position.Sub(start.FocusCenter).Len())
	}
}

func TestRotateChangesAzimuth(t *testing.T) {
	n, _ := newTestNavigator()
	before := n.State().Azimuth
	n.Rotate(mgl64.Vec3{100, 0, 0})
	after := n.State().Azimuth

	diff := math.Remainder(after-before, 2*math.Pi)
	assertNear(t, "azimuth change", diff, 100*defaultRotationSpeed)
}

func TestRotateKeepsLookingAtCenter(t *testing.T) {
	n, _ := newTestNavigator()
	n.Center = mgl64.Vec3{1, 1, 0}
	n.Rotate(mgl64.Vec3{123, 0, 0})
	cam := n.Camera()
	want := n.Center.Sub(cam.Position).Normalize()
	assertVec(t, "forward", cam.Forward(), want)
}

func TestPanIsInvertible(t *testing.T) {
	n, _ := newTestNavigator()
	n.Zoom(mgl64.Vec3{0, 0, -3})
	pos0, center0 := n.Camera().Position, n.Center

	d := mgl64.Vec3{37, -12, 0}
	n.Pan(d)
	if n.Camera().Position.ApproxEqual(pos0) {
		t.Fatal("pan did not move the camera")
	}
	n.Pan(d.Mul(-1))
	assertVec(t, "position", n.Camera().Position, pos0)
	assertVec(t, "center", n.Center, center0)
}

func TestPanMovesCameraAndCenterTogether(t *testing.T) {
	n, _ := newTestNavigator()
	offset := n.Camera().Position.Sub(n.Center)
	n.Pan(mgl64.Vec3{100, 0, 0})
	assertVec(t, "offset", n.Camera().Position.Sub(n.Center), offset)

	// +X delta at default orientation moves along camera right (+X world).
	assertVec(t, "center", n.Center, mgl64.Vec3{100 * defaultPanSpeed, 0, 0})
}

func TestPanScalesWithZoom(t *testing.T) {
	n, _ := newTestNavigator()
	n.camera.Zoom = 2
	n.Pan(mgl64.Vec3{100, 0, 0})
	assertVec(t, "center", n.Center, mgl64.Vec3{100 * defaultPanSpeed / 2, 0, 0})
}

func TestZoom(t *testing.T) {
	n, _ := newTestNavigator()
	n.Zoom(mgl64.Vec3{0, 0, 1})
	assertNear(t, "zoom out", n.Camera().Zoom, 0.9)
	n.Zoom(mgl64.Vec3{0, 0, -1})
	assertNear(t, "zoom in", n.Camera().Zoom, 0.99)
}

func TestZoomClamps(t *testing.T) {
	n, _ := newTestNavigator()
	n.Zoom(mgl64.Vec3{0, 0, 50}) // would go negative
	if n.Camera().Zoom != n.MinZoom {
		t.Errorf("Zoom = %v, want MinZoom %v", n.Camera().Zoom, n.MinZoom)
	}
	for i := 0; i < 1000; i++ {
		n.Zoom(mgl64.Vec3{0, 0, -5})
	}
	if n.Camera().Zoom != n.MaxZoom {
		t.Errorf("Zoom = %v, want MaxZoom %v", n.Camera().Zoom, n.MaxZoom)
	}
}

func TestFocusUsesFourBoundingRadii(t *testing.T) {
	n, _ := newTestNavigator()
	forward := n.Camera().Forward()

	target := NewShapeObject("target", &SphereShape{Radius: 1})
	target.Position = mgl64.Vec3{5, 5, 0}
	n.Focus(target)

	radius := math.Sqrt(3) // half the diagonal of a 2x2x2 box
	assertVec(t, "center", n.Center, mgl64.Vec3{5, 5, 0})
	assertNear(t, "distance", n.Camera().Position.Sub(n.Center).Len(), 4*radius)
	assertVec(t, "forward", n.Camera().Forward(), forward)
	assertVec(t, "direction", n.Center.Sub(n.Camera().Position).Normalize(), forward)
}

func TestFocusEmptyTarget(t *testing.T) {
	n, _ := newTestNavigator()
	group := NewObject("group")
	group.Position = mgl64.Vec3{-2, 1, 3}
	n.Focus(group)

	assertVec(t, "center", n.Center, group.Position)
	assertNear(t, "distance", n.Camera().Position.Sub(n.Center).Len(), 4*emptyFocusDistance)
}

func TestFocusAnimated(t *testing.T) {
	n, _ := newTestNavigator()
	target := NewShapeObject("target", &SphereShape{Radius: 0.5})
	target.Position = mgl64.Vec3{3, 0, 0}

	probe, _ := newTestNavigator()
	probe.Focus(target)

	n.FocusAnimated(target, 0.5, ease.Linear)
	if !n.Animating() {
		t.Fatal("expected animation in flight")
	}
	n.Update(0.25)
	if !n.Animating() {
		t.Fatal("animation ended early")
	}
	n.Update(0.5)
	if n.Animating() {
		t.Fatal("animation should be done")
	}
	assertVec(t, "center", n.Center, probe.Center)
	assertVec(t, "position", n.Camera().Position, probe.Camera().Position)
}

func TestGestureCancelsFocusAnimation(t *testing.T) {
	n, s := newTestNavigator()
	n.FocusAnimated(NewObject("o"), 1, ease.Linear)
	s.InjectWheel(1)
	drainInput(s)
	if n.Animating() {
		t.Error("wheel should cancel focus animation")
	}
}

func TestOnChange(t *testing.T) {
	n, _ := newTestNavigator()
	var states []CameraState
	h := n.OnChange(func(s CameraState) { states = append(states, s) })

	n.Rotate(mgl64.Vec3{1, 0, 0})
	n.Pan(mgl64.Vec3{1, 0, 0})
	n.Zoom(mgl64.Vec3{0, 0, 1})
	n.Focus(NewObject("o"))
	if len(states) != 4 {
		t.Fatalf("got %d change notifications, want 4", len(states))
	}
	assertNear(t, "zoom", states[2].Zoom, 0.9)

	h.Remove()
	n.Rotate(mgl64.Vec3{1, 0, 0})
	if len(states) != 4 {
		t.Error("removed observer still called")
	}
	if !n.Camera().consumeDirty() {
		t.Error("camera should be dirty after changes")
	}
}

func TestMouseRotateGesture(t *testing.T) {
	n, s := newTestNavigator()
	before := n.State().Azimuth
	s.InjectDrag(400, 300, 500, 300, 4, MouseButtonLeft)

	s.processInjectedInput() // press
	if n.Mode() != GestureRotate {
		t.Errorf("Mode = %v, want rotate", n.Mode())
	}
	if got := s.ListenerCount(EventMouseMove, EventMouseUp, EventMouseOut, EventDoubleClick); got != 4 {
		t.Errorf("gesture listeners = %d, want 4", got)
	}
	drainInput(s)

	if n.Mode() != GestureNone {
		t.Errorf("Mode after release = %v, want none", n.Mode())
	}
	if got := s.ListenerCount(EventMouseMove, EventMouseUp, EventMouseOut, EventDoubleClick); got != 0 {
		t.Errorf("gesture listeners after release = %d, want 0", got)
	}
	diff := math.Remainder(n.State().Azimuth-before, 2*math.Pi)
	assertNear(t, "azimuth change", diff, -100*defaultRotationSpeed)
}

func TestMouseZoomAndPanGestures(t *testing.T) {
	n, s := newTestNavigator()
	s.InjectDrag(400, 300, 400, 302, 1, MouseButtonMiddle)
	drainInput(s)
	assertNear(t, "zoom", n.Camera().Zoom, 1-2*defaultZoomSpeed)

	n2, s2 := newTestNavigator()
	s2.InjectDrag(400, 300, 300, 300, 1, MouseButtonRight)
	drainInput(s2)
	assertVec(t, "center", n2.Center, mgl64.Vec3{100 * defaultPanSpeed, 0, 0})
}

func TestMouseDownTwiceAttachesListenersOnce(t *testing.T) {
	n, s := newTestNavigator()
	s.InjectPress(10, 10, MouseButtonLeft)
	s.InjectPress(10, 10, MouseButtonRight)
	drainInput(s)
	if n.Mode() != GesturePan {
		t.Errorf("Mode = %v, want pan", n.Mode())
	}
	if got := s.ListenerCount(EventMouseMove); got != 1 {
		t.Errorf("move listeners = %d, want 1", got)
	}
}

func TestContextMenuPrevented(t *testing.T) {
	_, s := newTestNavigator()
	ev := &InputEvent{Kind: EventContextMenu, Button: MouseButtonRight}
	s.Dispatch(ev)
	if !ev.DefaultPrevented() {
		t.Error("context menu should be prevented")
	}
}

func TestWheelZooms(t *testing.T) {
	n, s := newTestNavigator()
	ev := &InputEvent{Kind: EventWheel, DeltaY: -120}
	s.Dispatch(ev)
	if !ev.DefaultPrevented() {
		t.Error("wheel should be prevented")
	}
	assertNear(t, "zoom", n.Camera().Zoom, 1.1)
}

func TestTouchGestures(t *testing.T) {
	n, s := newTestNavigator()
	s.InjectTouches(EventTouchStart, Touch{ID: 1, PageX: 100, PageY: 100}, Touch{ID: 2, PageX: 200, PageY: 100})
	s.InjectTouches(EventTouchMove, Touch{ID: 1, PageX: 90, PageY: 100}, Touch{ID: 2, PageX: 210, PageY: 100})
	drainInput(s)

	// Pinch out by 20 zooms in.
	assertNear(t, "zoom", n.Camera().Zoom, 1+20*defaultZoomSpeed)
	if n.gesture.mode != GesturePan {
		t.Errorf("touch mode = %v, want pan", n.gesture.mode)
	}

	s.InjectTouches(EventTouchEnd)
	drainInput(s)
	if n.gesture.mode != GestureNone {
		t.Errorf("touch mode after end = %v, want none", n.gesture.mode)
	}
}

func TestDisabledIgnoresInput(t *testing.T) {
	n, s := newTestNavigator()
	n.SetEnabled(false)
	before := n.State()

	s.InjectDrag(400, 300, 500, 350, 3, MouseButtonLeft)
	s.InjectWheel(100)
	s.InjectTouches(EventTouchStart, Touch{PageX: 1, PageY: 1})
	s.InjectTouches(EventTouchMove, Touch{PageX: 50, PageY: 1})
	drainInput(s)

	if n.State() != before {
		t.Errorf("state changed while disabled: %+v -> %+v", before, n.State())
	}
	if n.Mode() != GestureNone {
		t.Errorf("Mode = %v, want none", n.Mode())
	}
}

func TestReleaseResetsWhileDisabled(t *testing.T) {
	n, s := newTestNavigator()
	s.InjectPress(400, 300, MouseButtonLeft)
	drainInput(s)
	if n.Mode() != GestureRotate {
		t.Fatalf("Mode = %v, want rotate", n.Mode())
	}

	// A drag elsewhere disables navigation mid-gesture.
	n.SetEnabled(false)
	s.InjectMove(450, 300)
	s.InjectRelease(450, 300, MouseButtonLeft)
	drainInput(s)

	if n.Mode() != GestureNone {
		t.Errorf("Mode = %v, want none after release", n.Mode())
	}
	if got := s.ListenerCount(EventMouseMove); got != 0 {
		t.Errorf("move listeners = %d, want 0", got)
	}
}

func TestDisposeRemovesAllListeners(t *testing.T) {
	n, s := newTestNavigator()
	s.InjectPress(400, 300, MouseButtonLeft)
	drainInput(s)
	if s.ListenerCount() == 0 {
		t.Fatal("expected listeners before dispose")
	}

	calls := 0
	n.OnChange(func(CameraState) { calls++ })
	n.Dispose()
	if got := s.ListenerCount(); got != 0 {
		t.Errorf("ListenerCount after Dispose = %d, want 0", got)
	}

	s.InjectDrag(0, 0, 100, 100, 2, MouseButtonLeft)
	s.InjectWheel(1)
	drainInput(s)
	if calls != 0 {
		t.Errorf("got %d change notifications after Dispose", calls)
	}
	n.Dispose() // idempotent
}
