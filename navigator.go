package tether

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultPanSpeed      = 0.01
	defaultZoomSpeed     = 0.1
	defaultRotationSpeed = 0.005
	defaultMinZoom       = 0.01
	defaultMaxZoom       = 1000.0

	// emptyFocusDistance is used when the focus target has no geometry.
	emptyFocusDistance = 0.1
	// focusDistanceFactor places the camera this many bounding radii away.
	focusDistanceFactor = 4.0
)

// NavigatorConfig tunes navigation speeds and zoom limits. Zero fields take
// the documented defaults.
type NavigatorConfig struct {
	// PanSpeed scales pointer pixels to world units at Zoom 1. Default 0.01.
	PanSpeed float64
	// ZoomSpeed is the fractional zoom change per unit of zoom delta.
	// Default 0.1.
	ZoomSpeed float64
	// RotationSpeed is radians of azimuth per pointer pixel. Default 0.005.
	RotationSpeed float64
	// MinZoom and MaxZoom clamp the zoom factor. Defaults 0.01 and 1000.
	MinZoom, MaxZoom float64
}

func (c NavigatorConfig) withDefaults() NavigatorConfig {
	if c.PanSpeed == 0 {
		c.PanSpeed = defaultPanSpeed
	}
	if c.ZoomSpeed == 0 {
		c.ZoomSpeed = defaultZoomSpeed
	}
	if c.RotationSpeed == 0 {
		c.RotationSpeed = defaultRotationSpeed
	}
	if c.MinZoom == 0 {
		c.MinZoom = defaultMinZoom
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = defaultMaxZoom
	}
	return c
}

// CameraState is a snapshot of the navigated camera.
type CameraState struct {
	Position    mgl64.Vec3
	FocusCenter mgl64.Vec3
	Azimuth     float64
	Polar       float64
	Zoom        float64
}

// focusAnim holds active focus tweens for the center and camera position.
type focusAnim struct {
	tweens      [6]*gween.Tween
	endCenter   mgl64.Vec3
	endPosition mgl64.Vec3
}

// Navigator orbits, pans and zooms a Camera around a focus center in
// response to Surface input. Orbiting only changes azimuth: the camera's
// elevation above the ground plane is fixed.
type Navigator struct {
	// Enabled gates all gesture input. Drag controllers clear it while an
	// object is being dragged.
	Enabled bool
	// Center is the point the camera orbits and looks at.
	Center mgl64.Vec3

	PanSpeed      float64
	ZoomSpeed     float64
	RotationSpeed float64
	MinZoom       float64
	MaxZoom       float64

	camera  *Camera
	surface *Surface
	gesture gestureState
	sph     spherical

	listeners     []ListenerHandle
	moveListeners []ListenerHandle
	onChange      callbackList[CameraState]

	focusTween *focusAnim
	disposed   bool
}

// NewNavigator attaches a navigator to surface, driving camera. The focus
// center starts at the world origin.
func NewNavigator(camera *Camera, surface *Surface, cfg NavigatorConfig) *Navigator {
	cfg = cfg.withDefaults()
	n := &Navigator{
		Enabled:       true,
		PanSpeed:      cfg.PanSpeed,
		ZoomSpeed:     cfg.ZoomSpeed,
		RotationSpeed: cfg.RotationSpeed,
		MinZoom:       cfg.MinZoom,
		MaxZoom:       cfg.MaxZoom,
		camera:        camera,
		surface:       surface,
		gesture:       newGestureState(),
	}
	n.listeners = append(n.listeners,
		surface.On(EventContextMenu, n.onContextMenu),
		surface.On(EventMouseDown, n.onMouseDown),
		surface.On(EventWheel, n.onMouseWheel),
		surface.On(EventTouchStart, n.onTouchStart),
		surface.On(EventTouchMove, n.onTouchMove),
		surface.On(EventTouchEnd, n.onTouchEnd),
	)
	return n
}

// Camera returns the navigated camera.
func (n *Navigator) Camera() *Camera {
	return n.camera
}

// SetEnabled turns gesture handling on or off.
func (n *Navigator) SetEnabled(enabled bool) {
	n.Enabled = enabled
}

// Mode returns the active mouse gesture.
func (n *Navigator) Mode() GestureMode {
	return n.gesture.mode
}

// OnChange registers fn to be called after every camera mutation.
func (n *Navigator) OnChange(fn func(CameraState)) CallbackHandle {
	return n.onChange.add(fn)
}

// State returns the current camera state.
func (n *Navigator) State() CameraState {
	var s spherical
	s.setFromVector(n.camera.Position.Sub(n.Center))
	return CameraState{
		Position:    n.camera.Position,
		FocusCenter: n.Center,
		Azimuth:     s.theta,
		Polar:       s.phi,
		Zoom:        n.camera.Zoom,
	}
}

func (n *Navigator) changed() {
	n.camera.MarkDirty()
	n.onChange.emit(n.State())
}

// --- Operations ---

// Rotate orbits the camera around Center by delta.X * RotationSpeed radians
// of azimuth. The polar angle is left as is.
func (n *Navigator) Rotate(delta mgl64.Vec3) {
	n.sph.setFromVector(n.camera.Position.Sub(n.Center))
	n.sph.theta += delta[0] * n.RotationSpeed
	n.sph.makeSafe()

	n.camera.Position = n.Center.Add(n.sph.vector())
	n.camera.LookAt(n.Center)
	n.changed()
}

// Pan moves camera and Center together in the camera's view plane. The
// displacement is divided by the zoom factor so on-screen pan speed does not
// depend on zoom.
func (n *Navigator) Pan(delta mgl64.Vec3) {
	d := delta.Mul(n.PanSpeed / n.camera.Zoom)
	d = normalMatrix(n.camera.Matrix()).Mul3x1(d)

	n.camera.Position = n.camera.Position.Add(d)
	n.Center = n.Center.Add(d)
	n.changed()
}

// Zoom scales the zoom factor by (1 - delta.Z*ZoomSpeed). Positive delta.Z
// zooms out. The result is clamped to [MinZoom, MaxZoom].
func (n *Navigator) Zoom(delta mgl64.Vec3) {
	z := n.camera.Zoom
	z -= delta[2] * z * n.ZoomSpeed
	z = math.Max(n.MinZoom, math.Min(n.MaxZoom, z))

	n.camera.Zoom = z
	n.camera.UpdateProjectionMatrix()
	n.changed()
}

// focusPose computes where Focus would put Center and the camera.
func (n *Navigator) focusPose(target *Object) (center, position mgl64.Vec3) {
	var distance float64
	box := target.WorldBounds()
	if !box.IsEmpty() {
		center = box.Center()
		distance = box.BoundingRadius()
	} else {
		// Groups without shapes focus on their origin.
		center = target.WorldPosition()
		distance = emptyFocusDistance
	}
	back := n.camera.Quaternion.Rotate(mgl64.Vec3{0, 0, 1})
	position = center.Add(back.Mul(distance * focusDistanceFactor))
	return center, position
}

// Focus recenters on target without changing the viewing direction. The
// camera is placed four bounding radii from the target's bounding-box
// center, along its current forward axis.
func (n *Navigator) Focus(target *Object) {
	n.focusTween = nil
	n.Center, n.camera.Position = n.focusPose(target)
	n.changed()
}

// FocusAnimated moves to the pose Focus would produce over duration seconds.
// Call Update each frame to advance it. Any gesture cancels the animation.
func (n *Navigator) FocusAnimated(target *Object, duration float32, easeFn ease.TweenFunc) {
	center, position := n.focusPose(target)
	a := &focusAnim{endCenter: center, endPosition: position}
	for i := 0; i < 3; i++ {
		a.tweens[i] = gween.New(float32(n.Center[i]), float32(center[i]), duration, easeFn)
		a.tweens[3+i] = gween.New(float32(n.camera.Position[i]), float32(position[i]), duration, easeFn)
	}
	n.focusTween = a
}

// Animating reports whether a focus animation is in flight.
func (n *Navigator) Animating() bool {
	return n.focusTween != nil
}

// Update advances any focus animation by dt seconds.
func (n *Navigator) Update(dt float32) {
	a := n.focusTween
	if a == nil {
		return
	}
	allDone := true
	for i := 0; i < 3; i++ {
		cv, cDone := a.tweens[i].Update(dt)
		pv, pDone := a.tweens[3+i].Update(dt)
		n.Center[i] = float64(cv)
		n.camera.Position[i] = float64(pv)
		allDone = allDone && cDone && pDone
	}
	if allDone {
		n.Center = a.endCenter
		n.camera.Position = a.endPosition
		n.focusTween = nil
	}
	n.changed()
}

// apply routes a classified gesture to its operation.
func (n *Navigator) apply(op GestureOp) {
	n.focusTween = nil
	switch op.Mode {
	case GestureRotate:
		n.Rotate(op.Delta)
	case GestureZoom:
		n.Zoom(op.Delta)
	case GesturePan:
		n.Pan(op.Delta)
	}
}

// --- Input listeners ---

func (n *Navigator) onContextMenu(ev *InputEvent) {
	ev.PreventDefault()
}

func (n *Navigator) onMouseDown(ev *InputEvent) {
	if !n.Enabled {
		return
	}
	n.gesture.mouseDown(ev)

	if len(n.moveListeners) == 0 {
		n.moveListeners = append(n.moveListeners,
			n.surface.On(EventMouseMove, n.onMouseMove),
			n.surface.On(EventMouseUp, n.onMouseUp),
			n.surface.On(EventMouseOut, n.onMouseUp),
			n.surface.On(EventDoubleClick, n.onMouseUp),
		)
	}
}

func (n *Navigator) onMouseMove(ev *InputEvent) {
	if !n.Enabled {
		return
	}
	n.gesture.mouseMove(ev, n.apply)
}

// onMouseUp ends the gesture regardless of Enabled so that a drag which
// disabled navigation mid-gesture cannot leave move listeners behind.
func (n *Navigator) onMouseUp(*InputEvent) {
	n.detachMoveListeners()
	n.gesture.release()
}

func (n *Navigator) onMouseWheel(ev *InputEvent) {
	if !n.Enabled {
		return
	}
	ev.PreventDefault()
	if op, ok := wheelOp(ev); ok {
		n.apply(op)
	}
}

func (n *Navigator) onTouchStart(ev *InputEvent) {
	if !n.Enabled {
		return
	}
	n.gesture.touchStart(ev, n.surface.DevicePixelRatio)
}

func (n *Navigator) onTouchMove(ev *InputEvent) {
	if !n.Enabled {
		return
	}
	ev.PreventDefault()
	n.gesture.touchMove(ev, n.surface.DevicePixelRatio, n.apply)
}

func (n *Navigator) onTouchEnd(ev *InputEvent) {
	n.gesture.touchEnd(ev, n.surface.DevicePixelRatio)
}

func (n *Navigator) detachMoveListeners() {
	for _, h := range n.moveListeners {
		h.Remove()
	}
	n.moveListeners = n.moveListeners[:0]
}

// Dispose removes every listener the navigator registered on its surface
// and drops change observers. The navigator must not be used afterwards.
func (n *Navigator) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, h := range n.listeners {
		h.Remove()
	}
	n.listeners = nil
	n.detachMoveListeners()
	n.gesture = newGestureState()
	n.focusTween = nil
	n.onChange.clear()
	logger.Debug().Msg("navigator disposed")
}
