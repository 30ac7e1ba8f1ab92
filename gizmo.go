package tether

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GizmoEvent identifies a drag lifecycle event.
type GizmoEvent uint8

const (
	GizmoDragStart GizmoEvent = iota
	GizmoDrag
	GizmoDragStop

	numGizmoEvents
)

// DragEvent is emitted by a Gizmo while an attached object is dragged.
type DragEvent struct {
	// Object is the attached object being dragged.
	Object *Object
	// Control names the handle under the pointer. Empty when the gizmo does
	// not distinguish handles.
	Control string
	// ScreenX and ScreenY are the pointer position.
	ScreenX, ScreenY float64
}

// Gizmo detects pointer hits on attached objects and drags them, emitting
// lifecycle events.
type Gizmo interface {
	Listen(event GizmoEvent, fn func(DragEvent)) CallbackHandle
	Attach(obj *Object)
	Detach(obj *Object)
	Destroy()
}

const defaultHitRadius = 12.0

// PlanarGizmo drags attached objects across the horizontal plane through
// their starting height. Objects are hit-tested in screen space against a
// circle around their projected origin.
type PlanarGizmo struct {
	// HitRadius is the minimum pick radius in pixels. The object's projected
	// bounding radius is used when larger.
	HitRadius float64

	camera  *Camera
	surface *Surface

	attached  []*Object
	listeners [numGizmoEvents]callbackList[DragEvent]
	handles   []ListenerHandle

	dragging   *Object
	dragPlaneZ float64
	dragOffset mgl64.Vec3

	destroyed bool
}

// NewPlanarGizmo registers the gizmo's pointer listeners on surface.
func NewPlanarGizmo(camera *Camera, surface *Surface) *PlanarGizmo {
	g := &PlanarGizmo{
		HitRadius: defaultHitRadius,
		camera:    camera,
		surface:   surface,
	}
	g.handles = append(g.handles,
		surface.On(EventMouseDown, g.onMouseDown),
		surface.On(EventMouseMove, g.onMouseMove),
		surface.On(EventMouseUp, g.onMouseUp),
		surface.On(EventMouseOut, g.onMouseUp),
	)
	return g
}

// Listen implements Gizmo.
func (g *PlanarGizmo) Listen(event GizmoEvent, fn func(DragEvent)) CallbackHandle {
	if event >= numGizmoEvents {
		panic("tether: unknown gizmo event")
	}
	return g.listeners[event].add(fn)
}

// Attach makes obj draggable. Attaching twice is a no-op.
func (g *PlanarGizmo) Attach(obj *Object) {
	for _, o := range g.attached {
		if o == obj {
			return
		}
	}
	g.attached = append(g.attached, obj)
}

// Detach stops obj from being draggable, ending any drag on it.
func (g *PlanarGizmo) Detach(obj *Object) {
	for i, o := range g.attached {
		if o == obj {
			copy(g.attached[i:], g.attached[i+1:])
			g.attached[len(g.attached)-1] = nil
			g.attached = g.attached[:len(g.attached)-1]
			break
		}
	}
	if g.dragging == obj {
		g.dragging = nil
	}
}

// Attached returns the number of draggable objects.
func (g *PlanarGizmo) Attached() int {
	return len(g.attached)
}

// Dragging returns the object being dragged, or nil.
func (g *PlanarGizmo) Dragging() *Object {
	return g.dragging
}

// Destroy removes the gizmo's surface listeners and drops every attached
// object and drag listener.
func (g *PlanarGizmo) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	for _, h := range g.handles {
		h.Remove()
	}
	g.handles = nil
	g.attached = nil
	g.dragging = nil
	for i := range g.listeners {
		g.listeners[i].clear()
	}
}

// hitTest returns the topmost attached object under (sx, sy). Later
// attachments are on top.
func (g *PlanarGizmo) hitTest(sx, sy float64) *Object {
	ppu := g.camera.PixelsPerUnit()
	for i := len(g.attached) - 1; i >= 0; i-- {
		o := g.attached[i]
		if !o.WorldVisible() {
			continue
		}
		r := g.HitRadius
		if b := o.WorldBounds(); !b.IsEmpty() {
			r = math.Max(r, b.BoundingRadius()*ppu)
		}
		px, py := g.camera.WorldToScreen(o.WorldPosition())
		dx, dy := sx-px, sy-py
		if dx*dx+dy*dy <= r*r {
			return o
		}
	}
	return nil
}

// planePoint intersects the pointer ray with the drag plane.
func (g *PlanarGizmo) planePoint(sx, sy float64) (mgl64.Vec3, bool) {
	origin, dir, err := g.camera.ScreenRay(sx, sy)
	if err != nil || math.Abs(dir.Z()) < 1e-9 {
		return mgl64.Vec3{}, false
	}
	t := (g.dragPlaneZ - origin.Z()) / dir.Z()
	return origin.Add(dir.Mul(t)), true
}

func (g *PlanarGizmo) event(o *Object, ev *InputEvent) DragEvent {
	de := DragEvent{Object: o, ScreenX: ev.ClientX, ScreenY: ev.ClientY}
	if tag, ok := o.UserData.(ControlTag); ok {
		de.Control = tag.ControlName
	}
	return de
}

func (g *PlanarGizmo) onMouseDown(ev *InputEvent) {
	if ev.Button != MouseButtonLeft || g.dragging != nil {
		return
	}
	o := g.hitTest(ev.ClientX, ev.ClientY)
	if o == nil {
		return
	}
	g.dragPlaneZ = o.WorldPosition().Z()
	hit, ok := g.planePoint(ev.ClientX, ev.ClientY)
	if !ok {
		return
	}
	g.dragging = o
	g.dragOffset = o.WorldPosition().Sub(hit)
	g.listeners[GizmoDragStart].emit(g.event(o, ev))
}

func (g *PlanarGizmo) onMouseMove(ev *InputEvent) {
	o := g.dragging
	if o == nil {
		return
	}
	hit, ok := g.planePoint(ev.ClientX, ev.ClientY)
	if !ok {
		return
	}
	o.SetWorldPosition(hit.Add(g.dragOffset))
	g.listeners[GizmoDrag].emit(g.event(o, ev))
}

func (g *PlanarGizmo) onMouseUp(ev *InputEvent) {
	o := g.dragging
	if o == nil {
		return
	}
	g.dragging = nil
	g.listeners[GizmoDragStop].emit(g.event(o, ev))
}
