package tether

import (
	"github.com/go-gl/mathgl/mgl64"
)

// GestureOp is one navigation operation derived from an input event.
type GestureOp struct {
	Mode  GestureMode
	Delta mgl64.Vec3
}

// gestureState classifies raw pointer, wheel and touch events into
// GestureOps. It holds only transient state; the owner decides whether
// events reach it at all.
type gestureState struct {
	mode       GestureMode
	pointerOld Vec2

	touches      [2]mgl64.Vec3
	prevTouches  [2]mgl64.Vec3
	prevDistance float64
	hasPrevDist  bool
}

func newGestureState() gestureState {
	return gestureState{mode: GestureNone}
}

// buttonMode maps a mouse button to the gesture it drives.
func buttonMode(b MouseButton) GestureMode {
	switch b {
	case MouseButtonLeft:
		return GestureRotate
	case MouseButtonMiddle:
		return GestureZoom
	case MouseButtonRight:
		return GesturePan
	default:
		return GestureNone
	}
}

// mouseDown starts a gesture for the pressed button.
func (g *gestureState) mouseDown(ev *InputEvent) {
	g.mode = buttonMode(ev.Button)
	g.pointerOld = Vec2{ev.ClientX, ev.ClientY}
}

// mouseMove emits the op for the active mode from the cursor displacement.
func (g *gestureState) mouseMove(ev *InputEvent, emit func(GestureOp)) {
	dx := ev.ClientX - g.pointerOld.X
	dy := ev.ClientY - g.pointerOld.Y

	switch g.mode {
	case GestureRotate:
		emit(GestureOp{Mode: GestureRotate, Delta: mgl64.Vec3{-dx, -dy, 0}})
	case GestureZoom:
		emit(GestureOp{Mode: GestureZoom, Delta: mgl64.Vec3{0, 0, dy}})
	case GesturePan:
		emit(GestureOp{Mode: GesturePan, Delta: mgl64.Vec3{-dx, dy, 0}})
	}

	g.pointerOld = Vec2{ev.ClientX, ev.ClientY}
}

// release ends any mouse gesture.
func (g *gestureState) release() {
	g.mode = GestureNone
}

// wheelOp converts a wheel event into a unit zoom step. Scrolling down
// (positive DeltaY) zooms out.
func wheelOp(ev *InputEvent) (GestureOp, bool) {
	if ev.DeltaY == 0 {
		return GestureOp{}, false
	}
	dz := -1.0
	if ev.DeltaY > 0 {
		dz = 1
	}
	return GestureOp{Mode: GestureZoom, Delta: mgl64.Vec3{0, 0, dz}}, true
}

// touchPoint returns a touch position normalized by the device pixel ratio.
func touchPoint(t Touch, dpr float64) mgl64.Vec3 {
	if dpr <= 0 {
		dpr = 1
	}
	return mgl64.Vec3{t.PageX / dpr, t.PageY / dpr, 0}
}

// touchStart seeds touch tracking for one or two fingers.
func (g *gestureState) touchStart(ev *InputEvent, dpr float64) {
	switch len(ev.Touches) {
	case 1:
		p := touchPoint(ev.Touches[0], dpr)
		g.touches[0], g.touches[1] = p, p
		g.mode = GestureRotate
	case 2:
		g.touches[0] = touchPoint(ev.Touches[0], dpr)
		g.touches[1] = touchPoint(ev.Touches[1], dpr)
		g.prevDistance = g.touches[0].Sub(g.touches[1]).Len()
		g.hasPrevDist = true
		g.mode = GesturePan
	default:
		return
	}
	g.prevTouches = g.touches
}

// touchMove emits a rotate for one finger, or a zoom followed by a pan for
// two. Each finger is matched to its nearest previous position, so fingers
// swapping order between frames do not produce phantom motion.
func (g *gestureState) touchMove(ev *InputEvent, dpr float64, emit func(GestureOp)) {
	switch len(ev.Touches) {
	case 1:
		p := touchPoint(ev.Touches[0], dpr)
		g.touches[0], g.touches[1] = p, p
		d := p.Sub(g.closestPrev(p)).Mul(-1)
		emit(GestureOp{Mode: GestureRotate, Delta: d})

	case 2:
		g.touches[0] = touchPoint(ev.Touches[0], dpr)
		g.touches[1] = touchPoint(ev.Touches[1], dpr)
		distance := g.touches[0].Sub(g.touches[1]).Len()
		if g.hasPrevDist {
			emit(GestureOp{Mode: GestureZoom, Delta: mgl64.Vec3{0, 0, g.prevDistance - distance}})
		}
		g.prevDistance = distance
		g.hasPrevDist = true

		offset0 := g.touches[0].Sub(g.closestPrev(g.touches[0]))
		offset1 := g.touches[1].Sub(g.closestPrev(g.touches[1]))
		offset0[0] = -offset0[0]
		offset1[0] = -offset1[0]
		emit(GestureOp{Mode: GesturePan, Delta: offset0.Add(offset1)})

	default:
		return
	}
	g.prevTouches = g.touches
}

// touchEnd re-seeds tracking from the remaining fingers, or resets when none
// are left.
func (g *gestureState) touchEnd(ev *InputEvent, dpr float64) {
	g.hasPrevDist = false
	if len(ev.Touches) == 0 {
		g.mode = GestureNone
		return
	}
	g.touchStart(ev, dpr)
}

// closestPrev returns the previous touch nearest to p.
func (g *gestureState) closestPrev(p mgl64.Vec3) mgl64.Vec3 {
	closest := g.prevTouches[0]
	if g.prevTouches[1].Sub(p).Len() < closest.Sub(p).Len() {
		closest = g.prevTouches[1]
	}
	return closest
}
