package tether

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	maxTouches              = 10
	doubleClickFrames       = 18 // ~300ms at 60 TPS
	defaultDevicePixelRatio = 1.0
)

// Touch is one active finger in a touch event, in device pixels.
type Touch struct {
	ID    int     `json:"id"`
	PageX float64 `json:"pageX"`
	PageY float64 `json:"pageY"`
}

// InputEvent is a raw input event dispatched by a Surface. Listeners receive
// a pointer so they can call PreventDefault.
type InputEvent struct {
	Kind      EventKind
	Button    MouseButton
	ClientX   float64
	ClientY   float64
	DeltaY    float64 // wheel: positive scrolls down / away from the user
	Touches   []Touch // touch events: fingers still on the surface
	Modifiers KeyModifiers

	defaultPrevented bool
}

// PreventDefault marks the event as handled so the surface skips its default
// action (context menus, page scrolling).
func (e *InputEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *InputEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// --- Listener registry ---

type surfaceListener struct {
	id uint32
	fn func(*InputEvent)
}

type listenerRegistry struct {
	byKind [numEventKinds][]surfaceListener
	nextID uint32
}

// ListenerHandle allows removing a listener registered with Surface.On.
type ListenerHandle struct {
	id   uint32
	reg  *listenerRegistry
	kind EventKind
}

// Remove unregisters the listener. Removing twice, or removing the zero
// handle, is a no-op.
func (h ListenerHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.byKind[h.kind]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = surfaceListener{}
			h.reg.byKind[h.kind] = s[:len(s)-1]
			return
		}
	}
}

// --- Surface ---

// Surface is the input element navigation and drag controllers listen on. It
// turns ebiten's polled input into DOM-like events, and also accepts
// injected events for scripted input and tests.
type Surface struct {
	// DevicePixelRatio divides touch coordinates before gesture math.
	DevicePixelRatio float64
	// Bounds is the screen rectangle of the surface; the cursor leaving it
	// produces EventMouseOut.
	Bounds Rect

	listeners   listenerRegistry
	injectQueue []InputEvent

	// polling state
	lastX, lastY   float64
	cursorInside   bool
	sinceLastPress int
	touchIDs       []ebiten.TouchID
	prevTouchIDs   []ebiten.TouchID
	prevTouchPos   [maxTouches]Vec2
}

// NewSurface creates a surface covering bounds.
func NewSurface(bounds Rect) *Surface {
	return &Surface{
		DevicePixelRatio: defaultDevicePixelRatio,
		Bounds:           bounds,
		sinceLastPress:   math.MaxInt32,
	}
}

// On registers fn for events of the given kind.
func (s *Surface) On(kind EventKind, fn func(*InputEvent)) ListenerHandle {
	s.listeners.nextID++
	id := s.listeners.nextID
	s.listeners.byKind[kind] = append(s.listeners.byKind[kind], surfaceListener{id: id, fn: fn})
	return ListenerHandle{id: id, reg: &s.listeners, kind: kind}
}

// ListenerCount returns how many listeners are registered for the given
// kinds, or for all kinds when none are given.
func (s *Surface) ListenerCount(kinds ...EventKind) int {
	if len(kinds) == 0 {
		n := 0
		for k := range s.listeners.byKind {
			n += len(s.listeners.byKind[k])
		}
		return n
	}
	n := 0
	for _, k := range kinds {
		n += len(s.listeners.byKind[k])
	}
	return n
}

// Dispatch delivers ev to every listener registered for its kind. Listeners
// added or removed during dispatch take effect from the next event.
func (s *Surface) Dispatch(ev *InputEvent) {
	current := s.listeners.byKind[ev.Kind]
	if len(current) == 0 {
		return
	}
	snapshot := make([]surfaceListener, len(current))
	copy(snapshot, current)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// Poll reads this frame's input and dispatches the resulting events. When
// injected events are queued, one is consumed instead and real input is
// skipped for the frame.
func (s *Surface) Poll() {
	if s.processInjectedInput() {
		return
	}
	mods := readModifiers()
	s.processMouse(mods)
	s.processWheel(mods)
	s.processTouches(mods)
}

var pollButtons = [...]struct {
	eb  ebiten.MouseButton
	btn MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	{ebiten.MouseButtonRight, MouseButtonRight},
}

// processMouse emits down/move/up/out/dblclick/contextmenu for the cursor.
func (s *Surface) processMouse(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	s.sinceLastPress++

	inside := s.Bounds.Width == 0 || s.Bounds.Contains(x, y)
	if s.cursorInside && !inside {
		s.Dispatch(&InputEvent{Kind: EventMouseOut, ClientX: x, ClientY: y, Modifiers: mods})
	}
	s.cursorInside = inside

	for _, b := range pollButtons {
		if !inpututil.IsMouseButtonJustPressed(b.eb) || !inside {
			continue
		}
		s.Dispatch(&InputEvent{Kind: EventMouseDown, Button: b.btn, ClientX: x, ClientY: y, Modifiers: mods})
		if b.btn == MouseButtonRight {
			s.Dispatch(&InputEvent{Kind: EventContextMenu, Button: b.btn, ClientX: x, ClientY: y, Modifiers: mods})
		}
		if b.btn == MouseButtonLeft {
			if s.sinceLastPress <= doubleClickFrames {
				s.Dispatch(&InputEvent{Kind: EventDoubleClick, Button: b.btn, ClientX: x, ClientY: y, Modifiers: mods})
				s.sinceLastPress = math.MaxInt32
			} else {
				s.sinceLastPress = 0
			}
		}
	}

	if x != s.lastX || y != s.lastY {
		s.Dispatch(&InputEvent{Kind: EventMouseMove, ClientX: x, ClientY: y, Modifiers: mods})
		s.lastX, s.lastY = x, y
	}

	for _, b := range pollButtons {
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			s.Dispatch(&InputEvent{Kind: EventMouseUp, Button: b.btn, ClientX: x, ClientY: y, Modifiers: mods})
		}
	}
}

// processWheel emits EventWheel with browser sign convention (positive
// DeltaY scrolls down).
func (s *Surface) processWheel(mods KeyModifiers) {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	s.Dispatch(&InputEvent{Kind: EventWheel, DeltaY: -dy, ClientX: s.lastX, ClientY: s.lastY, Modifiers: mods})
}

// processTouches emits touch start/move/end by diffing active touch IDs
// against the previous frame.
func (s *Surface) processTouches(mods KeyModifiers) {
	s.prevTouchIDs = append(s.prevTouchIDs[:0], s.touchIDs...)
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])
	if len(s.touchIDs) > maxTouches {
		s.touchIDs = s.touchIDs[:maxTouches]
	}

	touches := make([]Touch, len(s.touchIDs))
	for i, id := range s.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		touches[i] = Touch{ID: int(id), PageX: float64(tx), PageY: float64(ty)}
	}

	started := len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
	ended := false
	for _, prev := range s.prevTouchIDs {
		if inpututil.IsTouchJustReleased(prev) {
			ended = true
			break
		}
	}

	switch {
	case started:
		s.Dispatch(&InputEvent{Kind: EventTouchStart, Touches: touches, Modifiers: mods})
	case ended:
		s.Dispatch(&InputEvent{Kind: EventTouchEnd, Touches: touches, Modifiers: mods})
	case len(touches) > 0 && s.touchesMoved(touches):
		s.Dispatch(&InputEvent{Kind: EventTouchMove, Touches: touches, Modifiers: mods})
	}

	for i, t := range touches {
		s.prevTouchPos[i] = Vec2{t.PageX, t.PageY}
	}
}

func (s *Surface) touchesMoved(touches []Touch) bool {
	for i, t := range touches {
		if s.prevTouchPos[i].X != t.PageX || s.prevTouchPos[i].Y != t.PageY {
			return true
		}
	}
	return false
}
