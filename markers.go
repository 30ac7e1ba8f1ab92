package tether

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// LiveObject is a scene element fed by a topic subscription.
type LiveObject interface {
	Update(msg InteractiveMarkerUpdate)
	Show()
	Hide()
	Destroy()
	UpdateOptions(opts Options) error
}

// NavigationGate is the camera controller a drag must suspend. *Navigator
// implements it.
type NavigationGate interface {
	SetEnabled(enabled bool)
}

// --- ECS bridge ---

// ControlEventType identifies a marker control event.
type ControlEventType uint8

const (
	ControlDragStart ControlEventType = iota // an operator grabbed a marker
	ControlDrag                              // the grabbed marker moved
	ControlDragStop                          // the marker was released
	ControlFeedback                          // a feedback message was published
)

// ControlEvent carries marker interaction data for the ECS bridge.
type ControlEvent struct {
	Type        ControlEventType
	FrameID     string
	MarkerName  string
	ControlName string
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	// Seq is the feedback sequence number (ControlFeedback only).
	Seq uint32
}

// EntityStore is the interface for optional ECS integration.
type EntityStore interface {
	EmitEvent(event ControlEvent)
}

// --- Controller ---

// InteractiveMarkers synchronizes interactive markers from a marker server
// and publishes the operator's drags back as feedback.
//
// It starts on the snapshot topic held by its TopicManager. The first
// snapshot with markers switches it to the update topic (or ends the
// subscription when none is configured). All methods run on the event loop.
type InteractiveMarkers struct {
	object  *Object
	topics  *TopicManager
	gizmo   Gizmo
	nav     NavigationGate
	options Options

	store    *markerStore
	feedback *feedbackPublisher
	handles  []CallbackHandle
	entities EntityStore

	destroyed bool
}

var _ LiveObject = (*InteractiveMarkers)(nil)

// NewInteractiveMarkers creates the controller and subscribes to the
// snapshot topic. nav may be nil when no camera controller is in use.
func NewInteractiveMarkers(topics *TopicManager, gizmo Gizmo, nav NavigationGate, opts Options) (*InteractiveMarkers, error) {
	return newInteractiveMarkers(topics, gizmo, nav, opts, nil)
}

func newInteractiveMarkers(topics *TopicManager, gizmo Gizmo, nav NavigationGate, opts Options, now func() time.Time) (*InteractiveMarkers, error) {
	if topics == nil || gizmo == nil {
		panic("tether: NewInteractiveMarkers requires a topic manager and a gizmo")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := &InteractiveMarkers{
		object: NewObject("interactive-markers"),
		topics: topics,
		gizmo:  gizmo,
		nav:    nav,
	}
	m.store = newMarkerStore(m.object, gizmo, !opts.Hidden)
	m.feedback = newFeedbackPublisher(topics.Feedback, now)
	m.feedback.onPublish = m.emitFeedback

	m.handles = append(m.handles,
		gizmo.Listen(GizmoDragStart, m.onDragStart),
		gizmo.Listen(GizmoDrag, m.onDrag),
		gizmo.Listen(GizmoDragStop, m.onDragStop),
	)

	if err := m.UpdateOptions(opts); err != nil {
		return nil, err
	}
	if err := topics.Start(m.HandleMessage); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

// Object returns the group holding every marker object. Add it to the
// scene to draw markers.
func (m *InteractiveMarkers) Object() *Object {
	return m.object
}

// Options returns the current options.
func (m *InteractiveMarkers) Options() Options {
	return m.options
}

// ClientID returns the session's feedback client id.
func (m *InteractiveMarkers) ClientID() string {
	return m.feedback.clientID
}

// SetEntityStore sets the optional ECS bridge.
func (m *InteractiveMarkers) SetEntityStore(store EntityStore) {
	m.entities = store
}

// HandleMessage decodes a snapshot or update payload and applies it.
// Malformed payloads are logged and dropped.
func (m *InteractiveMarkers) HandleMessage(payload []byte) {
	msg, err := DecodeInteractiveMarkerUpdate(payload)
	if err != nil {
		logger.Warn().Err(err).Str("topic", m.topics.Current().Name).Msg("malformed interactive marker message")
		return
	}
	m.Update(msg)
}

// Update applies a snapshot or update message. New markers are added (a
// marker arriving again under a known name replaces the old one), pose
// entries move known markers, and erase entries are not applied.
func (m *InteractiveMarkers) Update(msg InteractiveMarkerUpdate) {
	if m.destroyed {
		return
	}
	if len(msg.Markers) > 0 {
		for _, im := range msg.Markers {
			m.store.upsert(im)
		}
		logger.Debug().Int("count", len(msg.Markers)).Msg("markers received")
		m.topics.SnapshotReceived()
	}

	for _, p := range msg.Poses {
		if !m.store.updatePose(p) {
			logger.Debug().Str("marker", p.Name).Msg("pose for unknown marker")
		}
	}

	// TODO: remove erased markers from the store and gizmo once a server
	// sending erases is available to test against.
	if len(msg.Erases) > 0 {
		logger.Debug().Strs("erases", msg.Erases).Msg("marker erase not applied")
	}
}

// Show makes markers visible and draggable.
func (m *InteractiveMarkers) Show() {
	m.options.Hidden = false
	m.store.setVisible(true)
}

// Hide hides markers. Hidden markers cannot be picked.
func (m *InteractiveMarkers) Hide() {
	m.options.Hidden = true
	m.store.setVisible(false)
}

// UpdateOptions reconfigures topics and visibility.
func (m *InteractiveMarkers) UpdateOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if m.destroyed {
		return fmt.Errorf("tether: UpdateOptions on destroyed InteractiveMarkers")
	}
	opts = opts.normalized()
	m.topics.Configure(opts)
	m.options = opts
	m.store.setVisible(!opts.Hidden)
	return nil
}

// Tick fires a due feedback publish. Call it once per frame.
func (m *InteractiveMarkers) Tick() {
	m.feedback.debounced.Tick()
}

// Reset removes every marker from the scene and the gizmo. Subscriptions are
// kept.
func (m *InteractiveMarkers) Reset() {
	m.feedback.debounced.Cancel()
	m.store.reset()
}

// Marker returns the stored marker by name.
func (m *InteractiveMarkers) Marker(name string) (InteractiveMarker, bool) {
	e, ok := m.store.get(name)
	if !ok {
		return InteractiveMarker{}, false
	}
	return e.marker, true
}

// MarkerObject returns the scene object built for a marker.
func (m *InteractiveMarkers) MarkerObject(name string) (*Object, bool) {
	e, ok := m.store.get(name)
	if !ok {
		return nil, false
	}
	return e.object, true
}

// MarkerNames returns stored marker names in first-arrival order.
func (m *InteractiveMarkers) MarkerNames() []string {
	return m.store.names()
}

// Len returns the number of stored markers.
func (m *InteractiveMarkers) Len() int {
	return m.store.len()
}

// Destroy unsubscribes from every topic, cancels pending feedback, releases
// the gizmo and clears markers. Navigation is re-enabled in case a drag was
// in progress.
func (m *InteractiveMarkers) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.topics.Close()
	m.feedback.debounced.Cancel()
	for _, h := range m.handles {
		h.Remove()
	}
	m.handles = nil
	m.store.reset()
	m.gizmo.Destroy()
	if m.nav != nil {
		m.nav.SetEnabled(true)
	}
	m.object.Dispose()
	logger.Debug().Msg("interactive markers destroyed")
}

// --- Drag handling ---

func (m *InteractiveMarkers) onDragStart(ev DragEvent) {
	if m.nav != nil {
		m.nav.SetEnabled(false)
	}
	m.emitDrag(ControlDragStart, ev)
}

func (m *InteractiveMarkers) onDrag(ev DragEvent) {
	m.feedback.debounced.Call(ev)
	m.emitDrag(ControlDrag, ev)
}

func (m *InteractiveMarkers) onDragStop(ev DragEvent) {
	if m.nav != nil {
		m.nav.SetEnabled(true)
	}
	m.emitDrag(ControlDragStop, ev)
}

func (m *InteractiveMarkers) emitDrag(t ControlEventType, ev DragEvent) {
	if m.entities == nil || ev.Object == nil {
		return
	}
	ce := ControlEvent{Type: t, ControlName: ev.Control}
	if tag, ok := ev.Object.UserData.(ControlTag); ok {
		ce.FrameID = tag.FrameID
		ce.MarkerName = tag.MarkerName
		if ce.ControlName == "" {
			ce.ControlName = tag.ControlName
		}
	}
	ce.Position, ce.Orientation, _ = decomposeMatrix(ev.Object.WorldMatrix())
	m.entities.EmitEvent(ce)
}

func (m *InteractiveMarkers) emitFeedback(msg FeedbackMessage) {
	if m.entities == nil {
		return
	}
	m.entities.EmitEvent(ControlEvent{
		Type:        ControlFeedback,
		FrameID:     msg.FrameID,
		MarkerName:  msg.MarkerName,
		ControlName: msg.ControlName,
		Position:    msg.Position,
		Orientation: msg.Orientation,
		Seq:         msg.Seq,
	})
}
