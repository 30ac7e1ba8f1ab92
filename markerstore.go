package tether

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	defaultLineWidth   = 5.0
	defaultMarkerScale = 1.0
)

var defaultLineColor = Color{R: 1, G: 1, B: 1, A: 1}

// markerEntry is the store's record for one interactive marker.
type markerEntry struct {
	marker InteractiveMarker
	object *Object
	tag    ControlTag
	// draggable is true when the object is attached to the gizmo.
	draggable bool
}

// markerStore keeps the interactive markers received from the server, keyed
// by name in arrival order, and the scene objects built for them.
type markerStore struct {
	root  *Object
	gizmo Gizmo

	entries map[string]*markerEntry
	order   []string
	visible bool
}

func newMarkerStore(root *Object, gizmo Gizmo, visible bool) *markerStore {
	return &markerStore{
		root:    root,
		gizmo:   gizmo,
		entries: make(map[string]*markerEntry),
		visible: visible,
	}
}

// upsert stores m, replacing any marker with the same name and its objects.
func (s *markerStore) upsert(m InteractiveMarker) *markerEntry {
	if old, ok := s.entries[m.Name]; ok {
		s.detach(old)
	} else {
		s.order = append(s.order, m.Name)
	}

	e := &markerEntry{
		marker: m,
		object: buildMarkerObject(m),
		tag:    ControlTag{FrameID: m.FrameID(), MarkerName: m.Name},
	}
	e.object.Visible = s.visible
	for _, c := range m.Controls {
		if c.Draggable() {
			e.tag.ControlName = c.Name
			e.draggable = true
			break
		}
	}
	e.object.UserData = e.tag
	s.root.Add(e.object)
	if e.draggable && s.gizmo != nil {
		s.gizmo.Attach(e.object)
	}
	s.entries[m.Name] = e
	return e
}

// updatePose moves a known marker without touching its controls. Reports
// false for unknown names.
func (s *markerStore) updatePose(p InteractiveMarkerPose) bool {
	e, ok := s.entries[p.Name]
	if !ok {
		return false
	}
	e.marker.Pose = p.Pose
	if p.Header.FrameID != "" {
		e.marker.Header.FrameID = p.Header.FrameID
		e.tag.FrameID = p.Header.FrameID
		e.object.UserData = e.tag
	}
	e.object.SetPose(p.Pose)
	return true
}

func (s *markerStore) setVisible(visible bool) {
	s.visible = visible
	for _, name := range s.order {
		s.entries[name].object.Visible = visible
	}
}

func (s *markerStore) get(name string) (*markerEntry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

func (s *markerStore) len() int {
	return len(s.order)
}

// names returns marker names in first-arrival order.
func (s *markerStore) names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *markerStore) detach(e *markerEntry) {
	if e.draggable && s.gizmo != nil {
		s.gizmo.Detach(e.object)
	}
	e.object.Dispose()
}

// reset removes every marker and its objects.
func (s *markerStore) reset() {
	for _, name := range s.order {
		s.detach(s.entries[name])
	}
	clear(s.entries)
	s.order = s.order[:0]
}

// buildMarkerObject creates the object tree for an interactive marker: a
// group at the marker pose, one child per control oriented by the control,
// and one shape object per visual marker.
func buildMarkerObject(m InteractiveMarker) *Object {
	group := NewObject(m.Name)
	group.SetPose(m.Pose)

	for _, c := range m.Controls {
		ctrl := NewObject(c.Name)
		ctrl.Quaternion = c.Orientation.Quat()
		for i, vm := range c.Markers {
			if obj := buildVisual(vm); obj != nil {
				ctrl.Add(obj)
			} else {
				logger.Debug().Str("marker", m.Name).Int("index", i).Int32("type", vm.Type).
					Msg("unsupported visual marker type")
			}
		}
		// Draggable controls without visuals still need something to grab.
		if ctrl.NumChildren() == 0 && c.Draggable() {
			scale := m.Scale
			if scale <= 0 {
				scale = defaultMarkerScale
			}
			handle := NewShapeObject(c.Name+"/handle", &SphereShape{Radius: 0.5, Color: Color{R: 1, G: 0.8, A: 1}})
			handle.Scale = mgl64.Vec3{scale, scale, scale}
			ctrl.Add(handle)
		}
		group.Add(ctrl)
	}
	return group
}

func markerColor(c ColorRGBA, fallback Color) Color {
	if c.A == 0 && c.R == 0 && c.G == 0 && c.B == 0 {
		return fallback
	}
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// buildVisual creates the primitive for a visual marker. Solid shapes become
// unit-diameter spheres scaled by the marker scale; arrows and lines become
// line shapes. Returns nil for unsupported types.
func buildVisual(vm Marker) *Object {
	switch vm.Type {
	case MarkerSphere, MarkerCube, MarkerCylinder:
		obj := NewShapeObject("sphere", &SphereShape{
			Radius: 0.5,
			Color:  markerColor(vm.Color, Color{R: 0.5, G: 0.5, B: 0.5, A: 1}),
		})
		obj.SetPose(vm.Pose)
		scale := vm.Scale.Vec3()
		if scale == (mgl64.Vec3{}) {
			scale = mgl64.Vec3{1, 1, 1}
		}
		obj.Scale = scale
		return obj

	case MarkerArrow:
		points := []mgl64.Vec3{{}, {vm.Scale.X, 0, 0}}
		if len(vm.Points) >= 2 {
			points = []mgl64.Vec3{vm.Points[0].Vec3(), vm.Points[1].Vec3()}
		}
		return lineObject("arrow", vm, points, false)

	case MarkerLineStrip, MarkerLineList:
		points := make([]mgl64.Vec3, len(vm.Points))
		for i, p := range vm.Points {
			points[i] = p.Vec3()
		}
		return lineObject("line", vm, points, vm.Type == MarkerLineList)
	}
	return nil
}

func lineObject(name string, vm Marker, points []mgl64.Vec3, segments bool) *Object {
	line := &LineShape{
		Segments: segments,
		Width:    defaultLineWidth,
		Color:    markerColor(vm.Color, defaultLineColor),
	}
	line.SetPoints(points)
	obj := NewShapeObject(name, line)
	obj.SetPose(vm.Pose)
	return obj
}
