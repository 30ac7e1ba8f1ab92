package ecs

import (
	"github.com/phanxgames/tether"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ControlEventType carries tether.ControlEvent values through a world's
// event queue.
var ControlEventType = events.NewEventType[tether.ControlEvent]()

// MarkerStore publishes marker control events into a donburi world. Events
// queue until ControlEventType.ProcessEvents (or events.ProcessAllEvents)
// runs.
type MarkerStore struct {
	world   donburi.World
	markers map[string]struct{}
}

// NewDonburiStore returns a store forwarding events for the named markers,
// or for every marker when names is empty.
func NewDonburiStore(world donburi.World, names ...string) *MarkerStore {
	s := &MarkerStore{world: world}
	if len(names) > 0 {
		s.markers = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.markers[n] = struct{}{}
		}
	}
	return s
}

// EmitEvent implements tether.EntityStore.
func (s *MarkerStore) EmitEvent(event tether.ControlEvent) {
	if s.markers != nil {
		if _, ok := s.markers[event.MarkerName]; !ok {
			return
		}
	}
	ControlEventType.Publish(s.world, event)
}

// OnControl subscribes fn to events of one kind, such as tether.ControlFeedback.
func OnControl(world donburi.World, kind tether.ControlEventType, fn func(donburi.World, tether.ControlEvent)) {
	ControlEventType.Subscribe(world, func(w donburi.World, e tether.ControlEvent) {
		if e.Type == kind {
			fn(w, e)
		}
	})
}

var _ tether.EntityStore = (*MarkerStore)(nil)
