package tether

// InjectPress queues a mouse press at the given screen coordinates. The
// event is dispatched on the next Poll.
func (s *Surface) InjectPress(x, y float64, button MouseButton) {
	s.injectQueue = append(s.injectQueue, InputEvent{
		Kind: EventMouseDown, Button: button, ClientX: x, ClientY: y,
	})
}

// InjectMove queues a cursor move to the given screen coordinates. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (s *Surface) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, InputEvent{
		Kind: EventMouseMove, ClientX: x, ClientY: y,
	})
}

// InjectRelease queues a mouse release at the given screen coordinates.
func (s *Surface) InjectRelease(x, y float64, button MouseButton) {
	s.injectQueue = append(s.injectQueue, InputEvent{
		Kind: EventMouseUp, Button: button, ClientX: x, ClientY: y,
	})
}

// InjectWheel queues a wheel event. Positive deltaY scrolls down.
func (s *Surface) InjectWheel(deltaY float64) {
	s.injectQueue = append(s.injectQueue, InputEvent{Kind: EventWheel, DeltaY: deltaY})
}

// InjectTouches queues a touch event of the given kind with the fingers
// currently on the surface.
func (s *Surface) InjectTouches(kind EventKind, touches ...Touch) {
	cp := make([]Touch, len(touches))
	copy(cp, touches)
	s.injectQueue = append(s.injectQueue, InputEvent{Kind: kind, Touches: cp})
}

// InjectDrag queues a full drag sequence with the given button: press at
// (fromX, fromY), moves linearly interpolated over `moves` frames ending at
// (toX, toY), and a release there. The sequence consumes moves+2 frames.
// Minimum moves is 1.
func (s *Surface) InjectDrag(fromX, fromY, toX, toY float64, moves int, button MouseButton) {
	if moves < 1 {
		moves = 1
	}
	s.InjectPress(fromX, fromY, button)
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY, button)
}

// Pending reports how many injected events are still queued.
func (s *Surface) Pending() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and dispatches
// it. Returns true if an event was consumed (real input should be skipped).
func (s *Surface) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.Kind == EventMouseDown || evt.Kind == EventMouseMove || evt.Kind == EventMouseUp {
		s.lastX, s.lastY = evt.ClientX, evt.ClientY
	}
	s.Dispatch(&evt)
	if evt.Kind == EventMouseDown && evt.Button == MouseButtonRight {
		menu := InputEvent{Kind: EventContextMenu, Button: evt.Button, ClientX: evt.ClientX, ClientY: evt.ClientY}
		s.Dispatch(&menu)
	}
	return true
}
