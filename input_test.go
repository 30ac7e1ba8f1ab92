package tether

import (
	"testing"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 5, 40, false},
		{"outside right", 115, 40, false},
		{"outside top", 50, 15, false},
		{"outside bottom", 50, 75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Rect.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestNewSurfaceDefaults(t *testing.T) {
	s := NewSurface(testViewport())
	if s.DevicePixelRatio != 1 {
		t.Errorf("DevicePixelRatio = %v, want 1", s.DevicePixelRatio)
	}
	if s.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestDispatchByKind(t *testing.T) {
	s := NewSurface(testViewport())
	var downs, ups int
	s.On(EventMouseDown, func(*InputEvent) { downs++ })
	s.On(EventMouseDown, func(*InputEvent) { downs++ })
	s.On(EventMouseUp, func(*InputEvent) { ups++ })

	s.Dispatch(&InputEvent{Kind: EventMouseDown})
	if downs != 2 || ups != 0 {
		t.Errorf("downs=%d ups=%d, want 2/0", downs, ups)
	}
	s.Dispatch(&InputEvent{Kind: EventWheel}) // no listeners
}

func TestDispatchOrder(t *testing.T) {
	s := NewSurface(testViewport())
	var order []int
	for i := 0; i < 3; i++ {
		s.On(EventWheel, func(*InputEvent) { order = append(order, i) })
	}
	s.Dispatch(&InputEvent{Kind: EventWheel})
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want registration order", order)
		}
	}
}

func TestListenerHandleRemove(t *testing.T) {
	s := NewSurface(testViewport())
	calls := 0
	h := s.On(EventMouseMove, func(*InputEvent) { calls++ })
	other := s.On(EventMouseMove, func(*InputEvent) {})

	h.Remove()
	s.Dispatch(&InputEvent{Kind: EventMouseMove})
	if calls != 0 {
		t.Error("removed listener still called")
	}
	if got := s.ListenerCount(EventMouseMove); got != 1 {
		t.Errorf("ListenerCount = %d, want 1", got)
	}

	h.Remove() // twice: no-op
	if got := s.ListenerCount(EventMouseMove); got != 1 {
		t.Errorf("second Remove dropped another listener: count %d", got)
	}
	other.Remove()
	ListenerHandle{}.Remove()
	if s.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", s.ListenerCount())
	}
}

func TestRemoveDuringDispatch(t *testing.T) {
	s := NewSurface(testViewport())
	var second int
	var h ListenerHandle
	s.On(EventMouseUp, func(*InputEvent) { h.Remove() })
	h = s.On(EventMouseUp, func(*InputEvent) { second++ })

	// The snapshot still delivers this event to the removed listener.
	s.Dispatch(&InputEvent{Kind: EventMouseUp})
	if second != 1 {
		t.Errorf("second = %d, want 1", second)
	}
	s.Dispatch(&InputEvent{Kind: EventMouseUp})
	if second != 1 {
		t.Errorf("second = %d after removal, want 1", second)
	}
}

func TestAddDuringDispatch(t *testing.T) {
	s := NewSurface(testViewport())
	added := 0
	s.On(EventMouseDown, func(*InputEvent) {
		s.On(EventMouseDown, func(*InputEvent) { added++ })
	})
	s.Dispatch(&InputEvent{Kind: EventMouseDown})
	if added != 0 {
		t.Error("listener added during dispatch should wait for the next event")
	}
	s.Dispatch(&InputEvent{Kind: EventMouseDown})
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestListenerCountByKind(t *testing.T) {
	s := NewSurface(testViewport())
	s.On(EventTouchStart, func(*InputEvent) {})
	s.On(EventTouchMove, func(*InputEvent) {})
	s.On(EventTouchMove, func(*InputEvent) {})

	if got := s.ListenerCount(EventTouchMove); got != 2 {
		t.Errorf("move count = %d, want 2", got)
	}
	if got := s.ListenerCount(EventTouchStart, EventTouchMove); got != 3 {
		t.Errorf("start+move count = %d, want 3", got)
	}
	if got := s.ListenerCount(EventTouchEnd); got != 0 {
		t.Errorf("end count = %d, want 0", got)
	}
}

func TestPreventDefault(t *testing.T) {
	s := NewSurface(testViewport())
	s.On(EventContextMenu, func(ev *InputEvent) { ev.PreventDefault() })

	ev := &InputEvent{Kind: EventContextMenu}
	if ev.DefaultPrevented() {
		t.Fatal("fresh event should not be prevented")
	}
	s.Dispatch(ev)
	if !ev.DefaultPrevented() {
		t.Error("PreventDefault did not stick")
	}
}

func TestInjectedMouseTracksLastPosition(t *testing.T) {
	s := NewSurface(testViewport())
	s.InjectPress(12, 34, MouseButtonLeft)
	s.InjectWheel(1)
	drainInput(s)
	if s.lastX != 12 || s.lastY != 34 {
		t.Errorf("last = (%v,%v), want (12,34)", s.lastX, s.lastY)
	}
}
