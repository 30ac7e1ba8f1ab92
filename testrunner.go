package tether

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Button string  `json:"button,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	// Phase is "start", "move" or "end" for touch steps.
	Phase   string  `json:"phase,omitempty"`
	Touches []Touch `json:"touches,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

var scriptButtons = map[string]MouseButton{
	"":       MouseButtonLeft,
	"left":   MouseButtonLeft,
	"middle": MouseButtonMiddle,
	"right":  MouseButtonRight,
}

var scriptTouchPhases = map[string]EventKind{
	"start": EventTouchStart,
	"move":  EventTouchMove,
	"end":   EventTouchEnd,
}

// TestRunner sequences injected pointer, wheel and touch events and
// screenshots across frames. Attach to a Viewer via SetTestRunner.
//
// Supported actions: press, move, release, drag, wheel, touch, wait,
// screenshot.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func (st testStep) validate() error {
	switch st.Action {
	case "press", "release", "drag":
		if _, ok := scriptButtons[st.Button]; !ok {
			return fmt.Errorf("unknown button %q", st.Button)
		}
	case "touch":
		if _, ok := scriptTouchPhases[st.Phase]; !ok {
			return fmt.Errorf("unknown touch phase %q", st.Phase)
		}
	case "move", "wheel", "wait", "screenshot":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// SetTestRunner attaches a runner. Its step runs at the start of every
// Update, before input is polled.
func (v *Viewer) SetTestRunner(runner *TestRunner) {
	v.testRunner = runner
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(v *Viewer) {
	if r.done {
		return
	}
	s := v.surface
	// Injected events drain one per frame before the next step runs.
	if s.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		s.InjectPress(st.X, st.Y, scriptButtons[st.Button])
	case "move":
		s.InjectMove(st.X, st.Y)
	case "release":
		s.InjectRelease(st.X, st.Y, scriptButtons[st.Button])
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames, scriptButtons[st.Button])
	case "wheel":
		s.InjectWheel(st.DeltaY)
	case "touch":
		s.InjectTouches(scriptTouchPhases[st.Phase], st.Touches...)
	case "screenshot":
		v.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.Pending() == 0 {
		r.done = true
	}
}
