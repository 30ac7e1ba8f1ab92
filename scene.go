package tether

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Drainer is a transport whose inbound messages are delivered on the event
// loop. *RosbridgeClient implements it.
type Drainer interface {
	Drain() int
}

// Viewer is the top-level object that owns the 3D scene, its camera and
// navigation, the input surface and the live marker controllers.
type Viewer struct {
	// ClearColor fills the screen before drawing. Zero leaves it untouched.
	ClearColor Color
	// ShowFPS draws an FPS/TPS overlay in the top-left corner.
	ShowFPS bool
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	root      *Object
	camera    *Camera
	surface   *Surface
	navigator *Navigator

	markers    []*InteractiveMarkers
	transports []Drainer
	store      EntityStore

	updateFunc      func() error
	testRunner      *TestRunner
	screenshotQueue []string
	debug           bool
}

// NewViewer creates a viewer for a width x height surface with a camera
// looking at the origin and navigation enabled.
func NewViewer(width, height int) *Viewer {
	bounds := Rect{Width: float64(width), Height: float64(height)}
	camera := NewCamera(bounds)
	surface := NewSurface(bounds)
	return &Viewer{
		ClearColor:    Color{R: 0.098, G: 0.098, B: 0.137, A: 1},
		ScreenshotDir: "screenshots",
		root:          NewObject("root"),
		camera:        camera,
		surface:       surface,
		navigator:     NewNavigator(camera, surface, NavigatorConfig{}),
	}
}

// Root returns the scene's root object.
func (v *Viewer) Root() *Object {
	return v.root
}

// Camera returns the viewer camera.
func (v *Viewer) Camera() *Camera {
	return v.camera
}

// Surface returns the input surface.
func (v *Viewer) Surface() *Surface {
	return v.surface
}

// Navigator returns the camera navigator.
func (v *Viewer) Navigator() *Navigator {
	return v.navigator
}

// AddTransport registers a transport to drain once per frame.
func (v *Viewer) AddTransport(t Drainer) {
	v.transports = append(v.transports, t)
}

// AddInteractiveMarkers subscribes to an interactive marker snapshot topic
// on transport and adds the markers to the scene. Each controller gets its
// own gizmo; drags suspend the viewer's navigator.
func (v *Viewer) AddInteractiveMarkers(transport Transport, snapshot TopicName, opts Options) (*InteractiveMarkers, error) {
	topics := NewTopicManager(transport, snapshot, opts.QueueSize)
	gizmo := NewPlanarGizmo(v.camera, v.surface)
	m, err := NewInteractiveMarkers(topics, gizmo, v.navigator, opts)
	if err != nil {
		gizmo.Destroy()
		return nil, err
	}
	m.SetEntityStore(v.store)
	v.root.Add(m.Object())
	v.markers = append(v.markers, m)
	return m, nil
}

// RemoveInteractiveMarkers destroys m and removes it from the viewer.
func (v *Viewer) RemoveInteractiveMarkers(m *InteractiveMarkers) {
	for i, other := range v.markers {
		if other == m {
			v.markers = append(v.markers[:i], v.markers[i+1:]...)
			break
		}
	}
	m.Destroy()
}

// SetEntityStore sets the optional ECS bridge on every marker controller,
// current and future.
func (v *Viewer) SetEntityStore(store EntityStore) {
	v.store = store
	for _, m := range v.markers {
		m.SetEntityStore(store)
	}
}

// SetUpdateFunc sets a callback run at the end of every Update. A non-nil
// error stops Run.
func (v *Viewer) SetUpdateFunc(fn func() error) {
	v.updateFunc = fn
}

// SetDebugMode enables or disables debug mode. When enabled the package
// logger drops to debug level and per-frame draw timing is logged.
func (v *Viewer) SetDebugMode(enabled bool) {
	v.debug = enabled
	setDebugLogging(enabled)
}

// Update runs one tick of the event loop: scripted input, input polling,
// inbound messages, due feedback and camera animation.
func (v *Viewer) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	return v.update(dt)
}

func (v *Viewer) update(dt float32) error {
	if v.testRunner != nil {
		v.testRunner.step(v)
	}
	v.surface.Poll()
	for _, t := range v.transports {
		t.Drain()
	}
	for _, m := range v.markers {
		m.Tick()
	}
	v.navigator.Update(dt)
	if v.updateFunc != nil {
		return v.updateFunc()
	}
	return nil
}

// Draw renders the scene through the camera.
func (v *Viewer) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if v.debug {
		t0 = time.Now()
	}

	if v.ClearColor != (Color{}) {
		screen.Fill(v.ClearColor.toRGBA())
	}
	drawObject(screen, v.camera, v.root, mgl64.Ident4())
	v.camera.consumeDirty()

	if v.ShowFPS {
		drawFPS(screen)
	}
	if v.debug {
		logger.Debug().Dur("draw", time.Since(t0)).Msg("frame")
	}
	v.flushScreenshots(screen)
}

// Layout resizes the camera viewport and input surface to the outside size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	bounds := Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	if bounds != v.camera.Viewport {
		v.camera.Viewport = bounds
		v.camera.UpdateProjectionMatrix()
		v.surface.Bounds = bounds
	}
	return outsideWidth, outsideHeight
}

// Destroy tears down every marker controller and the navigator.
func (v *Viewer) Destroy() {
	for _, m := range v.markers {
		m.Destroy()
	}
	v.markers = nil
	v.navigator.Dispose()
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Run opens a window and runs v as the game loop until the window closes or
// the update callback returns an error.
func Run(v *Viewer, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	v.ShowFPS = cfg.ShowFPS
	return ebiten.RunGame(v)
}
