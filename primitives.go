package tether

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Shape is a primitive attached to an Object. Shapes are stateless factories
// for geometry: they report local bounds and draw themselves flat through a
// camera.
type Shape interface {
	LocalBounds() Box3
	draw(dst *ebiten.Image, cam *Camera, world mgl64.Mat4)
}

// SphereShape is a sphere centered on the object origin. Radius is in local
// units, so object scale stretches it.
type SphereShape struct {
	Radius float64
	Color  Color
}

// LocalBounds returns the cube enclosing the sphere.
func (s *SphereShape) LocalBounds() Box3 {
	r := s.Radius
	return Box3{Min: mgl64.Vec3{-r, -r, -r}, Max: mgl64.Vec3{r, r, r}}
}

func (s *SphereShape) draw(dst *ebiten.Image, cam *Camera, world mgl64.Mat4) {
	center := world.Col(3).Vec3()
	_, _, scale := decomposeMatrix(world)
	r := s.Radius * maxAbs(scale) * cam.PixelsPerUnit()
	if r < 1 {
		r = 1
	}
	sx, sy := cam.WorldToScreen(center)
	vector.DrawFilledCircle(dst, float32(sx), float32(sy), float32(r), s.Color.toRGBA(), true)
}

// LineShape is a polyline through Points (local units). When Segments is
// true, points are consumed pairwise as disjoint segments (line list);
// otherwise they form a strip.
type LineShape struct {
	Points   []mgl64.Vec3
	Segments bool
	Width    float64
	Color    Color
}

// LocalBounds returns the box enclosing every point.
func (l *LineShape) LocalBounds() Box3 {
	box := emptyBox()
	for _, p := range l.Points {
		box.expandByPoint(p)
	}
	return box
}

// SetPoints replaces the line's points.
func (l *LineShape) SetPoints(points []mgl64.Vec3) {
	l.Points = append(l.Points[:0], points...)
}

func (l *LineShape) draw(dst *ebiten.Image, cam *Camera, world mgl64.Mat4) {
	width := l.Width
	if width <= 0 {
		width = 2
	}
	step := 1
	if l.Segments {
		step = 2
	}
	clr := l.Color.toRGBA()
	for i := 0; i+1 < len(l.Points); i += step {
		x0, y0 := cam.WorldToScreen(transformPoint(world, l.Points[i]))
		x1, y1 := cam.WorldToScreen(transformPoint(world, l.Points[i+1]))
		vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), clr, true)
	}
}

func maxAbs(v mgl64.Vec3) float64 {
	m := 0.0
	for _, c := range v {
		if c < 0 {
			c = -c
		}
		if c > m {
			m = c
		}
	}
	return m
}

// drawObject draws o's subtree through cam, skipping hidden branches.
func drawObject(dst *ebiten.Image, cam *Camera, o *Object, parentWorld mgl64.Mat4) {
	if !o.Visible {
		return
	}
	world := parentWorld.Mul4(o.Matrix())
	if o.Shape != nil {
		o.Shape.draw(dst, cam, world)
	}
	for _, child := range o.children {
		drawObject(dst, cam, child, world)
	}
}
