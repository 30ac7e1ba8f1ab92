package tether

import (
	"github.com/go-gl/mathgl/mgl64"
)

// objectIDCounter is a plain counter (no atomic — tether runs on one event loop).
var objectIDCounter uint32

func nextObjectID() uint32 {
	objectIDCounter++
	return objectIDCounter
}

// Object is a node in the 3D scene graph. Markers, their controls and
// primitive shapes are all Objects; children inherit their parent's world
// transform.
type Object struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Object
	children []*Object

	// Transform (local)
	Position   mgl64.Vec3
	Quaternion mgl64.Quat
	Scale      mgl64.Vec3

	// Visible hides this object and its subtree from drawing and hit testing.
	Visible bool

	// Shape is the optional primitive drawn for this object. Its local
	// bounds contribute to bounding-box computations.
	Shape Shape

	// UserData carries caller metadata. Draggable marker objects store a
	// ControlTag here.
	UserData any

	disposed bool
}

// NewObject creates an empty group object.
func NewObject(name string) *Object {
	return &Object{
		ID:         nextObjectID(),
		Name:       name,
		Quaternion: mgl64.QuatIdent(),
		Scale:      mgl64.Vec3{1, 1, 1},
		Visible:    true,
	}
}

// NewShapeObject creates an object that draws the given primitive.
func NewShapeObject(name string, shape Shape) *Object {
	o := NewObject(name)
	o.Shape = shape
	return o
}

// --- Tree manipulation ---

// Add appends child to this object's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this object (cycle).
func (o *Object) Add(child *Object) {
	if child == nil {
		panic("tether: cannot add nil child")
	}
	if isAncestor(child, o) {
		panic("tether: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = o
	o.children = append(o.children, child)
}

// Remove detaches child from this object.
// Panics if child.Parent != o.
func (o *Object) Remove(child *Object) {
	if child.Parent != o {
		panic("tether: child's parent is not this object")
	}
	o.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this object from its parent.
// No-op if this object has no parent.
func (o *Object) RemoveFromParent() {
	if o.Parent == nil {
		return
	}
	o.Parent.Remove(o)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (o *Object) Children() []*Object {
	return o.children
}

// NumChildren returns the number of children.
func (o *Object) NumChildren() int {
	return len(o.children)
}

// Traverse calls fn for o and every descendant in depth-first order.
func (o *Object) Traverse(fn func(*Object)) {
	fn(o)
	for _, child := range o.children {
		child.Traverse(fn)
	}
}

// Dispose removes this object from its parent and marks the subtree as
// disposed.
func (o *Object) Dispose() {
	if o.disposed {
		return
	}
	o.RemoveFromParent()
	o.dispose()
}

func (o *Object) dispose() {
	o.disposed = true
	for _, child := range o.children {
		child.Parent = nil
		child.dispose()
	}
	o.children = nil
	o.Shape = nil
	o.UserData = nil
}

// IsDisposed returns true if this object has been disposed.
func (o *Object) IsDisposed() bool {
	return o.disposed
}

// --- Transforms ---

// SetPose sets the local position and orientation.
func (o *Object) SetPose(p Pose) {
	o.Position = p.Position.Vec3()
	o.Quaternion = p.Orientation.Quat()
}

// Matrix returns the local transform matrix.
func (o *Object) Matrix() mgl64.Mat4 {
	return composeMatrix(o.Position, o.Quaternion, o.Scale)
}

// WorldMatrix returns the transform from this object's local space to world
// space.
func (o *Object) WorldMatrix() mgl64.Mat4 {
	m := o.Matrix()
	for p := o.Parent; p != nil; p = p.Parent {
		m = p.Matrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the object's origin in world space.
func (o *Object) WorldPosition() mgl64.Vec3 {
	return o.WorldMatrix().Col(3).Vec3()
}

// SetWorldPosition moves the object so its origin lands on p in world space.
func (o *Object) SetWorldPosition(p mgl64.Vec3) {
	if o.Parent == nil {
		o.Position = p
		return
	}
	inv := o.Parent.WorldMatrix().Inv()
	o.Position = transformPoint(inv, p)
}

// WorldVisible reports whether o and all its ancestors are visible.
func (o *Object) WorldVisible() bool {
	for p := o; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// WorldBounds returns the world-space box enclosing every shape in the
// subtree. The box is empty when no object in the subtree has a shape.
func (o *Object) WorldBounds() Box3 {
	box := emptyBox()
	o.expandWorldBounds(&box, o.WorldMatrix())
	return box
}

func (o *Object) expandWorldBounds(box *Box3, world mgl64.Mat4) {
	if o.Shape != nil {
		box.expandByTransformedBox(o.Shape.LocalBounds(), world)
	}
	for _, child := range o.children {
		child.expandWorldBounds(box, world.Mul4(child.Matrix()))
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of obj.
func isAncestor(candidate, obj *Object) bool {
	for p := obj; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from o.children without clearing child.Parent.
func (o *Object) removeChildByPtr(child *Object) {
	for i, c := range o.children {
		if c == child {
			copy(o.children[i:], o.children[i+1:])
			o.children[len(o.children)-1] = nil
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}
