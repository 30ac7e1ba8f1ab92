package tether

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// sphericalEPS keeps the polar angle away from the poles, where azimuth is
// undefined and lookAt degenerates.
const sphericalEPS = 1e-6

// composeMatrix builds a local matrix from translation, rotation and scale.
//
// Composition order: Translate * Rotate * Scale
func composeMatrix(pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// decomposeMatrix splits an affine matrix into translation, rotation and
// scale. A negative determinant is folded into the X scale.
func decomposeMatrix(m mgl64.Mat4) (pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) {
	pos = m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if m.Det() < 0 {
		sx = -sx
	}
	scale = mgl64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		return pos, mgl64.QuatIdent(), scale
	}
	r := mgl64.Mat3FromCols(c0.Mul(1/sx), c1.Mul(1/sy), c2.Mul(1/sz))
	rot = mgl64.Mat4ToQuat(r.Mat4()).Normalize()
	return pos, rot, scale
}

// transformPoint applies a 4x4 affine matrix to a point.
func transformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// normalMatrix returns the inverse transpose of m's upper-left 3x3.
func normalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// --- Spherical coordinates (Z up) ---

// spherical is a point relative to an origin expressed as radius, polar angle
// from +Z (phi) and azimuth around Z (theta).
type spherical struct {
	radius float64
	phi    float64
	theta  float64
}

// setFromVector fills s from a cartesian offset. Azimuth is measured from +Y
// toward -X so that a camera south of its target has theta = π.
func (s *spherical) setFromVector(v mgl64.Vec3) {
	s.radius = v.Len()
	if s.radius == 0 {
		s.theta = 0
		s.phi = 0
		return
	}
	s.theta = math.Atan2(-v[0], v[1])
	s.phi = math.Acos(math.Max(-1, math.Min(1, v[2]/s.radius)))
}

// vector converts s back to a cartesian offset.
func (s *spherical) vector() mgl64.Vec3 {
	sinPhi, cosPhi := math.Sincos(s.phi)
	sinTheta, cosTheta := math.Sincos(s.theta)
	return mgl64.Vec3{
		-s.radius * sinPhi * sinTheta,
		s.radius * sinPhi * cosTheta,
		s.radius * cosPhi,
	}
}

// makeSafe clamps phi into (0, π) so the value never sits on a pole.
func (s *spherical) makeSafe() {
	s.phi = math.Max(sphericalEPS, math.Min(math.Pi-sphericalEPS, s.phi))
}

// --- Axis-aligned boxes ---

// Box3 is an axis-aligned bounding box in 3D. The zero value is not empty;
// use emptyBox to start an accumulation.
type Box3 struct {
	Min, Max mgl64.Vec3
}

func emptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the midpoint of the box.
func (b Box3) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b Box3) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// BoundingRadius returns the radius of the sphere circumscribing the box.
func (b Box3) BoundingRadius() float64 {
	return b.Size().Len() * 0.5
}

// expandByPoint grows b to include p.
func (b *Box3) expandByPoint(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// expandByTransformedBox grows b to include the eight corners of local
// transformed by m.
func (b *Box3) expandByTransformedBox(local Box3, m mgl64.Mat4) {
	if local.IsEmpty() {
		return
	}
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{local.Min[0], local.Min[1], local.Min[2]}
		if i&1 != 0 {
			corner[0] = local.Max[0]
		}
		if i&2 != 0 {
			corner[1] = local.Max[1]
		}
		if i&4 != 0 {
			corner[2] = local.Max[2]
		}
		b.expandByPoint(transformPoint(m, corner))
	}
}
