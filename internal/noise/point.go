package noise

import "github.com/go-gl/mathgl/mgl64"

// Euler returns the rotation for angles given in degrees, applied about Z,
// then X, then Y.
func Euler(degrees mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(degrees.X()), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(degrees.Y()), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(degrees.Z()), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// Transform maps a local point into noise space: rotation, then offset.
type Transform struct {
	Rotation mgl64.Quat
	Offset   mgl64.Vec3
}

// NewTransform builds a transform from Euler degrees and an offset.
func NewTransform(rotationDegrees, offset mgl64.Vec3) Transform {
	return Transform{Rotation: Euler(rotationDegrees), Offset: offset}
}

// Apply returns rotation·local + offset.
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Offset)
}
