package noise

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestTransformIdentity(t *testing.T) {
	tr := NewTransform(mgl64.Vec3{}, mgl64.Vec3{1, 2, 3})
	assertVec(t, mgl64.Vec3{1.5, 1.5, 3}, tr.Apply(mgl64.Vec3{0.5, -0.5, 0}))
}

func TestEulerAxes(t *testing.T) {
	// 90 degrees about Z turns +X into +Y.
	assertVec(t, mgl64.Vec3{0, 1, 0}, Euler(mgl64.Vec3{0, 0, 90}).Rotate(mgl64.Vec3{1, 0, 0}))
	// 90 degrees about Y turns +Z into +X.
	assertVec(t, mgl64.Vec3{1, 0, 0}, Euler(mgl64.Vec3{0, 90, 0}).Rotate(mgl64.Vec3{0, 0, 1}))
	// Z is applied before X: +X -> +Y (Z) -> +Z (X).
	assertVec(t, mgl64.Vec3{0, 0, 1}, Euler(mgl64.Vec3{90, 0, 90}).Rotate(mgl64.Vec3{1, 0, 0}))
}
