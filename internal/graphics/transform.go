package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a position, a non-uniform scale and an orthonormal
// forward/up/right basis.
type Transform struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Forward  mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
}

// NewTransform returns the identity transform: unit scale, basis aligned
// with the world axes (forward +Z).
func NewTransform() Transform {
	return Transform{
		Scale:   mgl32.Vec3{1, 1, 1},
		Forward: mgl32.Vec3{0, 0, 1},
		Up:      mgl32.Vec3{0, 1, 0},
		Right:   mgl32.Vec3{1, 0, 0},
	}
}

func (t *Transform) SetPosition(x, y, z float32) { t.Position = mgl32.Vec3{x, y, z} }
func (t *Transform) SetScale(x, y, z float32)    { t.Scale = mgl32.Vec3{x, y, z} }

// Translate moves along the world axes.
func (t *Transform) Translate(dx, dy, dz float32) {
	t.Position = t.Position.Add(mgl32.Vec3{dx, dy, dz})
}

// TranslateLocal moves along the current right, up and forward vectors.
func (t *Transform) TranslateLocal(dx, dy, dz float32) {
	t.Position = t.Position.
		Add(t.Right.Mul(dx)).
		Add(t.Up.Mul(dy)).
		Add(t.Forward.Mul(dz))
}

// Rotate turns the basis by pitch (about right), yaw (about up) and roll
// (about forward), in degrees, applied in that order about the local axes.
// A positive yaw of 90 turns right onto the previous forward.
func (t *Transform) Rotate(pitch, yaw, roll float32) {
	if pitch != 0 {
		s, c := sincos(pitch)
		f, u := t.Forward, t.Up
		t.Forward = f.Mul(c).Sub(u.Mul(s))
		t.Up = u.Mul(c).Add(f.Mul(s))
	}
	if yaw != 0 {
		s, c := sincos(yaw)
		f, r := t.Forward, t.Right
		t.Forward = f.Mul(c).Sub(r.Mul(s))
		t.Right = r.Mul(c).Add(f.Mul(s))
	}
	if roll != 0 {
		s, c := sincos(roll)
		u, r := t.Up, t.Right
		t.Up = u.Mul(c).Sub(r.Mul(s))
		t.Right = r.Mul(c).Add(u.Mul(s))
	}
	t.orthonormalize()
}

func sincos(deg float32) (float32, float32) {
	s, c := math.Sincos(float64(mgl32.DegToRad(deg)))
	return float32(s), float32(c)
}

// orthonormalize removes drift accumulated by repeated rotation, keeping
// forward as the reference direction.
func (t *Transform) orthonormalize() {
	f := t.Forward.Normalize()
	r := t.Right.Sub(f.Mul(t.Right.Dot(f))).Normalize()
	t.Forward = f
	t.Right = r
	t.Up = f.Cross(r)
}

// Rotation is the basis as a matrix whose columns are right, up, forward.
func (t *Transform) Rotation() mgl32.Mat4 {
	r, u, f := t.Right, t.Up, t.Forward
	return mgl32.Mat4{
		r[0], r[1], r[2], 0,
		u[0], u[1], u[2], 0,
		f[0], f[1], f[2], 0,
		0, 0, 0, 1,
	}
}

// BuildMatrix composes translation * rotation * scale into a column-major
// model matrix.
func (t *Transform) BuildMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// ViewMatrix is the inverse of the unscaled transform, for cameras.
func (t *Transform) ViewMatrix() mgl32.Mat4 {
	r, u, f, p := t.Right, t.Up, t.Forward, t.Position
	return mgl32.Mat4{
		r[0], u[0], f[0], 0,
		r[1], u[1], f[1], 0,
		r[2], u[2], f[2], 0,
		-r.Dot(p), -u.Dot(p), -f.Dot(p), 1,
	}
}
