package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionKind selects how a camera rebuilds its projection on resize.
type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

// Camera combines a transform with a projection matrix.
type Camera struct {
	Transform
	Projection mgl32.Mat4

	Kind      ProjectionKind
	FOV       float32 // degrees, perspective only
	NearPlane float32
	FarPlane  float32
}

// NewCamera returns a perspective camera (near 1, far 100).
func NewCamera(width, height, fov float32) *Camera {
	c := &Camera{
		Transform: NewTransform(),
		Kind:      ProjectionPerspective,
		FOV:       fov,
		NearPlane: 1,
		FarPlane:  100,
	}
	c.SetViewport(width, height)
	return c
}

// NewOrthoCamera returns a screen-space camera where one unit is one pixel
// and (0,0) is the bottom-left corner. The depth range [-1,1] keeps z=0
// sprites inside the clip volume.
func NewOrthoCamera(width, height float32) *Camera {
	c := &Camera{
		Transform: NewTransform(),
		Kind:      ProjectionOrthographic,
		NearPlane: -1,
		FarPlane:  1,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport rebuilds the projection for a new framebuffer size.
func (c *Camera) SetViewport(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	switch c.Kind {
	case ProjectionOrthographic:
		c.Projection = Orthographic(width, height, c.NearPlane, c.FarPlane)
	default:
		c.Projection = Perspective(c.FOV, width/height, c.NearPlane, c.FarPlane)
	}
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return c.Transform.ViewMatrix()
}

// Bind uploads view and projection to the shader. The shader must already
// be bound.
func (c *Camera) Bind(s ShaderProgram) {
	s.SetUniformMat4f(UniformView, c.ViewMatrix())
	s.SetUniformMat4f(UniformProj, c.Projection)
}

// Perspective builds an off-center frustum from a horizontal field of view
// in degrees: r = tan(fov/2)*n, t = r/aspect.
func Perspective(fov, aspect, n, f float32) mgl32.Mat4 {
	r := float32(math.Tan(float64(mgl32.DegToRad(fov)/2))) * n
	l := -r
	t := r / aspect
	b := -t
	return mgl32.Mat4{
		2 * n / (r - l), 0, 0, 0,
		0, 2 * n / (t - b), 0, 0,
		(r + l) / (r - l), (t + b) / (t - b), -(f + n) / (f - n), -1,
		0, 0, -2 * f * n / (f - n), 0,
	}
}

// Orthographic maps the box [0,width]x[0,height]x[-near,-far] to clip space.
func Orthographic(width, height, n, f float32) mgl32.Mat4 {
	r, l := width, float32(0)
	t, b := height, float32(0)
	return mgl32.Mat4{
		2 / (r - l), 0, 0, 0,
		0, 2 / (t - b), 0, 0,
		0, 0, -2 / (f - n), 0,
		-(r + l) / (r - l), -(t + b) / (t - b), -(f + n) / (f - n), 1,
	}
}
