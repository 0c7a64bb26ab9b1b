package graphics_test

import (
	"math"
	"testing"

	"maccis/internal/graphics"
	"maccis/internal/graphics/gltest"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrthographicCorners(t *testing.T) {
	p := graphics.Orthographic(800, 600, -1, 1)

	lo := p.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	hi := p.Mul4x1(mgl32.Vec4{800, 600, 0, 1})
	if !near(lo, mgl32.Vec4{-1, -1, 0, 1}) {
		t.Errorf("(0,0) -> %v", lo)
	}
	if !near(hi, mgl32.Vec4{1, 1, 0, 1}) {
		t.Errorf("(w,h) -> %v", hi)
	}
}

func TestPerspective90(t *testing.T) {
	p := graphics.Perspective(90, 1, 1, 100)
	if math.Abs(float64(p.At(0, 0)-1)) > eps || math.Abs(float64(p.At(1, 1)-1)) > eps {
		t.Fatalf("[0][0] = %v [1][1] = %v, want 1", p.At(0, 0), p.At(1, 1))
	}
	if p.At(3, 2) != -1 {
		t.Errorf("w row = %v, want -1", p.At(3, 2))
	}

	// near and far planes map to -1 and +1 in NDC
	np := p.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	fp := p.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	if z := np[2] / np[3]; math.Abs(float64(z+1)) > eps {
		t.Errorf("near z = %v", z)
	}
	if z := fp[2] / fp[3]; math.Abs(float64(z-1)) > eps {
		t.Errorf("far z = %v", z)
	}
}

func TestPerspectiveAspect(t *testing.T) {
	p := graphics.Perspective(90, 2, 1, 100)
	// t = r/aspect, so the vertical scale is aspect times the horizontal one
	if math.Abs(float64(p.At(1, 1)-2*p.At(0, 0))) > eps {
		t.Fatalf("[1][1] = %v, [0][0] = %v", p.At(1, 1), p.At(0, 0))
	}
}

func TestCameraBind(t *testing.T) {
	gl := gltest.New()
	s := mustProgram(t, gl)
	cam := graphics.NewCamera(800, 800, 90)
	cam.SetPosition(0, 0, 5)

	s.Bind()
	cam.Bind(s)

	u := gl.Program(s.ID).Uniforms
	if u[graphics.UniformProj] != graphics.Perspective(90, 1, 1, 100) {
		t.Errorf("uproj = %v", u[graphics.UniformProj])
	}
	if u[graphics.UniformView] != cam.ViewMatrix() {
		t.Errorf("uview = %v", u[graphics.UniformView])
	}
}

func TestCameraSetViewportKeepsKind(t *testing.T) {
	ortho := graphics.NewOrthoCamera(100, 100)
	ortho.SetViewport(200, 50)
	if ortho.Projection != graphics.Orthographic(200, 50, -1, 1) {
		t.Errorf("ortho projection not rebuilt")
	}

	persp := graphics.NewCamera(100, 100, 60)
	before := persp.Projection
	persp.SetViewport(0, 10)
	if persp.Projection != before {
		t.Errorf("zero-size viewport changed projection")
	}
	persp.SetViewport(400, 200)
	if persp.Projection != graphics.Perspective(60, 2, 1, 100) {
		t.Errorf("perspective projection not rebuilt")
	}
}

func mustProgram(t testing.TB, gl *gltest.Recorder) graphics.ShaderProgram {
	t.Helper()
	s, err := graphics.NewShaderProgram(gl, gltest.VertexSource, gltest.FragmentSource, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return s
}
