package graphics_test

import (
	"errors"
	"testing"

	"maccis/internal/assets"
	"maccis/internal/graphics"
	"maccis/internal/graphics/gltest"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGameObjectFromRawModel(t *testing.T) {
	gl := gltest.New()
	s := mustProgram(t, gl)
	o, err := graphics.GameObjectFromRawModel(gl, assets.Cube(), s)
	if err != nil {
		t.Fatal(err)
	}
	if o.Mesh.IndexCount() != 36 || o.Mesh.VAO.VertexCount() != 24 {
		t.Errorf("indices = %d vertices = %d", o.Mesh.IndexCount(), o.Mesh.VAO.VertexCount())
	}
	if o.Mesh.VAO.Stride() != 32 {
		t.Errorf("stride = %d, want 32", o.Mesh.VAO.Stride())
	}
	if o.Transform.Position != (mgl32.Vec3{0, 0, -1}) || o.Transform.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("transform = %+v", o.Transform)
	}
	if o.Material.Color != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("color = %v", o.Material.Color)
	}
	if gl.BoundVAO() != 0 {
		t.Error("vertex array left bound")
	}

	o.Mesh.Delete()
	if gl.LiveBuffers() != 0 || gl.LiveVertexArrays() != 0 {
		t.Errorf("mesh leaked %d buffers %d arrays", gl.LiveBuffers(), gl.LiveVertexArrays())
	}
}

func TestGameObjectFromInvalidModel(t *testing.T) {
	gl := gltest.New()
	bad := assets.RawModel{Vertices: make([]float32, 8), Indices: []uint32{0, 1, 2}}
	if _, err := graphics.GameObjectFromRawModel(gl, bad, mustProgram(t, gl)); !errors.Is(err, assets.ErrInvalidModel) {
		t.Fatalf("err = %v, want ErrInvalidModel", err)
	}
	if gl.LiveBuffers() != 0 {
		t.Error("buffers created for invalid model")
	}
}

func TestNewQuadObject(t *testing.T) {
	gl := gltest.New()
	tex, err := graphics.BuildTextureFromBitmap(gl, &assets.Bitmap{Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	o, err := graphics.NewQuadObject(gl, mustProgram(t, gl), tex)
	if err != nil {
		t.Fatal(err)
	}
	if o.Mesh.VAO.Stride() != 16 || o.Mesh.VAO.VertexCount() != 4 || o.Mesh.IndexCount() != 6 {
		t.Errorf("stride = %d vertices = %d indices = %d",
			o.Mesh.VAO.Stride(), o.Mesh.VAO.VertexCount(), o.Mesh.IndexCount())
	}
	if o.Material.Texture != tex {
		t.Error("texture not set on material")
	}
}

func TestMaterialBind(t *testing.T) {
	gl := gltest.New()
	s := mustProgram(t, gl)
	tex, _ := graphics.BuildTextureFromBitmap(gl, &assets.Bitmap{Width: 1, Height: 1, Pixels: make([]byte, 4)}, 3)

	m := graphics.NewMaterial(s)
	m.SetColor(0.5, 0.25, 1, 1)
	m.SetTexture(tex)
	m.Bind()

	if gl.CurrentProgram() != s.ID {
		t.Errorf("program %d not bound", s.ID)
	}
	if gl.BoundTexture(graphics.Texture0+3) != tex.ID {
		t.Error("texture not bound on its slot")
	}
	u := gl.Program(s.ID).Uniforms
	if u[graphics.UniformColor] != (mgl32.Vec4{0.5, 0.25, 1, 1}) {
		t.Errorf("ucolor = %v", u[graphics.UniformColor])
	}
	if u[graphics.UniformTexture] != int32(3) {
		t.Errorf("utexture = %v", u[graphics.UniformTexture])
	}
	if code := gl.GetError(); code != graphics.NoError {
		t.Errorf("gl error 0x%x", code)
	}
}

func TestMaterialWithoutTexture(t *testing.T) {
	gl := gltest.New()
	s := mustProgram(t, gl)
	m := graphics.NewMaterial(s)
	m.Bind()
	if _, ok := gl.Program(s.ID).Uniforms[graphics.UniformTexture]; ok {
		t.Error("utexture written without a texture")
	}
}
