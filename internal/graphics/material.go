package graphics

import "github.com/go-gl/mathgl/mgl32"

// Material is the render state applied when an object is drawn.
type Material struct {
	Shader  ShaderProgram
	Color   mgl32.Vec4
	Texture *Texture
}

func NewMaterial(shader ShaderProgram) Material {
	return Material{Shader: shader, Color: mgl32.Vec4{1, 1, 1, 1}}
}

func (m *Material) SetColor(r, g, b, a float32) {
	m.Color = mgl32.Vec4{r, g, b, a}
}

func (m *Material) SetTexture(t *Texture) {
	m.Texture = t
}

// Bind makes the shader current, binds the texture and pushes uniforms.
func (m *Material) Bind() {
	m.Shader.Bind()
	if m.Texture != nil {
		m.Texture.Bind()
	}
	m.UpdateUniforms()
}

// UpdateUniforms writes color and sampler slot into the bound shader.
func (m *Material) UpdateUniforms() {
	m.Shader.SetUniform4f(UniformColor, m.Color)
	if m.Texture != nil {
		m.Shader.SetUniform1i(UniformTexture, int32(m.Texture.Slot))
	}
}
