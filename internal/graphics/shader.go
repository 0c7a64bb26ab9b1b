package graphics

import (
	"fmt"

	"maccis/internal/assets"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names shared by the engine shaders.
const (
	UniformModel   = "umodel"
	UniformView    = "uview"
	UniformProj    = "uproj"
	UniformColor   = "ucolor"
	UniformTexture = "utexture"
)

// ShaderProgram is a linked GPU program. The zero value is invalid and
// binding it renders nothing useful; check Valid before drawing with it.
type ShaderProgram struct {
	gl GL
	ID uint32
}

// Valid reports whether the program linked successfully.
func (s ShaderProgram) Valid() bool {
	return s.ID != 0 && s.gl != nil
}

// NewShaderProgram compiles, links and validates a program from vertex and
// fragment source. On any failure the partial GPU objects are released and
// an invalid program is returned along with the diagnostic error.
func NewShaderProgram(gl GL, vertexSrc, fragmentSrc string, lg *log.Logger) (ShaderProgram, error) {
	if lg == nil {
		lg = log.Default()
	}

	vs, err := CompileShader(gl, VertexShader, vertexSrc, lg)
	if err != nil {
		return ShaderProgram{}, err
	}
	fs, err := CompileShader(gl, FragmentShader, fragmentSrc, lg)
	if err != nil {
		gl.DeleteShader(vs)
		return ShaderProgram{}, err
	}

	program := gl.CreateProgram()
	if program == 0 {
		gl.DeleteShader(vs)
		gl.DeleteShader(fs)
		lg.Error("could not create shader program")
		return ShaderProgram{}, ErrResourceCreate
	}
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	// The shader objects are not needed once the program is linked.
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if gl.GetProgramiv(program, LinkStatus) == False {
		msg := gl.GetProgramInfoLog(program)
		gl.DeleteProgram(program)
		lg.Error("shader link failed", "log", msg)
		return ShaderProgram{}, fmt.Errorf("%w: %s", ErrShaderLink, msg)
	}

	gl.ValidateProgram(program)
	if gl.GetProgramiv(program, ValidateStatus) == False {
		lg.Warn("shader program did not validate", "program", program, "log", gl.GetProgramInfoLog(program))
	}

	return ShaderProgram{gl: gl, ID: program}, nil
}

// LoadShaderProgram reads vertex and fragment sources through r and builds a
// program from them. File bytes are released once compiled.
func LoadShaderProgram(gl GL, r assets.FileReader, vertexPath, fragmentPath string, lg *log.Logger) (ShaderProgram, error) {
	vertexSource, err := r.ReadFile(vertexPath)
	if err != nil {
		return ShaderProgram{}, fmt.Errorf("could not read vertex shader file: %w", err)
	}
	defer r.FreeFile(vertexSource)

	fragmentSource, err := r.ReadFile(fragmentPath)
	if err != nil {
		return ShaderProgram{}, fmt.Errorf("could not read fragment shader file: %w", err)
	}
	defer r.FreeFile(fragmentSource)

	return NewShaderProgram(gl, string(vertexSource), string(fragmentSource), lg)
}

// CompileShader compiles one stage. A compile error is logged with the
// driver's diagnostic text, the shader object is deleted and 0 is returned.
func CompileShader(gl GL, stage uint32, source string, lg *log.Logger) (uint32, error) {
	if lg == nil {
		lg = log.Default()
	}
	shader := gl.CreateShader(stage)
	if shader == 0 {
		lg.Error("could not create shader object", "stage", stageName(stage))
		return 0, ErrResourceCreate
	}
	gl.ShaderSource(shader, source)
	gl.CompileShader(shader)

	if gl.GetShaderiv(shader, CompileStatus) == False {
		msg := gl.GetShaderInfoLog(shader)
		gl.DeleteShader(shader)
		lg.Error("shader compile failed", "stage", stageName(stage), "log", msg)
		return 0, fmt.Errorf("%w (%s): %s", ErrShaderCompile, stageName(stage), msg)
	}
	return shader, nil
}

func stageName(stage uint32) string {
	switch stage {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return fmt.Sprintf("0x%x", stage)
}

// Bind makes the program current. Uniform setters write into whichever
// program is current, so Bind must come first.
func (s ShaderProgram) Bind() {
	if s.gl != nil {
		s.gl.UseProgram(s.ID)
	}
}

func (s ShaderProgram) Unbind() {
	if s.gl != nil {
		s.gl.UseProgram(0)
	}
}

// SetUniformMat4f sets a 4x4 matrix uniform on the bound program.
func (s ShaderProgram) SetUniformMat4f(name string, m mgl32.Mat4) {
	s.gl.UniformMatrix4fv(s.gl.GetUniformLocation(s.ID, name), m)
}

// SetUniform4f sets a vec4 uniform on the bound program.
func (s ShaderProgram) SetUniform4f(name string, v mgl32.Vec4) {
	s.gl.Uniform4f(s.gl.GetUniformLocation(s.ID, name), v[0], v[1], v[2], v[3])
}

// SetUniform1i sets an int (or sampler) uniform on the bound program.
func (s ShaderProgram) SetUniform1i(name string, v int32) {
	s.gl.Uniform1i(s.gl.GetUniformLocation(s.ID, name), v)
}

// Delete releases the program. Safe to call on an invalid program.
func (s *ShaderProgram) Delete() {
	if s.ID != 0 && s.gl != nil {
		s.gl.DeleteProgram(s.ID)
	}
	s.ID = 0
}
