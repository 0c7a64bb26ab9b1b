// Package opengl implements graphics.GL over the go-gl 4.1 core bindings.
package opengl

import (
	"strings"
	"unsafe"

	"maccis/internal/graphics"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Context forwards every call to the current OpenGL context.
type Context struct{}

var _ graphics.GL = Context{}

// Init loads the GL function pointers. A context must be current.
func Init() (Context, error) {
	if err := gl.Init(); err != nil {
		return Context{}, err
	}
	return Context{}, nil
}

// Version reports the driver's GL version string.
func (Context) Version() string { return gl.GoStr(gl.GetString(gl.VERSION)) }

func (Context) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Context) DeleteBuffer(id uint32)       { gl.DeleteBuffers(1, &id) }
func (Context) BindBuffer(target, id uint32) { gl.BindBuffer(target, id) }

func (Context) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.BufferData(target, size, data, usage)
}

func (Context) MapBuffer(target, access uint32) unsafe.Pointer {
	return gl.MapBuffer(target, access)
}

func (Context) UnmapBuffer(target uint32) bool { return gl.UnmapBuffer(target) }

func (Context) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (Context) DeleteVertexArray(id uint32)          { gl.DeleteVertexArrays(1, &id) }
func (Context) BindVertexArray(id uint32)            { gl.BindVertexArray(id) }
func (Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Context) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (Context) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }

func (Context) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (Context) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Context) GetShaderiv(shader, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (Context) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (Context) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Context) CreateProgram() uint32               { return gl.CreateProgram() }
func (Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (Context) LinkProgram(program uint32)          { gl.LinkProgram(program) }
func (Context) ValidateProgram(program uint32)      { gl.ValidateProgram(program) }

func (Context) GetProgramiv(program, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (Context) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (Context) UseProgram(program uint32)    { gl.UseProgram(program) }
func (Context) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Context) Uniform1i(location, v int32) { gl.Uniform1i(location, v) }

func (Context) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	gl.Uniform4f(location, v0, v1, v2, v3)
}

func (Context) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (Context) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (Context) DeleteTexture(id uint32)       { gl.DeleteTextures(1, &id) }
func (Context) ActiveTexture(unit uint32)     { gl.ActiveTexture(unit) }
func (Context) BindTexture(target, id uint32) { gl.BindTexture(target, id) }

func (Context) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (Context) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr)
}

func (Context) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (Context) Clear(mask uint32)                  { gl.Clear(mask) }
func (Context) Enable(capability uint32)           { gl.Enable(capability) }
func (Context) Disable(capability uint32)          { gl.Disable(capability) }
func (Context) BlendFunc(sfactor, dfactor uint32)  { gl.BlendFunc(sfactor, dfactor) }
func (Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Context) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(int(offset)))
}

func (Context) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }
func (Context) GetError() uint32                           { return gl.GetError() }
