package graphics

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GL is the set of OpenGL entry points the rendering core issues. Method
// names and enum values match OpenGL so the production implementation
// (package opengl) is a direct pass-through. Tests substitute a recorder.
//
// All methods must be called from the goroutine that owns the context.
type GL interface {
	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target, id uint32)
	BufferData(target uint32, size int, data unsafe.Pointer, usage uint32)
	MapBuffer(target, access uint32) unsafe.Pointer
	UnmapBuffer(target uint32) bool

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)

	CreateShader(stage uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ValidateProgram(program uint32)
	GetProgramiv(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location, v int32)
	Uniform4f(location int32, v0, v1, v2, v3 float32)
	UniformMatrix4fv(location int32, m mgl32.Mat4)

	GenTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, id uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(capability uint32)
	Disable(capability uint32)
	BlendFunc(sfactor, dfactor uint32)
	Viewport(x, y, width, height int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
	DrawArrays(mode uint32, first, count int32)
	GetError() uint32
}

// OpenGL enum values used by the core.
const (
	NoError = 0
	False   = 0
	True    = 1

	Triangles = 0x0004

	UnsignedByte = 0x1401
	Int          = 0x1404
	UnsignedInt  = 0x1405
	Float        = 0x1406

	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	StaticDraw         = 0x88E4
	DynamicDraw        = 0x88E8
	WriteOnly          = 0x88B9

	FragmentShader = 0x8B30
	VertexShader   = 0x8B31
	CompileStatus  = 0x8B81
	LinkStatus     = 0x8B82
	ValidateStatus = 0x8B83
	InfoLogLength  = 0x8B84

	Texture2D        = 0x0DE1
	Texture0         = 0x84C0
	TextureMagFilter = 0x2800
	TextureMinFilter = 0x2801
	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	Linear           = 0x2601
	ClampToEdge      = 0x812F
	RGBA             = 0x1908
	RGBA8            = 0x8058

	DepthBufferBit = 0x00000100
	ColorBufferBit = 0x00004000

	DepthTest        = 0x0B71
	Blend            = 0x0BE2
	SrcAlpha         = 0x0302
	OneMinusSrcAlpha = 0x0303
)

// typeSize returns the byte size of a GL component type.
func typeSize(xtype uint32) int32 {
	switch xtype {
	case Float, UnsignedInt, Int:
		return 4
	case UnsignedByte:
		return 1
	}
	return 0
}
