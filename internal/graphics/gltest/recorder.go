// Package gltest provides an in-memory graphics.GL that records state and
// draw calls so rendering code can be tested without a GPU context.
package gltest

import (
	"fmt"
	"strings"
	"unsafe"

	"maccis/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	InvalidEnum      = 0x0500
	InvalidValue     = 0x0501
	InvalidOperation = 0x0502
)

// Draw is one recorded draw call along with the state it was issued with.
type Draw struct {
	Mode          uint32
	First         int32
	Count         int32
	Indexed       bool
	Program       uint32
	VAO           uint32
	ElementBuffer uint32
	Texture       uint32
	Uniforms      map[string]any
}

// Attrib is a configured vertex attribute.
type Attrib struct {
	Enabled    bool
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
}

type Shader struct {
	Stage    uint32
	Source   string
	Compiled bool
	Log      string
}

type Program struct {
	Shaders   []uint32
	Linked    bool
	Validated bool
	Log       string
	Uniforms  map[string]any

	locations map[string]int32
	names     map[int32]string
}

type Texture struct {
	Params         map[uint32]int32
	Width, Height  int32
	InternalFormat int32
	Format, Type   uint32
	Pixels         []byte
}

type buffer struct {
	data   []byte
	usage  uint32
	mapped bool
	access uint32
}

// Recorder is a fake GL. The zero value is not usable; call New.
type Recorder struct {
	// FailGen makes every Gen*/Create* call return 0.
	FailGen bool
	// FailMap makes MapBuffer return nil.
	FailMap bool
	// FailUnmap makes UnmapBuffer report the data store as corrupted.
	FailUnmap bool
	// FailLink makes every LinkProgram fail.
	FailLink bool

	Calls []string
	Draws []Draw

	ClearMask  uint32
	Clears     int
	ClearRGBA  [4]float32
	Enabled    map[uint32]bool
	Blend      [2]uint32
	ViewportXY [4]int32

	next     uint32
	errCode  uint32
	buffers  map[uint32]*buffer
	bound    map[uint32]uint32
	vaos     map[uint32]map[uint32]*Attrib
	vao      uint32
	shaders  map[uint32]*Shader
	programs map[uint32]*Program
	program  uint32
	textures map[uint32]*Texture
	unit     uint32
	units    map[uint32]uint32
}

var _ graphics.GL = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{
		Enabled:  make(map[uint32]bool),
		buffers:  make(map[uint32]*buffer),
		bound:    make(map[uint32]uint32),
		vaos:     make(map[uint32]map[uint32]*Attrib),
		shaders:  make(map[uint32]*Shader),
		programs: make(map[uint32]*Program),
		textures: make(map[uint32]*Texture),
		units:    make(map[uint32]uint32),
		unit:     graphics.Texture0,
	}
}

func (r *Recorder) call(name string) { r.Calls = append(r.Calls, name) }

func (r *Recorder) fail(code uint32) {
	if r.errCode == graphics.NoError {
		r.errCode = code
	}
}

func (r *Recorder) gen() uint32 {
	if r.FailGen {
		return 0
	}
	r.next++
	return r.next
}

// Buffers

func (r *Recorder) GenBuffer() uint32 {
	r.call("GenBuffer")
	id := r.gen()
	if id != 0 {
		r.buffers[id] = &buffer{}
	}
	return id
}

func (r *Recorder) DeleteBuffer(id uint32) {
	r.call("DeleteBuffer")
	delete(r.buffers, id)
	for t, b := range r.bound {
		if b == id {
			r.bound[t] = 0
		}
	}
}

func (r *Recorder) BindBuffer(target, id uint32) {
	r.call(fmt.Sprintf("BindBuffer(0x%x,%d)", target, id))
	if id != 0 && r.buffers[id] == nil {
		r.fail(InvalidValue)
		return
	}
	r.bound[target] = id
}

func (r *Recorder) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	r.call("BufferData")
	b := r.buffers[r.bound[target]]
	if b == nil {
		r.fail(InvalidOperation)
		return
	}
	b.data = make([]byte, size)
	b.usage = usage
	if data != nil && size > 0 {
		copy(b.data, unsafe.Slice((*byte)(data), size))
	}
}

func (r *Recorder) MapBuffer(target, access uint32) unsafe.Pointer {
	r.call("MapBuffer")
	b := r.buffers[r.bound[target]]
	if b == nil || b.mapped {
		r.fail(InvalidOperation)
		return nil
	}
	if r.FailMap || len(b.data) == 0 {
		return nil
	}
	b.mapped = true
	b.access = access
	return unsafe.Pointer(&b.data[0])
}

func (r *Recorder) UnmapBuffer(target uint32) bool {
	r.call("UnmapBuffer")
	b := r.buffers[r.bound[target]]
	if b == nil || !b.mapped {
		r.fail(InvalidOperation)
		return false
	}
	b.mapped = false
	return !r.FailUnmap
}

// Vertex arrays

func (r *Recorder) GenVertexArray() uint32 {
	r.call("GenVertexArray")
	id := r.gen()
	if id != 0 {
		r.vaos[id] = make(map[uint32]*Attrib)
	}
	return id
}

func (r *Recorder) DeleteVertexArray(id uint32) {
	r.call("DeleteVertexArray")
	delete(r.vaos, id)
	if r.vao == id {
		r.vao = 0
	}
}

func (r *Recorder) BindVertexArray(id uint32) {
	r.call(fmt.Sprintf("BindVertexArray(%d)", id))
	if id != 0 && r.vaos[id] == nil {
		r.fail(InvalidOperation)
		return
	}
	r.vao = id
}

func (r *Recorder) attrib(index uint32) *Attrib {
	attrs := r.vaos[r.vao]
	if attrs == nil {
		r.fail(InvalidOperation)
		return nil
	}
	a := attrs[index]
	if a == nil {
		a = &Attrib{}
		attrs[index] = a
	}
	return a
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.call("EnableVertexAttribArray")
	if a := r.attrib(index); a != nil {
		a.Enabled = true
	}
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	r.call("VertexAttribPointer")
	a := r.attrib(index)
	if a == nil {
		return
	}
	if r.bound[graphics.ArrayBuffer] == 0 {
		r.fail(InvalidOperation)
		return
	}
	a.Size, a.Type, a.Normalized = size, xtype, normalized
	a.Stride, a.Offset = stride, offset
	a.Buffer = r.bound[graphics.ArrayBuffer]
}

// Shaders and programs

func (r *Recorder) CreateShader(stage uint32) uint32 {
	r.call("CreateShader")
	if stage != graphics.VertexShader && stage != graphics.FragmentShader {
		r.fail(InvalidEnum)
		return 0
	}
	id := r.gen()
	if id != 0 {
		r.shaders[id] = &Shader{Stage: stage}
	}
	return id
}

func (r *Recorder) ShaderSource(shader uint32, source string) {
	r.call("ShaderSource")
	if s := r.shaders[shader]; s != nil {
		s.Source = source
	}
}

// CompileShader accepts any source containing an entry point.
func (r *Recorder) CompileShader(shader uint32) {
	r.call("CompileShader")
	s := r.shaders[shader]
	if s == nil {
		r.fail(InvalidValue)
		return
	}
	s.Compiled = strings.Contains(s.Source, "void main")
	if s.Compiled {
		s.Log = ""
	} else {
		s.Log = "0:1(1): error: no function with name 'main'"
	}
}

func (r *Recorder) GetShaderiv(shader, pname uint32) int32 {
	s := r.shaders[shader]
	if s == nil {
		r.fail(InvalidValue)
		return 0
	}
	switch pname {
	case graphics.CompileStatus:
		if s.Compiled {
			return graphics.True
		}
		return graphics.False
	case graphics.InfoLogLength:
		if s.Log == "" {
			return 0
		}
		return int32(len(s.Log) + 1)
	}
	r.fail(InvalidEnum)
	return 0
}

func (r *Recorder) GetShaderInfoLog(shader uint32) string {
	if s := r.shaders[shader]; s != nil {
		return s.Log
	}
	return ""
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.call("DeleteShader")
	delete(r.shaders, shader)
}

func (r *Recorder) CreateProgram() uint32 {
	r.call("CreateProgram")
	id := r.gen()
	if id != 0 {
		r.programs[id] = &Program{
			Uniforms:  make(map[string]any),
			locations: make(map[string]int32),
			names:     make(map[int32]string),
		}
	}
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.call("AttachShader")
	p := r.programs[program]
	if p == nil || r.shaders[shader] == nil {
		r.fail(InvalidValue)
		return
	}
	p.Shaders = append(p.Shaders, shader)
}

// LinkProgram succeeds when one compiled vertex and one compiled fragment
// shader are attached.
func (r *Recorder) LinkProgram(program uint32) {
	r.call("LinkProgram")
	p := r.programs[program]
	if p == nil {
		r.fail(InvalidValue)
		return
	}
	var vs, fs bool
	for _, id := range p.Shaders {
		s := r.shaders[id]
		if s == nil || !s.Compiled {
			continue
		}
		vs = vs || s.Stage == graphics.VertexShader
		fs = fs || s.Stage == graphics.FragmentShader
	}
	p.Linked = vs && fs && !r.FailLink
	if p.Linked {
		p.Log = ""
	} else {
		p.Log = "error: linking requires compiled vertex and fragment shaders"
	}
}

func (r *Recorder) ValidateProgram(program uint32) {
	r.call("ValidateProgram")
	if p := r.programs[program]; p != nil {
		p.Validated = p.Linked
	}
}

func (r *Recorder) GetProgramiv(program, pname uint32) int32 {
	p := r.programs[program]
	if p == nil {
		r.fail(InvalidValue)
		return 0
	}
	status := func(ok bool) int32 {
		if ok {
			return graphics.True
		}
		return graphics.False
	}
	switch pname {
	case graphics.LinkStatus:
		return status(p.Linked)
	case graphics.ValidateStatus:
		return status(p.Validated)
	case graphics.InfoLogLength:
		if p.Log == "" {
			return 0
		}
		return int32(len(p.Log) + 1)
	}
	r.fail(InvalidEnum)
	return 0
}

func (r *Recorder) GetProgramInfoLog(program uint32) string {
	if p := r.programs[program]; p != nil {
		return p.Log
	}
	return ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.call(fmt.Sprintf("UseProgram(%d)", program))
	if program != 0 {
		p := r.programs[program]
		if p == nil || !p.Linked {
			r.fail(InvalidOperation)
			return
		}
	}
	r.program = program
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.call("DeleteProgram")
	delete(r.programs, program)
	if r.program == program {
		r.program = 0
	}
}

// GetUniformLocation hands out a stable location per name and program.
func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	p := r.programs[program]
	if p == nil || !p.Linked {
		r.fail(InvalidOperation)
		return -1
	}
	loc, ok := p.locations[name]
	if !ok {
		loc = int32(len(p.locations))
		p.locations[name] = loc
		p.names[loc] = name
	}
	return loc
}

func (r *Recorder) setUniform(location int32, v any) {
	if location == -1 {
		return
	}
	p := r.programs[r.program]
	if p == nil {
		r.fail(InvalidOperation)
		return
	}
	name, ok := p.names[location]
	if !ok {
		r.fail(InvalidOperation)
		return
	}
	p.Uniforms[name] = v
}

func (r *Recorder) Uniform1i(location, v int32) {
	r.call("Uniform1i")
	r.setUniform(location, v)
}

func (r *Recorder) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	r.call("Uniform4f")
	r.setUniform(location, mgl32.Vec4{v0, v1, v2, v3})
}

func (r *Recorder) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	r.call("UniformMatrix4fv")
	r.setUniform(location, m)
}

// Textures

func (r *Recorder) GenTexture() uint32 {
	r.call("GenTexture")
	id := r.gen()
	if id != 0 {
		r.textures[id] = &Texture{Params: make(map[uint32]int32)}
	}
	return id
}

func (r *Recorder) DeleteTexture(id uint32) {
	r.call("DeleteTexture")
	delete(r.textures, id)
	for u, t := range r.units {
		if t == id {
			r.units[u] = 0
		}
	}
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.call("ActiveTexture")
	if unit < graphics.Texture0 || unit >= graphics.Texture0+32 {
		r.fail(InvalidEnum)
		return
	}
	r.unit = unit
}

func (r *Recorder) BindTexture(target, id uint32) {
	r.call(fmt.Sprintf("BindTexture(%d)", id))
	if id != 0 && r.textures[id] == nil {
		r.fail(InvalidValue)
		return
	}
	r.units[r.unit] = id
}

func (r *Recorder) boundTexture() *Texture {
	t := r.textures[r.units[r.unit]]
	if t == nil {
		r.fail(InvalidOperation)
	}
	return t
}

func (r *Recorder) TexParameteri(target, pname uint32, param int32) {
	r.call("TexParameteri")
	if t := r.boundTexture(); t != nil {
		t.Params[pname] = param
	}
}

func (r *Recorder) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	r.call("TexImage2D")
	t := r.boundTexture()
	if t == nil {
		return
	}
	t.Width, t.Height = width, height
	t.InternalFormat, t.Format, t.Type = internalFormat, format, xtype
	t.Pixels = append([]byte(nil), pixels...)
}

// Framebuffer and draws

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.call("ClearColor")
	r.ClearRGBA = [4]float32{cr, cg, cb, ca}
}

func (r *Recorder) Clear(mask uint32) {
	r.call("Clear")
	r.ClearMask = mask
	r.Clears++
}

func (r *Recorder) Enable(capability uint32)  { r.call("Enable"); r.Enabled[capability] = true }
func (r *Recorder) Disable(capability uint32) { r.call("Disable"); r.Enabled[capability] = false }

func (r *Recorder) BlendFunc(sfactor, dfactor uint32) {
	r.call("BlendFunc")
	r.Blend = [2]uint32{sfactor, dfactor}
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.call("Viewport")
	r.ViewportXY = [4]int32{x, y, width, height}
}

func (r *Recorder) snapshot(d Draw) Draw {
	d.Program, d.VAO = r.program, r.vao
	d.ElementBuffer = r.bound[graphics.ElementArrayBuffer]
	d.Texture = r.units[r.unit]
	d.Uniforms = make(map[string]any)
	if p := r.programs[r.program]; p != nil {
		for k, v := range p.Uniforms {
			d.Uniforms[k] = v
		}
	}
	return d
}

func (r *Recorder) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	r.call("DrawElements")
	if r.program == 0 || r.vao == 0 || r.bound[graphics.ElementArrayBuffer] == 0 {
		r.fail(InvalidOperation)
	}
	if eb := r.buffers[r.bound[graphics.ElementArrayBuffer]]; eb != nil && int(offset)+int(count)*4 > len(eb.data) {
		r.fail(InvalidOperation)
	}
	r.Draws = append(r.Draws, r.snapshot(Draw{Mode: mode, Count: count, Indexed: true}))
}

func (r *Recorder) DrawArrays(mode uint32, first, count int32) {
	r.call("DrawArrays")
	if r.program == 0 || r.vao == 0 {
		r.fail(InvalidOperation)
	}
	r.Draws = append(r.Draws, r.snapshot(Draw{Mode: mode, First: first, Count: count}))
}

// GetError returns and clears the first recorded error.
func (r *Recorder) GetError() uint32 {
	e := r.errCode
	r.errCode = graphics.NoError
	return e
}

// Inspection helpers

// BufferBytes returns the current contents of buffer id.
func (r *Recorder) BufferBytes(id uint32) []byte {
	if b := r.buffers[id]; b != nil {
		return b.data
	}
	return nil
}

func (r *Recorder) BufferUsage(id uint32) uint32 {
	if b := r.buffers[id]; b != nil {
		return b.usage
	}
	return 0
}

func (r *Recorder) Mapped(id uint32) bool {
	b := r.buffers[id]
	return b != nil && b.mapped
}

// Floats views buffer id as float32 values.
func (r *Recorder) Floats(id uint32) []float32 {
	b := r.BufferBytes(id)
	if len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// Uints views buffer id as uint32 values.
func (r *Recorder) Uints(id uint32) []uint32 {
	b := r.BufferBytes(id)
	if len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}

func (r *Recorder) Bound(target uint32) uint32 { return r.bound[target] }
func (r *Recorder) BoundVAO() uint32           { return r.vao }
func (r *Recorder) CurrentProgram() uint32     { return r.program }
func (r *Recorder) ActiveUnit() uint32         { return r.unit }

// BoundTexture returns the texture bound on unit (GL_TEXTUREi).
func (r *Recorder) BoundTexture(unit uint32) uint32 { return r.units[unit] }

func (r *Recorder) Attribs(vao uint32) map[uint32]*Attrib { return r.vaos[vao] }
func (r *Recorder) Shader(id uint32) *Shader              { return r.shaders[id] }
func (r *Recorder) Program(id uint32) *Program            { return r.programs[id] }
func (r *Recorder) Texture(id uint32) *Texture            { return r.textures[id] }

func (r *Recorder) LiveBuffers() int      { return len(r.buffers) }
func (r *Recorder) LiveVertexArrays() int { return len(r.vaos) }
func (r *Recorder) LiveShaders() int      { return len(r.shaders) }
func (r *Recorder) LivePrograms() int     { return len(r.programs) }
func (r *Recorder) LiveTextures() int     { return len(r.textures) }

// Index returns the position of the first call with the given name, or -1.
func (r *Recorder) Index(name string) int {
	for i, c := range r.Calls {
		if c == name {
			return i
		}
	}
	return -1
}

// Reset forgets recorded calls and draws but keeps GL objects.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.Draws = r.Draws[:0]
}

// Shader sources that compile and link against the recorder.
const (
	VertexSource = `#version 410 core
layout (location = 0) in vec3 apos;
uniform mat4 umodel;
uniform mat4 uview;
uniform mat4 uproj;
void main() { gl_Position = uproj * uview * umodel * vec4(apos, 1.0); }
`
	FragmentSource = `#version 410 core
uniform vec4 ucolor;
out vec4 fragcolor;
void main() { fragcolor = ucolor; }
`
)
