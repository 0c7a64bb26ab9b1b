package graphics

import (
	"fmt"
	"unsafe"
)

// VertexBuffer is a GPU array buffer of float vertex data.
type VertexBuffer struct {
	gl          GL
	ID          uint32
	ElementSize int // bytes per element
	Size        int // total bytes
}

// NewVertexBuffer uploads data once with STATIC_DRAW.
func NewVertexBuffer(gl GL, data []float32) (*VertexBuffer, error) {
	vb := &VertexBuffer{gl: gl, ElementSize: 4, Size: len(data) * 4}
	if vb.ID = gl.GenBuffer(); vb.ID == 0 {
		return nil, fmt.Errorf("%w: vertex buffer", ErrResourceCreate)
	}
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	gl.BindBuffer(ArrayBuffer, vb.ID)
	gl.BufferData(ArrayBuffer, vb.Size, ptr, StaticDraw)
	gl.BindBuffer(ArrayBuffer, 0)
	return vb, nil
}

// NewDynamicVertexBuffer allocates size bytes with DYNAMIC_DRAW and no
// initial contents. Intended to be rewritten every frame through MapBuffer.
func NewDynamicVertexBuffer(gl GL, size int) (*VertexBuffer, error) {
	vb := &VertexBuffer{gl: gl, ElementSize: 4, Size: size}
	if vb.ID = gl.GenBuffer(); vb.ID == 0 {
		return nil, fmt.Errorf("%w: dynamic vertex buffer", ErrResourceCreate)
	}
	gl.BindBuffer(ArrayBuffer, vb.ID)
	gl.BufferData(ArrayBuffer, size, nil, DynamicDraw)
	gl.BindBuffer(ArrayBuffer, 0)
	return vb, nil
}

func (vb *VertexBuffer) Bind()   { vb.gl.BindBuffer(ArrayBuffer, vb.ID) }
func (vb *VertexBuffer) Unbind() { vb.gl.BindBuffer(ArrayBuffer, 0) }

// Map exposes the buffer for CPU writes. The buffer must be bound.
func (vb *VertexBuffer) Map() unsafe.Pointer {
	return vb.gl.MapBuffer(ArrayBuffer, WriteOnly)
}

// Unmap publishes mapped writes to the GPU.
func (vb *VertexBuffer) Unmap() bool {
	return vb.gl.UnmapBuffer(ArrayBuffer)
}

func (vb *VertexBuffer) Delete() {
	if vb.ID != 0 {
		vb.gl.DeleteBuffer(vb.ID)
		vb.ID = 0
	}
}

// IndexBuffer is a GPU element buffer of uint32 triangle indices. Count is
// the number of indices drawn and may be lowered below Capacity.
type IndexBuffer struct {
	gl       GL
	ID       uint32
	Count    int
	Capacity int
}

func NewIndexBuffer(gl GL, indices []uint32) (*IndexBuffer, error) {
	ib := &IndexBuffer{gl: gl, Count: len(indices), Capacity: len(indices)}
	if ib.ID = gl.GenBuffer(); ib.ID == 0 {
		return nil, fmt.Errorf("%w: index buffer", ErrResourceCreate)
	}
	var ptr unsafe.Pointer
	if len(indices) > 0 {
		ptr = unsafe.Pointer(&indices[0])
	}
	gl.BindBuffer(ElementArrayBuffer, ib.ID)
	gl.BufferData(ElementArrayBuffer, len(indices)*4, ptr, StaticDraw)
	gl.BindBuffer(ElementArrayBuffer, 0)
	return ib, nil
}

func (ib *IndexBuffer) Bind()   { ib.gl.BindBuffer(ElementArrayBuffer, ib.ID) }
func (ib *IndexBuffer) Unbind() { ib.gl.BindBuffer(ElementArrayBuffer, 0) }

func (ib *IndexBuffer) Delete() {
	if ib.ID != 0 {
		ib.gl.DeleteBuffer(ib.ID)
		ib.ID = 0
	}
}

// LayoutElement describes one vertex attribute.
type LayoutElement struct {
	Count      int32
	Type       uint32
	Normalized bool
	Offset     uintptr
}

// BufferLayout is the ordered attribute list of one interleaved vertex.
type BufferLayout struct {
	elements []LayoutElement
	stride   int32
	consumed bool
}

// Push appends an attribute of count components of the given GL type.
func (l *BufferLayout) Push(count int32, xtype uint32) {
	l.elements = append(l.elements, LayoutElement{
		Count:  count,
		Type:   xtype,
		Offset: uintptr(l.stride),
	})
	l.stride += count * typeSize(xtype)
}

// Stride is the byte size of one vertex.
func (l *BufferLayout) Stride() int32 { return l.stride }

func (l *BufferLayout) Elements() []LayoutElement {
	e := make([]LayoutElement, len(l.elements))
	copy(e, l.elements)
	return e
}

// VertexArray binds one vertex buffer and its layout to attribute slots.
type VertexArray struct {
	gl     GL
	ID     uint32
	Buffer *VertexBuffer
	stride int32
}

func NewVertexArray(gl GL) (*VertexArray, error) {
	va := &VertexArray{gl: gl}
	if va.ID = gl.GenVertexArray(); va.ID == 0 {
		return nil, fmt.Errorf("%w: vertex array", ErrResourceCreate)
	}
	return va, nil
}

// AddBuffer configures attributes 0..n-1 from layout for vb. The layout is
// consumed and cannot configure another array.
func (va *VertexArray) AddBuffer(vb *VertexBuffer, layout *BufferLayout) error {
	if layout.consumed {
		return ErrLayoutConsumed
	}
	if len(layout.elements) == 0 {
		return ErrEmptyLayout
	}
	for _, e := range layout.elements {
		if typeSize(e.Type) == 0 {
			return fmt.Errorf("%w: 0x%x", ErrUnknownType, e.Type)
		}
	}

	va.gl.BindVertexArray(va.ID)
	vb.Bind()
	for i, e := range layout.elements {
		va.gl.EnableVertexAttribArray(uint32(i))
		va.gl.VertexAttribPointer(uint32(i), e.Count, e.Type, e.Normalized, layout.stride, e.Offset)
	}
	va.Buffer = vb
	va.stride = layout.stride
	layout.consumed = true
	return nil
}

// Stride is the byte size of one vertex of the attached buffer.
func (va *VertexArray) Stride() int32 { return va.stride }

// VertexCount is the number of whole vertices in the attached buffer.
func (va *VertexArray) VertexCount() int {
	if va.Buffer == nil || va.stride == 0 {
		return 0
	}
	return va.Buffer.Size / int(va.stride)
}

func (va *VertexArray) Bind()   { va.gl.BindVertexArray(va.ID) }
func (va *VertexArray) Unbind() { va.gl.BindVertexArray(0) }

// Delete releases the array and the vertex buffer it owns.
func (va *VertexArray) Delete() {
	if va.Buffer != nil {
		va.Buffer.Delete()
	}
	if va.ID != 0 {
		va.gl.DeleteVertexArray(va.ID)
		va.ID = 0
	}
}
