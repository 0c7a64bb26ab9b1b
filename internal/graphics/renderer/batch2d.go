package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"maccis/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxSprites is the number of quads one batch pass can hold.
	MaxSprites = 10000

	verticesPerSprite = 4
	indicesPerSprite  = 6
)

var (
	ErrBatchActive     = errors.New("batch already begun")
	ErrBatchNotBegun   = errors.New("batch not begun")
	ErrBatchNotEnded   = errors.New("batch still mapped")
	ErrBatchFull       = errors.New("batch full")
	ErrMapFailed       = errors.New("could not map batch vertex buffer")
	ErrUnmapFailed     = errors.New("batch vertex buffer corrupted while mapped")
	ErrTextureMismatch = errors.New("sprite texture differs from the batch texture")
)

// batchState tracks where a Batch2D is in its Begin, End, Flush cycle.
type batchState uint8

const (
	batchIdle   batchState = iota // flushed or never begun
	batchMapped                   // between Begin and End
	batchEnded                    // between End and Flush
)

// Vertex2D is one interleaved sprite vertex as laid out in the batch buffer.
type Vertex2D struct {
	Position mgl32.Vec2
	UV       mgl32.Vec2
	Normal   mgl32.Vec3
}

// Vertex2DSize is the byte size of a Vertex2D.
const Vertex2DSize = int(unsafe.Sizeof(Vertex2D{}))

// Renderable2D is a textured screen-space quad.
type Renderable2D struct {
	Vertices [verticesPerSprite]Vertex2D
	Texture  *graphics.Texture
	Scale    mgl32.Vec2
	Position mgl32.Vec2
}

// CreateSpriteFromTexture builds a quad the size of tex times scale,
// centred on pos. Vertices run counter-clockwise from the bottom-left.
func CreateSpriteFromTexture(scale float32, pos mgl32.Vec2, tex *graphics.Texture) Renderable2D {
	hw := float32(tex.Width) * scale / 2
	hh := float32(tex.Height) * scale / 2
	return Renderable2D{
		Texture:  tex,
		Scale:    mgl32.Vec2{scale, scale},
		Position: pos,
		Vertices: [verticesPerSprite]Vertex2D{
			{Position: mgl32.Vec2{pos[0] - hw, pos[1] - hh}, UV: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec2{pos[0] + hw, pos[1] - hh}, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec2{pos[0] + hw, pos[1] + hh}, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec2{pos[0] - hw, pos[1] + hh}, UV: mgl32.Vec2{0, 1}},
		},
	}
}

// batchIndices returns the quad index pattern 0,1,2,2,3,0 repeated for n
// quads, each offset by 4.
func batchIndices(n int) []uint32 {
	indices := make([]uint32, 0, n*indicesPerSprite)
	for i := 0; i < n; i++ {
		o := uint32(i * verticesPerSprite)
		indices = append(indices, o, o+1, o+2, o+2, o+3, o)
	}
	return indices
}

// Batch2D accumulates sprites into one mapped vertex buffer and draws them
// with a single indexed call. Use Begin, Submit, End, Flush in that order
// once per pass; calls out of order return an error and change nothing. The
// texture of the first sprite submitted in a pass is the one bound for the
// draw, and sprites with any other texture are refused until the next pass.
type Batch2D struct {
	gl      graphics.GL
	Shader  graphics.ShaderProgram
	vao     *graphics.VertexArray
	indices *graphics.IndexBuffer

	cursor  []Vertex2D
	state   batchState
	texture *graphics.Texture
}

// NewBatch2D allocates the dynamic vertex buffer and the precomputed index
// buffer for MaxSprites quads.
func NewBatch2D(gl graphics.GL, shader graphics.ShaderProgram) (*Batch2D, error) {
	vao, err := graphics.NewVertexArray(gl)
	if err != nil {
		return nil, err
	}
	vb, err := graphics.NewDynamicVertexBuffer(gl, MaxSprites*verticesPerSprite*Vertex2DSize)
	if err != nil {
		vao.Delete()
		return nil, err
	}
	layout := &graphics.BufferLayout{}
	layout.Push(2, graphics.Float)
	layout.Push(2, graphics.Float)
	layout.Push(3, graphics.Float)
	if err := vao.AddBuffer(vb, layout); err != nil {
		vb.Delete()
		vao.Delete()
		return nil, err
	}
	vao.Unbind()
	vb.Unbind()

	ib, err := graphics.NewIndexBuffer(gl, batchIndices(MaxSprites))
	if err != nil {
		vao.Delete()
		return nil, fmt.Errorf("batch index buffer: %w", err)
	}
	ib.Count = 0

	return &Batch2D{gl: gl, Shader: shader, vao: vao, indices: ib}, nil
}

// Begin maps the vertex buffer for writing. The previous pass must have
// been flushed.
func (b *Batch2D) Begin() error {
	if b.state != batchIdle {
		return ErrBatchActive
	}
	b.vao.Bind()
	b.vao.Buffer.Bind()
	ptr := b.vao.Buffer.Map()
	if ptr == nil {
		return ErrMapFailed
	}
	b.cursor = unsafe.Slice((*Vertex2D)(ptr), MaxSprites*verticesPerSprite)[:0]
	b.state = batchMapped
	return nil
}

// Submit copies the sprite's vertices into the mapped buffer.
func (b *Batch2D) Submit(r *Renderable2D) error {
	if b.state != batchMapped {
		return ErrBatchNotBegun
	}
	if len(b.cursor) == cap(b.cursor) {
		return ErrBatchFull
	}
	if b.Sprites() == 0 {
		b.texture = r.Texture
	} else if !sameTexture(b.texture, r.Texture) {
		return ErrTextureMismatch
	}
	b.cursor = append(b.cursor, r.Vertices[:]...)
	b.indices.Count += indicesPerSprite
	return nil
}

// End unmaps the vertex buffer. The cursor is invalid afterwards. If the
// driver reports the buffer contents lost, the pass is discarded and End
// returns ErrUnmapFailed.
func (b *Batch2D) End() error {
	if b.state != batchMapped {
		return ErrBatchNotBegun
	}
	b.vao.Buffer.Bind()
	ok := b.vao.Buffer.Unmap()
	b.cursor = nil
	if !ok {
		b.vao.Buffer.Unbind()
		b.vao.Unbind()
		b.reset()
		return ErrUnmapFailed
	}
	b.state = batchEnded
	return nil
}

// Flush draws everything submitted since Begin and resets the index count.
// It requires a completed End.
func (b *Batch2D) Flush(cam *graphics.Camera) error {
	switch b.state {
	case batchMapped:
		return ErrBatchNotEnded
	case batchIdle:
		return ErrBatchNotBegun
	}
	if !b.Shader.Valid() {
		b.reset()
		return graphics.ErrInvalidProgram
	}
	if b.indices.Count > 0 {
		b.Shader.Bind()
		cam.Bind(b.Shader)
		if b.texture != nil {
			b.texture.Bind()
			b.Shader.SetUniform1i(graphics.UniformTexture, int32(b.texture.Slot))
		}
		b.vao.Bind()
		b.indices.Bind()
		b.gl.DrawElements(graphics.Triangles, int32(b.indices.Count), graphics.UnsignedInt, 0)
	}
	b.vao.Unbind()
	b.vao.Buffer.Unbind()
	b.indices.Unbind()
	b.reset()
	return nil
}

func (b *Batch2D) reset() {
	b.indices.Count = 0
	b.texture = nil
	b.state = batchIdle
}

func sameTexture(a, b *graphics.Texture) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Slot == b.Slot
}

// Count is the number of indices queued for the next Flush.
func (b *Batch2D) Count() int { return b.indices.Count }

// Sprites is the number of quads queued for the next Flush.
func (b *Batch2D) Sprites() int { return b.indices.Count / indicesPerSprite }

// Delete releases the batch buffers. The shader is not owned.
func (b *Batch2D) Delete() {
	if b.state == batchMapped {
		b.End()
	}
	b.vao.Delete()
	b.indices.Delete()
}
