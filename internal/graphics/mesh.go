package graphics

import (
	"fmt"

	"maccis/internal/assets"
)

// Mesh is a vertex array paired with the index buffer that draws it.
type Mesh struct {
	VAO     *VertexArray
	Indices *IndexBuffer
}

// NewMesh uploads vertices and indices and configures the array with
// layout. A failure after partial creation releases what was created.
func NewMesh(gl GL, vertices []float32, indices []uint32, layout *BufferLayout) (*Mesh, error) {
	vao, err := NewVertexArray(gl)
	if err != nil {
		return nil, err
	}
	vb, err := NewVertexBuffer(gl, vertices)
	if err != nil {
		vao.Delete()
		return nil, err
	}
	if err := vao.AddBuffer(vb, layout); err != nil {
		vb.Delete()
		vao.Delete()
		return nil, err
	}
	vao.Unbind()
	vb.Unbind()

	ib, err := NewIndexBuffer(gl, indices)
	if err != nil {
		vao.Delete()
		return nil, err
	}
	return &Mesh{VAO: vao, Indices: ib}, nil
}

// Bind binds the vertex array and the element buffer.
func (m *Mesh) Bind() {
	m.VAO.Bind()
	m.Indices.Bind()
}

func (m *Mesh) Unbind() {
	m.VAO.Unbind()
	m.Indices.Unbind()
}

func (m *Mesh) IndexCount() int { return m.Indices.Count }

func (m *Mesh) Delete() {
	m.VAO.Delete()
	m.Indices.Delete()
}

// GameObject is a drawable mesh with its own material and transform.
type GameObject struct {
	Mesh      *Mesh
	Material  Material
	Transform Transform
}

func NewGameObject(mesh *Mesh, material Material) *GameObject {
	return &GameObject{Mesh: mesh, Material: material, Transform: NewTransform()}
}

// Bind binds the mesh and applies the material.
func (o *GameObject) Bind() {
	o.Mesh.Bind()
	o.Material.Bind()
}

// ModelLayout is the attribute layout of an assets.RawModel vertex:
// position(3), uv(2), normal(3).
func ModelLayout() *BufferLayout {
	l := &BufferLayout{}
	l.Push(3, Float)
	l.Push(2, Float)
	l.Push(3, Float)
	return l
}

// GameObjectFromRawModel uploads model and wraps it in a white object one
// unit in front of the origin.
func GameObjectFromRawModel(gl GL, model assets.RawModel, shader ShaderProgram) (*GameObject, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	mesh, err := NewMesh(gl, model.Vertices, model.Indices, ModelLayout())
	if err != nil {
		return nil, fmt.Errorf("model mesh: %w", err)
	}
	o := NewGameObject(mesh, NewMaterial(shader))
	o.Transform.SetPosition(0, 0, -1)
	return o, nil
}

// quadVertices is a unit textured quad: position(2), uv(2).
var quadVertices = []float32{
	-0.5, -0.5, 0, 0,
	0.5, -0.5, 1, 0,
	0.5, 0.5, 1, 1,
	-0.5, 0.5, 0, 1,
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// NewQuadObject returns a unit quad with a 2+2 layout, textured with tex
// when it is non-nil.
func NewQuadObject(gl GL, shader ShaderProgram, tex *Texture) (*GameObject, error) {
	l := &BufferLayout{}
	l.Push(2, Float)
	l.Push(2, Float)
	mesh, err := NewMesh(gl, quadVertices, quadIndices, l)
	if err != nil {
		return nil, fmt.Errorf("quad mesh: %w", err)
	}
	mat := NewMaterial(shader)
	mat.SetTexture(tex)
	return NewGameObject(mesh, mat), nil
}
