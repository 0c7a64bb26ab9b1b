package assets

// FloatsPerModelVertex is the interleaved layout of RawModel vertices:
// position(3), uv(2), normal(3).
const FloatsPerModelVertex = 8

// RawModel is parsed 3D geometry as supplied by the asset container.
type RawModel struct {
	Vertices []float32
	Indices  []uint32
}

func (m RawModel) VertexCount() int { return len(m.Vertices) / FloatsPerModelVertex }
func (m RawModel) IndexCount() int  { return len(m.Indices) }

// Validate checks that the vertex data holds whole vertices and every index
// addresses one of them.
func (m RawModel) Validate() error {
	if len(m.Vertices)%FloatsPerModelVertex != 0 {
		return ErrInvalidModel
	}
	n := uint32(m.VertexCount())
	for _, i := range m.Indices {
		if i >= n {
			return ErrInvalidModel
		}
	}
	return nil
}

// Quad is a unit quad in the XY plane facing +Z.
func Quad() RawModel {
	return RawModel{
		Vertices: []float32{
			-0.5, -0.5, 0, 0, 0, 0, 0, 1,
			0.5, -0.5, 0, 1, 0, 0, 0, 1,
			0.5, 0.5, 0, 1, 1, 0, 0, 1,
			-0.5, 0.5, 0, 0, 1, 0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// Cube is a unit cube centred on the origin with per-face normals and UVs.
func Cube() RawModel {
	type face struct {
		n, u, v [3]float32
	}
	faces := []face{
		{n: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
		{n: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	}
	corners := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var m RawModel
	for fi, f := range faces {
		for _, c := range corners {
			su, sv := c[0]-0.5, c[1]-0.5
			for k := 0; k < 3; k++ {
				m.Vertices = append(m.Vertices, f.n[k]*0.5+f.u[k]*su+f.v[k]*sv)
			}
			m.Vertices = append(m.Vertices, c[0], c[1], f.n[0], f.n[1], f.n[2])
		}
		base := uint32(fi * 4)
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}
