package renderer

import (
	"fmt"

	"maccis/internal/graphics"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// Stats counts the GPU work issued since the last ResetStats.
type Stats struct {
	DrawCalls int
	Indices   int
	Vertices  int
	Skipped   int
}

// Renderer issues immediate draws and orchestrates renderable features.
type Renderer struct {
	gl          graphics.GL
	lg          *log.Logger
	clearColor  mgl32.Vec4
	renderables []Renderable
	stats       Stats
}

// New configures depth testing and alpha blending, then initialises each
// renderable in order.
func New(gl graphics.GL, clearColor mgl32.Vec4, lg *log.Logger, rs ...Renderable) (*Renderer, error) {
	if lg == nil {
		lg = log.Default()
	}
	gl.Enable(graphics.DepthTest)
	gl.Enable(graphics.Blend)
	gl.BlendFunc(graphics.SrcAlpha, graphics.OneMinusSrcAlpha)

	r := &Renderer{gl: gl, lg: lg, clearColor: clearColor}
	for _, rb := range rs {
		if err := r.Add(rb); err != nil {
			r.Dispose()
			return nil, err
		}
	}
	return r, nil
}

// Add initialises rb and appends it to the render order.
func (r *Renderer) Add(rb Renderable) error {
	if err := rb.Init(); err != nil {
		return fmt.Errorf("renderable init: %w", err)
	}
	r.renderables = append(r.renderables, rb)
	return nil
}

func (r *Renderer) SetClearColor(c mgl32.Vec4) { r.clearColor = c }

// Clear clears the color and depth buffers.
func (r *Renderer) Clear() {
	c := r.clearColor
	r.gl.ClearColor(c[0], c[1], c[2], c[3])
	r.gl.Clear(graphics.ColorBufferBit | graphics.DepthBufferBit)
}

// bindObject prepares shader, material, mesh and camera state for o.
func (r *Renderer) bindObject(o *graphics.GameObject, cam *graphics.Camera) error {
	if !o.Material.Shader.Valid() {
		r.stats.Skipped++
		return graphics.ErrInvalidProgram
	}
	o.Bind()
	o.Material.Shader.SetUniformMat4f(graphics.UniformModel, o.Transform.BuildMatrix())
	cam.Bind(o.Material.Shader)
	return nil
}

// Draw renders o with an indexed draw of its whole index buffer.
func (r *Renderer) Draw(o *graphics.GameObject, cam *graphics.Camera) error {
	if err := r.bindObject(o, cam); err != nil {
		return err
	}
	n := o.Mesh.IndexCount()
	r.gl.DrawElements(graphics.Triangles, int32(n), graphics.UnsignedInt, 0)
	r.stats.DrawCalls++
	r.stats.Indices += n
	return nil
}

// DrawNoIndex renders o as an unindexed triangle list. The vertex count is
// derived from the buffer size and the layout stride.
func (r *Renderer) DrawNoIndex(o *graphics.GameObject, cam *graphics.Camera) error {
	if err := r.bindObject(o, cam); err != nil {
		return err
	}
	n := o.Mesh.VAO.VertexCount()
	r.gl.DrawArrays(graphics.Triangles, 0, int32(n))
	r.stats.DrawCalls++
	r.stats.Vertices += n
	return nil
}

// DrawBatch renders mesh once per transform. Material, mesh and camera are
// bound once; only the model matrix changes between draws.
func (r *Renderer) DrawBatch(mat *graphics.Material, mesh *graphics.Mesh, cam *graphics.Camera, transforms []graphics.Transform) error {
	if !mat.Shader.Valid() {
		r.stats.Skipped += len(transforms)
		return graphics.ErrInvalidProgram
	}
	if len(transforms) == 0 {
		return nil
	}
	mesh.Bind()
	mat.Bind()
	cam.Bind(mat.Shader)
	n := mesh.IndexCount()
	for i := range transforms {
		mat.Shader.SetUniformMat4f(graphics.UniformModel, transforms[i].BuildMatrix())
		r.gl.DrawElements(graphics.Triangles, int32(n), graphics.UnsignedInt, 0)
	}
	r.stats.DrawCalls += len(transforms)
	r.stats.Indices += n * len(transforms)
	return nil
}

// Render clears the frame and runs every renderable in order.
func (r *Renderer) Render(ctx RenderContext) {
	ctx.Renderer = r
	r.Clear()
	for _, rb := range r.renderables {
		rb.Render(ctx)
	}
}

// Stats returns the counters accumulated since the last reset.
func (r *Renderer) Stats() Stats { return r.stats }

func (r *Renderer) ResetStats() { r.stats = Stats{} }

// Logger is the logger renderables report per-frame errors to.
func (r *Renderer) Logger() *log.Logger { return r.lg }

// SetViewport resizes the GL viewport and notifies every renderable.
func (r *Renderer) SetViewport(width, height int) {
	r.gl.Viewport(0, 0, int32(width), int32(height))
	for _, rb := range r.renderables {
		rb.SetViewport(width, height)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
	r.renderables = nil
}
