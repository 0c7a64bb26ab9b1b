package renderer

import (
	"errors"
	"fmt"

	"maccis/internal/graphics"
)

// SceneLayer draws 3D game objects with the perspective camera. It owns the
// objects' meshes.
type SceneLayer struct {
	Objects []*graphics.GameObject
}

func NewSceneLayer(objects ...*graphics.GameObject) *SceneLayer {
	return &SceneLayer{Objects: objects}
}

func (l *SceneLayer) Init() error { return nil }

func (l *SceneLayer) Render(ctx RenderContext) {
	for i, o := range l.Objects {
		if err := ctx.Renderer.Draw(o, ctx.Camera); err != nil {
			ctx.Renderer.Logger().Warn("skipping object", "index", i, "err", err)
		}
	}
}

func (l *SceneLayer) SetViewport(width, height int) {}

func (l *SceneLayer) Dispose() {
	for _, o := range l.Objects {
		o.Mesh.Delete()
	}
	l.Objects = nil
}

// SpriteLayer batches its sprites into one 2D pass drawn with the UI camera.
type SpriteLayer struct {
	gl      graphics.GL
	shader  graphics.ShaderProgram
	Batch   *Batch2D
	Sprites []*Renderable2D
}

func NewSpriteLayer(gl graphics.GL, shader graphics.ShaderProgram, sprites ...*Renderable2D) *SpriteLayer {
	return &SpriteLayer{gl: gl, shader: shader, Sprites: sprites}
}

func (l *SpriteLayer) Init() error {
	b, err := NewBatch2D(l.gl, l.shader)
	if err != nil {
		return err
	}
	l.Batch = b
	return nil
}

// Render submits sprites in order. A sprite with a different texture than
// the one before it starts a new pass. Sprites beyond batch capacity are
// dropped for the frame.
func (l *SpriteLayer) Render(ctx RenderContext) {
	rest := l.Sprites
	for len(rest) > 0 {
		var err error
		if rest, err = l.pass(ctx, rest); err != nil {
			ctx.Renderer.Logger().Error("sprite batch", "err", err)
			return
		}
	}
}

// pass draws a prefix of sprites sharing one texture and returns the
// sprites left for the next pass.
func (l *SpriteLayer) pass(ctx RenderContext, sprites []*Renderable2D) ([]*Renderable2D, error) {
	if err := l.Batch.Begin(); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	var rest []*Renderable2D
	for i, s := range sprites {
		err := l.Batch.Submit(s)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrTextureMismatch) {
			rest = sprites[i:]
		} else {
			ctx.Renderer.Logger().Warn("sprites dropped", "count", len(sprites)-i, "err", err)
		}
		break
	}
	if err := l.Batch.End(); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	n := l.Batch.Count()
	if err := l.Batch.Flush(ctx.UICamera); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	if n > 0 {
		ctx.Renderer.stats.DrawCalls++
		ctx.Renderer.stats.Indices += n
	}
	return rest, nil
}

func (l *SpriteLayer) SetViewport(width, height int) {}

func (l *SpriteLayer) Dispose() {
	if l.Batch != nil {
		l.Batch.Delete()
		l.Batch = nil
	}
}
