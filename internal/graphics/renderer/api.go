package renderer

import (
	"maccis/internal/graphics"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Renderer *Renderer
	Camera   *graphics.Camera // 3D perspective camera
	UICamera *graphics.Camera // screen-space orthographic camera
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
