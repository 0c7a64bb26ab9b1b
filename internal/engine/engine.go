// Package engine owns the rendering state of a running game and drives it
// through Init, Update and Clean.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"maccis/internal/assets"
	"maccis/internal/config"
	"maccis/internal/graphics"
	"maccis/internal/graphics/renderer"
	"maccis/internal/input"
	"maccis/internal/profiling"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	arenaSize     = 8 << 20
	fontPixelSize = 48
	glyphSlot     = 1
	spriteSlot    = 0
	spinPerFrame  = 2 // degrees
	frameStep     = float32(1.0 / 60) // seconds per Update
)

// Shader program names.
const (
	Shader2D       = "2d"
	Shader3D       = "3d"
	ShaderTextured = "textured"
)

// Options are the collaborators Init needs. GL must be current on the
// calling goroutine.
type Options struct {
	Config     config.Config
	ConfigPath string
	GL         graphics.GL
	Reader     assets.FileReader
	Logger     *log.Logger
	Width      int
	Height     int
}

type shaderSource struct {
	vert, frag string
	program    graphics.ShaderProgram
}

// Engine is the single owner of all GPU resources and per-frame state.
// All methods must be called on the GL goroutine.
type Engine struct {
	cfg        config.Config
	configPath string
	settings   *config.Settings
	gl         graphics.GL
	lg         *log.Logger
	reader     assets.FileReader

	arena    *assets.Arena
	font     *assets.Font
	textures *graphics.TextureCache
	shaders  map[string]*shaderSource

	MainCamera *graphics.Camera
	GUICamera  *graphics.Camera

	DefaultObject *graphics.GameObject
	Model         *graphics.GameObject
	DefaultSprite *renderer.Renderable2D
	glyphTexture  *graphics.Texture

	renderer   *renderer.Renderer
	scene      *renderer.SceneLayer
	sprites    *renderer.SpriteLayer
	controller CameraController
	profiler   *profiling.Profiler
	limiter    *FPSLimiter
	watcher    *assets.Watcher

	frame uint64
}

// Init loads shaders, fonts and textures and builds the default scene.
// Shader and texture problems are logged and leave the affected object
// undrawn; only failures to allocate core GPU resources are returned.
func Init(opts Options) (*Engine, error) {
	lg := opts.Logger
	if lg == nil {
		lg = log.Default()
	}
	if opts.Reader == nil {
		opts.Reader = assets.DiskReader{}
	}
	cfg := opts.Config
	cfg.Validate()

	e := &Engine{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		settings:   config.NewSettings(cfg),
		gl:         opts.GL,
		lg:         lg,
		reader:     opts.Reader,
		arena:      assets.NewArena(arenaSize),
		profiler:   profiling.New(),
		controller: CameraController{
			MoveSpeed:   cfg.Camera.MoveSpeed,
			Sensitivity: cfg.Camera.MouseSensitivity,
		},
		shaders: map[string]*shaderSource{
			Shader2D:       {vert: "2D_shader.vert", frag: "2D_shader.frag"},
			Shader3D:       {vert: "shader.vert", frag: "shader.frag"},
			ShaderTextured: {vert: "shader.vert", frag: "textured.frag"},
		},
	}
	e.limiter = NewFPSLimiter(e.settings.FPSLimit)

	if err := e.init(opts.Width, opts.Height); err != nil {
		e.Clean()
		return nil, err
	}
	return e, nil
}

func (e *Engine) init(width, height int) error {
	defer e.profiler.Track("engine.Init")()

	font, err := e.loadFont()
	if err != nil {
		e.lg.Error("could not load font", "err", err)
	}
	e.font = font

	for name, s := range e.shaders {
		s.program = e.loadShader(name, s)
	}

	e.GUICamera = graphics.NewOrthoCamera(float32(width), float32(height))
	e.MainCamera = graphics.NewCamera(float32(width), float32(height), e.cfg.Camera.FOV)

	tc, err := graphics.NewTextureCache(e.gl, e.reader, assets.ImageDecoder{}, e.cfg.Render.TextureCacheSize, e.lg)
	if err != nil {
		return fmt.Errorf("texture cache: %w", err)
	}
	e.textures = tc

	if e.font != nil {
		g := e.font.Glyph('A')
		if e.glyphTexture, err = graphics.BuildTextureFromBitmap(e.gl, &g, glyphSlot); err != nil {
			e.lg.Warn("could not build glyph texture", "err", err)
		}
	}

	e.DefaultObject, err = graphics.NewQuadObject(e.gl, e.shaders[ShaderTextured].program, e.glyphTexture)
	if err != nil {
		return err
	}
	e.DefaultObject.Transform.SetPosition(0, 0, -5)

	var spriteTex *graphics.Texture
	if e.cfg.Assets.Sprite != "" {
		path := e.cfg.AssetPath(e.cfg.Assets.Sprite)
		if spriteTex, err = e.textures.Get(path, spriteSlot); err != nil {
			e.lg.Warn("could not load sprite texture", "path", path, "err", err)
		}
	}
	if spriteTex != nil {
		s := renderer.CreateSpriteFromTexture(1,
			mgl32.Vec2{float32(spriteTex.Width) / 2, float32(spriteTex.Height) / 2}, spriteTex)
		e.DefaultSprite = &s
	}

	start := time.Now()
	e.Model, err = graphics.GameObjectFromRawModel(e.gl, assets.Cube(), e.shaders[Shader3D].program)
	if err != nil {
		return err
	}
	e.Model.Material.SetTexture(spriteTex)
	e.lg.Debug("model loaded", "vertices", assets.Cube().VertexCount(), "took", time.Since(start))

	e.scene = renderer.NewSceneLayer(e.DefaultObject, e.Model)
	var sprites []*renderer.Renderable2D
	if e.DefaultSprite != nil {
		sprites = append(sprites, e.DefaultSprite)
	}
	e.sprites = renderer.NewSpriteLayer(e.gl, e.shaders[Shader2D].program, sprites...)

	e.renderer, err = renderer.New(e.gl, mgl32.Vec4(e.settings.ClearColor()), e.lg, e.scene, e.sprites)
	if err != nil {
		// New disposed the layers, including the meshes built above
		e.DefaultObject, e.Model = nil, nil
		return err
	}
	e.Resize(width, height)

	if e.cfg.HotReload {
		e.startWatcher()
	}
	return nil
}

func (e *Engine) loadFont() (*assets.Font, error) {
	name := e.cfg.Assets.Font
	switch {
	case name == "":
		return assets.LoadTrueTypeFont(nil, fontPixelSize, e.arena)
	case strings.EqualFold(filepath.Ext(name), ".fnt"):
		return assets.LoadBitmapFont(e.cfg.AssetPath(name), e.reader, e.arena)
	}
	data, err := e.reader.ReadFile(e.cfg.AssetPath(name))
	if err != nil {
		return nil, err
	}
	defer e.reader.FreeFile(data)
	return assets.LoadTrueTypeFont(data, fontPixelSize, e.arena)
}

func (e *Engine) loadShader(name string, s *shaderSource) graphics.ShaderProgram {
	p, err := graphics.LoadShaderProgram(e.gl, e.reader, e.cfg.ShaderPath(s.vert), e.cfg.ShaderPath(s.frag), e.lg)
	if err != nil {
		e.lg.Error("shader unavailable", "name", name, "err", err)
	}
	return p
}

func (e *Engine) startWatcher() {
	paths := []string{filepath.Join(e.cfg.Assets.Dir, e.cfg.Assets.Shaders)}
	if e.configPath != "" {
		paths = append(paths, filepath.Dir(e.configPath))
	}
	w, err := assets.NewWatcher(e.lg, paths...)
	if err != nil {
		e.lg.Warn("hot reload disabled", "err", err)
		return
	}
	e.watcher = w
	e.lg.Info("watching for changes", "paths", paths)
}

// Program returns the current program registered under name.
func (e *Engine) Program(name string) graphics.ShaderProgram {
	if s, ok := e.shaders[name]; ok {
		return s.program
	}
	return graphics.ShaderProgram{}
}

// ReloadShaders rebuilds every program from disk. A program that fails to
// build keeps its previous version.
func (e *Engine) ReloadShaders() error {
	var errs []error
	for name, s := range e.shaders {
		p, err := graphics.LoadShaderProgram(e.gl, e.reader, e.cfg.ShaderPath(s.vert), e.cfg.ShaderPath(s.frag), e.lg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		old := s.program
		s.program = p
		e.swapProgram(name, p)
		old.Delete()
		e.lg.Info("shader reloaded", "name", name, "program", p.ID)
	}
	return errors.Join(errs...)
}

// swapProgram points every user of the named program at p.
func (e *Engine) swapProgram(name string, p graphics.ShaderProgram) {
	switch name {
	case ShaderTextured:
		if e.DefaultObject != nil {
			e.DefaultObject.Material.Shader = p
		}
	case Shader3D:
		if e.Model != nil {
			e.Model.Material.Shader = p
		}
	case Shader2D:
		if e.sprites != nil && e.sprites.Batch != nil {
			e.sprites.Batch.Shader = p
		}
	}
}

// ReloadConfig re-reads the configuration file and applies the values that
// can change at runtime.
func (e *Engine) ReloadConfig() error {
	if e.configPath == "" {
		return nil
	}
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.settings.Apply(cfg)
	e.renderer.SetClearColor(mgl32.Vec4(e.settings.ClearColor()))
	e.controller = CameraController{MoveSpeed: cfg.Camera.MoveSpeed, Sensitivity: cfg.Camera.MouseSensitivity}
	e.lg.Info("config reloaded", "max_fps", e.settings.FPSLimit())
	return nil
}

func (e *Engine) pollChanges() {
	if e.watcher == nil {
		return
	}
	var shaders bool
	for _, p := range e.watcher.Changed() {
		switch {
		case e.configPath != "" && p == filepath.Clean(e.configPath):
			if err := e.ReloadConfig(); err != nil {
				e.lg.Error("config reload failed", "err", err)
			}
		case strings.HasSuffix(p, ".vert") || strings.HasSuffix(p, ".frag"):
			shaders = true
		}
	}
	if shaders {
		if err := e.ReloadShaders(); err != nil {
			e.lg.Error("shader reload failed", "err", err)
		}
	}
}

// Update advances one frame: applies input, spins the demo objects and
// renders the 3D scene followed by the GUI batch.
func (e *Engine) Update(in input.Snapshot) {
	e.profiler.ResetFrame()
	start := time.Now()
	e.frame++

	func() {
		defer e.profiler.Track("engine.Input")()
		if in.Pressed[input.ActionReload] {
			if err := e.ReloadShaders(); err != nil {
				e.lg.Error("shader reload failed", "err", err)
			}
		}
		e.pollChanges()
		e.controller.Apply(e.MainCamera, in, frameStep)
	}()

	e.DefaultObject.Transform.Rotate(0, -spinPerFrame, 0)
	e.Model.Transform.Rotate(0, spinPerFrame, 0)

	func() {
		defer e.profiler.Track("engine.Render")()
		e.renderer.ResetStats()
		e.renderer.Render(renderer.RenderContext{
			Camera:   e.MainCamera,
			UICamera: e.GUICamera,
		})
	}()

	if code := e.gl.GetError(); code != graphics.NoError {
		e.lg.Warn("gl error", "code", fmt.Sprintf("0x%x", code), "frame", e.frame)
	}

	took := time.Since(start)
	st := e.renderer.Stats()
	e.lg.Debug("update", "frame", e.frame, "took", profiling.FormatMs(took),
		"draws", st.DrawCalls, "indices", st.Indices, "skipped", st.Skipped)
	if budget := e.limiter.FrameBudget(); budget > 0 && took > 2*budget {
		e.lg.Warn("slow frame", "took", profiling.FormatMs(took), "top", e.profiler.TopN(3))
	}
}

// Stats reports the work issued by the last Update.
func (e *Engine) Stats() renderer.Stats { return e.renderer.Stats() }

// Resize updates the viewport and both camera projections.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.MainCamera.SetViewport(float32(width), float32(height))
	e.GUICamera.SetViewport(float32(width), float32(height))
	e.renderer.SetViewport(width, height)
}

// Wait blocks until the next frame is due under the configured FPS cap.
func (e *Engine) Wait() { e.limiter.Wait() }

// Clean releases every GPU resource the engine created. Safe to call more
// than once.
func (e *Engine) Clean() {
	if e.watcher != nil {
		_ = e.watcher.Close()
		e.watcher = nil
	}
	if e.renderer != nil {
		e.renderer.Dispose()
		e.renderer = nil
	} else {
		for _, o := range []*graphics.GameObject{e.DefaultObject, e.Model} {
			if o != nil {
				o.Mesh.Delete()
			}
		}
	}
	e.DefaultObject, e.Model = nil, nil
	if e.textures != nil {
		e.textures.Purge()
	}
	if e.glyphTexture != nil {
		e.glyphTexture.Delete()
		e.glyphTexture = nil
	}
	for _, s := range e.shaders {
		s.program.Delete()
	}
	e.font = nil
	e.arena.Reset()
}
