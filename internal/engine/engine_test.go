package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"maccis/internal/assets"
	"maccis/internal/config"
	"maccis/internal/graphics"
	"maccis/internal/graphics/gltest"
	"maccis/internal/input"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func spritePNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assetFS(t testing.TB) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{
		"assets/textures/sprite.png": {Data: spritePNG(t, 32, 16)},
	}
	for _, name := range []string{"2D_shader.vert", "shader.vert"} {
		fsys["assets/shaders/"+name] = &fstest.MapFile{Data: []byte(gltest.VertexSource)}
	}
	for _, name := range []string{"2D_shader.frag", "shader.frag", "textured.frag"} {
		fsys["assets/shaders/"+name] = &fstest.MapFile{Data: []byte(gltest.FragmentSource)}
	}
	return fsys
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Assets.Sprite = "textures/sprite.png"
	cfg.Render.MaxFPS = 0
	return cfg
}

func newEngine(t testing.TB, gl *gltest.Recorder, fsys fstest.MapFS) *Engine {
	t.Helper()
	e, err := Init(Options{
		Config: testConfig(),
		GL:     gl,
		Reader: assets.FSReader{FS: fsys},
		Logger: quietLogger(),
		Width:  800,
		Height: 600,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestInitBuildsScene(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	for _, name := range []string{Shader2D, Shader3D, ShaderTextured} {
		if !e.Program(name).Valid() {
			t.Errorf("program %s invalid", name)
		}
	}
	if e.Program("missing").Valid() {
		t.Error("unknown program reported valid")
	}
	if e.DefaultObject.Transform.Position != (mgl32.Vec3{0, 0, -5}) {
		t.Errorf("default object at %v", e.DefaultObject.Transform.Position)
	}
	if tex := e.DefaultObject.Material.Texture; tex == nil || tex.Slot != glyphSlot {
		t.Errorf("default object texture = %+v", tex)
	}
	if e.Model.Mesh.IndexCount() != 36 || e.Model.Material.Texture == nil {
		t.Errorf("model indices %d texture %v", e.Model.Mesh.IndexCount(), e.Model.Material.Texture)
	}

	s := e.DefaultSprite
	if s == nil {
		t.Fatal("no default sprite")
	}
	// centred on half the texture size, so the quad covers [0,w]x[0,h]
	if s.Vertices[0].Position != (mgl32.Vec2{0, 0}) || s.Vertices[2].Position != (mgl32.Vec2{32, 16}) {
		t.Errorf("sprite corners %v %v", s.Vertices[0].Position, s.Vertices[2].Position)
	}
	if gl.ViewportXY != [4]int32{0, 0, 800, 600} {
		t.Errorf("viewport = %v", gl.ViewportXY)
	}
	if e.GUICamera.Kind != graphics.ProjectionOrthographic || e.MainCamera.FOV != 90 {
		t.Errorf("cameras %v %v", e.GUICamera.Kind, e.MainCamera.FOV)
	}
}

func TestUpdateDrawsSceneThenSprites(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	gl.Draws = nil
	e.Update(input.Snapshot{})

	if len(gl.Draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(gl.Draws))
	}
	want := []struct {
		count   int32
		program uint32
	}{
		{6, e.Program(ShaderTextured).ID},
		{36, e.Program(Shader3D).ID},
		{6, e.Program(Shader2D).ID},
	}
	for i, w := range want {
		if d := gl.Draws[i]; d.Count != w.count || d.Program != w.program {
			t.Errorf("draw %d: count %d program %d, want %d %d", i, d.Count, d.Program, w.count, w.program)
		}
	}
	if st := e.Stats(); st.DrawCalls != 3 || st.Skipped != 0 {
		t.Errorf("stats = %+v", st)
	}
	if gl.Clears != 1 {
		t.Errorf("clears = %d", gl.Clears)
	}
	if code := gl.GetError(); code != graphics.NoError {
		t.Errorf("gl error 0x%x", code)
	}
}

func TestUpdateSpinsObjects(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	for i := 0; i < 45; i++ {
		e.Update(input.Snapshot{})
	}
	// 45 frames at 2 degrees: model right axis turns onto +Z, the quad the
	// opposite way
	if r := e.Model.Transform.Right; !near(r, mgl32.Vec3{0, 0, 1}, 1e-4) {
		t.Errorf("model right = %v", r)
	}
	if r := e.DefaultObject.Transform.Right; !near(r, mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("quad right = %v", r)
	}
}

func TestUpdateMovesCamera(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	var in input.Snapshot
	in.Held[input.ActionMoveForward] = true
	for i := 0; i < 60; i++ {
		e.Update(in)
	}
	if p := e.MainCamera.Position; !near(p, mgl32.Vec3{0, 0, -5}, 1e-3) {
		t.Errorf("camera at %v after one second forward", p)
	}
}

func TestInvalidShaderSkipsOnlyItsObjects(t *testing.T) {
	gl := gltest.New()
	fsys := assetFS(t)
	fsys["assets/shaders/2D_shader.frag"] = &fstest.MapFile{Data: []byte("broken")}
	e := newEngine(t, gl, fsys)
	defer e.Clean()

	if e.Program(Shader2D).Valid() {
		t.Fatal("broken shader reported valid")
	}
	gl.Draws = nil
	e.Update(input.Snapshot{})
	if len(gl.Draws) != 2 {
		t.Errorf("draws = %d, want the two scene objects", len(gl.Draws))
	}
}

func TestReloadShaders(t *testing.T) {
	gl := gltest.New()
	fsys := assetFS(t)
	e := newEngine(t, gl, fsys)
	defer e.Clean()

	old3D, old2D := e.Program(Shader3D), e.Program(Shader2D)
	if err := e.ReloadShaders(); err != nil {
		t.Fatal(err)
	}
	p3D, p2D := e.Program(Shader3D), e.Program(Shader2D)
	if p3D.ID == old3D.ID || p2D.ID == old2D.ID {
		t.Fatal("programs not rebuilt")
	}
	if e.Model.Material.Shader != p3D || e.sprites.Batch.Shader != p2D {
		t.Error("objects still reference the old programs")
	}
	if gl.Program(old3D.ID) != nil {
		t.Error("old program not deleted")
	}
	if gl.LivePrograms() != 3 || gl.LiveShaders() != 0 {
		t.Errorf("live programs %d shaders %d", gl.LivePrograms(), gl.LiveShaders())
	}

	// a broken file keeps the last good program
	fsys["assets/shaders/shader.frag"] = &fstest.MapFile{Data: []byte("broken")}
	err := e.ReloadShaders()
	if err == nil || !strings.Contains(err.Error(), Shader3D) {
		t.Fatalf("err = %v", err)
	}
	if e.Program(Shader3D) != p3D {
		t.Error("failed reload replaced the program")
	}

	gl.Draws = nil
	e.Update(input.Snapshot{})
	if len(gl.Draws) != 3 {
		t.Errorf("draws after reload = %d", len(gl.Draws))
	}
}

func TestReloadKeyRebuildsShaders(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	old := e.Program(ShaderTextured)
	var in input.Snapshot
	in.Pressed[input.ActionReload] = true
	e.Update(in)
	if e.Program(ShaderTextured).ID == old.ID || e.DefaultObject.Material.Shader != e.Program(ShaderTextured) {
		t.Error("reload action did not swap programs")
	}
}

func TestResize(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	defer e.Clean()

	e.Resize(400, 200)
	if gl.ViewportXY != [4]int32{0, 0, 400, 200} {
		t.Errorf("viewport = %v", gl.ViewportXY)
	}
	if e.MainCamera.Projection != graphics.Perspective(90, 2, 1, 100) {
		t.Error("main camera projection not updated")
	}
	if e.GUICamera.Projection != graphics.Orthographic(400, 200, -1, 1) {
		t.Error("gui camera projection not updated")
	}
	e.Resize(0, 0)
	if gl.ViewportXY != [4]int32{0, 0, 400, 200} {
		t.Error("zero resize applied")
	}
}

func TestCleanReleasesEverything(t *testing.T) {
	gl := gltest.New()
	e := newEngine(t, gl, assetFS(t))
	e.Update(input.Snapshot{})

	e.Clean()
	e.Clean()
	live := map[string]int{
		"buffers":  gl.LiveBuffers(),
		"arrays":   gl.LiveVertexArrays(),
		"shaders":  gl.LiveShaders(),
		"programs": gl.LivePrograms(),
		"textures": gl.LiveTextures(),
	}
	for kind, n := range live {
		if n != 0 {
			t.Errorf("%d %s leaked", n, kind)
		}
	}
	if e.arena.Used() != 0 {
		t.Errorf("arena still holds %d bytes", e.arena.Used())
	}
}

func TestInitFailsWithoutGPUResources(t *testing.T) {
	gl := gltest.New()
	gl.FailGen = true
	_, err := Init(Options{
		Config: testConfig(),
		GL:     gl,
		Reader: assets.FSReader{FS: assetFS(t)},
		Logger: quietLogger(),
		Width:  100,
		Height: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if gl.LiveBuffers()+gl.LiveVertexArrays()+gl.LiveTextures()+gl.LivePrograms() != 0 {
		t.Error("failed init leaked GPU objects")
	}
}

func TestHotReload(t *testing.T) {
	dir := t.TempDir()
	shaderDir := filepath.Join(dir, "assets", "shaders")
	if err := os.MkdirAll(shaderDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, data := range assetFS(t) {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfgPath := filepath.Join(dir, "maccis.toml")
	if err := os.WriteFile(cfgPath, []byte("[render]\nmax_fps = 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Assets.Dir = filepath.Join(dir, "assets")
	cfg.HotReload = true

	gl := gltest.New()
	e, err := Init(Options{Config: cfg, ConfigPath: cfgPath, GL: gl, Logger: quietLogger(), Width: 64, Height: 64})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Clean()
	if e.watcher == nil {
		t.Fatal("watcher not started")
	}

	old := e.Program(Shader3D)
	if err := os.WriteFile(filepath.Join(shaderDir, "shader.frag"), []byte(gltest.FragmentSource+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgPath, []byte("[render]\nmax_fps = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		e.Update(input.Snapshot{})
		if e.Program(Shader3D).ID != old.ID && e.settings.FPSLimit() == 30 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("program %d -> %d, fps limit %d", old.ID, e.Program(Shader3D).ID, e.settings.FPSLimit())
}

func TestReloadRepairsShadersThatFailedAtInit(t *testing.T) {
	gl := gltest.New()
	fsys := assetFS(t)
	good := fsys["assets/shaders/shader.frag"]
	fsys["assets/shaders/shader.frag"] = &fstest.MapFile{Data: []byte("broken")}
	fsys["assets/shaders/2D_shader.frag"] = &fstest.MapFile{Data: []byte("broken")}
	e := newEngine(t, gl, fsys)
	defer e.Clean()

	fsys["assets/shaders/shader.frag"] = good
	fsys["assets/shaders/2D_shader.frag"] = good
	if err := e.ReloadShaders(); err != nil {
		t.Fatal(err)
	}
	if e.Model.Material.Shader != e.Program(Shader3D) {
		t.Error("model not given the 3d program")
	}
	if e.sprites.Batch.Shader != e.Program(Shader2D) {
		t.Error("sprite batch not given the 2d program")
	}
	if e.Program(Shader2D) == e.Program(Shader3D) {
		t.Error("programs share a handle")
	}
}
