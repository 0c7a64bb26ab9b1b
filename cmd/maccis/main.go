package main

import (
	"flag"
	"runtime"

	"maccis/internal/config"
	"maccis/internal/engine"
	"maccis/internal/graphics/opengl"
	"maccis/internal/input"
	"maccis/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML configuration")
	flag.Parse()

	// closer exits the process once the bound cleanups have run
	defer closer.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("using default configuration", "err", err)
	}

	lg, logFile, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(func() {
		if err := logFile.Close(); err != nil {
			log.Error("closing log file", "err", err)
		}
	})

	if err := run(cfg, *configPath, lg); err != nil {
		lg.Error("exiting", "err", err)
		closer.Fatalln(err)
	}
}

func run(cfg config.Config, configPath string, lg *log.Logger) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	ctx, err := opengl.Init()
	if err != nil {
		return err
	}
	lg.Info("opengl ready", "version", ctx.Version())

	width, height := window.GetFramebufferSize()
	eng, err := engine.Init(engine.Options{
		Config:     cfg,
		ConfigPath: configPath,
		GL:         ctx,
		Logger:     lg,
		Width:      width,
		Height:     height,
	})
	if err != nil {
		return err
	}
	defer eng.Clean()

	im := input.NewManager()
	im.Install(window)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		eng.Resize(width, height)
	})

	runLoop(window, eng, im)
	return nil
}

func setupWindow(wc config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(wc.Width, wc.Height, wc.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if wc.VSync {
		glfw.SwapInterval(1)
	} else {
		// the engine's FPS limiter paces frames instead
		glfw.SwapInterval(0)
	}
	return window, nil
}

func runLoop(window *glfw.Window, eng *engine.Engine, im *input.Manager) {
	for !window.ShouldClose() {
		glfw.PollEvents()

		in := im.Snapshot()
		if in.Pressed[input.ActionQuit] {
			window.SetShouldClose(true)
			continue
		}

		eng.Update(in)
		window.SwapBuffers()
		eng.Wait()
	}
}
