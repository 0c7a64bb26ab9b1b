// Package config loads the engine configuration from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where the engine looks for its configuration.
const DefaultPath = "maccis.toml"

type Config struct {
	HotReload bool         `toml:"hot_reload"`
	Window    WindowConfig `toml:"window"`
	Camera    CameraConfig `toml:"camera"`
	Render    RenderConfig `toml:"render"`
	Assets    AssetsConfig `toml:"assets"`
	Log       LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type CameraConfig struct {
	FOV              float32 `toml:"fov"` // degrees
	MoveSpeed        float32 `toml:"move_speed"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
}

type RenderConfig struct {
	ClearColor       [4]float32 `toml:"clear_color"`
	MaxFPS           int        `toml:"max_fps"` // 0 is uncapped
	TextureCacheSize int        `toml:"texture_cache_size"`
}

// AssetsConfig paths are relative to Dir. An empty Font selects the
// built-in Go Regular face.
type AssetsConfig struct {
	Dir     string `toml:"dir"`
	Font    string `toml:"font"`
	Sprite  string `toml:"sprite"`
	Shaders string `toml:"shaders"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "maccis", VSync: true},
		Camera: CameraConfig{FOV: 90, MoveSpeed: 5, MouseSensitivity: 0.2},
		Render: RenderConfig{MaxFPS: 60, TextureCacheSize: 32},
		Assets: AssetsConfig{Dir: "assets", Sprite: "textures/test.bmp", Shaders: "shaders"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML into cfg, rejecting unknown keys, and validates it.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return err
	}
	cfg.Validate()
	return nil
}

// Validate clamps out of range values to something usable.
func (c *Config) Validate() {
	d := Default()
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = d.Window.Width, d.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = d.Window.Title
	}
	c.Camera.FOV = clamp(c.Camera.FOV, 30, 120)
	if c.Camera.MoveSpeed <= 0 {
		c.Camera.MoveSpeed = d.Camera.MoveSpeed
	}
	if c.Camera.MouseSensitivity <= 0 {
		c.Camera.MouseSensitivity = d.Camera.MouseSensitivity
	}
	for i, v := range c.Render.ClearColor {
		c.Render.ClearColor[i] = clamp(v, 0, 1)
	}
	if c.Render.MaxFPS < 0 {
		c.Render.MaxFPS = 0
	}
	if c.Render.MaxFPS > 500 {
		c.Render.MaxFPS = 500
	}
	if c.Render.TextureCacheSize < 1 {
		c.Render.TextureCacheSize = d.Render.TextureCacheSize
	}
	if c.Assets.Shaders == "" {
		c.Assets.Shaders = d.Assets.Shaders
	}
}

// AssetPath joins a configured asset path onto the asset directory.
func (c *Config) AssetPath(elem ...string) string {
	return filepath.Join(append([]string{c.Assets.Dir}, elem...)...)
}

// ShaderPath resolves a shader file name inside the shader directory.
func (c *Config) ShaderPath(name string) string {
	return c.AssetPath(c.Assets.Shaders, name)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
