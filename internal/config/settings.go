package config

import "sync"

// Settings holds the values that may change while the engine runs, such as
// after a configuration reload. Safe for concurrent use.
type Settings struct {
	mu         sync.RWMutex
	fpsLimit   int
	clearColor [4]float32
}

func NewSettings(c Config) *Settings {
	s := &Settings{}
	s.Apply(c)
	return s
}

// Apply copies the runtime values from c.
func (s *Settings) Apply(c Config) {
	s.SetFPSLimit(c.Render.MaxFPS)
	s.mu.Lock()
	s.clearColor = c.Render.ClearColor
	s.mu.Unlock()
}

// FPSLimit returns the current frame cap; 0 is uncapped.
func (s *Settings) FPSLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fpsLimit
}

// SetFPSLimit sets the frame cap.
func (s *Settings) SetFPSLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clamp to reasonable values
	if limit < 0 {
		limit = 0
	}
	if limit > 500 {
		limit = 500
	}

	s.fpsLimit = limit
}

func (s *Settings) ClearColor() [4]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearColor
}
