// Package input maps glfw key and mouse events onto engine actions and
// hands the engine one Snapshot per frame.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical engine action, not a physical key
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionLook // camera rotates with the mouse while held
	ActionReload
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// Snapshot is the input state the engine sees for one frame. Mouse deltas
// are in screen pixels, positive right and down.
type Snapshot struct {
	Held    [ActionCount]bool
	Pressed [ActionCount]bool
	MouseDX float32
	MouseDY float32
}

// Manager accumulates window events between frames. Event handlers may be
// called from glfw callbacks; Snapshot is taken once per frame.
type Manager struct {
	mu sync.Mutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	held    [ActionCount]bool
	pressed [ActionCount]bool

	haveCursor bool
	lastX      float64
	lastY      float64
	dx, dy     float64
}

// NewManager creates a Manager with the default bindings: WASD to move,
// Space and Shift for up and down, middle mouse to look, F5 to reload
// shaders and Escape to quit.
func NewManager() *Manager {
	m := &Manager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionMoveUp)
	m.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	m.BindKey(glfw.KeyRightShift, ActionMoveDown)
	m.BindKey(glfw.KeyF5, ActionReload)
	m.BindKey(glfw.KeyEscape, ActionQuit)

	m.BindMouseButton(glfw.MouseButtonMiddle, ActionLook)

	return m
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mouseButtonToActions[button] = append(m.mouseButtonToActions[button], action)
}

func (m *Manager) set(actions []Action, down bool) {
	for _, act := range actions {
		if down && !m.held[act] {
			m.pressed[act] = true
		}
		m.held[act] = down
	}
}

// HandleKeyEvent processes a key event. Repeats count as held.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if actions, ok := m.keyToActions[key]; ok {
		m.set(actions, action == glfw.Press || action == glfw.Repeat)
	}
}

// HandleMouseButtonEvent processes a mouse button event.
func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if actions, ok := m.mouseButtonToActions[button]; ok {
		m.set(actions, action == glfw.Press)
	}
}

// HandleCursorPos accumulates cursor movement. The first position only
// establishes the origin.
func (m *Manager) HandleCursorPos(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.haveCursor {
		m.dx += x - m.lastX
		m.dy += y - m.lastY
	}
	m.lastX, m.lastY = x, y
	m.haveCursor = true
}

// Snapshot returns the state for this frame and resets the per-frame
// presses and mouse deltas.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Held:    m.held,
		Pressed: m.pressed,
		MouseDX: float32(m.dx),
		MouseDY: float32(m.dy),
	}
	m.pressed = [ActionCount]bool{}
	m.dx, m.dy = 0, 0
	return s
}

// Install routes the window's key, mouse button and cursor callbacks into m.
func (m *Manager) Install(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		m.HandleCursorPos(x, y)
	})
}
