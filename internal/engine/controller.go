package engine

import (
	"maccis/internal/graphics"
	"maccis/internal/input"
)

// CameraController flies a camera from an input snapshot: WASD along the
// view plane, Space and Shift along up, and mouse look while the look
// action is held.
type CameraController struct {
	MoveSpeed   float32 // units per second
	Sensitivity float32 // degrees per pixel
}

// Apply moves cam for one frame lasting dt seconds. Mouse look is per pixel
// and does not scale with dt.
func (c CameraController) Apply(cam *graphics.Camera, in input.Snapshot, dt float32) {
	step := c.MoveSpeed * dt

	var dx, dy, dz float32
	if in.Held[input.ActionMoveForward] {
		dz -= step
	}
	if in.Held[input.ActionMoveBackward] {
		dz += step
	}
	if in.Held[input.ActionMoveLeft] {
		dx -= step
	}
	if in.Held[input.ActionMoveRight] {
		dx += step
	}
	if in.Held[input.ActionMoveDown] {
		dy -= step
	}
	if in.Held[input.ActionMoveUp] {
		dy += step
	}
	if dx != 0 || dy != 0 || dz != 0 {
		cam.TranslateLocal(dx, dy, dz)
	}

	if in.Held[input.ActionLook] {
		// yaw first, then pitch about the new right axis
		if in.MouseDX != 0 {
			cam.Rotate(0, in.MouseDX*c.Sensitivity, 0)
		}
		if in.MouseDY != 0 {
			cam.Rotate(-in.MouseDY*c.Sensitivity, 0, 0)
		}
	}
}
