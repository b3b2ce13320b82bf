package graphics

import (
	"product-viewer/internal/camera"
	"product-viewer/internal/chrome"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input maps mouse and keyboard to the orbit controller and the Reset View pill.
type Input struct {
	cam      *camera.Controller
	onReset  func()
	dragging bool
	hovered  bool
}

// NewInput returns an Input that drives cam and calls onReset for the pill and the R key.
func NewInput(cam *camera.Controller, onReset func()) *Input {
	return &Input{cam: cam, onReset: onReset}
}

// ResetHovered reports whether the pointer was over the pill on the last Update.
func (in *Input) ResetHovered() bool {
	return in.hovered
}

// Update reads this frame's input. keyboard is false while the console owns the keys.
func (in *Input) Update(l chrome.Layout, keyboard bool) {
	mouse := rl.GetMousePosition()
	in.hovered = l.HitReset(mouse.X, mouse.Y)
	if in.hovered {
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	} else {
		rl.SetMouseCursor(rl.MouseCursorDefault)
	}

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft) && in.hovered:
		in.onReset()
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		in.dragging = true
		in.cam.BeginDrag()
	case in.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft):
		d := rl.GetMouseDelta()
		in.cam.Drag(d.X, d.Y)
	case in.dragging:
		in.dragging = false
		in.cam.EndDrag()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		in.cam.Zoom(wheel)
	}
	// Right drag would pan in a general orbit control; panning is disabled here.
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		in.cam.Pan(d.X, d.Y)
	}

	if keyboard && rl.IsKeyPressed(rl.KeyR) {
		in.onReset()
	}
}
