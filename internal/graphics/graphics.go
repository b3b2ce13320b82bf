package graphics

import (
	"context"

	"product-viewer/internal/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Loop is what Run drives once per frame.
type Loop interface {
	// Update handles input and advances state by dt seconds.
	Update(dt float32)
	// Draw renders between BeginDrawing and EndDrawing and is responsible for clearing.
	Draw()
	// Close frees GPU resources while the window still exists.
	Close()
}

// Run opens the window and drives loop until the window is closed or ctx is done.
func Run(ctx context.Context, w config.WindowPrefs, loop Loop) {
	flags := uint32(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	width, height := w.Width, w.Height
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
		width, height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()
	defer loop.Close()

	// ESC closes the console, not the window.
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(w.TargetFPS)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		loop.Update(rl.GetFrameTime())

		rl.BeginDrawing()
		loop.Draw()
		rl.EndDrawing()
	}
}
