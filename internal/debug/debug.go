package debug

import (
	"fmt"

	"product-viewer/internal/shell"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 18
	padding    = 12
	lineHeight = fontSize + 4
	// Text is rebuilt every updateInterval frames to keep allocations down.
	updateInterval = 30
)

var (
	fpsColor    = rl.NewColor(22, 163, 74, 255)
	statusColor = rl.NewColor(51, 65, 85, 255)
)

// Debug draws the diagnostics overlay in the top-right corner. Everything is off by default.
type Debug struct {
	ShowFPS    bool
	ShowStatus bool
	status     func() shell.Status
	frameCount uint32
	fpsText    string
	statusText []string
}

// New returns an overlay that reads viewer status from status. status may be nil when ShowStatus
// is never turned on.
func New(status func() shell.Status) *Debug {
	return &Debug{status: status}
}

// Toggle flips both overlays together.
func (d *Debug) Toggle() {
	on := !(d.ShowFPS || d.ShowStatus)
	d.ShowFPS, d.ShowStatus = on, on && d.status != nil
	d.fpsText, d.statusText = "", nil
}

// Draw renders the enabled overlays. Call last in the 2D pass.
func (d *Debug) Draw() {
	d.frameCount++
	refresh := d.frameCount%updateInterval == 0 ||
		(d.ShowFPS && d.fpsText == "") ||
		(d.ShowStatus && d.statusText == nil)

	y := int32(padding)
	if d.ShowFPS {
		if refresh {
			d.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(d.fpsText, y, fpsColor)
		y += lineHeight
	}
	if d.ShowStatus && d.status != nil {
		if refresh {
			d.statusText = statusLines(d.status())
		}
		for _, line := range d.statusText {
			drawRight(line, y, statusColor)
			y += lineHeight
		}
	}
}

func statusLines(st shell.Status) []string {
	lines := []string{
		fmt.Sprintf("model: %s (%s)", st.Asset, st.Surface),
		fmt.Sprintf("camera: %s az %.2f polar %.2f dist %.2f", st.Mode, st.Azimuth, st.Polar, st.Distance),
		fmt.Sprintf("autorotate: %v  dropped commands: %d", st.AutoRotate, st.Misses),
	}
	if st.Error != "" {
		lines = append(lines, "error: "+st.Error)
	}
	return lines
}

func drawRight(text string, y int32, c rl.Color) {
	if text == "" {
		return
	}
	x := int32(rl.GetScreenWidth()) - rl.MeasureText(text, fontSize) - padding
	rl.DrawText(text, x, y, fontSize, c)
}
