package terminal

import (
	"unicode/utf8"

	"product-viewer/internal/commands"
	"product-viewer/internal/logger"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	BarHeight = 36
	prompt    = "> "
	fontSize  = 18
	padding   = 8
	// Log lines drawn above the input bar while the console is open.
	maxLinesOnScreen = 12
	lineHeight       = fontSize + 4
	maxLineChars     = 160
)

var (
	barColor    = rl.NewColor(30, 41, 59, 235)
	ruleColor   = rl.NewColor(71, 85, 105, 255)
	historyBg   = rl.NewColor(15, 23, 42, 220)
	historyText = rl.NewColor(203, 213, 225, 255)
)

// Terminal is the in-window console, toggled with the grave key. Lines starting with "cmd " run
// through the command registry; anything else is answered with a hint. Output and errors go to
// the logger, whose recent lines are drawn above the input bar.
type Terminal struct {
	log      *logger.Logger
	reg      *commands.Registry
	inputBuf string
	open     bool
}

// New returns a closed console.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{log: log, reg: reg}
}

// IsOpen reports whether the console is capturing the keyboard.
func (t *Terminal) IsOpen() bool {
	return t.open
}

// Update handles the toggle key and, while open, typing, paste, backspace and enter.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyGrave) {
		t.open = !t.open
		// Swallow the toggle character so it does not end up in the buffer.
		for rl.GetCharPressed() != 0 {
		}
		return
	}
	if !t.open {
		return
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = false
		return
	}
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
	if ctrl && rl.IsKeyPressed(rl.KeyV) {
		t.inputBuf += rl.GetClipboardText()
	} else {
		for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
			t.inputBuf += string(rune(c))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(t.inputBuf) > 0 {
		_, size := utf8.DecodeLastRuneInString(t.inputBuf)
		t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && t.inputBuf != "" {
		line := t.inputBuf
		t.inputBuf = ""
		t.submit(line)
	}
}

func (t *Terminal) submit(line string) {
	t.log.Info(prompt + line)
	args, ok := commands.Parse(line)
	if !ok {
		t.log.Warn("not a command; try: cmd help")
		return
	}
	if err := t.reg.Execute(args); err != nil {
		t.log.WithError(err).Warn("command failed")
	}
}

// Draw draws the input bar and the recent log lines when the console is open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	screenW := int32(rl.GetScreenWidth())
	barY := int32(rl.GetScreenHeight()) - BarHeight

	lines := t.log.Lines()
	if len(lines) > maxLinesOnScreen {
		lines = lines[len(lines)-maxLinesOnScreen:]
	}
	historyH := int32(maxLinesOnScreen*lineHeight + padding)
	historyY := max(barY-historyH, 0)
	rl.DrawRectangle(0, historyY, screenW, barY-historyY, historyBg)
	for i, line := range lines {
		if len(line) > maxLineChars {
			line = line[:maxLineChars-3] + "..."
		}
		rl.DrawText(line, padding, historyY+padding+int32(i*lineHeight), fontSize, historyText)
	}

	rl.DrawRectangle(0, barY, screenW, BarHeight, barColor)
	rl.DrawRectangle(0, barY, screenW, 1, ruleColor)
	rl.DrawText(prompt+t.inputBuf+"|", padding, barY+padding, fontSize, rl.White)
}
