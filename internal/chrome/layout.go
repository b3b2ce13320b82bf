package chrome

import "fmt"

// Class names looked up in the stylesheet.
const (
	ClassViewport    = "viewport"
	ClassResetPill   = "reset-pill"
	ClassSkeleton    = "skeleton"
	ClassLoadingText = "loading-text"
)

// Rect is a screen rectangle in pixels, origin top-left.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Point is a screen position in pixels.
type Point struct{ X, Y float32 }

// MeasureFunc returns the pixel width of text drawn in family at size.
type MeasureFunc func(text, family string, size float32) float32

// Layout places every chrome element for one screen size.
type Layout struct {
	Viewport  Rect
	Reset     Rect
	ResetText Point
	Skeleton  Rect
	Loading   Point
}

// HitReset reports whether a click at (x, y) lands on the Reset View pill.
func (l Layout) HitReset(x, y float32) bool {
	return l.Reset.Contains(x, y)
}

// Chrome resolves the stylesheet once and lays out the overlay for any screen size.
type Chrome struct {
	Viewport    Style
	ResetPill   Style
	Skeleton    Style
	LoadingText Style
}

// New resolves the chrome styles from sheet. A nil sheet yields unstyled defaults.
// Elements without a font-family inherit the viewport's.
func New(sheet *Stylesheet) *Chrome {
	c := &Chrome{
		Viewport:    Resolve(sheet.Props(ClassViewport)),
		ResetPill:   Resolve(sheet.Props(ClassResetPill)),
		Skeleton:    Resolve(sheet.Props(ClassSkeleton)),
		LoadingText: Resolve(sheet.Props(ClassLoadingText)),
	}
	for _, st := range []*Style{&c.ResetPill, &c.Skeleton, &c.LoadingText} {
		if st.FontFamily == "" {
			st.FontFamily = c.Viewport.FontFamily
		}
	}
	return c
}

// FontFamilies lists the distinct font-family values used by text elements.
func (c *Chrome) FontFamilies() []string {
	var out []string
	for _, f := range []string{c.ResetPill.FontFamily, c.LoadingText.FontFamily} {
		if f != "" && (len(out) == 0 || out[0] != f) {
			out = append(out, f)
		}
	}
	return out
}

// Load builds a Chrome from the CSS file at path, or from DefaultCSS when path is empty.
func Load(path string) (*Chrome, error) {
	sheet, err := LoadStylesheet(path)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	return New(sheet), nil
}

// Layout centers the reset pill horizontally above the bottom edge, and the skeleton box with
// the loading text below it in the middle of the screen.
func (c *Chrome) Layout(screenW, screenH float32, resetLabel, loadingText string, measure MeasureFunc) Layout {
	pill := c.ResetPill
	labelW := measure(resetLabel, pill.FontFamily, pill.FontSize)
	pillW := labelW + 2*pill.Padding
	pillH := max(pill.Height, pill.FontSize+8)
	reset := Rect{
		X: (screenW - pillW) / 2,
		Y: screenH - pill.Bottom - pillH,
		W: pillW,
		H: pillH,
	}

	sk := c.Skeleton
	textSize := c.LoadingText.FontSize
	blockH := sk.Height + c.LoadingText.MarginTop + textSize
	skeleton := Rect{
		X: (screenW - sk.Width) / 2,
		Y: (screenH - blockH) / 2,
		W: sk.Width,
		H: sk.Height,
	}
	textW := measure(loadingText, c.LoadingText.FontFamily, textSize)

	return Layout{
		Viewport:  Rect{W: screenW, H: screenH},
		Reset:     reset,
		ResetText: Point{X: reset.X + pill.Padding, Y: reset.Y + (pillH-pill.FontSize)/2},
		Skeleton:  skeleton,
		Loading:   Point{X: (screenW - textW) / 2, Y: skeleton.Y + sk.Height + c.LoadingText.MarginTop},
	}
}
