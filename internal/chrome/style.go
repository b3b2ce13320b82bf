package chrome

import (
	"strconv"
	"strings"

	"product-viewer/internal/scene"
)

// Style is the resolved look of one chrome element. Sizes are pixels.
type Style struct {
	Background scene.Color
	Color      scene.Color
	Border     scene.Color
	HasBorder  bool
	Width      float32
	Height     float32
	Padding    float32
	Bottom     float32
	MarginTop  float32
	FontSize   float32
	Radius     float32
	// FontFamily is the raw font-family value; empty means the built-in font.
	FontFamily string
}

func defaultStyle() Style {
	return Style{
		Color:    scene.Color{R: 255, G: 255, B: 255, A: 255},
		FontSize: 20,
		Padding:  4,
	}
}

// Resolve turns raw declarations into a Style. Unknown keys and malformed values are ignored.
func Resolve(props map[string]string) Style {
	out := defaultStyle()
	for k, v := range props {
		switch k {
		case "background":
			if c, ok := ParseHexColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseHexColor(v); ok {
				out.Color = c
			}
		case "border":
			if c, ok := ParseHexColor(v); ok {
				out.Border, out.HasBorder = c, true
			}
		case "width":
			setPx(&out.Width, v)
		case "height":
			setPx(&out.Height, v)
		case "padding":
			setPx(&out.Padding, v)
		case "bottom":
			setPx(&out.Bottom, v)
		case "margin-top":
			setPx(&out.MarginTop, v)
		case "font-size":
			setPx(&out.FontSize, v)
		case "radius", "border-radius":
			setPx(&out.Radius, v)
		case "font-family":
			out.FontFamily = strings.TrimSpace(v)
		}
	}
	return out
}

func setPx(dst *float32, v string) {
	if n, ok := ParsePx(v); ok && n >= 0 {
		*dst = n
	}
}

// ParseHexColor parses #RGB, #RRGGBB or #RRGGBBAA. Alpha defaults to opaque.
func ParseHexColor(s string) (scene.Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return scene.Color{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return scene.Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return scene.Color{}, false
	}
	return scene.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// ParsePx parses a number with an optional "px" suffix.
func ParsePx(s string) (float32, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return float32(n), true
}
