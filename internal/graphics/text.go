package graphics

import (
	"context"

	"product-viewer/internal/fonts"
	"product-viewer/internal/googlefonts"

	"github.com/sirupsen/logrus"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// typefaces loads the stylesheet's font families on first use. A family that cannot be
// resolved or loaded falls back to raylib's default font. With a remote client a missing
// family is installed in the background into the first font dir and picked up once it lands.
type typefaces struct {
	dirs      []string
	remote    *googlefonts.Client
	log       logrus.FieldLogger
	loaded    map[string]*rl.Font // nil value: use the default font
	attempted map[string]bool
	installed chan string
}

func newTypefaces(dirs []string, log logrus.FieldLogger) *typefaces {
	return &typefaces{
		dirs:      dirs,
		log:       log,
		loaded:    make(map[string]*rl.Font),
		attempted: make(map[string]bool),
		installed: make(chan string, 4),
	}
}

func (t *typefaces) get(family string) *rl.Font {
	if family == "" {
		return nil
	}
	t.collectInstalled()
	if f, ok := t.loaded[family]; ok {
		return f
	}
	t.loaded[family] = nil
	path, err := fonts.Find(family, t.dirs)
	if err != nil {
		t.log.WithField("font-family", family).Warn("font not found, using the default font")
		t.install(family)
		return nil
	}
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		t.log.WithField("path", path).Warn("font could not be loaded, using the default font")
		return nil
	}
	rl.SetTextureFilter(f.Texture, rl.FilterBilinear)
	t.loaded[family] = &f
	t.log.WithFields(logrus.Fields{"font-family": family, "path": path}).Debug("font loaded")
	return &f
}

func (t *typefaces) install(family string) {
	if t.remote == nil || len(t.dirs) == 0 || t.attempted[family] {
		return
	}
	t.attempted[family] = true
	dest := t.dirs[0]
	go func() {
		for _, name := range fonts.Candidates(family) {
			path, err := t.remote.Install(context.Background(), name, dest)
			if err != nil {
				t.log.WithError(err).WithField("font-family", name).Debug("font install failed")
				continue
			}
			t.log.WithFields(logrus.Fields{"font-family": family, "path": path}).Info("font installed")
			t.installed <- family
			return
		}
	}()
}

// collectInstalled forgets the default-font fallback for families installed since the last frame.
func (t *typefaces) collectInstalled() {
	for {
		select {
		case family := <-t.installed:
			if f := t.loaded[family]; f == nil {
				delete(t.loaded, family)
			}
		default:
			return
		}
	}
}

// spacing matches raylib's DrawText letter spacing for the default font.
func spacing(size float32) float32 {
	return max(size/10, 1)
}

func (t *typefaces) measure(text, family string, size float32) float32 {
	if f := t.get(family); f != nil {
		return rl.MeasureTextEx(*f, text, size, spacing(size)).X
	}
	return float32(rl.MeasureText(text, int32(size)))
}

func (t *typefaces) draw(text, family string, x, y, size float32, c rl.Color) {
	if f := t.get(family); f != nil {
		rl.DrawTextEx(*f, text, rl.NewVector2(x, y), size, spacing(size), c)
		return
	}
	rl.DrawText(text, int32(x), int32(y), int32(size), c)
}

func (t *typefaces) unload() {
	for family, f := range t.loaded {
		if f != nil {
			rl.UnloadFont(*f)
		}
		delete(t.loaded, family)
	}
}
