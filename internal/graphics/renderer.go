package graphics

import (
	"product-viewer/internal/asset"
	"product-viewer/internal/camera"
	"product-viewer/internal/chrome"
	"product-viewer/internal/googlefonts"
	"product-viewer/internal/primitives"
	"product-viewer/internal/scene"
	"product-viewer/internal/shell"

	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// stageSize is the largest dimension a loaded model is scaled to.
	stageSize      = 2.5
	shadowAlpha    = 60
	shadowSlices   = 48
	pillRoundness  = 1
	pillSegments   = 16
	shadowLift     = 0.002
	skeletonSegs   = 8
	skeletonPulseS = 1.2
)

type loadedModel struct {
	graph  *asset.SceneGraph
	model  rl.Model
	bounds rl.BoundingBox
	fit    float32
}

// Renderer draws a shell.View with raylib. It owns the GPU copy of the current model and
// replaces it when the cache hands out a different scene graph.
type Renderer struct {
	prims    *primitives.Registry
	text     *typefaces
	chrome   *chrome.Chrome
	backdrop *Backdrop
	log      logrus.FieldLogger
	current  *loadedModel
	failed   *asset.SceneGraph
}

// NewRenderer returns a renderer. backdrop may be nil. Stylesheet font families are looked up
// under fontDirs.
func NewRenderer(c *chrome.Chrome, backdrop *Backdrop, fontDirs []string, log logrus.FieldLogger) *Renderer {
	return &Renderer{
		prims:    primitives.NewRegistry(),
		text:     newTypefaces(fontDirs, log),
		chrome:   c,
		backdrop: backdrop,
		log:      log,
	}
}

// FetchFonts lets the renderer install missing stylesheet font families with c.
func (r *Renderer) FetchFonts(c *googlefonts.Client) {
	r.text.remote = c
}

// Camera converts the controller state into a raylib camera looking at the origin.
func Camera(st camera.State, fov float32) rl.Camera3D {
	p := st.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(p[0], p[1], p[2]),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       fov,
		Projection: rl.CameraPerspective,
	}
}

// Layout places the chrome for the current screen size.
func (r *Renderer) Layout() chrome.Layout {
	return r.chrome.Layout(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()), shell.ResetLabel, scene.LoadingText, r.text.measure)
}

// Draw clears the screen and draws the view: the loading treatment while pending, otherwise the
// 3D scene. The Reset View pill is drawn in every state.
func (r *Renderer) Draw(v shell.View, fov float32, resetHovered bool) {
	layout := r.Layout()
	rl.ClearBackground(toRL(r.chrome.Viewport.Background))

	if v.Surface == scene.SurfaceLoading {
		r.drawLoading(layout, v.Scene.LoadingText)
	} else {
		r.drawScene(v, fov)
	}
	r.drawResetPill(layout, v.Controls.ResetLabel, resetHovered)
}

func (r *Renderer) drawScene(v shell.View, fov float32) {
	cam := Camera(v.Camera, fov)
	rl.BeginMode3D(cam)
	r.backdrop.Draw(cam.Position)
	r.prims.SetView([3]float32{cam.Position.X, cam.Position.Y, cam.Position.Z}, v.Scene.Lights)
	for _, obj := range v.Scene.Objects {
		if obj.Model != nil {
			r.drawModel(obj)
			continue
		}
		if r.prims.Draw(obj.Primitive, obj.Position, obj.Scale, obj.Color) && obj.CastShadow {
			half := obj.Scale / 2
			drawShadow(obj.Position, obj.Position[1]-half, half*1.5)
		}
	}
	rl.EndMode3D()
}

func (r *Renderer) drawModel(obj scene.Object) {
	m := r.model(obj.Model)
	if m == nil {
		// raylib could not read the file the loader parsed; show the placeholder instead.
		fb := scene.FallbackCube()
		r.prims.Draw(fb.Primitive, fb.Position, fb.Scale, fb.Color)
		return
	}
	scale := obj.Scale * m.fit
	pos := rl.NewVector3(obj.Position[0], obj.Position[1], obj.Position[2])
	rl.DrawModel(m.model, pos, scale, toRL(obj.Color))
	if obj.CastShadow {
		extentX := (m.bounds.Max.X - m.bounds.Min.X) * scale
		extentZ := (m.bounds.Max.Z - m.bounds.Min.Z) * scale
		drawShadow(obj.Position, pos.Y+m.bounds.Min.Y*scale, max(extentX, extentZ)*0.6)
	}
}

// model returns the GPU model for g, loading it the first time g is seen and unloading the
// previous one. A graph raylib failed to load is not retried.
func (r *Renderer) model(g *asset.SceneGraph) *loadedModel {
	if r.current != nil && r.current.graph == g {
		return r.current
	}
	if r.failed == g {
		return nil
	}
	r.unloadModel()

	model := rl.LoadModel(g.Path)
	if !rl.IsModelValid(model) {
		r.log.WithField("path", g.Path).Error("raylib could not load the model")
		r.failed = g
		return nil
	}
	r.prims.Shade(&model)
	bounds := rl.GetModelBoundingBox(model)
	size := max(bounds.Max.X-bounds.Min.X, bounds.Max.Y-bounds.Min.Y, bounds.Max.Z-bounds.Min.Z)
	fit := float32(1)
	if size > 0 {
		fit = stageSize / size
	}
	r.current = &loadedModel{graph: g, model: model, bounds: bounds, fit: fit}
	r.log.WithFields(logrus.Fields{"path": g.Path, "meshes": model.MeshCount, "fit": fit}).Info("model uploaded")
	return r.current
}

func (r *Renderer) unloadModel() {
	if r.current == nil {
		return
	}
	rl.UnloadModel(r.current.model)
	r.current = nil
}

func (r *Renderer) drawLoading(l chrome.Layout, text string) {
	sk := r.chrome.Skeleton
	// Pulse the skeleton like a web skeleton loader.
	phase := math32.Mod(float32(rl.GetTime())/skeletonPulseS, 1)
	alpha := 0.6 + 0.4*(1-2*math32.Abs(phase-0.5))
	bg := sk.Background
	bg.A = uint8(float32(bg.A) * alpha)
	rect := toRect(l.Skeleton)
	rl.DrawRectangleRounded(rect, roundness(sk.Radius, rect), skeletonSegs, toRL(bg))

	ts := r.chrome.LoadingText
	r.text.draw(text, ts.FontFamily, l.Loading.X, l.Loading.Y, ts.FontSize, toRL(ts.Color))
}

func (r *Renderer) drawResetPill(l chrome.Layout, label string, hovered bool) {
	st := r.chrome.ResetPill
	rect := toRect(l.Reset)
	bg := st.Background
	if hovered {
		bg.A = 255
	}
	rl.DrawRectangleRounded(rect, pillRoundness, pillSegments, toRL(bg))
	if st.HasBorder {
		rl.DrawRectangleRoundedLines(rect, pillRoundness, pillSegments, toRL(st.Border))
	}
	r.text.draw(label, st.FontFamily, l.ResetText.X, l.ResetText.Y, st.FontSize, toRL(st.Color))
}

// Unload frees every GPU resource the renderer created.
func (r *Renderer) Unload() {
	r.unloadModel()
	r.text.unload()
	r.prims.Unload()
	r.backdrop.Unload()
}

// drawShadow draws a soft contact disc on the ground under an object.
func drawShadow(pos scene.Vec3, groundY, radius float32) {
	if radius <= 0 {
		return
	}
	center := rl.NewVector3(pos[0], groundY+shadowLift, pos[2])
	rl.DrawCylinder(center, radius, radius, 0, shadowSlices, rl.NewColor(0, 0, 0, shadowAlpha))
}

func toRL(c scene.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func toRect(r chrome.Rect) rl.Rectangle {
	return rl.NewRectangle(r.X, r.Y, r.W, r.H)
}

// roundness converts a corner radius in pixels to raylib's 0..1 roundness.
func roundness(radius float32, r rl.Rectangle) float32 {
	short := min(r.Width, r.Height)
	if short <= 0 {
		return 0
	}
	return min(2*radius/short, 1)
}
