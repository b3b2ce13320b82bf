package scene

import (
	"product-viewer/internal/asset"

	"github.com/sirupsen/logrus"
)

// LoadingText is shown by the host while the model is pending.
const LoadingText = "Loading 3D model..."

// Surface is which of the three renderable states a Description represents.
type Surface int

const (
	SurfaceLoading Surface = iota
	SurfaceModel
	SurfaceFallback
)

func (s Surface) String() string {
	switch s {
	case SurfaceModel:
		return "ready-scene"
	case SurfaceFallback:
		return "fallback-scene"
	}
	return "loading"
}

// Vec3 is a position in world units, Y up.
type Vec3 [3]float32

// Color is 8-bit RGBA.
type Color struct{ R, G, B, A uint8 }

// LightKind distinguishes the lights of the rig.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
)

// Light is one entry of the lighting rig. Position is ignored for ambient lights; for
// directional lights it is the point the light shines from, towards the origin.
type Light struct {
	Kind      LightKind
	Intensity float32
	Position  Vec3
	Color     Color
}

// Object is something to draw: either a loaded model (Model set) or a primitive by name.
type Object struct {
	Name          string
	Model         *asset.SceneGraph
	Primitive     string
	Position      Vec3
	Scale         float32
	Color         Color
	CastShadow    bool
	ReceiveShadow bool
}

// Description is the declarative scene handed to the renderer for one frame.
type Description struct {
	Surface     Surface
	LoadingText string
	Lights      []Light
	Objects     []Object
}

// Empty reports whether the description would leave the viewport blank.
func (d Description) Empty() bool {
	if d.Surface == SurfaceLoading {
		return d.LoadingText == ""
	}
	return len(d.Objects) == 0
}

var (
	white  = Color{255, 255, 255, 255}
	orange = Color{255, 165, 0, 255}
)

// DefaultRig is one dim ambient light and two directional lights, key and fill.
func DefaultRig() []Light {
	return []Light{
		{Kind: LightAmbient, Intensity: 0.3, Color: white},
		{Kind: LightDirectional, Intensity: 1, Position: Vec3{10, 10, 5}, Color: white},
		{Kind: LightDirectional, Intensity: 0.5, Position: Vec3{-10, -10, -5}, Color: white},
	}
}

// ModelOffset frames the product slightly below the orbit target.
var ModelOffset = Vec3{0, -1, 0}

// FallbackCube is drawn in place of a model that failed to load.
func FallbackCube() Object {
	return Object{
		Name:          "fallback",
		Primitive:     "cube",
		Position:      Vec3{0, 0, 0},
		Scale:         1,
		Color:         orange,
		CastShadow:    true,
		ReceiveShadow: true,
	}
}

// Composer turns an asset state into a Description. It is meant to be driven from the render loop
// and is not safe for concurrent use.
type Composer struct {
	log     logrus.FieldLogger
	lastErr error
}

// NewComposer returns a Composer that reports load failures to log.
func NewComposer(log logrus.FieldLogger) *Composer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Composer{log: log}
}

// Compose builds the scene for st. A pending state yields only the loading text; a ready
// state yields the rig and the model (its meshes marked for shadows the first time it is seen);
// a failed state yields the rig and the fallback cube, and logs the error once.
func (c *Composer) Compose(st asset.State) Description {
	switch st.Status {
	case asset.StatusReady:
		if st.Graph != nil {
			g := st.Graph
			if marked, first := g.MarkShadows(); first {
				c.log.WithField("url", g.URL).Debugf("marked %d meshes for shadows", marked)
			}
			return Description{
				Surface: SurfaceModel,
				Lights:  DefaultRig(),
				Objects: []Object{{
					Name:          "model",
					Model:         g,
					Position:      ModelOffset,
					Scale:         1,
					Color:         white,
					CastShadow:    true,
					ReceiveShadow: true,
				}},
			}
		}
		return c.fallback(nil)
	case asset.StatusFailed:
		return c.fallback(st.Err)
	}
	return Description{Surface: SurfaceLoading, LoadingText: LoadingText}
}

func (c *Composer) fallback(err error) Description {
	if err != nil && err != c.lastErr {
		c.lastErr = err
		c.log.WithError(err).Error("model failed to load, showing placeholder")
	}
	return Description{
		Surface: SurfaceFallback,
		Lights:  DefaultRig(),
		Objects: []Object{FallbackCube()},
	}
}
