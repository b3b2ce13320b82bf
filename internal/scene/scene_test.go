package scene

import (
	"errors"
	"testing"

	"product-viewer/internal/asset"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newGraph() *asset.SceneGraph {
	return &asset.SceneGraph{URL: "/shoe.glb", Root: &asset.Node{Name: "scene", Children: []*asset.Node{
		{Name: "shoe", Children: []*asset.Node{
			{Name: "sole", Mesh: &asset.Mesh{Name: "sole"}},
			{Name: "upper", Mesh: &asset.Mesh{Name: "upper"}},
		}},
	}}}
}

func countLights(d Description) (ambient, directional int) {
	for _, l := range d.Lights {
		switch l.Kind {
		case LightAmbient:
			ambient++
		case LightDirectional:
			directional++
		}
	}
	return
}

func TestComposeNeverEmpty(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := NewComposer(log)
	states := []asset.State{
		asset.Pending(),
		asset.Ready(newGraph()),
		asset.Failed(errors.New("boom")),
		asset.Ready(nil),
	}
	for _, st := range states {
		if d := c.Compose(st); d.Empty() {
			t.Errorf("Compose(%v) produced an empty description", st.Status)
		}
	}
}

func TestComposePending(t *testing.T) {
	c := NewComposer(nil)
	d := c.Compose(asset.Pending())
	if d.Surface != SurfaceLoading || d.LoadingText != LoadingText {
		t.Errorf("unexpected loading description %+v", d)
	}
	if len(d.Lights) != 0 || len(d.Objects) != 0 {
		t.Error("pending state should contribute nothing to the scene")
	}
}

func TestComposeReady(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := NewComposer(log)
	g := newGraph()
	d := c.Compose(asset.Ready(g))

	if d.Surface != SurfaceModel {
		t.Fatalf("surface = %v", d.Surface)
	}
	if a, dir := countLights(d); a != 1 || dir != 2 {
		t.Errorf("rig has %d ambient and %d directional lights", a, dir)
	}
	if len(d.Objects) != 1 {
		t.Fatalf("expected one model root, got %d objects", len(d.Objects))
	}
	obj := d.Objects[0]
	if obj.Model != g || obj.Position != ModelOffset {
		t.Errorf("model object = %+v", obj)
	}
	for _, m := range g.Meshes() {
		if !m.CastShadow || !m.ReceiveShadow {
			t.Errorf("mesh %s not marked for shadows", m.Name)
		}
	}
}

func TestComposeReadyMarksShadowsOnce(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	c := NewComposer(log)
	g := newGraph()
	for i := 0; i < 5; i++ {
		c.Compose(asset.Ready(g))
	}
	var marks int
	for _, e := range hook.AllEntries() {
		if e.Message == "marked 2 meshes for shadows" {
			marks++
		}
	}
	if marks != 1 {
		t.Errorf("shadow traversal ran %d times, want 1", marks)
	}
}

func TestComposeFailed(t *testing.T) {
	log, hook := test.NewNullLogger()
	c := NewComposer(log)
	err := &asset.LoadError{URL: "/bad.glb", Op: asset.OpFetch, Err: errors.New("404")}
	st := asset.Failed(err)

	var d Description
	for i := 0; i < 3; i++ {
		d = c.Compose(st)
	}
	if d.Surface != SurfaceFallback {
		t.Fatalf("surface = %v", d.Surface)
	}
	if len(d.Objects) != 1 || d.Objects[0].Primitive != "cube" || d.Objects[0].Model != nil {
		t.Fatalf("expected exactly one fallback cube, got %+v", d.Objects)
	}
	if d.Objects[0] != FallbackCube() {
		t.Errorf("fallback cube = %+v", d.Objects[0])
	}
	if a, dir := countLights(d); a != 1 || dir != 2 {
		t.Errorf("rig has %d ambient and %d directional lights", a, dir)
	}

	var errorsLogged int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorsLogged++
			if e.Data[logrus.ErrorKey] != err {
				t.Errorf("logged error = %v", e.Data[logrus.ErrorKey])
			}
		}
	}
	if errorsLogged != 1 {
		t.Errorf("expected the failure logged once, got %d", errorsLogged)
	}
}

func TestSurfaceString(t *testing.T) {
	tests := map[Surface]string{
		SurfaceLoading:  "loading",
		SurfaceModel:    "ready-scene",
		SurfaceFallback: "fallback-scene",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
