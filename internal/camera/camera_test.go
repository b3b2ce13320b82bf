package camera

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func mounted(opts Options) *Controller {
	c := New(opts)
	c.Mount()
	return c
}

func approx(a, b float32) bool {
	return math32.Abs(a-b) < eps
}

func TestNewStartsAtHome(t *testing.T) {
	c := New(DefaultOptions())
	st := c.State()
	if st.Pose != c.Home() {
		t.Errorf("state %+v != home %+v", st.Pose, c.Home())
	}
	if !st.AutoRotate || st.Mode != ModeIdle {
		t.Errorf("expected idle autorotating, got %+v", st)
	}
	pos := c.Position()
	if !approx(pos[0], 0) || !approx(pos[1], 0) || !approx(pos[2], 4) {
		t.Errorf("home position = %v, want (0,0,4)", pos)
	}
}

func TestNewClampsHomePose(t *testing.T) {
	opts := DefaultOptions()
	opts.Home = Pose{Polar: 0, Distance: 100}
	c := New(opts)
	if h := c.Home(); h.Polar != opts.MinPolar || h.Distance != opts.MaxDistance {
		t.Errorf("home not clamped: %+v", h)
	}
}

func TestPolarRequestOfZeroClampsToQuarterPi(t *testing.T) {
	c := mounted(DefaultOptions())
	c.SetPolar(0)
	if got := c.State().Polar; got != math32.Pi/4 {
		t.Errorf("polar = %v, want π/4", got)
	}
	c.SetPolar(math32.Pi)
	if got := c.State().Polar; got != math32.Pi/1.5 {
		t.Errorf("polar = %v, want π/1.5", got)
	}
	c.SetPolar(math32.NaN())
	if got := c.State().Polar; got != math32.Pi/4 {
		t.Errorf("NaN polar should clamp to min, got %v", got)
	}
}

func TestPolarStaysClampedUnderRandomDrags(t *testing.T) {
	opts := DefaultOptions()
	c := mounted(opts)
	r := rand.New(rand.NewSource(42))
	c.BeginDrag()
	for i := 0; i < 2000; i++ {
		c.Drag(float32(r.NormFloat64()*400), float32(r.NormFloat64()*400))
		st := c.State()
		if st.Polar < opts.MinPolar || st.Polar > opts.MaxPolar {
			t.Fatalf("step %d: polar %v outside [%v, %v]", i, st.Polar, opts.MinPolar, opts.MaxPolar)
		}
		if st.Azimuth <= -math32.Pi || st.Azimuth > math32.Pi {
			t.Fatalf("step %d: azimuth %v not wrapped", i, st.Azimuth)
		}
	}
	c.EndDrag()
}

func TestResetAtHomeIsIdempotent(t *testing.T) {
	c := mounted(DefaultOptions())
	before := c.State()
	c.Reset()
	c.Reset()
	if after := c.State(); after != before {
		t.Errorf("reset at home changed state: %+v -> %+v", before, after)
	}
}

func TestResetRestoresHomeAfterDragAndZoom(t *testing.T) {
	c := mounted(DefaultOptions())
	c.BeginDrag()
	c.Drag(250, -120)
	c.Zoom(3)
	c.SetAutoRotate(false)
	if c.State().Pose == c.Home() {
		t.Fatal("drag and zoom should move the camera")
	}

	c.Reset()
	st := c.State()
	if st.Pose != c.Home() {
		t.Errorf("pose after reset = %+v, want %+v", st.Pose, c.Home())
	}
	if !st.AutoRotate {
		t.Error("reset should re-enable autorotation")
	}
	if st.Mode != ModeEngaged {
		t.Errorf("reset must not change mode, got %v", st.Mode)
	}
}

func TestResetEnablesAutoRotateConfiguredOff(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRotate = false
	c := mounted(opts)
	if c.State().AutoRotate {
		t.Fatal("autorotate should start off")
	}
	c.Drag(80, 0)
	c.Reset()
	if !c.State().AutoRotate {
		t.Error("reset should turn autorotation on")
	}
	c.Update(1)
	if c.State().Azimuth == c.Home().Azimuth {
		t.Error("camera did not rotate after reset")
	}
}

func TestResetBeforeMountIsNoop(t *testing.T) {
	c := New(DefaultOptions())
	c.Drag(100, 0)
	moved := c.State()
	c.Reset()
	if c.State() != moved {
		t.Error("reset on an unmounted controller should do nothing")
	}

	var nilCtrl *Controller
	nilCtrl.Reset()
	nilCtrl.Drag(1, 1)
	nilCtrl.Update(1)
	if nilCtrl.Mounted() {
		t.Error("nil controller cannot be mounted")
	}
}

func TestAutoRotateOnlyWhenIdle(t *testing.T) {
	c := mounted(DefaultOptions())
	c.Update(1)
	idle := c.State().Azimuth
	want := 2 * math32.Pi / 60 * 0.5
	if !approx(idle, want) {
		t.Errorf("azimuth after 1s = %v, want %v", idle, want)
	}

	c.BeginDrag()
	c.Update(10)
	if c.State().Azimuth != idle {
		t.Error("autorotation must pause while engaged")
	}
	c.EndDrag()
	c.Update(1)
	if approx(c.State().Azimuth, idle) {
		t.Error("autorotation should resume after the drag ends")
	}
}

func TestAutoRotateDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRotate = false
	c := mounted(opts)
	c.Update(5)
	if c.State().Azimuth != 0 {
		t.Errorf("azimuth moved with autorotate off: %v", c.State().Azimuth)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	opts := DefaultOptions()
	c := mounted(opts)
	c.Zoom(100)
	if got := c.State().Distance; got != opts.MinDistance {
		t.Errorf("distance = %v, want min %v", got, opts.MinDistance)
	}
	c.Zoom(-100)
	if got := c.State().Distance; got != opts.MaxDistance {
		t.Errorf("distance = %v, want max %v", got, opts.MaxDistance)
	}
}

func TestPanIsDisabled(t *testing.T) {
	c := mounted(DefaultOptions())
	before := c.State()
	c.Pan(50, 50)
	if c.State() != before {
		t.Error("pan should not change the camera")
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float32 }{
		{0, 0},
		{math32.Pi, math32.Pi},
		{-math32.Pi, math32.Pi},
		{3 * math32.Pi / 2, -math32.Pi / 2},
		{-3 * math32.Pi / 2, math32.Pi / 2},
	}
	for _, tt := range tests {
		if got := wrapAngle(tt.in); !approx(got, tt.want) {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
