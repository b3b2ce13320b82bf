package camera

import (
	"sync"

	"github.com/chewxy/math32"
)

// Mode is the interaction state of the controller.
type Mode int

const (
	// ModeIdle autorotates (when enabled) and accepts drag and scroll.
	ModeIdle Mode = iota
	// ModeEngaged suspends autorotation while the user is dragging.
	ModeEngaged
)

func (m Mode) String() string {
	if m == ModeEngaged {
		return "engaged"
	}
	return "idle"
}

// Pose is an orbit camera position around the focal point at the origin. Polar is measured
// from +Y, so π/2 is level with the target.
type Pose struct {
	Azimuth  float32
	Polar    float32
	Distance float32
}

// State is a snapshot of the controller.
type State struct {
	Pose
	AutoRotate      bool
	AutoRotateSpeed float32
	Mode            Mode
}

// Options configure a Controller. The home pose is what Reset restores.
type Options struct {
	Home            Pose
	MinPolar        float32
	MaxPolar        float32
	MinDistance     float32
	MaxDistance     float32
	AutoRotate      bool
	AutoRotateSpeed float32 // 1.0 is one revolution per 60 seconds
	RotateSpeed     float32 // radians per pixel of drag
	ZoomSpeed       float32 // fraction of distance per scroll step
	FOV             float32 // vertical field of view in degrees, passed through to the renderer
}

// DefaultOptions matches the product page: camera at (0,0,4), polar limited to [π/4, π/1.5],
// autorotate at 0.5, no panning.
func DefaultOptions() Options {
	return Options{
		Home:            Pose{Azimuth: 0, Polar: math32.Pi / 2, Distance: 4},
		MinPolar:        math32.Pi / 4,
		MaxPolar:        math32.Pi / 1.5,
		MinDistance:     1.5,
		MaxDistance:     12,
		AutoRotate:      true,
		AutoRotateSpeed: 0.5,
		RotateSpeed:     0.005,
		ZoomSpeed:       0.1,
		FOV:             50,
	}
}

// Controller owns the orbit camera. All methods are safe for concurrent use, and every method
// is a no-op on a nil *Controller.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	home    Pose
	state   State
	mounted bool
}

// New returns a controller at its home pose. The home pose is clamped to the limits once, here,
// and never changes afterwards.
func New(opts Options) *Controller {
	c := &Controller{opts: opts}
	c.home = c.clampPose(opts.Home)
	c.state = State{
		Pose:            c.home,
		AutoRotate:      opts.AutoRotate,
		AutoRotateSpeed: opts.AutoRotateSpeed,
		Mode:            ModeIdle,
	}
	return c
}

// Mount marks the controller as present in the render tree. Reset is ignored until then.
func (c *Controller) Mount() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.mounted = true
	c.mu.Unlock()
}

// Unmount removes the controller from the render tree. Its pose is kept.
func (c *Controller) Unmount() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.mounted = false
	c.state.Mode = ModeIdle
	c.mu.Unlock()
}

// Mounted reports whether the controller is in the render tree.
func (c *Controller) Mounted() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Reset restores the home pose and turns autorotation on, even when it started off, without
// changing the mode. It does nothing when the controller is nil or not mounted.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return
	}
	c.state.Pose = c.home
	c.state.AutoRotate = true
}

// BeginDrag enters ModeEngaged.
func (c *Controller) BeginDrag() {
	c.setMode(ModeEngaged)
}

// EndDrag returns to ModeIdle; autorotation resumes on the next Update.
func (c *Controller) EndDrag() {
	c.setMode(ModeIdle)
}

func (c *Controller) setMode(m Mode) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.state.Mode = m
	c.mu.Unlock()
}

// Drag orbits by a pointer delta in pixels. Dragging right moves the camera left around the
// target, dragging down raises it; polar stays within the limits.
func (c *Controller) Drag(dx, dy float32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Azimuth = wrapAngle(c.state.Azimuth - dx*c.opts.RotateSpeed)
	c.state.Polar = c.clampPolar(c.state.Polar - dy*c.opts.RotateSpeed)
}

// SetPolar requests an absolute polar angle; the stored value is clamped.
func (c *Controller) SetPolar(angle float32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.state.Polar = c.clampPolar(angle)
	c.mu.Unlock()
}

// Zoom scales the distance by scroll steps; positive steps move closer.
func (c *Controller) Zoom(steps float32) {
	if c == nil || steps == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	scale := math32.Pow(1-c.opts.ZoomSpeed, steps)
	c.state.Distance = c.clampDistance(c.state.Distance * scale)
}

// Pan is disabled for the product viewer: orbit and zoom only.
func (c *Controller) Pan(dx, dy float32) {}

// SetAutoRotate turns autorotation on or off until the next Reset.
func (c *Controller) SetAutoRotate(on bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.state.AutoRotate = on
	c.mu.Unlock()
}

// Update advances autorotation by dt seconds. Nothing moves while engaged.
func (c *Controller) Update(dt float32) {
	if c == nil || dt <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode != ModeIdle || !c.state.AutoRotate {
		return
	}
	step := 2 * math32.Pi / 60 * c.state.AutoRotateSpeed * dt
	c.state.Azimuth = wrapAngle(c.state.Azimuth + step)
}

// State returns a snapshot. The zero State is returned for a nil controller.
func (c *Controller) State() State {
	if c == nil {
		return State{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Home returns the pose Reset restores.
func (c *Controller) Home() Pose {
	if c == nil {
		return Pose{}
	}
	return c.home
}

// FOV returns the vertical field of view in degrees.
func (c *Controller) FOV() float32 {
	if c == nil {
		return 0
	}
	return c.opts.FOV
}

// Position returns the camera's world position for the current pose, looking at the origin.
func (c *Controller) Position() [3]float32 {
	return c.State().Position()
}

// Position converts the spherical pose to a Y-up world position.
func (p Pose) Position() [3]float32 {
	sinP, cosP := math32.Sincos(p.Polar)
	sinA, cosA := math32.Sincos(p.Azimuth)
	return [3]float32{
		p.Distance * sinP * sinA,
		p.Distance * cosP,
		p.Distance * sinP * cosA,
	}
}

func (c *Controller) clampPose(p Pose) Pose {
	p.Polar = c.clampPolar(p.Polar)
	p.Distance = c.clampDistance(p.Distance)
	p.Azimuth = wrapAngle(p.Azimuth)
	return p
}

func (c *Controller) clampPolar(a float32) float32 {
	return clamp(a, c.opts.MinPolar, c.opts.MaxPolar)
}

func (c *Controller) clampDistance(d float32) float32 {
	return clamp(d, c.opts.MinDistance, c.opts.MaxDistance)
}

func clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return max(lo, min(v, hi))
}

// wrapAngle keeps azimuth in (-π, π].
func wrapAngle(a float32) float32 {
	if a > -math32.Pi && a <= math32.Pi {
		return a
	}
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a <= 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}
