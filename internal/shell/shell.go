package shell

import (
	"flag"
	"fmt"
	"io"
	"sync"

	"product-viewer/internal/asset"
	"product-viewer/internal/camera"
	"product-viewer/internal/commands"
	"product-viewer/internal/scene"

	"github.com/sirupsen/logrus"
)

// ResetLabel is the caption of the only on-screen control.
const ResetLabel = "Reset View"

// Options configure a Shell.
type Options struct {
	// URL is the model to show, either a path under the asset root or an http(s) URL.
	URL string
	// EvictOnUnmount drops the cached model when the shell unmounts. Off by default, so a
	// remount shows the model without a second fetch.
	EvictOnUnmount bool
}

// Controls describes the chrome drawn over the viewport.
type Controls struct {
	ResetLabel string
}

// View is everything the host needs to draw one frame.
type View struct {
	Surface  scene.Surface
	Scene    scene.Description
	Camera   camera.State
	Controls Controls
}

// Status is a point-in-time summary for the console and the remote control.
type Status struct {
	URL           string  `json:"url"`
	Asset         string  `json:"asset"`
	Error         string  `json:"error,omitempty"`
	Surface       string  `json:"surface"`
	Mounted       bool    `json:"mounted"`
	CameraMounted bool    `json:"camera_mounted"`
	Azimuth       float32 `json:"azimuth"`
	Polar         float32 `json:"polar"`
	Distance      float32 `json:"distance"`
	AutoRotate    bool    `json:"autorotate"`
	Mode          string  `json:"mode"`
	Misses        int64   `json:"command_misses"`
}

// Shell hosts the viewer: it owns the lifecycle of the camera subscription and asks the cache
// for the model every frame. The cache, controller and channel are injected and outlive it.
type Shell struct {
	opts     Options
	cache    *asset.Cache
	cam      *camera.Controller
	ch       commands.Channel
	composer *scene.Composer
	log      logrus.FieldLogger

	mu      sync.Mutex
	mounted bool
	unsub   func()
	surface scene.Surface
}

// New wires a shell. log may be nil.
func New(opts Options, cache *asset.Cache, cam *camera.Controller, ch commands.Channel, log logrus.FieldLogger) *Shell {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Shell{
		opts:     opts,
		cache:    cache,
		cam:      cam,
		ch:       ch,
		composer: scene.NewComposer(log),
		log:      log.WithField("url", opts.URL),
	}
}

// Mount starts loading the model. The camera, and its subscription to reset requests,
// attach on the first frame after the model settles. Mounting an already mounted shell
// does nothing.
func (s *Shell) Mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return
	}
	s.mounted = true
	s.cache.Preload(s.opts.URL)
	s.log.Info("viewer mounted")
}

// Unmount releases the subscription and the camera. In-flight loads keep running.
func (s *Shell) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return
	}
	s.mounted = false
	s.detachCamera()
	if s.opts.EvictOnUnmount && s.cache.Evict(s.opts.URL) {
		s.log.Debug("evicted model on unmount")
	}
	s.log.Info("viewer unmounted")
}

// Mounted reports whether the shell is mounted.
func (s *Shell) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Frame advances the viewer by dt seconds and returns what to draw. The camera is mounted
// while the model is settled and unmounted again if a reload puts it back to pending.
// An unmounted shell returns the zero View.
func (s *Shell) Frame(dt float32) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return View{}
	}

	st := s.cache.Get(s.opts.URL)
	desc := s.composer.Compose(st)
	switch {
	case st.Settled() && s.unsub == nil:
		s.attachCamera()
	case !st.Settled() && s.unsub != nil:
		s.detachCamera()
	}
	s.cam.Update(dt)

	if desc.Surface != s.surface {
		s.log.WithField("surface", desc.Surface).Debug("surface changed")
		s.surface = desc.Surface
	}
	return View{
		Surface:  desc.Surface,
		Scene:    desc,
		Camera:   s.cam.State(),
		Controls: Controls{ResetLabel: ResetLabel},
	}
}

// attachCamera mounts the camera and subscribes it to reset requests. Until then a reset
// reaches no listener and counts as a miss. Callers hold s.mu.
func (s *Shell) attachCamera() {
	s.cam.Mount()
	s.unsub = s.ch.Subscribe(commands.ResetCamera, s.cam.Reset)
}

// detachCamera undoes attachCamera. Callers hold s.mu.
func (s *Shell) detachCamera() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.cam.Unmount()
}

// PressReset is the Reset View button. It returns how many handlers received the request.
func (s *Shell) PressReset() int {
	return s.ch.Emit(commands.ResetCamera)
}

// Reload evicts the model and starts loading it again.
func (s *Shell) Reload() {
	s.cache.Evict(s.opts.URL)
	s.cache.Preload(s.opts.URL)
	s.log.Info("model reload requested")
}

// Status summarizes the shell, model and camera.
func (s *Shell) Status() Status {
	st, cached := s.cache.Peek(s.opts.URL)
	cs := s.cam.State()
	out := Status{
		URL:           s.opts.URL,
		Asset:         "none",
		Mounted:       s.Mounted(),
		CameraMounted: s.cam.Mounted(),
		Azimuth:       cs.Azimuth,
		Polar:         cs.Polar,
		Distance:      cs.Distance,
		AutoRotate:    cs.AutoRotate,
		Mode:          cs.Mode.String(),
	}
	if cached {
		out.Asset = st.Status.String()
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	s.mu.Lock()
	out.Surface = s.surface.String()
	s.mu.Unlock()
	if m, ok := s.ch.(interface{ Misses() int64 }); ok {
		out.Misses = m.Misses()
	}
	return out
}

// RegisterCommands adds the viewer's console commands to r. Output goes to out.
func (s *Shell) RegisterCommands(r *commands.Registry, out io.Writer) {
	r.Register("reset", "return the camera to its home pose", nil, func() error {
		if n := s.PressReset(); n == 0 {
			return fmt.Errorf("reset: camera not mounted")
		}
		return nil
	})

	r.Register("reload", "evict and reload the model", nil, func() error {
		s.Reload()
		return nil
	})

	autoFS := flag.NewFlagSet("autorotate", flag.ContinueOnError)
	r.Register("autorotate", "autorotate on|off until the next reset", autoFS, func() error {
		switch autoFS.Arg(0) {
		case "on":
			s.cam.SetAutoRotate(true)
		case "off":
			s.cam.SetAutoRotate(false)
		default:
			return fmt.Errorf("autorotate: want on or off, got %q", autoFS.Arg(0))
		}
		return nil
	})

	r.Register("status", "print model and camera status", nil, func() error {
		st := s.Status()
		_, err := fmt.Fprintf(out, "asset=%s status=%s surface=%s camera=%s az=%.3f polar=%.3f dist=%.2f misses=%d\n",
			st.URL, st.Asset, st.Surface, st.Mode, st.Azimuth, st.Polar, st.Distance, st.Misses)
		return err
	})

	r.Register("help", "list commands", nil, func() error {
		for _, line := range r.Help() {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		return nil
	})
}
