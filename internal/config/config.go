package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the viewer config file, relative to the process working directory.
const DefaultPath = "config/viewer.yaml"

// Prefs holds every tunable of the viewer. Values missing from the file keep their defaults.
type Prefs struct {
	Asset  AssetPrefs  `yaml:"asset"`
	Camera CameraPrefs `yaml:"camera"`
	Window WindowPrefs `yaml:"window"`
	Remote RemotePrefs `yaml:"remote"`
	Log    LogPrefs    `yaml:"log"`
	Debug  DebugPrefs  `yaml:"debug"`
}

// AssetPrefs configures where the product model comes from and how the cache treats it.
type AssetPrefs struct {
	URL         string `yaml:"url"`
	Root        string `yaml:"root"`         // base directory for non-http URLs ("/shoe.glb" -> Root/shoe.glb)
	DownloadDir string `yaml:"download_dir"` // where http(s) assets are saved before parsing
	// LoadTimeout bounds a single load. Zero means no timeout: a stalled load stays pending.
	LoadTimeout    time.Duration `yaml:"load_timeout"`
	EvictOnUnmount bool          `yaml:"evict_on_unmount"`
	// Environment is an optional cubemap or panorama image drawn behind the model.
	Environment string `yaml:"environment"`
}

// CameraPrefs is the orbit camera's home pose and limits. Angles are radians.
type CameraPrefs struct {
	Azimuth         float32 `yaml:"azimuth"`
	Polar           float32 `yaml:"polar"`
	Distance        float32 `yaml:"distance"`
	FOV             float32 `yaml:"fov"`
	MinPolar        float32 `yaml:"min_polar"`
	MaxPolar        float32 `yaml:"max_polar"`
	MinDistance     float32 `yaml:"min_distance"`
	MaxDistance     float32 `yaml:"max_distance"`
	AutoRotate      bool    `yaml:"auto_rotate"`
	AutoRotateSpeed float32 `yaml:"auto_rotate_speed"`
}

// WindowPrefs configures the raylib window that hosts the viewer.
type WindowPrefs struct {
	Width      int32  `yaml:"width"`
	Height     int32  `yaml:"height"`
	Title      string `yaml:"title"`
	TargetFPS  int32  `yaml:"target_fps"`
	Fullscreen bool   `yaml:"fullscreen"`
	// Stylesheet is an optional CSS file for the on-screen chrome. Empty uses the built-in sheet.
	Stylesheet string `yaml:"stylesheet"`
	// FontDirs are searched for the stylesheet's font-family files.
	FontDirs []string `yaml:"font_dirs"`
	// FetchFonts installs font families missing from FontDirs from Google Fonts.
	FetchFonts bool `yaml:"fetch_fonts"`
}

// RemotePrefs configures the websocket command surface.
type RemotePrefs struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	StatusInterval time.Duration `yaml:"status_interval"`
}

// LogPrefs configures the logrus logger.
type LogPrefs struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// DebugPrefs toggles the diagnostics overlay. Both are off by default.
type DebugPrefs struct {
	ShowFPS    bool `yaml:"show_fps"`
	ShowStatus bool `yaml:"show_status"`
}

// Default returns the viewer defaults: the shoe model, a camera at (0,0,4) looking at the origin,
// polar limits [π/4, π/1.5], slow autorotation, and no eviction on unmount.
func Default() Prefs {
	return Prefs{
		Asset: AssetPrefs{
			URL:         "/shoe.glb",
			Root:        "public",
			DownloadDir: "assets/downloaded",
		},
		Camera: CameraPrefs{
			Azimuth:         0,
			Polar:           math.Pi / 2,
			Distance:        4,
			FOV:             50,
			MinPolar:        math.Pi / 4,
			MaxPolar:        math.Pi / 1.5,
			MinDistance:     1.5,
			MaxDistance:     12,
			AutoRotate:      true,
			AutoRotateSpeed: 0.5,
		},
		Window: WindowPrefs{
			Width:     1024,
			Height:    640,
			Title:     "3D Product Viewer",
			TargetFPS: 60,
			FontDirs:  []string{"assets/fonts"},
		},
		Remote: RemotePrefs{
			Addr:           "127.0.0.1:8090",
			StatusInterval: time.Second,
		},
		Log: LogPrefs{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load reads prefs from path on top of Default(). A missing file is not an error.
// A malformed file returns Default() together with the parse error.
func Load(path string) (Prefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Default(), err
	}
	return p, nil
}

// Save writes prefs to path as YAML, creating the directory if needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects prefs the camera or loader cannot work with.
func (p Prefs) Validate() error {
	if p.Asset.URL == "" {
		return errors.New("config: asset.url is empty")
	}
	c := p.Camera
	if c.MinPolar > c.MaxPolar {
		return fmt.Errorf("config: camera.min_polar %.3f > max_polar %.3f", c.MinPolar, c.MaxPolar)
	}
	if c.MinDistance <= 0 || c.MinDistance > c.MaxDistance {
		return fmt.Errorf("config: camera distance range [%.2f, %.2f] is invalid", c.MinDistance, c.MaxDistance)
	}
	if p.Asset.LoadTimeout < 0 {
		return errors.New("config: asset.load_timeout is negative")
	}
	return nil
}
