// Package config loads viewport settings from YAML or TOML files and
// watches them for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/ortho/pkg/interact"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/world"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor
	// TOML.
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	// ErrInvalid is returned when a loaded value is out of range.
	ErrInvalid = errors.New("config: invalid value")
)

// MaxFPS caps the frame rate a config may ask for.
const MaxFPS = 240

// Color is a hex color such as "#dcdcdc" or "#abc".
type Color struct {
	colorful.Color
}

// Hex wraps c.
func Hex(c color.Color) Color {
	cc, _ := colorful.MakeColor(c)
	return Color{cc}
}

// UnmarshalText parses a hex color.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cc, err := colorful.Hex(s)
	if err != nil {
		return fmt.Errorf("%w: color %q: %w", ErrInvalid, string(text), err)
	}
	c.Color = cc
	return nil
}

// MarshalText formats the color as #rrggbb.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c Color) world() world.Color {
	r, g, b := c.Clamped().RGB255()
	return world.RGB(r, g, b)
}

// Display holds the grid, axes and polygon toggles.
type Display struct {
	ShowGrid       bool    `yaml:"show_grid" toml:"show_grid"`
	ShowAxes       bool    `yaml:"show_axes" toml:"show_axes"`
	DynamicGrid    bool    `yaml:"dynamic_grid" toml:"dynamic_grid"`
	GridSpacing    float32 `yaml:"grid_spacing" toml:"grid_spacing"`
	FilledPolygons bool    `yaml:"filled_polygons" toml:"filled_polygons"`
	Triangulate    bool    `yaml:"triangulate" toml:"triangulate"`
	MinorGridColor Color   `yaml:"minor_grid_color" toml:"minor_grid_color"`
	MajorGridColor Color   `yaml:"major_grid_color" toml:"major_grid_color"`
	AxisColor      Color   `yaml:"axis_color" toml:"axis_color"`
	Background     Color   `yaml:"background" toml:"background"`
}

// Camera holds the initial view and zoom behaviour.
type Camera struct {
	BaseZoom float32    `yaml:"base_zoom" toml:"base_zoom"`
	ZoomStep float32    `yaml:"zoom_step" toml:"zoom_step"`
	Position [2]float32 `yaml:"position" toml:"position"`
}

// Config is the full viewport configuration.
type Config struct {
	Display Display `yaml:"display" toml:"display"`
	Camera  Camera  `yaml:"camera" toml:"camera"`
	// Keys maps key identifiers to action names, overriding the defaults.
	Keys map[string]string `yaml:"keys" toml:"keys"`
	FPS  int               `yaml:"fps" toml:"fps"`
}

// Default returns the built-in configuration.
func Default() Config {
	s := world.DefaultSettings()
	return Config{
		Display: Display{
			ShowGrid:       s.ShowGrid,
			ShowAxes:       s.ShowAxes,
			DynamicGrid:    s.DynamicGrid,
			GridSpacing:    s.GridSpacing,
			FilledPolygons: s.FilledPolygons,
			Triangulate:    s.Triangulate,
			MinorGridColor: Hex(colornames.Gainsboro),
			MajorGridColor: Hex(colornames.Darkgray),
			AxisColor:      Hex(colornames.Lightslategray),
			Background:     Hex(colornames.Pink),
		},
		Camera: Camera{
			BaseZoom: 1,
			ZoomStep: interact.DefaultZoomStep,
		},
		FPS: 30,
	}
}

// Load reads path on top of Default. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext on top of Default and
// validates the result.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and key bindings.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0 || c.FPS > MaxFPS:
		return fmt.Errorf("%w: fps %d not in 1..%d", ErrInvalid, c.FPS, MaxFPS)
	case !(c.Display.GridSpacing > 0):
		return fmt.Errorf("%w: grid_spacing %v", ErrInvalid, c.Display.GridSpacing)
	case !(c.Camera.BaseZoom > 0):
		return fmt.Errorf("%w: base_zoom %v", ErrInvalid, c.Camera.BaseZoom)
	case !(c.Camera.ZoomStep > 0):
		return fmt.Errorf("%w: zoom_step %v", ErrInvalid, c.Camera.ZoomStep)
	}
	if _, err := c.Keymap(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Settings converts the display section.
func (c Config) Settings() world.Settings {
	d := c.Display
	return world.Settings{
		ShowGrid:       d.ShowGrid,
		ShowAxes:       d.ShowAxes,
		DynamicGrid:    d.DynamicGrid,
		GridSpacing:    d.GridSpacing,
		FilledPolygons: d.FilledPolygons,
		Triangulate:    d.Triangulate,
		MinorGridColor: d.MinorGridColor.world(),
		MajorGridColor: d.MajorGridColor.world(),
		AxisColor:      d.AxisColor.world(),
	}
}

// Keymap returns the default bindings with Keys applied on top.
func (c Config) Keymap() (interact.Keymap, error) {
	km := interact.DefaultKeymap()
	for key, action := range c.Keys {
		if err := km.Bind(key, action); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
	}
	return km, nil
}

// DefaultPosition returns the configured camera start.
func (c Config) DefaultPosition() math3d.Vec2 {
	return math3d.V2(c.Camera.Position[0], c.Camera.Position[1])
}
