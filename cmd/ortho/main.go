// ortho - Terminal 2D Viewport
// Pan and zoom around polygons and lines drawn over a world grid, or
// flatten a glTF model onto a plane and explore it.
//
// Controls:
//
//	Mouse drag  - Pan (speed grows with drag distance)
//	Scroll      - Zoom in/out
//	W/A/S/D     - Pan up/left/down/right
//	M/N         - Zoom in/out
//	X           - Fit view to scene
//	R           - Reset view
//	K/L         - Save/load location
//	F           - Lock/unlock viewport
//	Right click - Context menu
//	?           - Toggle HUD overlay
//	Esc         - Quit (or close menu)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/chewxy/math32"
	"github.com/taigrr/ortho/pkg/config"
	"github.com/taigrr/ortho/pkg/engine"
	"github.com/taigrr/ortho/pkg/gpu/soft"
	"github.com/taigrr/ortho/pkg/interact"
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/models"
	"github.com/taigrr/ortho/pkg/render"
	"github.com/taigrr/ortho/pkg/term"
	"github.com/taigrr/ortho/pkg/world"
	"golang.org/x/image/colornames"
)

var (
	configPath = flag.String("config", "", "Path to a YAML or TOML config file (watched for changes)")
	targetFPS  = flag.Int("fps", 0, "Target FPS (overrides the config)")
	logPath    = flag.String("log", "", "Write debug logs to this file")
	pngPath    = flag.String("png", "", "Render one 800x600 frame to this PNG file and exit")
	planeName  = flag.String("plane", "xy", "Model plane to view: xy, xz or zy")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ortho - Terminal 2D Viewport\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ortho [options] [model.glb|model.gltf]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Pan\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Pan\n")
		fmt.Fprintf(os.Stderr, "  M/N         - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  X           - Fit to scene\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  K/L         - Save/load location\n")
		fmt.Fprintf(os.Stderr, "  F           - Lock viewport\n")
		fmt.Fprintf(os.Stderr, "  Right click - Context menu\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	if *targetFPS > 0 {
		cfg.FPS = min(*targetFPS, config.MaxFPS)
	}
	return cfg, nil
}

// loadScene returns the model at path flattened onto the chosen plane, or
// the demo scene when path is empty.
func loadScene(path string) (world.Scene, string, error) {
	if path == "" {
		return demoScene(), "demo", nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".glb" && ext != ".gltf" {
		return world.Scene{}, "", fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}
	plane, err := models.ParsePlane(*planeName)
	if err != nil {
		return world.Scene{}, "", err
	}
	s, err := models.LoadScene(path, plane)
	if err != nil {
		return world.Scene{}, "", fmt.Errorf("load model: %w", err)
	}
	return s, filepath.Base(path), nil
}

// demoScene is a few overlapping shapes around the origin.
func demoScene() world.Scene {
	star := make([]math3d.Vec2, 0, 10)
	for i := range 10 {
		r := float32(60)
		if i%2 == 1 {
			r = 25
		}
		a := float32(i) * 2 * math32.Pi / 10
		star = append(star, math3d.V2(150+r*math32.Sin(a), 80+r*math32.Cos(a)))
	}
	return world.Scene{
		Polygons: []world.Polygon{
			{
				Points: []math3d.Vec2{math3d.V2(-200, -100), math3d.V2(-40, -100), math3d.V2(-120, 60)},
				Color:  world.FromStd(colornames.Steelblue),
				Alpha:  0.8,
				Filled: true,
			},
			{
				Points: []math3d.Vec2{math3d.V2(-100, -50), math3d.V2(60, -50), math3d.V2(-20, 110)},
				Color:  world.FromStd(colornames.Tomato),
				Alpha:  0.6,
				Filled: true,
			},
			{
				Points: append(star, star[0]),
				Color:  world.FromStd(colornames.Darkgreen),
				Alpha:  1,
			},
		},
		Lines: []world.Line{
			{
				Points: []math3d.Vec2{math3d.V2(-250, -150), math3d.V2(0, 0), math3d.V2(250, -150)},
				Color:  world.FromStd(colornames.Darkorange),
				Alpha:  1,
			},
		},
	}
}

func run(modelPath string) error {
	closeLog, err := setupLogging(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	keymap, err := cfg.Keymap()
	if err != nil {
		return err
	}

	scene, name, err := loadScene(modelPath)
	if err != nil {
		return err
	}

	eng := engine.New(
		engine.WithRenderer(render.New(render.WithClearColor(cfg.Display.Background))),
		engine.WithSettings(cfg.Settings()),
		engine.WithScene(scene),
		engine.WithBaseZoom(cfg.Camera.BaseZoom),
		engine.WithDefaultPosition(cfg.DefaultPosition()),
		engine.WithKeymap(keymap),
		engine.WithZoomStep(cfg.Camera.ZoomStep),
	)
	defer eng.Close()

	if *pngPath != "" {
		return renderPNG(eng, *pngPath)
	}
	return runTerminal(eng, cfg, name, len(scene.Polygons)+len(scene.Lines))
}

// renderPNG draws a single fitted frame offscreen.
func renderPNG(eng *engine.Engine, path string) error {
	dev := soft.New(800, 600)
	if err := eng.Init(dev); err != nil {
		return err
	}
	eng.Do(interact.ActionFit)
	if err := dev.Framebuffer().SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	fmt.Printf("Wrote %s (%s)\n", path, eng.Description())
	return nil
}

func runTerminal(eng *engine.Engine, cfg config.Config, name string, shapes int) error {
	tty := uv.DefaultTerminal()

	width, height, err := tty.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := tty.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	tty.EnterAltScreen()
	tty.HideCursor()
	tty.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		tty.ExitAltScreen()
		tty.ShowCursor()
		tty.Shutdown(context.Background())
	}
	defer cleanup()

	hud := term.NewHUD(name, shapes)
	menu := term.NewMenu(term.DefaultMenu())

	present := func(fb *soft.Framebuffer) {
		area := uv.Rect(0, 0, width, height)
		term.Draw(tty, area, fb)
		hud.Draw(tty, area, term.Status{
			Backend:  eng.Description(),
			Position: eng.CameraPosition(),
			Zoom:     eng.ZoomFactor(),
			Locked:   eng.Locked(),
		})
		menu.Draw(tty, area)
		if err := tty.Display(); err != nil {
			logging.Logger().Warn("display failed", "error", err)
		}
	}

	fbWidth, fbHeight := term.FramebufferSize(width, height)
	dev := soft.New(fbWidth, fbHeight, soft.WithPresent(present))
	if err := eng.Init(dev); err != nil {
		return err
	}
	logging.Logger().Info("viewport started", "scene", name, "backend", eng.Description(), "fps", cfg.FPS)

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	reloads := make(chan config.Config, 1)
	if *configPath != "" {
		err := config.Watch(ctx, *configPath, func(c config.Config, err error) {
			if err != nil {
				return
			}
			select {
			case reloads <- c:
			case <-ctx.Done():
			}
		})
		if err != nil {
			logging.Logger().Warn("config not watched", "error", err)
		}
	}

	wheel := interact.NewWheelSmoother(cfg.FPS)
	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()

	events := tty.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-reloads:
			km, err := c.Keymap()
			if err != nil {
				continue
			}
			eng.SetKeymap(km)
			eng.SetZoomStep(c.Camera.ZoomStep)
			eng.SetBackground(c.Display.Background)
			eng.SetSettings(c.Settings())
			if c.FPS != cfg.FPS && *targetFPS == 0 {
				cfg.FPS = c.FPS
				ticker.Reset(time.Second / time.Duration(cfg.FPS))
				wheel = interact.NewWheelSmoother(cfg.FPS)
			}

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				tty.Erase()
				tty.Resize(width, height)
				fbWidth, fbHeight = term.FramebufferSize(width, height)
				dev.Resize(fbWidth, fbHeight)
				eng.Resize(uint32(fbWidth), uint32(fbHeight))
				continue

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("ctrl+c"):
					return nil
				case ev.MatchString("escape"):
					if !menu.IsOpen() {
						return nil
					}
					menu.Close()
					continue
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					hud.Visible = !hud.Visible
					continue
				}

			case uv.MouseMotionEvent:
				if menu.IsOpen() {
					menu.Hover(ev.X, ev.Y)
					continue
				}

			case uv.MouseClickEvent:
				if menu.IsOpen() {
					eng.Do(menu.Click(ev.X, ev.Y))
					continue
				}
			}

			in, ok := term.Translate(ev)
			if !ok {
				continue
			}
			if in.Kind == interact.Wheel {
				if !eng.Locked() {
					wheel.Add(in.Delta)
				}
				continue
			}
			if f := eng.HandleEvent(in); f.Has(interact.FlagContextMenu) {
				menu.Open(int(in.X), int(in.Y)/2)
			}

		case <-ticker.C:
			if d := wheel.Step(); d != 0 {
				eng.HandleEvent(interact.Event{Kind: interact.Wheel, Delta: d})
			}
			eng.Tick()
			hud.UpdateFPS()
		}
	}
}
