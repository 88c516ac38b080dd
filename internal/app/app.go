package app

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
	"github.com/sirupsen/logrus"

	"tileviewer/assets"
	"tileviewer/internal/camera"
	"tileviewer/internal/config"
	"tileviewer/internal/input"
	"tileviewer/internal/renderer"
	"tileviewer/internal/tilemap"
	"tileviewer/internal/worldgen"
)

// watched key set; everything else the window reports is ignored
var watchedKeys = []glfw.Key{
	glfw.KeyEscape,
	glfw.KeyUp, glfw.KeyDown, glfw.KeyLeft, glfw.KeyRight,
	glfw.KeyEqual, glfw.KeyMinus,
	glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD,
}

type App struct {
	window   *glfw.Window
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	plane *renderer.Plane
	grid  *tilemap.Grid
	cam   *camera.Camera
	keys  *input.Handler

	cfg *config.Config

	width, height int
}

func New() (*App, error) {
	runtime.LockOSThread()

	cfg := config.Get()
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", cfg.Log.Level).Warn("unknown log level, keeping info")
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("GLFW init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window creation failed: %w", err)
	}

	app := &App{
		window: window,
		cfg:    cfg,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		keys:   input.NewHandler(),
	}

	if err := app.initWebGPU(); err != nil {
		app.Cleanup()
		return nil, err
	}

	sheetPNG, err := loadAsset(cfg.Paths.TileSheet, assets.TileSheet)
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("loading tile sheet: %w", err)
	}

	app.plane, err = renderer.NewPlane(
		app.adapter, app.device, app.queue, app.surface,
		uint32(app.width), uint32(app.height),
		renderer.PlaneConfig{
			ViewWidth:     cfg.World.ViewWidth,
			ViewHeight:    cfg.World.ViewHeight,
			TileSize:      cfg.World.TileSize,
			SheetColumns:  cfg.Sheet.Columns,
			SheetRows:     cfg.Sheet.Rows,
			SheetTileSize: cfg.Sheet.TileSize,
			SheetPNG:      sheetPNG,
		})
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("plane creation failed: %w", err)
	}

	app.grid, err = tilemap.NewGrid(
		cfg.World.GridWidth, cfg.World.GridHeight,
		cfg.World.ViewWidth, cfg.World.ViewHeight,
		float32(cfg.World.TileSize), app.plane)
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("grid creation failed: %w", err)
	}

	if err := app.populate(); err != nil {
		app.Cleanup()
		return nil, err
	}
	app.grid.SetFocus(0, 0)

	app.cam = camera.New(float32(cfg.Controls.PanSpeed), float32(cfg.Controls.ZoomSpeed))

	for _, key := range watchedKeys {
		app.keys.Watch(input.Key(key))
	}
	app.setupCallbacks()

	logrus.WithFields(logrus.Fields{
		"grid":     fmt.Sprintf("%dx%d", cfg.World.GridWidth, cfg.World.GridHeight),
		"viewport": fmt.Sprintf("%dx%d", cfg.World.ViewWidth, cfg.World.ViewHeight),
		"tile_px":  cfg.World.TileSize,
	}).Info("tilemap ready")

	return app, nil
}

func (app *App) initWebGPU() error {
	app.instance = wgpu.CreateInstance(nil)
	if app.instance == nil {
		return fmt.Errorf("failed to create WebGPU instance")
	}

	app.surface = CreateSurface(app.instance, app.window)
	if app.surface == nil {
		return fmt.Errorf("surface creation failed")
	}

	var err error
	app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: app.surface,
		PowerPreference:   wgpu.PowerPreference_HighPerformance,
	})
	if err != nil {
		return fmt.Errorf("adapter request failed: %w", err)
	}

	props := app.adapter.GetProperties()
	logrus.WithFields(logrus.Fields{
		"gpu":    props.Name,
		"driver": props.DriverDescription,
	}).Info("adapter acquired")

	app.device, err = app.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "TileViewerDevice",
	})
	if err != nil {
		return fmt.Errorf("device request failed: %w", err)
	}

	app.queue = app.device.GetQueue()
	return nil
}

// populate runs the map script against the fresh grid.
func (app *App) populate() error {
	src, err := loadAsset(app.cfg.Paths.MapScript, assets.WorldMap)
	if err != nil {
		return fmt.Errorf("loading map script: %w", err)
	}
	layout, err := worldgen.Load(src)
	if err != nil {
		return err
	}
	return layout.Apply(app.grid)
}

// loadAsset returns the file at path when set, the embedded fallback
// otherwise.
func loadAsset(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", path).Info("using asset override")
	return data, nil
}

func (app *App) setupCallbacks() {
	app.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		app.width = width
		app.height = height
		app.plane.Resize(uint32(width), uint32(height))
	})

	app.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			app.keys.Enqueue(input.Key(key), true)
		case glfw.Release:
			app.keys.Enqueue(input.Key(key), false)
		}
	})
}

func (app *App) processInput() {
	keys := app.keys

	if keys.IsPressed(input.Key(glfw.KeyEscape)) {
		app.window.SetShouldClose(true)
		return
	}

	// camera zoom
	if keys.IsPressed(input.Key(glfw.KeyEqual)) {
		app.cam.ZoomIn()
	}
	if keys.IsPressed(input.Key(glfw.KeyMinus)) {
		app.cam.ZoomOut()
	}

	// camera pan
	if keys.IsPressed(input.Key(glfw.KeyUp)) {
		app.cam.Pan(0, -1)
	}
	if keys.IsPressed(input.Key(glfw.KeyDown)) {
		app.cam.Pan(0, 1)
	}
	if keys.IsPressed(input.Key(glfw.KeyLeft)) {
		app.cam.Pan(-1, 0)
	}
	if keys.IsPressed(input.Key(glfw.KeyRight)) {
		app.cam.Pan(1, 0)
	}

	// tilemap scroll
	scroll := float32(app.cfg.Controls.ScrollSpeed)
	if keys.IsPressed(input.Key(glfw.KeyW)) {
		app.grid.ApplyOffset(tilemap.AxisY, scroll)
	}
	if keys.IsPressed(input.Key(glfw.KeyS)) {
		app.grid.ApplyOffset(tilemap.AxisY, -scroll)
	}
	if keys.IsPressed(input.Key(glfw.KeyD)) {
		app.grid.ApplyOffset(tilemap.AxisX, scroll)
	}
	if keys.IsPressed(input.Key(glfw.KeyA)) {
		app.grid.ApplyOffset(tilemap.AxisX, -scroll)
	}
}

func (app *App) Run() error {
	lastTime := time.Now()
	frames := 0

	for !app.window.ShouldClose() {
		glfw.PollEvents()
		app.keys.Update()
		app.processInput()

		app.plane.UpdateView(app.cam.ViewMatrix())
		if err := app.plane.Draw(); err != nil {
			logrus.WithError(err).Error("draw failed")
		}

		frames++
		if time.Since(lastTime) >= time.Second {
			fx, fy := app.grid.Focus()
			app.window.SetTitle(fmt.Sprintf("%s | focus (%d,%d) | FPS: %d",
				app.cfg.Window.Title, fx, fy, frames))
			frames = 0
			lastTime = time.Now()
		}
	}

	return nil
}

func (app *App) Cleanup() {
	if app.plane != nil {
		app.plane.Release()
	}
	if app.queue != nil {
		app.queue.Release()
	}
	if app.device != nil {
		app.device.Release()
	}
	if app.adapter != nil {
		app.adapter.Release()
	}
	if app.surface != nil {
		app.surface.Release()
	}
	if app.instance != nil {
		app.instance.Release()
	}
	if app.window != nil {
		app.window.Destroy()
	}
	glfw.Terminate()
}
