package engine

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/vkgears/engine/config"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/platform"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan"
)

// Degrees of view rotation applied per arrow key press.
const viewRotStep float32 = 5.0

type Engine struct {
	config      *config.Config
	isRunning   bool
	isSuspended bool
	platform    *platform.Platform
	renderer    *vulkan.VulkanRenderer
	scene       *gears.Scene
	width       uint32
	height      uint32
	clock       *core.Clock
	lastTime    float64
}

func New(cfg *config.Config) (*Engine, error) {
	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		config:      cfg,
		clock:       core.NewClock(),
		platform:    p,
		renderer:    vulkan.New(p, &cfg.Renderer),
		scene:       gears.NewScene(),
		isRunning:   true,
		isSuspended: false,
		width:       cfg.Window.Width,
		height:      cfg.Window.Height,
		lastTime:    0,
	}, nil
}

func (e *Engine) Initialize() error {
	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(e.config.Window.Title, e.width, e.height, e.config.Window.Fullscreen); err != nil {
		return err
	}

	// The window manager may hand back a different framebuffer size
	// than requested, most commonly on high-DPI displays.
	fbWidth, fbHeight := e.platform.FramebufferSize()
	e.width = fbWidth
	e.height = fbHeight

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	shaderDir := fmt.Sprintf("%s/assets/shaders", wd)

	if err := e.renderer.Initialize(e.config.Window.Title, fbWidth, fbHeight, shaderDir); err != nil {
		return err
	}

	return nil
}

func (e *Engine) Run() error {
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}

		if e.isSuspended {
			// Nothing to draw on a zero-sized framebuffer. Block until
			// the window system has something new for us.
			e.platform.WaitEvents()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		e.scene.Update(delta)

		if err := e.renderer.DrawFrame(e.scene); err != nil {
			core.LogError("frame draw failed: %s", err.Error())
			e.isRunning = false
			break
		}

		if core.MetricsUpdate(delta) {
			core.LogInfo("%.3f FPS over the last %.1f seconds", core.MetricsFPS(), core.REPORT_INTERVAL)
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		core.InputUpdate(delta)

		e.lastTime = currentTime
	}

	return nil
}

func (e *Engine) Shutdown() error {
	if err := e.renderer.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return nil
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT recieved, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	switch ke.KeyCode {
	case core.KEY_ESCAPE:
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		return true
	case core.KEY_UP:
		e.scene.AdjustViewRot(viewRotStep, 0)
	case core.KEY_DOWN:
		e.scene.AdjustViewRot(-viewRotStep, 0)
	case core.KEY_LEFT:
		e.scene.AdjustViewRot(0, viewRotStep)
	case core.KEY_RIGHT:
		e.scene.AdjustViewRot(0, -viewRotStep)
	case core.KEY_A:
		e.scene.ToggleAnimate()
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	re, ok := context.Data.(core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := re.Width
	height := re.Height

	// Check if different. If so, trigger a resize event.
	if width != e.width || height != e.height {
		e.width = width
		e.height = height

		core.LogDebug("Window resize: %d, %d", width, height)

		// Handle minimization
		if width == 0 || height == 0 {
			core.LogInfo("Window minimized, suspending application.")
			e.isSuspended = true
			return false
		}
		if e.isSuspended {
			core.LogInfo("Window restored, resuming application.")
			e.isSuspended = false
		}
		e.renderer.Resized(width, height)
	}
	return false
}
