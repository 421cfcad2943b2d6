package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vkgears/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, width uint32, height uint32, fullscreen bool) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	if !glfw.VulkanSupported() {
		core.LogFatal("glfw reports no Vulkan loader available")
		return fmt.Errorf("vulkan not supported")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	var monitor *glfw.Monitor
	if fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			width = uint32(mode.Width)
			height = uint32(mode.Height)
		}
	}

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, monitor, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once
// the window has been asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// FramebufferSize returns the current framebuffer extent in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// WaitEvents blocks until a window event arrives. Used while the
// window is minimized and there is nothing to render.
func (p *Platform) WaitEvents() {
	glfw.WaitEvents()
}

// RequiredVulkanExtensions returns the instance extensions the window
// system needs for presentation.
func (p *Platform) RequiredVulkanExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}

func translateKey(key glfw.Key) core.KeyCode {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeyUp:
		return core.KEY_UP
	case glfw.KeyDown:
		return core.KEY_DOWN
	case glfw.KeyLeft:
		return core.KEY_LEFT
	case glfw.KeyRight:
		return core.KEY_RIGHT
	case glfw.KeyA:
		return core.KEY_A
	default:
		return core.KEY_UNKNOWN
	}
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	kc := translateKey(key)
	if kc == core.KEY_UNKNOWN {
		return
	}
	switch action {
	case glfw.Press:
		core.InputProcessKey(kc, true)
	case glfw.Release:
		core.InputProcessKey(kc, false)
	}
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: core.ResizeEvent{Width: uint32(width), Height: uint32(height)},
	})
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_APPLICATION_QUIT,
	})
}
