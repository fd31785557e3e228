package vkx

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceProvider supplies the window-system pieces the Device needs:
// instance extensions, a presentation surface, the current client-area size
// in pixels, and the resize signal consumed by the frame loop.
//
// The provider is also responsible for loading the Vulkan proc addresses
// (vk.SetGetInstanceProcAddr + vk.Init) before Bootstrap is called.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferSize() (width, height int)
	// ConsumeResize reports whether the window was resized since the last
	// call and clears the flag.
	ConsumeResize() bool
}

// Window adapts a GLFW window to the SurfaceProvider contract.
type Window struct {
	win     *glfw.Window
	resized bool
}

// NewWindow wraps win and installs a framebuffer size callback that raises
// the resize flag. Any callback previously installed on win is replaced.
func NewWindow(win *glfw.Window) *Window {
	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		w.resized = true
	})
	return w
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) ConsumeResize() bool {
	r := w.resized
	w.resized = false
	return r
}
