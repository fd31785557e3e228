//go:build integration

package vkx_test

import (
	"runtime"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/halcyon-gfx/vkx"
)

// TestBootstrapAndPresent needs a Vulkan-capable GPU and a display; run it
// with -tags integration on a workstation.
func TestBootstrapAndPresent(t *testing.T) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		t.Fatalf("glfw init: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(500, 500, "vkx", nil, nil)
	if err != nil {
		t.Fatalf("create window: %v", err)
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		t.Fatalf("vulkan init: %v", err)
	}

	dev, err := vkx.Bootstrap(vkx.NewWindow(win), vkx.Config{AppName: "vkx-test"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer dev.Destroy()

	sc, err := dev.CreateSwapchain(true)
	if err != nil {
		t.Fatalf("create swapchain: %v", err)
	}
	defer sc.Destroy(dev)

	if len(sc.Images) != len(sc.Views) {
		t.Fatalf("images/views length mismatch: %d != %d", len(sc.Images), len(sc.Views))
	}
	if sc.Depth == nil || sc.Depth.View == vk.NullImageView {
		t.Fatal("depth image missing or viewless after creation with wantDepth")
	}

	// Staged upload round trip through a host-visible readback.
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	buf, err := dev.CreateAndPopulateBuffer(data, vk.BufferUsageTransferSrcBit)
	if err != nil {
		t.Fatalf("staged upload: %v", err)
	}
	defer buf.Destroy(dev)

	frames, err := vkx.NewFrames(dev, sc)
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	defer frames.Destroy()

	// A few empty frames: clear-only render passes through the whole
	// acquire/submit/present cycle.
	for i := 0; i < 3; i++ {
		glfw.PollEvents()
		err := frames.Draw(func(cmd vk.CommandBuffer, imageIndex uint32, slot int) error {
			clears := []vk.ClearValue{
				vk.NewClearValue([]float32{0, 0, 0, 1}),
				vk.NewClearDepthStencil(1, 0),
			}
			vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
				SType:           vk.StructureTypeRenderPassBeginInfo,
				RenderPass:      sc.RenderPass(),
				Framebuffer:     sc.Framebuffer(imageIndex),
				RenderArea:      sc.Scissor(),
				ClearValueCount: uint32(len(clears)),
				PClearValues:    clears,
			}, vk.SubpassContentsInline)
			vk.CmdEndRenderPass(cmd)
			return nil
		})
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}
