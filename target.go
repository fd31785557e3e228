package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// RenderTarget is an offscreen color image (sampled by a later pass) with
// its own depth image, render pass and framebuffer. The sprite renderer
// draws the scene into one target per frame slot, then blits the target's
// color image to the swapchain.
type RenderTarget struct {
	Color Image
	Depth Image

	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer
	extent      vk.Extent2D
}

// CreateRenderTarget builds an offscreen target of the given size. The
// color image uses colorFormat (normally the swapchain format so the blit
// pipeline is format-agnostic) and starts in the shader-read-only layout,
// which is also its steady state outside the render pass.
func (d *Device) CreateRenderTarget(extent vk.Extent2D, colorFormat, depthFormat vk.Format) (*RenderTarget, error) {
	t := &RenderTarget{extent: extent}

	color, err := d.CreateImage(extent.Width, extent.Height, colorFormat,
		vk.ImageTilingOptimal, vk.ImageUsageColorAttachmentBit|vk.ImageUsageSampledBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	t.Color = *color
	if err := t.Color.AttachView(d, vk.ImageAspectColorBit); err != nil {
		t.Destroy(d)
		return nil, err
	}
	if err := d.TransitionImageLayout(t.Color.Handle, colorFormat,
		vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		t.Destroy(d)
		return nil, err
	}

	depth, err := d.CreateImage(extent.Width, extent.Height, depthFormat,
		vk.ImageTilingOptimal, vk.ImageUsageDepthStencilAttachmentBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		t.Destroy(d)
		return nil, err
	}
	t.Depth = *depth
	if err := t.Depth.AttachView(d, vk.ImageAspectDepthBit); err != nil {
		t.Destroy(d)
		return nil, err
	}
	if err := d.TransitionImageLayout(t.Depth.Handle, depthFormat,
		vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		t.Destroy(d)
		return nil, err
	}

	pass, err := d.createRenderPass(attachmentSpec{
		colorFormat: colorFormat,
		colorLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		depthFormat: depthFormat,
	})
	if err != nil {
		t.Destroy(d)
		return nil, err
	}
	t.renderPass = pass

	fb, err := d.createFramebuffer(pass, []vk.ImageView{t.Color.View, t.Depth.View}, extent)
	if err != nil {
		t.Destroy(d)
		return nil, err
	}
	t.framebuffer = fb
	return t, nil
}

// Destroy releases the target's pass, framebuffer and both images.
func (t *RenderTarget) Destroy(d *Device) {
	if t.framebuffer != vk.NullFramebuffer {
		vk.DestroyFramebuffer(d.handle, t.framebuffer, nil)
		t.framebuffer = vk.NullFramebuffer
	}
	if t.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.handle, t.renderPass, nil)
		t.renderPass = vk.NullRenderPass
	}
	t.Color.Destroy(d)
	t.Depth.Destroy(d)
}

// RenderPass returns the pass drawing into this target.
func (t *RenderTarget) RenderPass() vk.RenderPass { return t.renderPass }

// Framebuffer returns the target's framebuffer.
func (t *RenderTarget) Framebuffer() vk.Framebuffer { return t.framebuffer }

// Extent returns the target size.
func (t *RenderTarget) Extent() vk.Extent2D { return t.extent }
