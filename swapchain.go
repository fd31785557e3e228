package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// surfaceSupport is a transient snapshot of what the surface can do. It is
// queried, consumed to pick format/mode/extent, then dropped; it is never
// cached across frames.
type surfaceSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (d *Device) querySurfaceSupport() (surfaceSupport, error) {
	var s surfaceSupport

	ret := vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu, d.surface, &s.capabilities)
	if err := errWrap(ret, "query surface capabilities"); err != nil {
		return s, err
	}
	s.capabilities.Deref()
	s.capabilities.CurrentExtent.Deref()
	s.capabilities.MinImageExtent.Deref()
	s.capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &formatCount, nil)
	s.formats = make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &formatCount, s.formats)
	for i := range s.formats {
		s.formats[i].Deref()
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &modeCount, nil)
	s.presentModes = make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &modeCount, s.presentModes)

	if len(s.formats) == 0 || len(s.presentModes) == 0 {
		return s, ErrNoSurfaceFormat
	}
	return s, nil
}

// chooseSurfaceFormat returns the preferred format/color-space pair when
// the surface offers it, otherwise the first supported format. The
// fallback is intentional, not an error.
func chooseSurfaceFormat(formats []vk.SurfaceFormat, preferred vk.Format, space vk.ColorSpace) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == preferred && f.ColorSpace == space {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode returns mailbox when offered, else FIFO, which every
// conforming driver supports.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface-reported extent verbatim unless the driver
// reports the "any extent" sentinel, in which case the window framebuffer
// size is clamped into the supported range.
func chooseExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(uint32(fbWidth), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(fbHeight), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum so the driver
// never stalls waiting for us, clamped down when the surface reports a
// bounded maximum (zero means unbounded).
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// Swapchain owns the presentable image chain: the driver-owned images, the
// parallel slice of views this layer owns, the chosen format and extent,
// an optional shared depth image, and the render pass plus per-image
// framebuffers used to draw into the chain. Images and Views always have
// the same length and index correspondence.
type Swapchain struct {
	handle vk.Swapchain

	Images []vk.Image
	Views  []vk.ImageView
	Format vk.SurfaceFormat
	Extent vk.Extent2D

	Depth     *Image
	wantDepth bool

	renderPass   vk.RenderPass
	framebuffers []vk.Framebuffer
}

// CreateSwapchain builds the swapchain from the surface's current
// capabilities. With wantDepth a single depth image shared by all frames
// is created alongside; one per frame in flight is unnecessary because the
// depth contents never survive a frame.
func (d *Device) CreateSwapchain(wantDepth bool) (*Swapchain, error) {
	s := &Swapchain{wantDepth: wantDepth}
	if err := d.initSwapchain(s); err != nil {
		s.destroyResources(d)
		return nil, err
	}
	return s, nil
}

func (d *Device) initSwapchain(s *Swapchain) error {
	support, err := d.querySurfaceSupport()
	if err != nil {
		return err
	}

	format := chooseSurfaceFormat(support.formats, d.cfg.PreferredFormat, d.cfg.PreferredColorSpace)
	presentMode := choosePresentMode(support.presentModes)
	fbWidth, fbHeight := d.provider.FramebufferSize()
	extent := chooseExtent(support.capabilities, fbWidth, fbHeight)
	imageCount := chooseImageCount(support.capabilities)

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if d.families.Distinct() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{d.families.Graphics, d.families.Present}
	} else {
		info.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := errWrap(vk.CreateSwapchain(d.handle, &info, nil, &handle), "create swapchain"); err != nil {
		return err
	}
	s.handle = handle
	s.Format = format
	s.Extent = extent

	var count uint32
	if err := errWrap(vk.GetSwapchainImages(d.handle, handle, &count, nil), "get swapchain images"); err != nil {
		return err
	}
	s.Images = make([]vk.Image, count)
	if err := errWrap(vk.GetSwapchainImages(d.handle, handle, &count, s.Images), "get swapchain images"); err != nil {
		return err
	}

	// Presentable images come back in an undefined layout. Move them all
	// to the present-source layout once so the render pass can treat that
	// as their steady state.
	cmd, err := d.BeginSingleUseCommands()
	if err != nil {
		return err
	}
	for _, image := range s.Images {
		if err := recordTransition(cmd, image, format.Format,
			vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc); err != nil {
			d.EndSingleUseCommands(cmd)
			return err
		}
	}
	if err := d.EndSingleUseCommands(cmd); err != nil {
		return err
	}

	s.Views = make([]vk.ImageView, count)
	for i, image := range s.Images {
		view, err := d.CreateImageView(image, format.Format, vk.ImageAspectColorBit)
		if err != nil {
			return err
		}
		s.Views[i] = view
	}

	depthFormat := vk.FormatUndefined
	if s.wantDepth {
		depthFormat, err = d.FindDepthFormat()
		if err != nil {
			return err
		}
		depth, err := d.CreateImage(extent.Width, extent.Height, depthFormat,
			vk.ImageTilingOptimal, vk.ImageUsageDepthStencilAttachmentBit,
			vk.MemoryPropertyDeviceLocalBit)
		if err != nil {
			return err
		}
		s.Depth = depth
		if err := depth.AttachView(d, vk.ImageAspectDepthBit); err != nil {
			return err
		}
		if err := d.TransitionImageLayout(depth.Handle, depthFormat,
			vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
			return err
		}
	}

	pass, err := d.createRenderPass(attachmentSpec{
		colorFormat: format.Format,
		colorLayout: vk.ImageLayoutPresentSrc,
		depthFormat: depthFormat,
	})
	if err != nil {
		return err
	}
	s.renderPass = pass

	s.framebuffers = make([]vk.Framebuffer, count)
	for i, view := range s.Views {
		views := []vk.ImageView{view}
		if s.Depth != nil {
			views = append(views, s.Depth.View)
		}
		fb, err := d.createFramebuffer(pass, views, extent)
		if err != nil {
			return err
		}
		s.framebuffers[i] = fb
	}
	return nil
}

func (s *Swapchain) destroyResources(d *Device) {
	for _, fb := range s.framebuffers {
		if fb != vk.NullFramebuffer {
			vk.DestroyFramebuffer(d.handle, fb, nil)
		}
	}
	s.framebuffers = nil
	if s.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.handle, s.renderPass, nil)
		s.renderPass = vk.NullRenderPass
	}
	if s.Depth != nil {
		s.Depth.Destroy(d)
		s.Depth = nil
	}
	for _, view := range s.Views {
		if view != vk.NullImageView {
			vk.DestroyImageView(d.handle, view, nil)
		}
	}
	s.Views = nil
	s.Images = nil // driver-owned, freed with the swapchain
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(d.handle, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
}

// Destroy waits for the device to go idle and releases everything the
// swapchain owns.
func (s *Swapchain) Destroy(d *Device) {
	d.WaitIdle()
	s.destroyResources(d)
}

// Recreate tears the chain down and rebuilds it against the surface's
// current capabilities, preserving the original wantDepth setting. The
// resulting extent, format and image count depend only on what the surface
// reports now, never on prior swapchain state.
func (s *Swapchain) Recreate(d *Device) error {
	d.WaitIdle()
	s.destroyResources(d)
	if err := d.initSwapchain(s); err != nil {
		s.destroyResources(d)
		return err
	}
	return nil
}

// Handle returns the swapchain handle for acquire and present calls.
func (s *Swapchain) Handle() vk.Swapchain { return s.handle }

// RenderPass returns the pass that draws into the presentable images.
func (s *Swapchain) RenderPass() vk.RenderPass { return s.renderPass }

// Framebuffer returns the framebuffer for a presentable image index.
func (s *Swapchain) Framebuffer(imageIndex uint32) vk.Framebuffer {
	return s.framebuffers[imageIndex]
}

// Viewport covers the full swapchain extent.
func (s *Swapchain) Viewport() vk.Viewport {
	return vk.Viewport{
		Width:    float32(s.Extent.Width),
		Height:   float32(s.Extent.Height),
		MaxDepth: 1,
	}
}

// Scissor covers the full swapchain extent.
func (s *Swapchain) Scissor() vk.Rect2D {
	return vk.Rect2D{Extent: s.Extent}
}
