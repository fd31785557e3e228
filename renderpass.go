package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// attachmentSpec describes the render targets a pass writes: a mandatory
// color attachment and an optional depth attachment. Color contents are
// cleared on load and kept in the same layout outside the pass, so the
// owning image can sit in its steady-state layout (present source for
// swapchain images, shader-read for offscreen targets) between frames.
type attachmentSpec struct {
	colorFormat vk.Format
	colorLayout vk.ImageLayout // layout outside the pass
	depthFormat vk.Format      // FormatUndefined disables depth
}

func (s attachmentSpec) hasDepth() bool { return s.depthFormat != vk.FormatUndefined }

// createRenderPass builds a single-subpass pass over the described
// attachments. Passes built from equal attachment descriptions are
// compatible, so pipelines created against one can be used with
// framebuffers of another.
func (d *Device) createRenderPass(a attachmentSpec) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         a.colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  a.colorLayout,
		FinalLayout:    a.colorLayout,
	}}

	colorRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorRef,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	if a.hasDepth() {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         a.depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutDepthStencilAttachmentOptimal,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		dependency.SrcStageMask |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		dependency.DstStageMask |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		dependency.DstAccessMask |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}

	var pass vk.RenderPass
	ret := vk.CreateRenderPass(d.handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}, nil, &pass)
	if err := errWrap(ret, "create render pass"); err != nil {
		return vk.NullRenderPass, err
	}
	return pass, nil
}

func (d *Device) createFramebuffer(pass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(d.handle, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}, nil, &fb)
	if err := errWrap(ret, "create framebuffer"); err != nil {
		return vk.NullFramebuffer, err
	}
	return fb, nil
}
