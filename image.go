package vkx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ImageDecoder turns an image file into raw RGBA8 pixels. Asset decoding
// stays outside this package; texture creation only consumes the result.
type ImageDecoder func(path string) (width, height int, pixels []byte, err error)

// Image pairs an image handle with its backing memory and an optional view.
// The view may be absent right after creation and attached later. Destroy
// releases whatever is present and resets all handles to the null sentinel.
type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Extent vk.Extent2D
}

// CreateImage creates a 2D single-mip image and binds fresh memory to it.
// The view field is left null; use AttachView or CreateImageView.
func (d *Device) CreateImage(width, height uint32, format vk.Format, tiling vk.ImageTiling,
	usage vk.ImageUsageFlagBits, props vk.MemoryPropertyFlagBits) (*Image, error) {

	var handle vk.Image
	ret := vk.CreateImage(d.handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &handle)
	if err := errWrap(ret, "create image"); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.handle, handle, &req)
	req.Deref()

	memory, err := d.allocateMemory(req, props)
	if err != nil {
		vk.DestroyImage(d.handle, handle, nil)
		return nil, err
	}
	if err := errWrap(vk.BindImageMemory(d.handle, handle, memory, 0), "bind image memory"); err != nil {
		vk.FreeMemory(d.handle, memory, nil)
		vk.DestroyImage(d.handle, handle, nil)
		return nil, err
	}
	return &Image{
		Handle: handle,
		Memory: memory,
		Format: format,
		Extent: vk.Extent2D{Width: width, Height: height},
	}, nil
}

// CreateImageView creates a 2D view over the given aspect of an image.
func (d *Device) CreateImageView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(d.handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := errWrap(ret, "create image view"); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

// AttachView creates and stores the image's own view.
func (img *Image) AttachView(d *Device, aspect vk.ImageAspectFlagBits) error {
	view, err := d.CreateImageView(img.Handle, img.Format, aspect)
	if err != nil {
		return err
	}
	img.View = view
	return nil
}

// Destroy releases the view (if present), the image and its memory, and
// resets all handles to the null sentinel. A second call is a no-op.
func (img *Image) Destroy(d *Device) {
	if img.View != vk.NullImageView {
		vk.DestroyImageView(d.handle, img.View, nil)
		img.View = vk.NullImageView
	}
	if img.Handle != vk.NullImage {
		vk.DestroyImage(d.handle, img.Handle, nil)
		img.Handle = vk.NullImage
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.handle, img.Memory, nil)
		img.Memory = vk.NullDeviceMemory
	}
}

// hasStencilComponent reports whether a depth format carries a stencil
// aspect alongside depth.
func hasStencilComponent(format vk.Format) bool {
	switch format {
	case vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint:
		return true
	}
	return false
}

// transitionAspect derives the barrier aspect mask from the image format
// and destination layout. A barrier on a combined depth/stencil image must
// name both aspects, not just depth.
func transitionAspect(format vk.Format, newLayout vk.ImageLayout) vk.ImageAspectFlags {
	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		return aspect
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

// recordTransition writes a pipeline barrier switching the image between
// the layout pairs this renderer uses. Unknown pairs are an error rather
// than a guess at stage masks.
func recordTransition(cmd vk.CommandBuffer, image vk.Image, format vk.Format,
	oldLayout, newLayout vk.ImageLayout) error {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: transitionAspect(format, newLayout),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutPresentSrc:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessMemoryReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
	default:
		return fmt.Errorf("%w: %d -> %d", ErrBadTransition, oldLayout, newLayout)
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil,
		1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// TransitionImageLayout performs a layout transition in its own single-use
// command buffer, blocking until it completes.
func (d *Device) TransitionImageLayout(image vk.Image, format vk.Format,
	oldLayout, newLayout vk.ImageLayout) error {

	cmd, err := d.BeginSingleUseCommands()
	if err != nil {
		return err
	}
	if err := recordTransition(cmd, image, format, oldLayout, newLayout); err != nil {
		d.EndSingleUseCommands(cmd)
		return err
	}
	return d.EndSingleUseCommands(cmd)
}

// CreateTextureFromPixels uploads RGBA8 pixels into a fresh sampled image.
// The returned image is in the shader-read-only layout with a color view
// attached; that layout is an invariant other components rely on.
func (d *Device) CreateTextureFromPixels(width, height int, pixels []byte) (*Image, error) {
	size := vk.DeviceSize(len(pixels))

	staging, err := d.CreateBuffer(size, vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(d)

	if err := staging.writeBytes(d, pixels); err != nil {
		return nil, err
	}

	img, err := d.CreateImage(uint32(width), uint32(height), vk.FormatR8g8b8a8Srgb,
		vk.ImageTilingOptimal, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	err = d.TransitionImageLayout(img.Handle, img.Format,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err == nil {
		err = d.copyBufferToImage(staging.Handle, img.Handle, uint32(width), uint32(height))
	}
	if err == nil {
		err = d.TransitionImageLayout(img.Handle, img.Format,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	}
	if err == nil {
		err = img.AttachView(d, vk.ImageAspectColorBit)
	}
	if err != nil {
		img.Destroy(d)
		return nil, err
	}
	return img, nil
}

// CreateTextureImage decodes an image file through the caller's decoder and
// uploads it via CreateTextureFromPixels.
func (d *Device) CreateTextureImage(decode ImageDecoder, path string) (*Image, error) {
	width, height, pixels, err := decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return d.CreateTextureFromPixels(width, height, pixels)
}

func (d *Device) copyBufferToImage(buffer vk.Buffer, image vk.Image, width, height uint32) error {
	cmd, err := d.BeginSingleUseCommands()
	if err != nil {
		return err
	}
	vk.CmdCopyBufferToImage(cmd, buffer, image, vk.ImageLayoutTransferDstOptimal, 1,
		[]vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
		}})
	return d.EndSingleUseCommands(cmd)
}

// depthFormatCandidates prefers a stencil-free 32-bit depth format; the
// combined depth/stencil formats are fallbacks.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// FindDepthFormat returns the first depth format the device supports for
// optimal-tiling depth attachments.
func (d *Device) FindDepthFormat() (vk.Format, error) {
	return findSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
		func(format vk.Format) vk.FormatProperties {
			var props vk.FormatProperties
			vk.GetPhysicalDeviceFormatProperties(d.gpu, format, &props)
			props.Deref()
			return props
		})
}

func findSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling,
	features vk.FormatFeatureFlags, query func(vk.Format) vk.FormatProperties) (vk.Format, error) {

	for _, format := range candidates {
		props := query(format)
		switch tiling {
		case vk.ImageTilingLinear:
			if props.LinearTilingFeatures&features == features {
				return format, nil
			}
		case vk.ImageTilingOptimal:
			if props.OptimalTilingFeatures&features == features {
				return format, nil
			}
		}
	}
	return vk.FormatUndefined, ErrNoSupportedFormat
}
