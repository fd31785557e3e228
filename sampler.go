package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// CreateSampler creates the texture sampler the sprite pipelines share:
// nearest magnification so pixel art stays crisp, linear minification,
// clamp-to-edge addressing, anisotropy at the device limit.
func (d *Device) CreateSampler() (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(d.handle, &vk.SamplerCreateInfo{
		SType:            vk.StructureTypeSamplerCreateInfo,
		MagFilter:        vk.FilterNearest,
		MinFilter:        vk.FilterLinear,
		AddressModeU:     vk.SamplerAddressModeClampToEdge,
		AddressModeV:     vk.SamplerAddressModeClampToEdge,
		AddressModeW:     vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable: vk.True,
		MaxAnisotropy:    d.maxAnisotropy,
		BorderColor:      vk.BorderColorIntOpaqueBlack,
		CompareOp:        vk.CompareOpAlways,
		MipmapMode:       vk.SamplerMipmapModeLinear,
	}, nil, &sampler)
	if err := errWrap(ret, "create sampler"); err != nil {
		return vk.NullSampler, err
	}
	return sampler, nil
}

// DestroySampler releases a sampler created by CreateSampler.
func (d *Device) DestroySampler(sampler vk.Sampler) {
	if sampler != vk.NullSampler {
		vk.DestroySampler(d.handle, sampler, nil)
	}
}
