package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// FramesInFlight is the number of frames the CPU may prepare while the GPU
// is still executing earlier ones. Two keeps the GPU busy without letting
// the CPU run far ahead.
const FramesInFlight = 2

// Config carries the bootstrap settings for a Device.
type Config struct {
	// AppName is reported to the driver in the application info.
	AppName string

	// Debug enables the Khronos validation layer and a debug report
	// callback that forwards driver diagnostics to the device logger.
	// Bootstrap fails if the layer is requested but not installed.
	Debug bool

	// PreferredFormat and PreferredColorSpace steer surface format
	// selection. When the pair is not offered by the surface, the first
	// supported format is used instead.
	PreferredFormat     vk.Format
	PreferredColorSpace vk.ColorSpace
}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = "vkx"
	}
	if c.PreferredFormat == vk.FormatUndefined {
		c.PreferredFormat = vk.FormatB8g8r8a8Srgb
		c.PreferredColorSpace = vk.ColorSpaceSrgbNonlinear
	}
	return c
}
