package vkx

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormatPreferred(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := chooseSurfaceFormat(formats, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	if got.Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("chose %v, want preferred B8G8R8A8_SRGB", got.Format)
	}
}

func TestChooseSurfaceFormatFallback(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := chooseSurfaceFormat(formats, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	if got.Format != vk.FormatR8g8b8a8Unorm {
		t.Errorf("chose %v, want fallback to first supported format", got.Format)
	}
}

func TestChoosePresentMode(t *testing.T) {
	got := choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox})
	if got != vk.PresentModeMailbox {
		t.Errorf("chose %v, want mailbox when offered", got)
	}
	got = choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate})
	if got != vk.PresentModeFifo {
		t.Errorf("chose %v, want FIFO fallback", got)
	}
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
	}
	if got := chooseExtent(caps, 1024, 768); got != caps.CurrentExtent {
		t.Errorf("got %+v, want surface-reported extent verbatim", got)
	}

	caps = vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 320, Height: 240},
		MaxImageExtent: vk.Extent2D{Width: 2048, Height: 1536},
	}
	if got := chooseExtent(caps, 1024, 768); got.Width != 1024 || got.Height != 768 {
		t.Errorf("got %+v, want window size 1024x768", got)
	}
	if got := chooseExtent(caps, 4096, 100); got.Width != 2048 || got.Height != 240 {
		t.Errorf("got %+v, want component-wise clamp to 2048x240", got)
	}
}

func TestChooseImageCount(t *testing.T) {
	cases := []struct {
		min, max, want uint32
	}{
		{2, 0, 3}, // unbounded max, no clamp
		{2, 2, 2}, // clamped down to the reported max
		{2, 8, 3},
		{3, 3, 3},
	}
	for _, tc := range cases {
		caps := vk.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
		if got := chooseImageCount(caps); got != tc.want {
			t.Errorf("min=%d max=%d: got %d, want %d", tc.min, tc.max, got, tc.want)
		}
	}
}
