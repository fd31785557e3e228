package vkx

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestFindSupportedFormat(t *testing.T) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	support := map[vk.Format]vk.FormatProperties{
		vk.FormatD32SfloatS8Uint: {OptimalTilingFeatures: want},
		vk.FormatD24UnormS8Uint:  {OptimalTilingFeatures: want, LinearTilingFeatures: want},
	}
	query := func(f vk.Format) vk.FormatProperties { return support[f] }

	got, err := findSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal, want, query)
	if err != nil {
		t.Fatalf("findSupportedFormat: %v", err)
	}
	// D32_SFLOAT is unsupported here, so the probe settles on the next
	// candidate in preference order.
	if got != vk.FormatD32SfloatS8Uint {
		t.Errorf("got %v, want first supported candidate D32_SFLOAT_S8_UINT", got)
	}

	got, err = findSupportedFormat(depthFormatCandidates, vk.ImageTilingLinear, want, query)
	if err != nil {
		t.Fatalf("findSupportedFormat linear: %v", err)
	}
	if got != vk.FormatD24UnormS8Uint {
		t.Errorf("got %v, want D24_UNORM_S8_UINT for linear tiling", got)
	}
}

// When every candidate is available, the stencil-free D32_SFLOAT wins, so
// depth transitions and barriers stay single-aspect on common hardware.
func TestDepthFormatCandidateOrder(t *testing.T) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	query := func(vk.Format) vk.FormatProperties {
		return vk.FormatProperties{OptimalTilingFeatures: want}
	}
	got, err := findSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal, want, query)
	if err != nil {
		t.Fatalf("findSupportedFormat: %v", err)
	}
	if got != vk.FormatD32Sfloat {
		t.Errorf("got %v, want D32_SFLOAT preferred over combined formats", got)
	}
}

func TestFindSupportedFormatNoMatch(t *testing.T) {
	query := func(vk.Format) vk.FormatProperties { return vk.FormatProperties{} }
	_, err := findSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit), query)
	if !errors.Is(err, ErrNoSupportedFormat) {
		t.Errorf("got %v, want ErrNoSupportedFormat", err)
	}
}

func TestTransitionAspect(t *testing.T) {
	depth := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	stencil := vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	color := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	toDepth := vk.ImageLayoutDepthStencilAttachmentOptimal

	tests := []struct {
		name      string
		format    vk.Format
		newLayout vk.ImageLayout
		want      vk.ImageAspectFlags
	}{
		{"depth only", vk.FormatD32Sfloat, toDepth, depth},
		{"d32 with stencil", vk.FormatD32SfloatS8Uint, toDepth, depth | stencil},
		{"d24 with stencil", vk.FormatD24UnormS8Uint, toDepth, depth | stencil},
		{"texture upload", vk.FormatR8g8b8a8Srgb, vk.ImageLayoutTransferDstOptimal, color},
		{"present", vk.FormatB8g8r8a8Srgb, vk.ImageLayoutPresentSrc, color},
	}
	for _, tt := range tests {
		if got := transitionAspect(tt.format, tt.newLayout); got != tt.want {
			t.Errorf("%s: aspect = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRecordTransitionRejectsUnknownPair(t *testing.T) {
	err := recordTransition(nil, vk.NullImage, vk.FormatB8g8r8a8Srgb,
		vk.ImageLayoutPresentSrc, vk.ImageLayoutTransferSrcOptimal)
	if !errors.Is(err, ErrBadTransition) {
		t.Errorf("got %v, want ErrBadTransition", err)
	}
}
