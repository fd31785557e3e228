package vkx

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Setup failures reported during Bootstrap and resource creation. These are
// unrecoverable: rendering cannot start without a device, a surface format
// or a memory type, so callers should abort setup.
var (
	ErrNoDevice          = errors.New("vkx: no eligible physical device found")
	ErrNoSurfaceFormat   = errors.New("vkx: surface reports no formats or present modes")
	ErrNoSuitableMemory  = errors.New("vkx: no suitable memory type")
	ErrNoSupportedFormat = errors.New("vkx: no supported format among candidates")
	ErrValidationLayer   = errors.New("vkx: requested validation layer not available")
	ErrBadTransition     = errors.New("vkx: unsupported image layout transition")
)

// errWrap annotates a non-success Vulkan result with the operation that
// produced it.
func errWrap(ret vk.Result, op string) error {
	if ret == vk.Success {
		return nil
	}
	return fmt.Errorf("%s: %w", op, vk.Error(ret))
}
