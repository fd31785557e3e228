package vkx

import (
	"encoding/binary"

	vk "github.com/vulkan-go/vulkan"
)

// safeString null-terminates s for handover to the C side.
func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// sliceUint32 repacks SPIR-V bytecode into the uint32 words Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	var count uint32
	if err := errWrap(vk.EnumerateInstanceExtensionProperties("", &count, nil), "enumerate instance extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	if err := errWrap(vk.EnumerateInstanceExtensionProperties("", &count, list), "enumerate instance extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// DeviceExtensions gets a list of extensions available on the physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := errWrap(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil), "enumerate device extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	if err := errWrap(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list), "enumerate device extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() ([]string, error) {
	var count uint32
	if err := errWrap(vk.EnumerateInstanceLayerProperties(&count, nil), "enumerate instance layers"); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	if err := errWrap(vk.EnumerateInstanceLayerProperties(&count, list), "enumerate instance layers"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func hasAll(have []string, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, name := range have {
		set[name] = struct{}{}
	}
	for _, name := range want {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}
