package vkx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// chooseMemoryType picks the lowest-indexed memory type whose bit is set in
// typeBits and whose property flags cover all of the requested props.
func chooseMemoryType(types []vk.MemoryType, typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i := range types {
		if typeBits&(1<<uint(i)) == 0 {
			continue
		}
		if types[i].PropertyFlags&props == props {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: typeBits=%#x props=%#x", ErrNoSuitableMemory, typeBits, props)
}

// allocateMemory allocates device memory for the given requirements using
// the memory-type table cached at bootstrap.
func (d *Device) allocateMemory(req vk.MemoryRequirements, props vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	typeIndex, err := chooseMemoryType(d.memTypes, req.MemoryTypeBits, vk.MemoryPropertyFlags(props))
	if err != nil {
		return vk.NullDeviceMemory, err
	}
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(d.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if err := errWrap(ret, "allocate memory"); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}
