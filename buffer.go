package vkx

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer pairs a buffer handle with its backing memory allocation. The two
// are created and destroyed together; after Destroy both handles read as
// null so a double free is detectable.
type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// CreateBuffer creates a buffer of the given size and binds fresh memory
// satisfying props to it.
func (d *Device) CreateBuffer(size vk.DeviceSize, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (*Buffer, error) {
	var handle vk.Buffer
	ret := vk.CreateBuffer(d.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if err := errWrap(ret, "create buffer"); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.handle, handle, &req)
	req.Deref()

	memory, err := d.allocateMemory(req, props)
	if err != nil {
		vk.DestroyBuffer(d.handle, handle, nil)
		return nil, err
	}
	if err := errWrap(vk.BindBufferMemory(d.handle, handle, memory, 0), "bind buffer memory"); err != nil {
		vk.FreeMemory(d.handle, memory, nil)
		vk.DestroyBuffer(d.handle, handle, nil)
		return nil, err
	}
	return &Buffer{Handle: handle, Memory: memory, Size: size}, nil
}

// Destroy releases the buffer and its memory together and resets both
// handles to the null sentinel. A second call is a no-op.
func (b *Buffer) Destroy(d *Device) {
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(d.handle, b.Handle, nil)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.handle, b.Memory, nil)
		b.Memory = vk.NullDeviceMemory
	}
}

// Map exposes the buffer's whole memory range to the host. The memory must
// have been allocated host-visible.
func (b *Buffer) Map(d *Device) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(d.handle, b.Memory, 0, b.Size, 0, &ptr)
	if err := errWrap(ret, "map buffer memory"); err != nil {
		return nil, err
	}
	return ptr, nil
}

// Unmap releases a mapping obtained from Map.
func (b *Buffer) Unmap(d *Device) {
	vk.UnmapMemory(d.handle, b.Memory)
}

// writeBytes maps the buffer, copies data into it and unmaps.
func (b *Buffer) writeBytes(d *Device, data []byte) error {
	ptr, err := b.Map(d)
	if err != nil {
		return err
	}
	vk.Memcopy(ptr, data)
	b.Unmap(d)
	return nil
}

// CreateAndPopulateBuffer uploads data into a fresh device-local buffer via
// a host-visible staging buffer. By the time it returns, the copy has been
// submitted and the queue drained, so the destination is fully populated
// before any command that references it can be recorded.
func (d *Device) CreateAndPopulateBuffer(data []byte, usage vk.BufferUsageFlagBits) (*Buffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := d.CreateBuffer(size, vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(d)

	if err := staging.writeBytes(d, data); err != nil {
		return nil, err
	}

	dst, err := d.CreateBuffer(size, usage|vk.BufferUsageTransferDstBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	if err := d.copyBuffer(staging.Handle, dst.Handle, size); err != nil {
		dst.Destroy(d)
		return nil, err
	}
	return dst, nil
}

func (d *Device) copyBuffer(src, dst vk.Buffer, size vk.DeviceSize) error {
	cmd, err := d.BeginSingleUseCommands()
	if err != nil {
		return err
	}
	vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{{Size: size}})
	return d.EndSingleUseCommands(cmd)
}
