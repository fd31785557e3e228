package vkx

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// UniformRing is one persistently mapped, host-visible uniform buffer per
// frame slot. The game layer writes into the slot of the frame currently
// being recorded; the slot's fence wait guarantees the GPU has finished
// reading the previous contents.
type UniformRing struct {
	Buffers [FramesInFlight]*Buffer
	Mapped  [FramesInFlight]unsafe.Pointer
	size    vk.DeviceSize
}

// CreateUniformRing allocates and maps the per-frame uniform buffers. The
// mappings stay live until Destroy.
func (d *Device) CreateUniformRing(size vk.DeviceSize) (*UniformRing, error) {
	ring := &UniformRing{size: size}
	for i := 0; i < FramesInFlight; i++ {
		buf, err := d.CreateBuffer(size, vk.BufferUsageUniformBufferBit,
			vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
		if err != nil {
			ring.Destroy(d)
			return nil, err
		}
		ptr, err := buf.Map(d)
		if err != nil {
			buf.Destroy(d)
			ring.Destroy(d)
			return nil, err
		}
		ring.Buffers[i] = buf
		ring.Mapped[i] = ptr
	}
	return ring, nil
}

// Write copies data into the mapped buffer for the given frame slot. The
// memory is host-coherent, so no flush is needed.
func (u *UniformRing) Write(slot int, data []byte) {
	vk.Memcopy(u.Mapped[slot], data)
}

// Size returns the per-slot buffer size.
func (u *UniformRing) Size() vk.DeviceSize { return u.size }

// Destroy unmaps and releases every slot buffer.
func (u *UniformRing) Destroy(d *Device) {
	for i := 0; i < FramesInFlight; i++ {
		if u.Buffers[i] == nil {
			continue
		}
		if u.Mapped[i] != nil {
			u.Buffers[i].Unmap(d)
			u.Mapped[i] = nil
		}
		u.Buffers[i].Destroy(d)
		u.Buffers[i] = nil
	}
}
