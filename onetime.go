package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// BeginSingleUseCommands allocates and begins a throwaway primary command
// buffer for one-off transfer or layout-transition work.
func (d *Device) BeginSingleUseCommands() (vk.CommandBuffer, error) {
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if err := errWrap(ret, "allocate single-use command buffer"); err != nil {
		return nil, err
	}
	cmd := bufs[0]
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := errWrap(ret, "begin single-use command buffer"); err != nil {
		vk.FreeCommandBuffers(d.handle, d.commandPool, 1, bufs)
		return nil, err
	}
	return cmd, nil
}

// EndSingleUseCommands submits the buffer and blocks until the graphics
// queue drains. The wait is deliberately coarse: single-use work happens at
// setup time or on rare transitions, never on the per-frame critical path.
func (d *Device) EndSingleUseCommands(cmd vk.CommandBuffer) error {
	bufs := []vk.CommandBuffer{cmd}
	defer vk.FreeCommandBuffers(d.handle, d.commandPool, 1, bufs)

	if err := errWrap(vk.EndCommandBuffer(cmd), "end single-use command buffer"); err != nil {
		return err
	}
	ret := vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    bufs,
	}}, vk.NullFence)
	if err := errWrap(ret, "submit single-use command buffer"); err != nil {
		return err
	}
	return errWrap(vk.QueueWaitIdle(d.graphicsQueue), "wait for single-use commands")
}
