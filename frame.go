package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// SuboptimalThreshold is the number of consecutive suboptimal present
// results tolerated before the swapchain is rebuilt. Some drivers report
// suboptimal spuriously for a single cycle, and recreating in response
// causes more trouble than it solves, so one-off reports are ignored.
const SuboptimalThreshold = 10

type presentAction int

const (
	presentOK presentAction = iota
	presentRecreate
	presentFatal
)

// presentPolicy classifies present outcomes into keep-going, recreate or
// fatal, debouncing the suboptimal signal. Precedence when conditions
// coincide in one frame: window resize first, then the debounce threshold,
// then a stale-surface result. The counter resets after any recreation and
// after any non-suboptimal success.
type presentPolicy struct {
	suboptimal int
	threshold  int
}

func newPresentPolicy() presentPolicy {
	return presentPolicy{threshold: SuboptimalThreshold}
}

func (p *presentPolicy) decide(ret vk.Result, resized bool) presentAction {
	if ret == vk.Suboptimal {
		p.suboptimal++
	} else if ret == vk.Success {
		p.suboptimal = 0
	}

	switch {
	case resized:
		p.suboptimal = 0
		return presentRecreate
	case p.suboptimal >= p.threshold:
		p.suboptimal = 0
		return presentRecreate
	case ret == vk.ErrorOutOfDate:
		p.suboptimal = 0
		return presentRecreate
	case ret != vk.Success && ret != vk.Suboptimal:
		return presentFatal
	}
	return presentOK
}

// RecordFunc records one frame's draw commands into cmd. imageIndex is the
// presentable image acquired for this frame and slot is the frame-in-flight
// slot, for indexing per-frame resources such as uniform ring buffers and
// descriptor sets.
type RecordFunc func(cmd vk.CommandBuffer, imageIndex uint32, slot int) error

// Frames drives the per-frame state machine across FramesInFlight slots:
// wait on the slot fence, acquire, record, submit, present, classify the
// present result. Each slot owns an image-available semaphore, a
// render-finished semaphore and an in-flight fence.
type Frames struct {
	device    *Device
	swapchain *Swapchain

	imageAvailable [FramesInFlight]vk.Semaphore
	renderFinished [FramesInFlight]vk.Semaphore
	inFlight       [FramesInFlight]vk.Fence

	counter int
	policy  presentPolicy
}

// NewFrames creates the per-slot synchronization objects. Fences start
// signaled so the first wait on each slot passes immediately.
func NewFrames(d *Device, sc *Swapchain) (*Frames, error) {
	f := &Frames{
		device:    d,
		swapchain: sc,
		policy:    newPresentPolicy(),
	}
	for i := 0; i < FramesInFlight; i++ {
		semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
		if err := errWrap(vk.CreateSemaphore(d.handle, &semInfo, nil, &f.imageAvailable[i]), "create semaphore"); err != nil {
			f.Destroy()
			return nil, err
		}
		if err := errWrap(vk.CreateSemaphore(d.handle, &semInfo, nil, &f.renderFinished[i]), "create semaphore"); err != nil {
			f.Destroy()
			return nil, err
		}
		ret := vk.CreateFence(d.handle, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &f.inFlight[i])
		if err := errWrap(ret, "create fence"); err != nil {
			f.Destroy()
			return nil, err
		}
	}
	return f, nil
}

// Destroy waits for the device and releases the sync objects.
func (f *Frames) Destroy() {
	f.device.WaitIdle()
	for i := 0; i < FramesInFlight; i++ {
		if f.imageAvailable[i] != vk.NullSemaphore {
			vk.DestroySemaphore(f.device.handle, f.imageAvailable[i], nil)
			f.imageAvailable[i] = vk.NullSemaphore
		}
		if f.renderFinished[i] != vk.NullSemaphore {
			vk.DestroySemaphore(f.device.handle, f.renderFinished[i], nil)
			f.renderFinished[i] = vk.NullSemaphore
		}
		if f.inFlight[i] != vk.NullFence {
			vk.DestroyFence(f.device.handle, f.inFlight[i], nil)
			f.inFlight[i] = vk.NullFence
		}
	}
}

// Slot returns the frame slot Draw will use next.
func (f *Frames) Slot() int { return f.counter }

func (f *Frames) advance() {
	f.counter = (f.counter + 1) % FramesInFlight
}

// Draw runs one frame: it waits for the slot's previous GPU work, acquires
// a presentable image, has record fill the slot's command buffer, submits
// with the acquire semaphore waited at the color-attachment-output stage,
// and presents after the render-finished semaphore.
//
// Swapchain staleness never surfaces as an error. A stale acquire skips
// the frame entirely (nothing recorded or submitted, the fence stays
// signaled) and rebuilds the swapchain; present outcomes go through the
// debounce policy. Either way the frame counter advances exactly once.
func (f *Frames) Draw(record RecordFunc) error {
	d := f.device
	slot := f.counter
	fence := []vk.Fence{f.inFlight[slot]}

	vk.WaitForFences(d.handle, 1, fence, vk.True, vk.MaxUint64)

	var imageIndex uint32
	ret := vk.AcquireNextImage(d.handle, f.swapchain.handle, vk.MaxUint64,
		f.imageAvailable[slot], vk.NullFence, &imageIndex)
	switch {
	case ret == vk.ErrorOutOfDate:
		if err := f.swapchain.Recreate(d); err != nil {
			return err
		}
		f.advance()
		return nil
	case ret != vk.Success && ret != vk.Suboptimal:
		return errWrap(ret, "acquire swapchain image")
	}

	// Only reset once we know work will be submitted; a reset fence with
	// no matching submission would deadlock the next wait on this slot.
	vk.ResetFences(d.handle, 1, fence)

	cmd := d.commandBufs[slot]
	vk.ResetCommandBuffer(cmd, 0)
	if err := errWrap(vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}), "begin command buffer"); err != nil {
		return err
	}
	if err := record(cmd, imageIndex, slot); err != nil {
		return err
	}
	if err := errWrap(vk.EndCommandBuffer(cmd), "end command buffer"); err != nil {
		return err
	}

	ret = vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.imageAvailable[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.renderFinished[slot]},
	}}, f.inFlight[slot])
	if err := errWrap(ret, "submit draw commands"); err != nil {
		return err
	}

	ret = vk.QueuePresent(d.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.renderFinished[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{f.swapchain.handle},
		PImageIndices:      []uint32{imageIndex},
	})

	switch f.policy.decide(ret, d.provider.ConsumeResize()) {
	case presentRecreate:
		if err := f.swapchain.Recreate(d); err != nil {
			return err
		}
	case presentFatal:
		return errWrap(ret, "present swapchain image")
	}

	f.advance()
	return nil
}
