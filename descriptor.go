package vkx

import (
	vk "github.com/vulkan-go/vulkan"
)

// CreateDescriptorPool sizes a pool for setCount sets drawing from
// uniformCount uniform-buffer descriptors and samplerCount combined
// image-sampler descriptors.
func (d *Device) CreateDescriptorPool(setCount, uniformCount, samplerCount uint32) (vk.DescriptorPool, error) {
	sizes := []vk.DescriptorPoolSize{{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: uniformCount,
	}, {
		Type:            vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: samplerCount,
	}}

	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(d.handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       setCount,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &pool)
	if err := errWrap(ret, "create descriptor pool"); err != nil {
		return vk.NullDescriptorPool, err
	}
	return pool, nil
}

// DestroyDescriptorPool releases the pool and every set allocated from it.
func (d *Device) DestroyDescriptorPool(pool vk.DescriptorPool) {
	if pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.handle, pool, nil)
	}
}

// AllocateDescriptorSets allocates count sets of the same layout from pool,
// typically one per frame slot.
func (d *Device) AllocateDescriptorSets(pool vk.DescriptorPool, layout vk.DescriptorSetLayout, count int) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, count)
	for i := 0; i < count; i++ {
		var set vk.DescriptorSet
		ret := vk.AllocateDescriptorSets(d.handle, &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout},
		}, &set)
		if err := errWrap(ret, "allocate descriptor set"); err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}

// DescriptorWrite gathers the resources bound to the fixed two-binding
// layout: the uniform buffer at binding 0 and the sampled textures at
// binding 1. Textures must already be in the shader-read-only layout, the
// invariant texture creation establishes. Its length must match the
// pipeline's texture slot count.
type DescriptorWrite struct {
	Uniform     *Buffer
	UniformSize vk.DeviceSize
	Sampler     vk.Sampler
	Textures    []vk.ImageView
}

// UpdateDescriptorSet points set at the resources in w.
func (d *Device) UpdateDescriptorSet(set vk.DescriptorSet, w DescriptorWrite) {
	writes := descriptorWrites(set, w)
	vk.UpdateDescriptorSets(d.handle, uint32(len(writes)), writes, 0, nil)
}

// descriptorWrites builds the write list for a set. The binding-1 write is
// omitted entirely when w carries no textures: a descriptor write must name
// at least one descriptor.
func descriptorWrites(set vk.DescriptorSet, w DescriptorWrite) []vk.WriteDescriptorSet {
	writes := []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: w.Uniform.Handle,
			Range:  w.UniformSize,
		}},
	}}
	if len(w.Textures) == 0 {
		return writes
	}

	imageInfos := make([]vk.DescriptorImageInfo, len(w.Textures))
	for i, view := range w.Textures {
		imageInfos[i] = vk.DescriptorImageInfo{
			Sampler:     w.Sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}
	}
	return append(writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      1,
		DescriptorCount: uint32(len(imageInfos)),
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      imageInfos,
	})
}
