package vkx

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestDescriptorWritesSkipsEmptyTextures(t *testing.T) {
	writes := descriptorWrites(vk.NullDescriptorSet, DescriptorWrite{
		Uniform:     &Buffer{},
		UniformSize: 64,
	})
	if len(writes) != 1 {
		t.Fatalf("got %d writes, want 1 (no zero-count texture write)", len(writes))
	}
	if writes[0].DstBinding != 0 || writes[0].DescriptorCount != 1 {
		t.Errorf("uniform write = binding %d count %d, want binding 0 count 1",
			writes[0].DstBinding, writes[0].DescriptorCount)
	}
}

func TestDescriptorWritesTextureArray(t *testing.T) {
	writes := descriptorWrites(vk.NullDescriptorSet, DescriptorWrite{
		Uniform:     &Buffer{},
		UniformSize: 64,
		Textures:    make([]vk.ImageView, 3),
	})
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(writes))
	}
	tex := writes[1]
	if tex.DstBinding != 1 {
		t.Errorf("texture write binding = %d, want 1", tex.DstBinding)
	}
	if tex.DescriptorCount != 3 {
		t.Errorf("texture write count = %d, want 3", tex.DescriptorCount)
	}
	if tex.DescriptorType != vk.DescriptorTypeCombinedImageSampler {
		t.Errorf("texture write type = %v, want combined image sampler", tex.DescriptorType)
	}
	if len(tex.PImageInfo) != 3 {
		t.Errorf("image info count = %d, want 3", len(tex.PImageInfo))
	}
}
