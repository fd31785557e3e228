package vkx

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestVertexLayoutDescriptions(t *testing.T) {
	layout := VertexLayout{
		Stride: 36,
		Attributes: []VertexAttribute{
			{Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: 12},
			{Location: 2, Format: vk.FormatR32g32Sfloat, Offset: 28},
		},
	}

	bindings := layout.bindingDescriptions()
	if len(bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(bindings))
	}
	if bindings[0].Binding != 0 || bindings[0].Stride != 36 {
		t.Errorf("binding = %+v, want binding 0 with stride 36", bindings[0])
	}
	if bindings[0].InputRate != vk.VertexInputRateVertex {
		t.Errorf("input rate = %v, want per-vertex", bindings[0].InputRate)
	}

	attrs := layout.attributeDescriptions()
	if len(attrs) != 3 {
		t.Fatalf("got %d attributes, want 3", len(attrs))
	}
	for i, a := range attrs {
		if a.Binding != 0 {
			t.Errorf("attribute %d bound to %d, want binding 0", i, a.Binding)
		}
		if a.Location != layout.Attributes[i].Location {
			t.Errorf("attribute %d location = %d, want %d", i, a.Location, layout.Attributes[i].Location)
		}
		if a.Offset != layout.Attributes[i].Offset {
			t.Errorf("attribute %d offset = %d, want %d", i, a.Offset, layout.Attributes[i].Offset)
		}
	}
}
