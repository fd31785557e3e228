package vkx

import "testing"

func TestSafeString(t *testing.T) {
	if got := safeString("main"); got != "main\x00" {
		t.Errorf("got %q, want null-terminated", got)
	}
	if got := safeString("main\x00"); got != "main\x00" {
		t.Errorf("got %q, want unchanged when already terminated", got)
	}
	if got := safeString(""); got != "\x00" {
		t.Errorf("got %q, want single terminator for empty input", got)
	}
}

func TestSliceUint32(t *testing.T) {
	words := sliceUint32([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0] != 0x07230203 { // SPIR-V magic, little endian
		t.Errorf("word 0 = %#x, want 0x07230203", words[0])
	}
	if words[1] != 0x00010000 {
		t.Errorf("word 1 = %#x, want 0x00010000", words[1])
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 10, 20); got != 10 {
		t.Errorf("clamp below range = %d, want 10", got)
	}
	if got := clamp(25, 10, 20); got != 20 {
		t.Errorf("clamp above range = %d, want 20", got)
	}
	if got := clamp(15, 10, 20); got != 15 {
		t.Errorf("clamp inside range = %d, want 15", got)
	}
}

func TestHasAll(t *testing.T) {
	have := []string{"VK_KHR_swapchain", "VK_EXT_descriptor_indexing", "VK_KHR_maintenance1"}
	if !hasAll(have, []string{"VK_KHR_swapchain", "VK_EXT_descriptor_indexing"}) {
		t.Error("expected required extensions to be reported present")
	}
	if hasAll(have, []string{"VK_KHR_swapchain", "VK_KHR_display"}) {
		t.Error("expected missing extension to be reported absent")
	}
}
