package vkx

import (
	"testing"

	lin "github.com/xlab/linmath"
)

// Applying the fixup to an identity projection exposes the fixup matrix
// itself: Y negated, depth scaled to half and shifted so [-1, 1] lands on
// [0, 1].
func TestVulkanProjectionFixup(t *testing.T) {
	var ident, out lin.Mat4x4
	ident.Identity()
	VulkanProjection(&out, &ident)

	if got := out[0][0]; got != 1 {
		t.Errorf("X scale = %v, want 1", got)
	}
	if got := out[1][1]; got != -1 {
		t.Errorf("Y scale = %v, want -1 (flip lost)", got)
	}
	if got := out[2][2]; got != 0.5 {
		t.Errorf("depth scale = %v, want 0.5", got)
	}
	if got := out[3][2]; got != 0.5 {
		t.Errorf("depth offset = %v, want 0.5", got)
	}
	if got := out[3][3]; got != 1 {
		t.Errorf("W = %v, want 1", got)
	}

	// GL near plane z=-1 must land at 0, far plane z=1 at 1.
	for _, tc := range []struct{ z, want float32 }{{-1, 0}, {1, 1}, {0, 0.5}} {
		if got := out[2][2]*tc.z + out[3][2]; got != tc.want {
			t.Errorf("depth remap of %v = %v, want %v", tc.z, got, tc.want)
		}
	}
}
