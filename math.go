package vkx

import lin "github.com/xlab/linmath"

// VulkanProjection converts a GL-style projection matrix into Vulkan clip
// space: Y flipped so -1,-1 is the top left, depth remapped from [-1, 1]
// to [0, 1]. linmath builds GL-style matrices, so every projection handed
// to a shader should pass through this fixup.
func VulkanProjection(out *lin.Mat4x4, proj *lin.Mat4x4) {
	out.Identity()
	out.ScaleAniso(out, 1.0, -1.0, 0.5)
	// Translate builds a fresh matrix; TranslateInPlace composes with the
	// scale above, yielding z' = 0.5z + 0.5.
	out.TranslateInPlace(0.0, 0.0, 1.0)
	out.Mult(out, proj)
}
