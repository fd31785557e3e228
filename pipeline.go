package vkx

import (
	"fmt"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

// ShaderLoader reads precompiled shader bytecode. The bytes are treated as
// opaque SPIR-V; loading policy (disk, embed, cache) belongs to the caller.
type ShaderLoader func(path string) ([]byte, error)

// VertexAttribute describes one attribute within a vertex.
type VertexAttribute struct {
	Location uint32
	Format   vk.Format
	Offset   uint32
}

// VertexLayout describes a single-binding, per-vertex input layout.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

func (v VertexLayout) bindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    v.Stride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

func (v VertexLayout) attributeDescriptions() []vk.VertexInputAttributeDescription {
	attrs := make([]vk.VertexInputAttributeDescription, len(v.Attributes))
	for i, a := range v.Attributes {
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   a.Format,
			Offset:   a.Offset,
		}
	}
	return attrs
}

// PushConstants describes the single push-constant range a pipeline
// exposes to its shaders.
type PushConstants struct {
	Stages vk.ShaderStageFlagBits
	Size   uint32
}

// PipelineConfig is the fixed configuration BuildPipeline compiles into an
// immutable pipeline. Two shapes are expected: a vertex-buffer pipeline
// (Vertex set, depth test on, back-face culling) and a vertex-free blit
// pipeline (Vertex nil, the vertex stage synthesizes a fullscreen pair of
// triangles).
type PipelineConfig struct {
	VertexShader   string
	FragmentShader string
	Loader         ShaderLoader // defaults to os.ReadFile

	Vertex        *VertexLayout
	PushConstants *PushConstants

	// TextureSlots is the combined-image-sampler count of descriptor
	// binding 1.
	TextureSlots uint32

	// RenderPass is the pass (or any compatible one) the pipeline will
	// draw in, normally Swapchain.RenderPass or RenderTarget.RenderPass.
	RenderPass vk.RenderPass

	DepthTest  bool
	CullBack   bool
	AlphaBlend bool
}

// Pipeline is the immutable triple produced by BuildPipeline, destroyed as
// a unit.
type Pipeline struct {
	DescriptorLayout vk.DescriptorSetLayout
	Layout           vk.PipelineLayout
	Handle           vk.Pipeline
}

// BuildPipeline compiles cfg into a graphics pipeline. Viewport and scissor
// are dynamic and must be set while recording. Shader modules are destroyed
// before returning; they are not retained.
func (d *Device) BuildPipeline(cfg PipelineConfig) (*Pipeline, error) {
	loader := cfg.Loader
	if loader == nil {
		loader = os.ReadFile
	}
	vert, err := d.loadShaderModule(loader, cfg.VertexShader)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(d.handle, vert, nil)
	frag, err := d.loadShaderModule(loader, cfg.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(d.handle, frag, nil)

	p := &Pipeline{}
	p.DescriptorLayout, err = d.createDescriptorSetLayout(cfg.TextureSlots)
	if err != nil {
		return nil, err
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{p.DescriptorLayout},
	}
	if cfg.PushConstants != nil {
		layoutInfo.PushConstantRangeCount = 1
		layoutInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(cfg.PushConstants.Stages),
			Size:       cfg.PushConstants.Size,
		}}
	}
	ret := vk.CreatePipelineLayout(d.handle, &layoutInfo, nil, &p.Layout)
	if err := errWrap(ret, "create pipeline layout"); err != nil {
		p.Destroy(d)
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vert,
		PName:  safeString("main"),
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: frag,
		PName:  safeString("main"),
	}}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	if cfg.Vertex != nil {
		bindings := cfg.Vertex.bindingDescriptions()
		attrs := cfg.Vertex.attributeDescriptions()
		vertexInput.VertexBindingDescriptionCount = uint32(len(bindings))
		vertexInput.PVertexBindingDescriptions = bindings
		vertexInput.VertexAttributeDescriptionCount = uint32(len(attrs))
		vertexInput.PVertexAttributeDescriptions = attrs
	}

	rasterization := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1,
	}
	if cfg.CullBack {
		rasterization.CullMode = vk.CullModeFlags(vk.CullModeBackBit)
	}

	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}
	if cfg.AlphaBlend {
		blendAttachment.BlendEnable = vk.True
		blendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blendAttachment.ColorBlendOp = vk.BlendOpAdd
		blendAttachment.SrcAlphaBlendFactor = vk.BlendFactorOne
		blendAttachment.DstAlphaBlendFactor = vk.BlendFactorZero
		blendAttachment.AlphaBlendOp = vk.BlendOpAdd
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:          vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthCompareOp: vk.CompareOpLess,
	}
	if cfg.DepthTest {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthWriteEnable = vk.True
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:             vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:        uint32(len(stages)),
		PStages:           stages,
		PVertexInputState: &vertexInput,
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &rasterization,
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PDepthStencilState: &depthStencil,
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateViewport,
				vk.DynamicStateScissor,
			},
		},
		Layout:     p.Layout,
		RenderPass: cfg.RenderPass,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(d.handle, vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)
	if err := errWrap(ret, "create graphics pipeline"); err != nil {
		p.Destroy(d)
		return nil, err
	}
	p.Handle = pipelines[0]
	return p, nil
}

// BuildBlitPipeline builds the vertex-free fullscreen shape: no vertex
// input, no culling, no depth, a single texture slot.
func (d *Device) BuildBlitPipeline(vertexShader, fragmentShader string, loader ShaderLoader, pass vk.RenderPass) (*Pipeline, error) {
	return d.BuildPipeline(PipelineConfig{
		VertexShader:   vertexShader,
		FragmentShader: fragmentShader,
		Loader:         loader,
		TextureSlots:   1,
		RenderPass:     pass,
	})
}

// Destroy releases the pipeline triple as a unit. Safe on a partially
// built pipeline.
func (p *Pipeline) Destroy(d *Device) {
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(d.handle, p.Handle, nil)
		p.Handle = vk.NullPipeline
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(d.handle, p.Layout, nil)
		p.Layout = vk.NullPipelineLayout
	}
	if p.DescriptorLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.handle, p.DescriptorLayout, nil)
		p.DescriptorLayout = vk.NullDescriptorSetLayout
	}
}

// createDescriptorSetLayout builds the fixed two-binding layout every
// pipeline here uses: one uniform buffer visible to all stages, and an
// array of textureSlots combined image samplers for the fragment stage.
func (d *Device) createDescriptorSetLayout(textureSlots uint32) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageAllGraphics),
	}, {
		Binding:         1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: textureSlots,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}}

	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(d.handle, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &layout)
	if err := errWrap(ret, "create descriptor set layout"); err != nil {
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func (d *Device) loadShaderModule(loader ShaderLoader, path string) (vk.ShaderModule, error) {
	code, err := loader(path)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("load shader %s: %w", path, err)
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(d.handle, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if err := errWrap(ret, "create shader module"); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}
