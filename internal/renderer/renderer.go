package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rajveermalviya/go-webgpu/wgpu"
	"github.com/sirupsen/logrus"

	"tileviewer/internal/tilemap"
)

// PlaneConfig describes the viewport plane and its tile sheet.
type PlaneConfig struct {
	ViewWidth  int // viewport width in tiles
	ViewHeight int // viewport height in tiles
	TileSize   int // tile edge in pixels

	SheetColumns  int
	SheetRows     int
	SheetTileSize int
	SheetPNG      []byte
}

// uniforms matches the WGSL Uniforms block. Vectors are padded to vec4, see
// shaders.go.
type uniforms struct {
	Model     mgl32.Mat4
	View      mgl32.Mat4
	Proj      mgl32.Mat4
	WorldSize [4]float32
	SheetSize [4]float32
	Offsets   [4]float32
}

// Plane owns the GPU half of the viewport: the subdivided quad mesh, the
// tile-sheet texture, the shader uniforms and the fixed-capacity record
// buffer the visible window is mirrored into. It implements tilemap.Sink.
type Plane struct {
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	surface *wgpu.Surface

	swapChain       *wgpu.SwapChain
	swapChainFormat wgpu.TextureFormat
	pipeline        *wgpu.RenderPipeline
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	sampler         *wgpu.Sampler

	sheetTexture *wgpu.Texture
	sheetView    *wgpu.TextureView

	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	uniformBuf *wgpu.Buffer
	recordBuf  *wgpu.Buffer
	indexCount uint32

	uniforms uniforms
	records  [tilemap.MaxPlaneRecords]tilemap.Record

	width, height uint32
}

// NewPlane builds the render pipeline and all GPU resources for a viewport
// of cfg.ViewWidth x cfg.ViewHeight tiles.
func NewPlane(adapter *wgpu.Adapter, device *wgpu.Device, queue *wgpu.Queue, surface *wgpu.Surface, width, height uint32, cfg PlaneConfig) (*Plane, error) {
	if n := cfg.ViewWidth * cfg.ViewHeight; n <= 0 || n > tilemap.MaxPlaneRecords {
		return nil, fmt.Errorf("viewport %dx%d needs %d records, buffer capacity is %d",
			cfg.ViewWidth, cfg.ViewHeight, n, tilemap.MaxPlaneRecords)
	}

	p := &Plane{
		adapter: adapter,
		device:  device,
		queue:   queue,
		surface: surface,
		width:   width,
		height:  height,
	}

	p.uniforms.Model = mgl32.Ident4()
	p.uniforms.View = mgl32.Ident4()
	p.uniforms.WorldSize = [4]float32{
		float32(cfg.ViewWidth),
		float32(cfg.ViewHeight),
		float32(cfg.TileSize),
		0,
	}
	p.uniforms.SheetSize = [4]float32{
		float32(cfg.SheetColumns),
		float32(cfg.SheetRows),
		float32(cfg.SheetColumns * cfg.SheetTileSize),
		float32(cfg.SheetRows * cfg.SheetTileSize),
	}
	p.setProjection()

	if err := p.init(cfg); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *Plane) init(cfg PlaneConfig) error {
	p.swapChainFormat = p.surface.GetPreferredFormat(p.adapter)

	var err error
	p.swapChain, err = p.device.CreateSwapChain(p.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      p.swapChainFormat,
		Width:       p.width,
		Height:      p.height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		return fmt.Errorf("swap chain creation failed: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "tilemap_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: TilemapShader},
	})
	if err != nil {
		return fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	// nearest filtering keeps tile edges crisp and avoids sheet bleeding
	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:   wgpu.AddressMode_ClampToEdge,
		AddressModeV:   wgpu.AddressMode_ClampToEdge,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      wgpu.FilterMode_Nearest,
		MinFilter:      wgpu.FilterMode_Nearest,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler creation failed: %w", err)
	}

	if err := p.createSheetTexture(cfg.SheetPNG); err != nil {
		return fmt.Errorf("tile sheet upload failed: %w", err)
	}

	verts, indices := BuildPlaneMesh(cfg.ViewWidth, cfg.ViewHeight, cfg.TileSize)
	p.indexCount = uint32(len(indices))

	p.vertexBuf, err = p.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "plane_vertices",
		Contents: wgpu.ToBytes(verts),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer creation failed: %w", err)
	}
	p.indexBuf, err = p.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "plane_indices",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsage_Index,
	})
	if err != nil {
		return fmt.Errorf("index buffer creation failed: %w", err)
	}

	p.uniformBuf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "plane_uniforms",
		Size:  uint64(unsafe.Sizeof(uniforms{})),
		Usage: wgpu.BufferUsage_Uniform | wgpu.BufferUsage_CopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer creation failed: %w", err)
	}

	p.recordBuf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "tile_records",
		Size:  uint64(tilemap.MaxPlaneRecords * unsafe.Sizeof(tilemap.Record{})),
		Usage: wgpu.BufferUsage_Uniform | wgpu.BufferUsage_CopyDst,
	})
	if err != nil {
		return fmt.Errorf("record buffer creation failed: %w", err)
	}

	p.bindGroupLayout, err = p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "tilemap_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Vertex | wgpu.ShaderStage_Fragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Fragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStage_Fragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_Filtering},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Float,
					ViewDimension: wgpu.TextureViewDimension_2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group layout creation failed: %w", err)
	}

	p.bindGroup, err = p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "tilemap_bind_group",
		Layout: p.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniformBuf, Size: uint64(unsafe.Sizeof(uniforms{}))},
			{Binding: 1, Buffer: p.recordBuf, Size: uint64(tilemap.MaxPlaneRecords * unsafe.Sizeof(tilemap.Record{}))},
			{Binding: 2, Sampler: p.sampler},
			{Binding: 3, TextureView: p.sheetView},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group creation failed: %w", err)
	}

	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "tilemap_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer pipelineLayout.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "tilemap_pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
				StepMode:    wgpu.VertexStepMode_Vertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormat_Float32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormat_Float32x2, Offset: 12, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    p.swapChainFormat,
				Blend:     &wgpu.BlendState_Replace,
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopology_TriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline creation failed: %w", err)
	}

	p.writeUniforms()
	return nil
}

func (p *Plane) createSheetTexture(pngBytes []byte) error {
	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return fmt.Errorf("decoding tile sheet: %w", err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)

	w := uint32(rgba.Bounds().Dx())
	h := uint32(rgba.Bounds().Dy())

	p.sheetTexture, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "tile_sheet",
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_RGBA8UnormSrgb,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return err
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: p.sheetTexture, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspect_All},
		rgba.Pix,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: uint32(rgba.Stride), RowsPerImage: h},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	p.sheetView, err = p.sheetTexture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_RGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	return err
}

// wgpu clips z to [0,1] where OpenGL-style projections produce [-1,1]
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (p *Plane) setProjection() {
	aspect := float32(p.width) / float32(p.height)
	p.uniforms.Proj = depthRemap.Mul4(mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 4000))
}

func (p *Plane) writeUniforms() {
	p.queue.WriteBuffer(p.uniformBuf, 0, wgpu.ToBytes([]uniforms{p.uniforms}))
}

// UploadTiles replaces the record buffer contents with the visible window.
// The full fixed-capacity buffer is written, offset 0. Implements
// tilemap.Sink.
func (p *Plane) UploadTiles(recs []tilemap.Record) {
	copy(p.records[:], recs)
	p.queue.WriteBuffer(p.recordBuf, 0, wgpu.ToBytes(p.records[:]))
}

// SetScroll sets the sub-tile scroll offsets consumed by the fragment
// shader. Implements tilemap.Sink.
func (p *Plane) SetScroll(x, y float32) {
	p.uniforms.Offsets[0] = x
	p.uniforms.Offsets[1] = y
	p.writeUniforms()
}

// UpdateView pushes the camera transform into the shader uniforms.
func (p *Plane) UpdateView(view mgl32.Mat4) {
	p.uniforms.View = view
	p.writeUniforms()
}

// Draw renders one frame: clear, one indexed draw of the plane, present.
func (p *Plane) Draw() error {
	view, err := p.swapChain.GetCurrentTextureView()
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOp_Clear,
			StoreOp:    wgpu.StoreOp_Store,
			ClearValue: wgpu.Color{R: 16.0 / 256.0, G: 14.0 / 256.0, B: 22.0 / 256.0, A: 1.0},
		}},
	})

	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.SetVertexBuffer(0, p.vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(p.indexBuf, wgpu.IndexFormat_Uint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(p.indexCount, 1, 0, 0, 0)
	pass.End()

	cmdBuffer, err := encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()

	p.queue.Submit(cmdBuffer)
	p.swapChain.Present()
	return nil
}

// Resize recreates the swap chain and the projection for a new framebuffer
// size.
func (p *Plane) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	p.width = width
	p.height = height

	if p.swapChain != nil {
		p.swapChain.Release()
	}
	var err error
	p.swapChain, err = p.device.CreateSwapChain(p.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      p.swapChainFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		logrus.WithError(err).Error("swap chain recreation failed")
		return
	}

	p.setProjection()
	p.writeUniforms()
}

// Release frees all GPU resources owned by the plane.
func (p *Plane) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
	}
	if p.vertexBuf != nil {
		p.vertexBuf.Release()
	}
	if p.indexBuf != nil {
		p.indexBuf.Release()
	}
	if p.uniformBuf != nil {
		p.uniformBuf.Release()
	}
	if p.recordBuf != nil {
		p.recordBuf.Release()
	}
	if p.sheetView != nil {
		p.sheetView.Release()
	}
	if p.sheetTexture != nil {
		p.sheetTexture.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.swapChain != nil {
		p.swapChain.Release()
	}
}
