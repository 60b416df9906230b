package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plot"
)

// fenceTimeout bounds the wait for frame completion.
const fenceTimeout = 5 * time.Second

// RenderSession executes one frame's draw commands in a single render
// pass with pipeline switching: one pipeline and one draw call per
// primitive kind, regardless of subplot count. It owns the shared MSAA
// and resolve targets and the GPU copy of the glyph atlas.
//
// Two output modes:
//   - Offscreen (default): renders to an internal resolve texture and
//     reads pixels back to the CPU through an aligned staging buffer.
//   - Surface: the MSAA attachment resolves directly to a
//     caller-provided surface texture view; no readback occurs.
type RenderSession struct {
	device hal.Device
	queue  hal.Queue

	targets targetSet
	atlas   atlasTexture

	lines     *flatPipeline
	triangles *flatPipeline
	markers   *markerPipeline
	text      *textPipeline

	// Surface mode fields. When surfaceView is non-nil the session
	// renders to the surface instead of reading back to the CPU.
	surfaceView   hal.TextureView
	surfaceWidth  uint32
	surfaceHeight uint32

	// staging is the vertex serialization scratch, grow-only.
	staging []byte
}

// NewRenderSession creates a session on the given device and queue.
// Targets and pipelines are allocated lazily on the first frame.
func NewRenderSession(device hal.Device, queue hal.Queue) *RenderSession {
	return &RenderSession{
		device:    device,
		queue:     queue,
		lines:     newFlatPipeline(device, "line", gputypes.PrimitiveTopologyLineList),
		triangles: newFlatPipeline(device, "triangle", gputypes.PrimitiveTopologyTriangleList),
		markers:   newMarkerPipeline(device),
		text:      newTextPipeline(device),
	}
}

// SetSurfaceTarget switches the session to render directly to the given
// texture view. Call with nil to return to offscreen mode. The caller
// retains ownership of the view; the session never destroys it.
func (s *RenderSession) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	modeChanged := (view == nil) != (s.surfaceView == nil)
	sizeChanged := width != s.surfaceWidth || height != s.surfaceHeight
	if modeChanged || sizeChanged {
		s.targets.destroy(s.device)
	}
	s.surfaceView = view
	s.surfaceWidth = width
	s.surfaceHeight = height
}

// InvalidateTargets drops the render targets so the next frame
// recreates them. Used for surface-lost recovery and resizes.
func (s *RenderSession) InvalidateTargets() {
	s.targets.destroy(s.device)
}

// Size returns the current render target dimensions.
func (s *RenderSession) Size() (uint32, uint32) {
	return s.targets.width, s.targets.height
}

// RenderFrame draws all commands in order in one render pass and
// presents the result. In offscreen mode readback must hold w*h*4
// bytes and receives the frame as RGBA; in surface mode readback is
// ignored. Commands with empty geometry are skipped; a frame with no
// geometry at all still clears and presents.
func (s *RenderSession) RenderFrame(w, h uint32, cmds []DrawCommand, readback []byte) error {
	if w == 0 || h == 0 {
		return fmt.Errorf("render frame: zero-sized target %dx%d", w, h)
	}
	surface := s.surfaceView != nil
	if err := s.targets.ensure(s.device, w, h, !surface); err != nil {
		return fmt.Errorf("ensure targets: %w", err)
	}
	if err := s.ensurePipelines(cmds); err != nil {
		return err
	}

	resources := make([]*frameResources, len(cmds))
	defer func() {
		for _, r := range resources {
			r.destroy(s.device)
		}
	}()
	for i := range cmds {
		res, err := s.buildResources(&cmds[i], w, h)
		if err != nil {
			return fmt.Errorf("build resources for command %d: %w", i, err)
		}
		resources[i] = res
	}

	if surface {
		return s.encodeSubmitSurface(cmds, resources)
	}
	return s.encodeSubmitReadback(w, h, cmds, resources, readback)
}

// ensurePipelines lazily creates the pipelines the command list needs.
func (s *RenderSession) ensurePipelines(cmds []DrawCommand) error {
	for i := range cmds {
		var err error
		switch cmds[i].Kind {
		case DrawLines:
			err = s.lines.ensure()
		case DrawTriangles:
			err = s.triangles.ensure()
		case DrawMarkers:
			err = s.markers.ensure()
		case DrawGlyphs:
			err = s.text.ensure()
		}
		if err != nil {
			return fmt.Errorf("ensure pipeline: %w", err)
		}
	}
	return nil
}

// recordDraws records every command into the render pass in call
// order. Ordering is the only z mechanism: later commands overlap
// earlier ones.
func (s *RenderSession) recordDraws(rp hal.RenderPassEncoder, cmds []DrawCommand, resources []*frameResources) {
	for i := range cmds {
		res := resources[i]
		switch cmds[i].Kind {
		case DrawLines:
			s.lines.recordDraw(rp, res)
		case DrawTriangles:
			s.triangles.recordDraw(rp, res)
		case DrawMarkers:
			s.markers.recordDraw(rp, res)
		case DrawGlyphs:
			s.text.recordDraw(rp, res)
		}
	}
}

// encodeSubmitReadback encodes the render pass, copies the resolve
// texture to an aligned staging buffer, submits, waits, and converts
// the BGRA readback into the caller's RGBA buffer.
func (s *RenderSession) encodeSubmitReadback(w, h uint32, cmds []DrawCommand, resources []*frameResources, readback []byte) error {
	if len(readback) < int(w)*int(h)*4 {
		return fmt.Errorf("readback buffer too small: %d < %d", len(readback), int(w)*int(h)*4)
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          s.targets.msaaView,
			ResolveTarget: s.targets.resolveView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	s.recordDraws(rp, cmds, resources)
	rp.End()

	// After the MSAA resolve the texture is in render-attachment
	// layout; the copy below needs transfer-source. The barrier is a
	// no-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.targets.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy rows at 256-byte alignment as required by WebGPU and DX12.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frame_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer s.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(s.targets.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.targets.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Return the resolve texture to render-attachment layout for the
	// next frame's resolve.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.targets.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	raw := make([]byte, stagingSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, raw); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		convertBGRAToRGBA(raw, readback, int(w)*int(h))
		return nil
	}
	// Strip per-row padding, then convert.
	tight := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], raw[srcOff:srcOff+int(bytesPerRow)])
	}
	convertBGRAToRGBA(tight, readback, int(w)*int(h))
	return nil
}

// encodeSubmitSurface encodes the render pass with the surface view as
// the resolve target and submits without readback. A missing surface
// view means the host invalidated it; that is the recoverable
// surface-lost condition.
func (s *RenderSession) encodeSubmitSurface(cmds []DrawCommand, resources []*frameResources) error {
	if s.surfaceView == nil {
		return fmt.Errorf("surface view invalidated: %w", plot.ErrSurfaceLost)
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame_surface_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame_surface"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_surface_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          s.targets.msaaView,
			ResolveTarget: s.surfaceView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	s.recordDraws(rp, cmds, resources)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	// The host presents the surface after this returns; wait so the
	// pass has completed by then.
	fenceOK, err := s.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Destroy releases all GPU resources held by the session. Safe to call
// multiple times. The surface view is owned by the caller and is not
// destroyed.
func (s *RenderSession) Destroy() {
	s.atlas.destroy(s.device)
	s.targets.destroy(s.device)
	s.text.destroy()
	s.markers.destroy()
	s.triangles.destroy()
	s.lines.destroy()
	s.surfaceView = nil
	s.surfaceWidth = 0
	s.surfaceHeight = 0
}

// convertBGRAToRGBA swaps the blue and red channels for n pixels.
func convertBGRAToRGBA(src, dst []byte, n int) {
	for i := 0; i < n*4; i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = src[i+3]
	}
}
