package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// frameResources holds the per-frame GPU resources for one draw
// command: vertex buffer, optional index buffer, uniform buffer, and
// bind group. They are created during the upload phase and destroyed
// after submission, so growing or shrinking geometry never leaks a
// prior allocation across frames.
type frameResources struct {
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	vertCount  uint32
	indexCount uint32
}

// destroy releases the resources in reverse creation order. Safe on
// partially built resources.
func (r *frameResources) destroy(device hal.Device) {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
	if r.idxBuf != nil {
		device.DestroyBuffer(r.idxBuf)
	}
	if r.vertBuf != nil {
		device.DestroyBuffer(r.vertBuf)
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *RenderSession) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// buildResources creates the per-frame vertex, index, uniform buffers
// and bind group for one draw command. Returns nil for an empty
// command.
func (s *RenderSession) buildResources(cmd *DrawCommand, w, h uint32) (*frameResources, error) {
	if cmd.Empty() {
		return nil, nil
	}

	var vertexData []byte
	switch cmd.Kind {
	case DrawMarkers, DrawGlyphs:
		s.staging, vertexData = packQuadVertices(cmd.Geometry, s.staging)
	default:
		s.staging, vertexData = packFlatVertices(cmd.Geometry, s.staging)
	}

	res := &frameResources{
		vertCount: uint32(cmd.Geometry.VertexCount()),
	}

	vertBuf, err := s.createAndUploadBuffer("frame_verts", vertexData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	res.vertBuf = vertBuf

	if cmd.Kind == DrawGlyphs {
		idxData := glyphIndices(cmd.Geometry.VertexCount())
		idxBuf, err := s.createAndUploadBuffer("frame_indices", idxData,
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			res.destroy(s.device)
			return nil, fmt.Errorf("create index buffer: %w", err)
		}
		res.idxBuf = idxBuf
		res.indexCount = uint32(len(idxData) / 4)
	}

	uniformBuf, err := s.createAndUploadBuffer("frame_uniform", makeUniform(w, h, cmd.Param),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		res.destroy(s.device)
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	res.uniformBuf = uniformBuf

	bindGroup, err := s.createBindGroup(cmd, uniformBuf)
	if err != nil {
		res.destroy(s.device)
		return nil, err
	}
	res.bindGroup = bindGroup

	return res, nil
}

// createBindGroup builds the bind group for a command. Glyph commands
// additionally bind the atlas texture view and sampler.
func (s *RenderSession) createBindGroup(cmd *DrawCommand, uniformBuf hal.Buffer) (hal.BindGroup, error) {
	uniformEntry := gputypes.BindGroupEntry{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
		},
	}

	switch cmd.Kind {
	case DrawGlyphs:
		if err := s.atlas.ensure(s.device, s.queue, cmd.Atlas); err != nil {
			return nil, fmt.Errorf("upload atlas: %w", err)
		}
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "text_bind",
			Layout: s.text.uniformLayout,
			Entries: []gputypes.BindGroupEntry{
				uniformEntry,
				{Binding: 1, Resource: gputypes.TextureViewBinding{
					TextureView: s.atlas.view.NativeHandle(),
				}},
				{Binding: 2, Resource: gputypes.SamplerBinding{
					Sampler: s.text.sampler.NativeHandle(),
				}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create text bind group: %w", err)
		}
		return bg, nil

	case DrawMarkers:
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "marker_bind",
			Layout:  s.markers.uniformLayout,
			Entries: []gputypes.BindGroupEntry{uniformEntry},
		})
		if err != nil {
			return nil, fmt.Errorf("create marker bind group: %w", err)
		}
		return bg, nil

	case DrawTriangles:
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "triangle_bind",
			Layout:  s.triangles.uniformLayout,
			Entries: []gputypes.BindGroupEntry{uniformEntry},
		})
		if err != nil {
			return nil, fmt.Errorf("create triangle bind group: %w", err)
		}
		return bg, nil

	default:
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "line_bind",
			Layout:  s.lines.uniformLayout,
			Entries: []gputypes.BindGroupEntry{uniformEntry},
		})
		if err != nil {
			return nil, fmt.Errorf("create line bind group: %w", err)
		}
		return bg, nil
	}
}
