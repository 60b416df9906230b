package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plot/text"
)

// targetSet holds the MSAA color and single-sample resolve textures
// for one canvas. The engine draws only blended geometry, so no
// depth/stencil attachment is needed.
//
//   - MSAA color: 4x samples, BGRA8Unorm, RenderAttachment
//   - Resolve: 1x sample, BGRA8Unorm, RenderAttachment | CopySrc
type targetSet struct {
	msaaTex     hal.Texture
	msaaView    hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView
	width       uint32
	height      uint32
}

// ensure creates or recreates the targets if the requested dimensions
// differ from the current size. withResolve is false in surface mode,
// where the caller-provided surface view is the resolve target.
func (ts *targetSet) ensure(device hal.Device, w, h uint32, withResolve bool) error {
	haveResolve := ts.resolveTex != nil
	if ts.width == w && ts.height == h && ts.msaaTex != nil && haveResolve == withResolve {
		return nil
	}
	ts.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	msaaTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "canvas_msaa_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA color texture: %w", err)
	}
	ts.msaaTex = msaaTex

	msaaView, err := device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label: "canvas_msaa_color_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create MSAA color view: %w", err)
	}
	ts.msaaView = msaaView

	if withResolve {
		resolveTex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "canvas_resolve",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        targetFormat,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("create resolve texture: %w", err)
		}
		ts.resolveTex = resolveTex

		resolveView, err := device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
			Label: "canvas_resolve_view",
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("create resolve view: %w", err)
		}
		ts.resolveView = resolveView
	}

	ts.width = w
	ts.height = h
	return nil
}

// destroy releases all target resources and resets dimensions.
func (ts *targetSet) destroy(device hal.Device) {
	if ts.resolveView != nil {
		device.DestroyTextureView(ts.resolveView)
		ts.resolveView = nil
	}
	if ts.resolveTex != nil {
		device.DestroyTexture(ts.resolveTex)
		ts.resolveTex = nil
	}
	if ts.msaaView != nil {
		device.DestroyTextureView(ts.msaaView)
		ts.msaaView = nil
	}
	if ts.msaaTex != nil {
		device.DestroyTexture(ts.msaaTex)
		ts.msaaTex = nil
	}
	ts.width = 0
	ts.height = 0
}

// atlasTexture wraps the GPU copy of the glyph atlas. The CPU-side
// atlas rasterizes glyphs lazily during the build phase; this uploads
// the whole image whenever the atlas reports dirty.
type atlasTexture struct {
	tex  hal.Texture
	view hal.TextureView
	size uint32
}

// ensure creates the texture on first use and re-uploads the atlas
// image when it changed since the last upload.
func (at *atlasTexture) ensure(device hal.Device, queue hal.Queue, atlas *text.Atlas) error {
	if atlas == nil {
		return fmt.Errorf("glyph draw without atlas")
	}
	size := uint32(atlas.Size())

	if at.tex != nil && at.size != size {
		at.destroy(device)
	}

	created := false
	if at.tex == nil {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "glyph_atlas",
			Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create atlas texture: %w", err)
		}
		at.tex = tex

		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:         "glyph_atlas_view",
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			at.destroy(device)
			return fmt.Errorf("create atlas texture view: %w", err)
		}
		at.view = view
		at.size = size
		created = true
	}

	if !created && !atlas.Dirty() {
		return nil
	}

	// Expand the alpha mask to RGBA so the texture works with plain
	// RGBA8Unorm sampling; the shader reads the r channel.
	rgba := alphaToRGBA(atlas.Image())
	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  at.tex,
			MipLevel: 0,
		},
		rgba,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  size * 4,
			RowsPerImage: size,
		},
		&hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
	)
	atlas.MarkClean()
	return nil
}

func (at *atlasTexture) destroy(device hal.Device) {
	if at.view != nil {
		device.DestroyTextureView(at.view)
		at.view = nil
	}
	if at.tex != nil {
		device.DestroyTexture(at.tex)
		at.tex = nil
	}
	at.size = 0
}

// alphaToRGBA expands a one-byte-per-pixel alpha image to 4 bytes per
// pixel with the alpha replicated into every channel.
func alphaToRGBA(img *image.Alpha) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, a := range row {
			i := (y*w + x) * 4
			out[i] = a
			out[i+1] = a
			out[i+2] = a
			out[i+3] = a
		}
	}
	return out
}
