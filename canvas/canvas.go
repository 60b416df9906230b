// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package canvas owns the rendering surface and drives the redraw
// cycle. A Canvas holds the active layout strategy and the ordered set
// of registered visuals; each redraw runs Building (the view layer
// populates batches), Uploading (finalize and upload every visual),
// and Presented (one render pass, one draw call per visual), then
// returns to Idle. Redraw requests arriving while a cycle is in flight
// coalesce into exactly one follow-up cycle.
package canvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/internal/gpu"
	"github.com/gogpu/plot/text"
	"github.com/gogpu/plot/visual"
)

// DeviceHandle provides GPU device access from the host application.
// Hosts that already own a device (a windowing framework, another
// renderer) implement this and pass it to NewFromProvider so the
// canvas shares the device instead of creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping the
// canvas compatible with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// State identifies where the canvas is in its redraw cycle. Idle is
// both the initial state and the steady state between frames.
type State int

const (
	// StateIdle means no redraw cycle is in flight.
	StateIdle State = iota
	// StateBuilding means the view layer is populating batches.
	StateBuilding
	// StateUploading means visuals are finalizing and uploading.
	StateUploading
	// StatePresented means the frame was just drawn and presented.
	StatePresented
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateUploading:
		return "uploading"
	case StatePresented:
		return "presented"
	default:
		return "unknown"
	}
}

// renderSession is the slice of gpu.RenderSession the canvas drives.
type renderSession interface {
	RenderFrame(w, h uint32, cmds []gpu.DrawCommand, readback []byte) error
	SetSurfaceTarget(view hal.TextureView, width, height uint32)
	InvalidateTargets()
	Destroy()
}

// Canvas owns the rendering surface, the active layout strategy, and
// the registered visuals. Draw order is registration order. A Canvas
// is single-threaded: the redraw cycle runs on the calling goroutine
// and is never entered concurrently.
type Canvas struct {
	device hal.Device
	queue  hal.Queue

	// owned is non-nil when the canvas bootstrapped its own device
	// and must tear it down on Close.
	owned *gpu.OpenedDevice

	session renderSession

	layout    plot.Layout
	slotTotal int
	visuals   []visual.Visual
	buildFn   func() error

	width, height int

	// frame holds the last presented RGBA pixels in offscreen mode.
	frame []byte

	// lastCmds is the most recent successfully presented command
	// list, kept so a resize can re-present without rebuilding.
	lastCmds []gpu.DrawCommand

	state     State
	pending   bool
	presented bool
	closed    bool
}

// New creates a canvas. Without WithDevice or a provider the canvas
// opens its own GPU device and owns its lifetime.
func New(opts ...Option) (*Canvas, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Canvas{
		layout: cfg.layout,
		width:  cfg.width,
		height: cfg.height,
	}

	switch {
	case cfg.device != nil:
		c.device = cfg.device
		c.queue = cfg.queue
	case cfg.provider != nil:
		device, queue, err := gpu.DeviceFromProvider(cfg.provider)
		if err != nil {
			return nil, fmt.Errorf("canvas: %w", err)
		}
		c.device = device
		c.queue = queue
	default:
		opened, err := gpu.OpenDefaultDevice()
		if err != nil {
			return nil, fmt.Errorf("canvas: open device: %w", err)
		}
		c.owned = opened
		c.device = opened.Device
		c.queue = opened.Queue
	}

	c.session = gpu.NewRenderSession(c.device, c.queue)
	if cfg.surfaceView != nil {
		c.session.SetSurfaceTarget(cfg.surfaceView, uint32(cfg.width), uint32(cfg.height))
	}
	plot.Logger().Info("canvas created", "width", c.width, "height", c.height)
	return c, nil
}

// NewFromProvider creates a canvas on a host-shared device. The
// provider must expose the underlying hal device and queue.
func NewFromProvider(h DeviceHandle, opts ...Option) (*Canvas, error) {
	return New(append([]Option{withProvider(h)}, opts...)...)
}

// Register adds a visual to the canvas. Draw order is registration
// order: later visuals render over earlier ones. Registering on a
// closed canvas is a precondition violation and fails immediately.
func (c *Canvas) Register(v visual.Visual) error {
	if c.closed {
		return fmt.Errorf("canvas: register %v: %w", v.Kind(), plot.ErrCanvasClosed)
	}
	c.visuals = append(c.visuals, v)
	return nil
}

// SetLayout replaces the active layout strategy. All placements are
// invalidated; the next redraw recomputes them for every registered
// visual before re-uploading.
func (c *Canvas) SetLayout(l plot.Layout) {
	c.layout = l
}

// Layout returns the active layout strategy.
func (c *Canvas) Layout() plot.Layout { return c.layout }

// SetSlotCount declares the subplot slot total for coming frames,
// normally the number of selected entities.
func (c *Canvas) SetSlotCount(n int) {
	c.slotTotal = n
}

// SlotCount returns the declared slot total.
func (c *Canvas) SlotCount() int { return c.slotTotal }

// SetBuildFunc installs the callback invoked during the Building
// phase. The view controller uses it to drain its selection queue and
// repopulate every visual's batch.
func (c *Canvas) SetBuildFunc(fn func() error) {
	c.buildFn = fn
}

// State returns the current redraw cycle state.
func (c *Canvas) State() State { return c.state }

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Redraw requests a redraw cycle. When the canvas is idle the cycle
// runs to completion on the calling goroutine. Requests arriving
// while a cycle is in flight are coalesced: any number of them
// collapse into exactly one extra cycle after the current one
// completes, never a queue.
//
// A failed cycle leaves the previously presented frame intact. A
// surface-lost failure recreates the render targets and retries with
// one extra cycle.
func (c *Canvas) Redraw() error {
	if c.closed {
		return fmt.Errorf("canvas: redraw: %w", plot.ErrCanvasClosed)
	}
	if c.state != StateIdle {
		c.pending = true
		return nil
	}

	recovered := false
	for {
		err := c.cycle()
		switch {
		case err == nil:
			recovered = false
		case errors.Is(err, plot.ErrSurfaceLost) && !recovered:
			plot.Logger().Warn("surface lost, recreating targets", "error", err)
			recovered = true
			c.session.InvalidateTargets()
			c.pending = true
		default:
			c.pending = false
			return err
		}
		if !c.pending {
			return nil
		}
		c.pending = false
	}
}

// cycle runs one full Building → Uploading → Presented pass. Any
// failure aborts the cycle and returns the canvas to Idle with the
// previous frame still on screen.
func (c *Canvas) cycle() error {
	c.state = StateBuilding
	defer func() { c.state = StateIdle }()

	if c.buildFn != nil {
		if err := c.buildFn(); err != nil {
			return fmt.Errorf("canvas: build: %w", err)
		}
	}

	c.state = StateUploading
	cmds := make([]gpu.DrawCommand, 0, len(c.visuals))
	for _, v := range c.visuals {
		if err := v.Finalize(c.layout, c.slotTotal); err != nil {
			return fmt.Errorf("canvas: finalize %v: %w", v.Kind(), err)
		}
		cmds = append(cmds, drawCommand(v))
	}

	if err := c.present(cmds); err != nil {
		return err
	}

	c.state = StatePresented
	c.lastCmds = cmds
	c.presented = true
	return nil
}

// present submits the command list for the current canvas size.
func (c *Canvas) present(cmds []gpu.DrawCommand) error {
	w, h := uint32(c.width), uint32(c.height)
	if len(c.frame) < int(w)*int(h)*4 {
		c.frame = make([]byte, int(w)*int(h)*4)
	}
	if err := c.session.RenderFrame(w, h, cmds, c.frame); err != nil {
		return fmt.Errorf("canvas: present: %w", err)
	}
	return nil
}

// Resize updates the canvas dimensions. Only the size-dependent GPU
// targets and the aspect-correction factor are recomputed; subplot
// content is untouched. If a frame was presented it is re-presented
// at the new size from the already uploaded geometry, without
// re-entering Building.
func (c *Canvas) Resize(w, h int) error {
	if c.closed {
		return fmt.Errorf("canvas: resize: %w", plot.ErrCanvasClosed)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("canvas: resize to %dx%d", w, h)
	}
	c.width, c.height = w, h
	c.session.InvalidateTargets()
	if !c.presented {
		return nil
	}
	c.state = StateUploading
	defer func() { c.state = StateIdle }()
	if err := c.present(c.lastCmds); err != nil {
		return err
	}
	c.state = StatePresented
	return nil
}

// SetSurfaceTarget points the canvas at a host-owned surface texture
// view, or back to offscreen mode with a nil view. The host shell
// calls this on surface creation and after resize races.
func (c *Canvas) SetSurfaceTarget(view hal.TextureView, w, h int) {
	c.width, c.height = w, h
	c.session.SetSurfaceTarget(view, uint32(w), uint32(h))
}

// ReadPixels returns the last presented frame as an RGBA image.
// Offscreen mode only.
func (c *Canvas) ReadPixels() (*image.RGBA, error) {
	if c.closed {
		return nil, fmt.Errorf("canvas: read pixels: %w", plot.ErrCanvasClosed)
	}
	if !c.presented {
		return nil, fmt.Errorf("canvas: read pixels: no frame presented")
	}
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	copy(img.Pix, c.frame)
	return img, nil
}

// Close releases the canvas and all GPU resources it owns. The canvas
// is unusable afterwards; further operations fail with
// plot.ErrCanvasClosed.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.session.Destroy()
	if c.owned != nil {
		c.owned.Close()
		c.owned = nil
	}
	c.visuals = nil
	c.lastCmds = nil
	return nil
}

// drawCommand maps a finalized visual onto its GPU draw command.
// Kind-specific parameters are discovered through capability
// assertions so any implementation of visual.Visual can supply them.
func drawCommand(v visual.Visual) gpu.DrawCommand {
	cmd := gpu.DrawCommand{Geometry: v.Geometry()}
	switch v.Kind() {
	case visual.KindPoints:
		cmd.Kind = gpu.DrawMarkers
		if m, ok := v.(interface{ MarkerSize() float32 }); ok {
			cmd.Param = m.MarkerSize()
		}
	case visual.KindTriangles:
		cmd.Kind = gpu.DrawTriangles
	case visual.KindText:
		cmd.Kind = gpu.DrawGlyphs
		if tv, ok := v.(interface{ LabelSize() int }); ok {
			cmd.Param = float32(tv.LabelSize())
		}
		if av, ok := v.(interface{ Atlas() *text.Atlas }); ok {
			cmd.Atlas = av.Atlas()
		}
	default:
		cmd.Kind = gpu.DrawLines
	}
	return cmd
}
