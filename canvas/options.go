// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/layout"
)

type config struct {
	width, height int
	device        hal.Device
	queue         hal.Queue
	provider      any
	layout        plot.Layout
	surfaceView   hal.TextureView
}

func defaultConfig() config {
	return config{
		width:  800,
		height: 600,
		layout: layout.NewGrid(1, 1),
	}
}

// Option configures a Canvas at creation time.
type Option func(*config)

// WithSize sets the canvas dimensions in pixels. Default is 800x600.
func WithSize(width, height int) Option {
	return func(c *config) {
		c.width = width
		c.height = height
	}
}

// WithDevice shares an existing hal device and queue with the canvas.
// The caller keeps ownership; Close will not release them.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(c *config) {
		c.device = device
		c.queue = queue
	}
}

// WithLayout sets the initial layout strategy. Default is a 1x1 grid.
func WithLayout(l plot.Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

// WithSurface points the canvas at a host-owned surface texture view
// instead of the default offscreen target.
func WithSurface(view hal.TextureView, width, height int) Option {
	return func(c *config) {
		c.surfaceView = view
		c.width = width
		c.height = height
	}
}

func withProvider(p any) Option {
	return func(c *config) {
		c.provider = p
	}
}
