// Package plot provides a batched GPU plotting engine for Go.
//
// # Overview
//
// plot renders many simultaneously visible subplots -- thousands to
// millions of points -- in a handful of GPU draw calls. Views declare
// what to draw and where in data coordinates; the engine arranges
// subplots with a layout strategy, folds every subplot's placement into
// the vertex data itself, and draws each primitive kind (points, lines,
// triangles, text) with a single pipeline and a single draw call per
// frame. It is built on gogpu/wgpu and integrates with the GoGPU
// ecosystem.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/plot"
//	    "github.com/gogpu/plot/canvas"
//	    "github.com/gogpu/plot/layout"
//	    "github.com/gogpu/plot/view"
//	    "github.com/gogpu/plot/visual"
//	)
//
//	cv, _ := canvas.New(canvas.WithSize(800, 600))
//	lines := visual.NewLines()
//	cv.Register(lines)
//	cv.SetLayout(layout.NewStacked(0))
//
//	ctrl := view.NewController(cv, provider)
//	ctrl.Attach(lines, func(e view.Entity) error {
//	    return lines.AddPath(e.Record.XY, e.Color, e.Record.Bounds, e.Slot)
//	})
//	ctrl.OnSelection([]uint32{7, 12})
//
// # Architecture
//
// The engine is organized leaves-first:
//   - plot: coordinate transforms, data bounds, colors, errors
//   - layout: grid, boxed, and stacked placement strategies
//   - batch: per-frame geometry accumulation and one-pass concatenation
//   - visual: the closed set of drawable primitive kinds
//   - canvas: surface ownership and the redraw state machine
//   - view: selection handling and per-entity data rebuilds
//
// Subplot partitioning is a property of the vertex data, not of the
// draw stream: the number of subplots never multiplies the number of
// draw calls.
//
// # Logging
//
// plot produces no log output by default. Call [SetLogger] to enable
// structured logging for the engine and all sub-packages.
package plot
