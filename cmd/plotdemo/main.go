// Command plotdemo renders a stacked multi-subplot scene offscreen and
// writes it to a PNG: per-entity waveforms, sample markers, an
// amplitude histogram, and labels, one entity per subplot row.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"math"
	"os"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/canvas"
	"github.com/gogpu/plot/layout"
	"github.com/gogpu/plot/text"
	"github.com/gogpu/plot/view"
	"github.com/gogpu/plot/visual"
)

func main() {
	var (
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		output   = flag.String("output", "plot.png", "output file")
		entities = flag.Int("entities", 3, "number of stacked subplots")
	)
	flag.Parse()

	if err := run(*width, *height, *output, *entities); err != nil {
		log.Fatalf("plotdemo: %v", err)
	}
	log.Printf("Plot saved to %s (%dx%d)\n", *output, *width, *height)
}

func run(width, height int, output string, entities int) error {
	cv, err := canvas.New(
		canvas.WithSize(width, height),
		canvas.WithLayout(layout.NewStacked(0)),
	)
	if err != nil {
		return err
	}
	defer cv.Close()

	src, err := text.NewSource(goregular.TTF)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	lines := visual.NewLines()
	points := visual.NewPoints()
	bars := visual.NewTriangles()
	labels := visual.NewText(src, visual.WithLabelSize(24))
	for _, v := range []visual.Visual{bars, lines, points, labels} {
		if err := cv.Register(v); err != nil {
			return err
		}
	}

	ctrl := view.NewController(cv, syntheticProvider{}, view.WithBins(48))

	ctrl.Attach(lines, func(e view.Entity) error {
		return lines.AddPath(e.Record.XY, e.Color, e.Record.Bounds, e.Slot)
	})
	ctrl.Attach(points, func(e view.Entity) error {
		// Mark every 16th sample.
		marks := make([]float32, 0, len(e.Record.XY)/16)
		for i := 0; i+1 < len(e.Record.XY); i += 32 {
			marks = append(marks, e.Record.XY[i], e.Record.XY[i+1])
		}
		return points.Add(marks, e.Color, e.Record.Bounds, e.Slot)
	})
	ctrl.Attach(bars, func(e view.Entity) error {
		samples := make([]float32, 0, len(e.Record.XY)/2)
		for i := 1; i < len(e.Record.XY); i += 2 {
			samples = append(samples, e.Record.XY[i])
		}
		counts := view.Histogram(samples, ctrl.Bins(), ctrl.MaxBin())
		maxBin := float32(0)
		for _, c := range counts {
			if c > maxBin {
				maxBin = c
			}
		}
		if maxBin == 0 {
			return nil
		}
		verts := visual.BarVertices(counts, maxBin)
		return bars.Add(verts, e.Color.WithAlpha(0.3), plot.NewRect(0, 0, 1, maxBin), e.Slot)
	})
	ctrl.Attach(labels, func(e view.Entity) error {
		b := e.Record.Bounds
		return labels.AddLabel(b.XMin, b.YMax, e.Record.Label, plot.RGB(1, 1, 1), b, e.Slot)
	})

	ids := make([]uint32, entities)
	for i := range ids {
		ids[i] = uint32(i + 1)
	}
	if err := ctrl.OnSelection(ids); err != nil {
		return err
	}

	img, err := cv.ReadPixels()
	if err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// syntheticProvider generates a decaying sine burst per entity, a
// different frequency for each ID.
type syntheticProvider struct{}

func (syntheticProvider) Fetch(_ context.Context, id uint32) (view.Record, error) {
	const n = 512
	freq := 2 + float64(id)*1.5
	xy := make([]float32, 0, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		y := math.Sin(2*math.Pi*freq*t) * math.Exp(-2*t)
		xy = append(xy, float32(t), float32(y))
	}
	return view.Record{
		XY:     xy,
		Bounds: plot.NewRect(0, -1, 1, 1),
		Label:  fmt.Sprintf("entity %d", id),
	}, nil
}
