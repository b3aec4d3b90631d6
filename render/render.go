// Package render drives a tracer over every pixel of an image.
package render

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"whitted/color"
	"whitted/rendermetrics"
	"whitted/scene"
	"whitted/tracer"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Sink receives finished pixels.  Render calls WritePixel from several
// goroutines at once, but never twice for the same pixel.
type Sink interface {
	WritePixel(row, col int, c color.Color)
}

// ProgressFunction is called after each row with the number of rows done so
// far.  Calls are serialized.
type ProgressFunction func(done, total int)

type Options struct {
	// Image size in pixels.
	Width, Height int

	// Size of the view plane, in scene units.
	ViewWidth, ViewHeight float64

	// Supersample casts an n by n grid of rays per pixel and averages them.
	// Values below 1 mean 1.
	Supersample int

	// Workers bounds how many rows render at once.  Values below 1 mean one
	// per CPU.
	Workers int

	// Passed to the tracer; zero values select the tracer defaults.
	MaxDepth        int
	MinContribution float64

	Progress ProgressFunction

	// Metrics is optional.
	Metrics *rendermetrics.Recorder
}

// Summary totals the work done by one Render call.
type Summary struct {
	Rows       int
	Rays       int64
	ShadowRays int64
	MaxDepth   int
}

func (o *Options) validate(s *scene.Scene) error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("image size %dx%d is not positive", o.Width, o.Height)
	}
	if !(o.ViewWidth > 0) || !(o.ViewHeight > 0) {
		return fmt.Errorf("view plane size %vx%v is not positive", o.ViewWidth, o.ViewHeight)
	}
	if s.Camera == nil {
		return fmt.Errorf("scene %q has no camera", s.Name)
	}
	if !(s.Distance > 0) {
		return fmt.Errorf("scene %q has view plane distance %v, want > 0", s.Name, s.Distance)
	}
	return nil
}

// Render traces every pixel of s and hands the colors to sink.  The scene
// must already be crushed.  Rows are rendered in parallel; the result does
// not depend on the number of workers.
func Render(ctx context.Context, s *scene.Scene, sink Sink, opts Options) (Summary, error) {
	otelTracer := otel.Tracer("whitted/render")
	var span trace.Span
	ctx, span = otelTracer.Start(ctx, "Render")
	defer span.End()
	span.SetAttributes(
		attribute.String("scene", s.Name),
		attribute.Int("width", opts.Width),
		attribute.Int("height", opts.Height),
	)

	if err := opts.validate(s); err != nil {
		return Summary{}, fmt.Errorf("while checking render options: %w", err)
	}

	tracerOpts := []tracer.Option{}
	if opts.MaxDepth > 0 {
		tracerOpts = append(tracerOpts, tracer.WithMaxDepth(opts.MaxDepth))
	}
	if opts.MinContribution > 0 {
		tracerOpts = append(tracerOpts, tracer.WithMinContribution(opts.MinContribution))
	}
	w := &rowWorker{
		scene:  s,
		tracer: tracer.New(s, tracerOpts...),
		sink:   sink,
		opts:   opts,
	}
	if w.opts.Supersample < 1 {
		w.opts.Supersample = 1
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	// progressMutex guards done and summary.
	progressMutex := sync.Mutex{}
	done := 0
	summary := Summary{}

	// Use errgroup and semaphore to limit concurrency.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	scheduled := 0
	for row := 0; row < opts.Height; row++ {
		row := row

		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		scheduled++

		eg.Go(func() error {
			defer sem.Release(1)

			if err := egCtx.Err(); err != nil {
				return err
			}

			rs := w.renderRow(egCtx, row)

			progressMutex.Lock()
			defer progressMutex.Unlock()
			done++
			summary.Rows++
			summary.Rays += rs.Rays
			summary.ShadowRays += rs.ShadowRays
			if rs.MaxDepth > summary.MaxDepth {
				summary.MaxDepth = rs.MaxDepth
			}
			glog.V(1).Infof("Rendered row %d (%d/%d)", row, done, opts.Height)
			if opts.Progress != nil {
				opts.Progress(done, opts.Height)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return summary, fmt.Errorf("while waiting for row workers: %w", err)
	}
	if scheduled < opts.Height {
		// Acquire only fails once the context is done.
		return summary, fmt.Errorf("while scheduling rows: %w", ctx.Err())
	}

	span.SetAttributes(attribute.Int64("rays", summary.Rays))
	return summary, nil
}

type rowWorker struct {
	scene  *scene.Scene
	tracer *tracer.Tracer
	sink   Sink
	opts   Options
}

func (w *rowWorker) renderRow(ctx context.Context, row int) Summary {
	start := time.Now()

	rs := Summary{Rows: 1}
	for col := 0; col < w.opts.Width; col++ {
		c, stats := w.pixel(row, col)
		rs.Rays += int64(stats.Rays)
		rs.ShadowRays += int64(stats.ShadowRays)
		if stats.Depth > rs.MaxDepth {
			rs.MaxDepth = stats.Depth
		}
		w.sink.WritePixel(row, col, c)
	}

	if w.opts.Metrics != nil {
		w.opts.Metrics.RecordRow(ctx, w.scene.Name, w.scene.Accelerator.String(), rs.Rays, rs.ShadowRays, time.Since(start))
	}
	return rs
}

// pixel averages an n by n grid of rays through the pixel.
func (w *rowWorker) pixel(row, col int) (color.Color, tracer.Stats) {
	cam := w.scene.Camera
	n := w.opts.Supersample

	total := tracer.Stats{}
	samples := make([]color.Color, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fy := (float64(i) + 0.5) / float64(n)
			fx := (float64(j) + 0.5) / float64(n)
			r := cam.RayThroughSubpixel(row, col, w.opts.Width, w.opts.Height, w.opts.ViewWidth, w.opts.ViewHeight, w.scene.Distance, fx, fy)

			c, stats := w.tracer.Trace(r)
			samples = append(samples, c)
			total.Rays += stats.Rays
			total.ShadowRays += stats.ShadowRays
			if stats.Depth > total.Depth {
				total.Depth = stats.Depth
			}
		}
	}
	return color.Average(samples), total
}
