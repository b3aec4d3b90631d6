// Package rendermetrics records render progress as OpenCensus measures.
package rendermetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	sceneKey       = tag.MustNewKey("scene")
	acceleratorKey = tag.MustNewKey("accelerator")
)

type Recorder struct {
	rowCount   *stats.Int64Measure
	rayCount   *stats.Int64Measure
	shadowRays *stats.Int64Measure
	rowLatency *stats.Float64Measure

	views []*view.View
}

func New() *Recorder {
	r := &Recorder{}

	r.rowCount = stats.Int64("whitted/rows", "Rows rendered", stats.UnitDimensionless)
	r.rayCount = stats.Int64("whitted/rays", "Primary and secondary rays traced", stats.UnitDimensionless)
	r.shadowRays = stats.Int64("whitted/shadow_rays", "Shadow rays traced", stats.UnitDimensionless)
	r.rowLatency = stats.Float64("whitted/row_latency", "Time to render one row", stats.UnitMilliseconds)

	tagKeys := []tag.Key{sceneKey, acceleratorKey}
	r.views = []*view.View{
		{
			Name:        "whitted/rows",
			Description: "Counter of rows that have been rendered",
			TagKeys:     tagKeys,
			Measure:     r.rowCount,
			Aggregation: view.Count(),
		},
		{
			Name:        "whitted/rays",
			Description: "Sum of primary and secondary rays traced",
			TagKeys:     tagKeys,
			Measure:     r.rayCount,
			Aggregation: view.Sum(),
		},
		{
			Name:        "whitted/shadow_rays",
			Description: "Sum of shadow rays traced",
			TagKeys:     tagKeys,
			Measure:     r.shadowRays,
			Aggregation: view.Sum(),
		},
		{
			Name:        "whitted/row_latency",
			Description: "Distribution of per-row render time",
			TagKeys:     tagKeys,
			Measure:     r.rowLatency,
			Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000),
		},
	}

	return r
}

func (r *Recorder) RegisterMetrics() error {
	if err := view.Register(r.views...); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}
	return nil
}

func (r *Recorder) UnregisterMetrics() {
	view.Unregister(r.views...)
}

// RecordRow notes one finished row and the rays it took.
func (r *Recorder) RecordRow(ctx context.Context, scene, accelerator string, rays, shadowRays int64, elapsed time.Duration) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(
			tag.Insert(sceneKey, scene),
			tag.Insert(acceleratorKey, accelerator),
		),
		stats.WithMeasurements(
			r.rowCount.M(1),
			r.rayCount.M(rays),
			r.shadowRays.M(shadowRays),
			r.rowLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
}
