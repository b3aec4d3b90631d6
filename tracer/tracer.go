// Package tracer evaluates the color seen along a ray: local Phong shading
// with shadows, plus recursively traced mirror reflection and transparency.
package tracer

import (
	"math"

	"whitted/color"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/ray"
	"whitted/scene"
	"whitted/vmath/approx"
	"whitted/vmath/vec3"
)

const (
	DefaultMaxDepth        = 10
	DefaultMinContribution = 0.001
)

// Tracer is read-only once built, so one Tracer can serve every render
// worker.
type Tracer struct {
	Scene *scene.Scene

	// MaxDepth is the number of shading levels a primary ray may reach,
	// counting its own hit as level 1.
	MaxDepth int

	// MinContribution stops recursion into branches whose accumulated weight
	// would fall below it.
	MinContribution float64

	// Bias is how far secondary and shadow rays are pushed off the surface
	// they leave.
	Bias float64
}

type Option func(*Tracer)

func WithMaxDepth(n int) Option {
	return func(t *Tracer) {
		t.MaxDepth = n
	}
}

func WithMinContribution(k float64) Option {
	return func(t *Tracer) {
		t.MinContribution = k
	}
}

func WithBias(d float64) Option {
	return func(t *Tracer) {
		t.Bias = d
	}
}

func New(s *scene.Scene, opts ...Option) *Tracer {
	t := &Tracer{
		Scene:           s,
		MaxDepth:        DefaultMaxDepth,
		MinContribution: DefaultMinContribution,
		Bias:            ray.Delta,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stats describes the work done for one primary ray.
type Stats struct {
	// Depth is the deepest shading level reached.  A primary ray that hits
	// nothing has depth 0.
	Depth int

	// Rays counts the primary ray and every reflected or transmitted ray.
	Rays int

	// ShadowRays counts occlusion queries toward lights.
	ShadowRays int
}

// TraceRay returns the color seen looking along r.
func (t *Tracer) TraceRay(r ray.Ray) color.Color {
	c, _ := t.Trace(r)
	return c
}

// Trace is TraceRay that also reports how much work the ray took.
func (t *Tracer) Trace(r ray.Ray) (color.Color, Stats) {
	stats := Stats{}
	c := t.traceGlobal(r, 1, 1.0, &stats)
	return c, stats
}

// traceGlobal casts r and shades whatever it hits at the given level.
func (t *Tracer) traceGlobal(r ray.Ray, level int, k float64, stats *Stats) color.Color {
	stats.Rays++

	gp, ok := t.Scene.ClosestIntersection(r)
	if !ok {
		return t.Scene.Background
	}
	return t.shade(gp, r, level, k, stats)
}

func (t *Tracer) shade(gp geometry.GeoPoint, r ray.Ray, level int, k float64, stats *Stats) color.Color {
	if level > stats.Depth {
		stats.Depth = level
	}

	mat := gp.Geometry.Material()
	result := gp.Geometry.Emission().Add(t.Scene.Ambient.IntensityAt(gp.Point))

	n := gp.Normal()
	v := r.Slope
	nv := approx.AlignZero(vec3.IProd(n, v))
	if nv == 0 {
		// Grazing hit; only the surface's own light is visible.
		return result
	}

	for _, l := range t.Scene.Lights {
		result = result.Add(t.local(gp, l, n, v, nv, mat, k, stats))
	}

	if level >= t.MaxDepth {
		return result
	}

	if kkr := k * mat.KR; mat.KR > 0 && kkr >= t.MinContribution {
		reflected := ray.NewOffset(gp.Point, vec3.Reflect(v, n), n, t.Bias)
		result = result.Add(t.traceGlobal(reflected, level+1, kkr, stats).Scale(mat.KR))
	}

	if kkt := k * mat.KT; mat.KT > 0 && kkt >= t.MinContribution {
		// Transparency continues the ray without bending it.
		transmitted := ray.NewOffset(gp.Point, v, n, t.Bias)
		result = result.Add(t.traceGlobal(transmitted, level+1, kkt, stats).Scale(mat.KT))
	}

	return result
}

// local is one light's diffuse and specular contribution at gp.
func (t *Tracer) local(gp geometry.GeoPoint, src light.Light, n, v vec3.T, nv float64, mat material.Material, k float64, stats *Stats) color.Color {
	l, ok := src.DirectionTo(gp.Point)
	if !ok {
		return color.Black
	}

	// The light and the viewer have to be on the same side of the surface.
	nl := approx.AlignZero(vec3.IProd(n, l))
	if nl*nv <= 0 {
		return color.Black
	}

	ktr := t.transparency(gp, src, l, n, stats)
	if ktr*k <= t.MinContribution {
		return color.Black
	}

	intensity := src.IntensityAt(gp.Point).Scale(ktr)

	diffuse := intensity.Scale(mat.KD * math.Abs(nl))

	specular := color.Black
	r := vec3.Reflect(l, n)
	if vr := approx.AlignZero(-vec3.IProd(v, r)); vr > 0 {
		specular = intensity.Scale(mat.KS * math.Pow(vr, float64(mat.Shininess)))
	}

	return diffuse.Add(specular)
}

// transparency is the fraction of src's light that reaches gp: the product
// of the transparency of everything in between.  It is 0 behind an opaque
// blocker and 1 with nothing in the way.
func (t *Tracer) transparency(gp geometry.GeoPoint, src light.Light, l, n vec3.T, stats *Stats) float64 {
	stats.ShadowRays++

	toLight := vec3.Negate(l)
	shadow := ray.NewOffset(gp.Point, toLight, n, t.Bias)

	ktr := 1.0
	for _, blocker := range t.Scene.Intersections(shadow, src.DistanceTo(shadow.Point)) {
		ktr *= blocker.Geometry.Material().KT
		if approx.IsZero(ktr) {
			return 0
		}
	}
	return ktr
}
