package ray

import (
	"fmt"
	"math"

	"whitted/vmath/vec3"
)

// Delta is the default distance a secondary ray's origin is pushed off the
// surface it leaves, so that it doesn't immediately hit that surface again.
const Delta = 1e-4

type Span struct {
	Lo, Hi float64
}

func NaNSpan() Span {
	return Span{math.NaN(), math.NaN()}
}

// ForwardSpan covers every positive parameter along a ray.
func ForwardSpan() Span {
	return Span{0, math.Inf(1)}
}

func SpanOverlaps(a, b Span) bool {
	return !(a.Lo > b.Hi || a.Hi < b.Lo)
}

func MinContainingSpan(a, b Span) Span {
	min := a.Lo
	if b.Lo < a.Lo {
		min = b.Lo
	}

	max := a.Hi
	if b.Hi > a.Hi {
		max = b.Hi
	}

	return Span{min, max}
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

func (s Span) Contains(t float64) bool {
	return s.Lo <= t && t <= s.Hi
}

// Ray is a half-line.  Slope is always a unit vector; build rays with New or
// NewOffset to keep it that way.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

// New builds a ray from point along slope, normalizing slope.
func New(point, slope vec3.T) (Ray, error) {
	unit, err := vec3.Unit(slope)
	if err != nil {
		return Ray{}, fmt.Errorf("while normalizing ray direction: %w", err)
	}
	return Ray{Point: point, Slope: unit}, nil
}

// NewOffset builds a ray leaving a surface at point with unit normal n.  The
// origin is moved by delta along n, toward whichever side of the surface slope
// points into.  slope must already be a unit vector.
func NewOffset(point, slope, n vec3.T, delta float64) Ray {
	nd := vec3.IProd(n, slope)
	switch {
	case nd > 0:
		point = vec3.AddVV(point, vec3.MulVS(n, delta))
	case nd < 0:
		point = vec3.AddVV(point, vec3.MulVS(n, -delta))
	}
	return Ray{Point: point, Slope: slope}
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// RaySegment restricts a ray to the parameters in TheSegment.
type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}
