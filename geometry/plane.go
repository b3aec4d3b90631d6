package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/approx"
	"whitted/vmath/vec3"
)

// Plane is an infinite flat surface through Point with unit normal
// TheNormal.
type Plane struct {
	Appearance

	Point     vec3.T
	TheNormal vec3.T

	bounds aabox.AABox
}

// NewPlane builds a plane through p0 with the given normal, which doesn't
// need to be normalized but must not be zero.
func NewPlane(p0, normal vec3.T, opts ...Option) (*Plane, error) {
	n, err := vec3.Unit(normal)
	if err != nil {
		return nil, newIllegalGeometryError("plane normal is zero", err)
	}

	a, err := newAppearance(opts)
	if err != nil {
		return nil, err
	}

	return &Plane{
		Appearance: a,
		Point:      p0,
		TheNormal:  n,
		bounds:     planeBounds(p0, n),
	}, nil
}

// NewPlaneFromPoints builds the plane through three points.  The normal is
// (p2-p1)×(p3-p1), normalized.  It fails if any two points coincide or all
// three are collinear.
func NewPlaneFromPoints(p1, p2, p3 vec3.T, opts ...Option) (*Plane, error) {
	u, err := vec3.Sub(p2, p1)
	if err != nil {
		return nil, newIllegalGeometryError("plane points coincide", err)
	}
	v, err := vec3.Sub(p3, p1)
	if err != nil {
		return nil, newIllegalGeometryError("plane points coincide", err)
	}
	n, err := vec3.Cross(u, v)
	if err != nil {
		return nil, newIllegalGeometryError("plane points are collinear", err)
	}
	return NewPlane(p1, n, opts...)
}

// planeBounds is unbounded, except along an axis the plane is perpendicular to.
func planeBounds(p0, n vec3.T) aabox.AABox {
	b := aabox.Everything()
	switch {
	case approx.IsZero(n[1]) && approx.IsZero(n[2]):
		b.X = ray.Span{Lo: p0[0], Hi: p0[0]}
	case approx.IsZero(n[0]) && approx.IsZero(n[2]):
		b.Y = ray.Span{Lo: p0[1], Hi: p0[1]}
	case approx.IsZero(n[0]) && approx.IsZero(n[1]):
		b.Z = ray.Span{Lo: p0[2], Hi: p0[2]}
	}
	return aabox.Pad(b, boundsPad)
}

func (p *Plane) Bounds() aabox.AABox {
	return p.bounds
}

// Normal is the same everywhere on the plane.
func (p *Plane) Normal(vec3.T) vec3.T {
	return p.TheNormal
}

func (p *Plane) FindIntersections(r ray.Ray) []GeoPoint {
	hit, ok := p.intersect(r)
	if !ok {
		return nil
	}
	hit.Geometry = p
	return []GeoPoint{hit}
}

// intersect leaves the Geometry of the result for the caller to fill in, so
// that polygons can report themselves rather than their supporting plane.
func (p *Plane) intersect(r ray.Ray) (GeoPoint, bool) {
	nv := vec3.IProd(p.TheNormal, r.Slope)
	if approx.IsZero(nv) {
		// Parallel to the plane.
		return GeoPoint{}, false
	}

	qMinusP, err := vec3.Sub(p.Point, r.Point)
	if err != nil {
		// The ray starts on the plane.
		return GeoPoint{}, false
	}

	t := approx.AlignZero(vec3.IProd(p.TheNormal, qMinusP) / nv)
	if t <= 0 || math.IsInf(t, 0) {
		return GeoPoint{}, false
	}

	return GeoPoint{Point: r.Eval(t), T: t}, true
}
