package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/approx"
	"whitted/vmath/vec3"
)

type Sphere struct {
	Appearance

	Center vec3.T
	Radius float64

	bounds aabox.AABox
}

func NewSphere(center vec3.T, radius float64, opts ...Option) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, newIllegalGeometryError("sphere radius must be positive and finite", nil)
	}

	a, err := newAppearance(opts)
	if err != nil {
		return nil, err
	}

	r := vec3.T{radius, radius, radius}
	return &Sphere{
		Appearance: a,
		Center:     center,
		Radius:     radius,
		bounds:     aabox.Pad(aabox.FromCorners(vec3.SubVV(center, r), vec3.AddVV(center, r)), boundsPad),
	}, nil
}

func (s *Sphere) Bounds() aabox.AABox {
	return s.bounds
}

func (s *Sphere) Normal(p vec3.T) vec3.T {
	n, err := vec3.Unit(vec3.SubVV(p, s.Center))
	if err != nil {
		// p is the center, which is never on the surface.
		return vec3.T{}
	}
	return n
}

func (s *Sphere) FindIntersections(r ray.Ray) []GeoPoint {
	u, err := vec3.Sub(s.Center, r.Point)
	if err != nil {
		// The ray starts at the center, so it leaves through exactly one point.
		return []GeoPoint{{Geometry: s, Point: r.Eval(s.Radius), T: s.Radius}}
	}

	tm := approx.AlignZero(vec3.IProd(r.Slope, u))
	d2 := approx.AlignZero(u.NormSquared() - tm*tm)
	th2 := approx.AlignZero(s.Radius*s.Radius - d2)

	// Missing, or just grazing the surface.
	if th2 <= 0 {
		return nil
	}

	th := math.Sqrt(th2)
	t1 := approx.AlignZero(tm - th)
	t2 := approx.AlignZero(tm + th)

	var result []GeoPoint
	if t1 > 0 {
		result = append(result, GeoPoint{Geometry: s, Point: r.Eval(t1), T: t1})
	}
	if t2 > 0 {
		result = append(result, GeoPoint{Geometry: s, Point: r.Eval(t2), T: t2})
	}
	return result
}
