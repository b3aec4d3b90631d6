package geometry

import (
	"fmt"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/approx"
	"whitted/vmath/vec3"
)

// Polygon is a flat, convex, simple polygon.  Its vertices are ordered along
// the boundary and all lie on the supporting plane.
type Polygon struct {
	Appearance

	Vertices []vec3.T
	Plane    *Plane

	bounds aabox.AABox
}

// NewPolygon checks every construction rule:
//
//   - there are at least three vertices
//   - no two consecutive vertices coincide
//   - no three consecutive vertices are collinear
//   - all vertices lie on the plane of the first three
//   - the turn at every vertex has the same direction (convex, consistently
//     wound)
//
// For three vertices only the first two checks apply.
func NewPolygon(vertices []vec3.T, opts ...Option) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, newIllegalGeometryError(fmt.Sprintf("a polygon needs at least 3 vertices, got %d", len(vertices)), nil)
	}

	a, err := newAppearance(opts)
	if err != nil {
		return nil, err
	}

	plane, err := NewPlaneFromPoints(vertices[0], vertices[1], vertices[2])
	if err != nil {
		return nil, newIllegalGeometryError("first three vertices don't define a plane", err)
	}

	p := &Polygon{
		Appearance: a,
		Vertices:   append([]vec3.T(nil), vertices...),
		Plane:      plane,
	}

	b := aabox.AccumZeroAABox()
	for _, v := range p.Vertices {
		b = aabox.GrowAABoxToPoint(b, v)
	}
	p.bounds = aabox.Pad(b, boundsPad)

	if len(vertices) == 3 {
		return p, nil
	}

	if err := checkConvex(p.Vertices, plane.TheNormal); err != nil {
		return nil, err
	}

	return p, nil
}

func checkConvex(vertices []vec3.T, n vec3.T) error {
	last := len(vertices) - 1

	edge1, err := vec3.Sub(vertices[last], vertices[last-1])
	if err != nil {
		return newIllegalGeometryError(fmt.Sprintf("vertices %d and %d coincide", last-1, last), err)
	}
	edge2, err := vec3.Sub(vertices[0], vertices[last])
	if err != nil {
		return newIllegalGeometryError(fmt.Sprintf("vertices %d and 0 coincide", last), err)
	}

	// The turn from the last edge to the first fixes the winding every other
	// turn has to agree with.
	turn, err := vec3.Cross(edge1, edge2)
	if err != nil {
		return newIllegalGeometryError(fmt.Sprintf("vertices %d, %d and 0 are collinear", last-1, last), err)
	}
	positive := vec3.IProd(turn, n) > 0

	for i := 1; i < len(vertices); i++ {
		offset := vec3.SubVV(vertices[i], vertices[0])
		if !approx.IsZero(vec3.IProd(offset, n)) {
			return newIllegalGeometryError(fmt.Sprintf("vertex %d is not on the polygon's plane", i), nil)
		}

		edge1 = edge2
		edge2, err = vec3.Sub(vertices[i], vertices[i-1])
		if err != nil {
			return newIllegalGeometryError(fmt.Sprintf("vertices %d and %d coincide", i-1, i), err)
		}

		turn, err = vec3.Cross(edge1, edge2)
		if err != nil {
			return newIllegalGeometryError(fmt.Sprintf("vertices %d, %d and %d are collinear", (i+last-1)%len(vertices), i-1, i), err)
		}
		if positive != (vec3.IProd(turn, n) > 0) {
			return newIllegalGeometryError("polygon is not convex or its vertices are out of order", nil)
		}
	}

	return nil
}

func (p *Polygon) Bounds() aabox.AABox {
	return p.bounds
}

// Normal is the supporting plane's normal, the same everywhere.
func (p *Polygon) Normal(vec3.T) vec3.T {
	return p.Plane.TheNormal
}

func (p *Polygon) FindIntersections(r ray.Ray) []GeoPoint {
	return p.findIntersections(r, p)
}

// findIntersections reports hits as belonging to owner, which is the
// polygon itself or the Triangle wrapping it.
func (p *Polygon) findIntersections(r ray.Ray, owner Geometry) []GeoPoint {
	hit, ok := p.Plane.intersect(r)
	if !ok {
		return nil
	}

	// Each edge and the ray origin span a plane.  The ray passes inside the
	// polygon iff it crosses all those planes on the same side.
	count := len(p.Vertices)
	sign := 0.0
	for i := 0; i < count; i++ {
		vi, err := vec3.Sub(p.Vertices[i], r.Point)
		if err != nil {
			return nil
		}
		vj, err := vec3.Sub(p.Vertices[(i+1)%count], r.Point)
		if err != nil {
			return nil
		}
		ni, err := vec3.Cross(vi, vj)
		if err != nil {
			return nil
		}

		d := approx.AlignZero(vec3.IProd(r.Slope, vec3.Normalize(ni)))
		if d == 0 {
			// Grazing an edge counts as a miss.
			return nil
		}
		if i == 0 {
			if d > 0 {
				sign = 1.0
			} else {
				sign = -1.0
			}
			continue
		}
		if sign*d <= 0 {
			return nil
		}
	}

	hit.Geometry = owner
	return []GeoPoint{hit}
}

// Triangle is a three-vertex Polygon.  Three distinct, non-collinear points
// are always convex, so construction skips that check.
type Triangle struct {
	Polygon
}

func NewTriangle(a, b, c vec3.T, opts ...Option) (*Triangle, error) {
	p, err := NewPolygon([]vec3.T{a, b, c}, opts...)
	if err != nil {
		return nil, err
	}
	return &Triangle{Polygon: *p}, nil
}

func (t *Triangle) FindIntersections(r ray.Ray) []GeoPoint {
	return t.findIntersections(r, t)
}
