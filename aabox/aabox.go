package aabox

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

// AABox is an axis-aligned bounding box.  A box may be unbounded along any
// axis (a plane, for instance).
type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox returns the empty box, the identity for MinContainingAABox.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

// Everything returns the box covering all of space.
func Everything() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
		Y: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
		Z: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
	}
}

// FromCorners returns the smallest box containing both points.
func FromCorners(a, b vec3.T) AABox {
	lo := vec3.Min(a, b)
	hi := vec3.Max(a, b)
	return AABox{
		X: ray.Span{Lo: lo[0], Hi: hi[0]},
		Y: ray.Span{Lo: lo[1], Hi: hi[1]},
		Z: ray.Span{Lo: lo[2], Hi: hi[2]},
	}
}

func MinContainingAABox(a, b AABox) AABox {
	return AABox{
		X: ray.MinContainingSpan(a.X, b.X),
		Y: ray.MinContainingSpan(a.Y, b.Y),
		Z: ray.MinContainingSpan(a.Z, b.Z),
	}
}

func GrowAABoxToPoint(a AABox, b vec3.T) AABox {
	return MinContainingAABox(a, AABox{
		X: ray.Span{Lo: b[0], Hi: b[0]},
		Y: ray.Span{Lo: b[1], Hi: b[1]},
		Z: ray.Span{Lo: b[2], Hi: b[2]},
	})
}

// Pad grows every finite face of the box outward by d.
func Pad(a AABox, d float64) AABox {
	return AABox{
		X: ray.Span{Lo: a.X.Lo - d, Hi: a.X.Hi + d},
		Y: ray.Span{Lo: a.Y.Lo - d, Hi: a.Y.Hi + d},
		Z: ray.Span{Lo: a.Z.Lo - d, Hi: a.Z.Hi + d},
	}
}

// Axis returns the span of the box along axis i (0, 1, or 2).
func (a AABox) Axis(i int) ray.Span {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

func (a AABox) IsEmpty() bool {
	return a.X.Lo > a.X.Hi || a.Y.Lo > a.Y.Hi || a.Z.Lo > a.Z.Hi
}

func (a AABox) SurfaceArea() float64 {
	xLen := a.X.Hi - a.X.Lo
	yLen := a.Y.Hi - a.Y.Lo
	zLen := a.Z.Hi - a.Z.Lo
	return 2 * (xLen*yLen + xLen*zLen + yLen*zLen)
}

func (a AABox) Centroid() vec3.T {
	return vec3.T{
		(a.X.Lo + a.X.Hi) / 2,
		(a.Y.Lo + a.Y.Hi) / 2,
		(a.Z.Lo + a.Z.Hi) / 2,
	}
}

func (a AABox) Contains(p vec3.T) bool {
	return a.X.Contains(p[0]) && a.Y.Contains(p[1]) && a.Z.Contains(p[2])
}

// RayTestAABox runs the slab test.  It returns the span of ray parameters for
// which the ray is inside the box, clipped to the query segment, or a NaN span
// if the ray misses the box within the segment.
func RayTestAABox(r ray.RaySegment, b AABox) ray.Span {
	if b.IsEmpty() {
		return ray.NaNSpan()
	}

	cover := r.TheSegment

	for i := 0; i < 3; i++ {
		slab := b.Axis(i)
		point := r.TheRay.Point[i]
		slope := r.TheRay.Slope[i]

		// A ray parallel to the slab is either always inside it or never.
		if slope == 0 {
			if point < slab.Lo || slab.Hi < point {
				return ray.NaNSpan()
			}
			continue
		}

		cur := ray.Span{
			Lo: (slab.Lo - point) / slope,
			Hi: (slab.Hi - point) / slope,
		}
		if cur.Hi < cur.Lo {
			cur.Lo, cur.Hi = cur.Hi, cur.Lo
		}
		if !ray.SpanOverlaps(cover, cur) {
			return ray.NaNSpan()
		}
		if cur.Lo > cover.Lo {
			cover.Lo = cur.Lo
		}
		if cur.Hi < cover.Hi {
			cover.Hi = cur.Hi
		}
	}

	return cover
}

// RayHitsAABox is a convenience wrapper around RayTestAABox.
func RayHitsAABox(r ray.RaySegment, b AABox) bool {
	return !RayTestAABox(r, b).IsNaN()
}
