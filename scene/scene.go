package scene

import (
	"fmt"
	"math"

	"whitted/aabox"
	"whitted/bvh"
	"whitted/camera"
	"whitted/color"
	"whitted/geometry"
	"whitted/light"
	"whitted/ray"
)

// Accelerator selects how a scene finds the geometries a ray might hit.
type Accelerator int

const (
	// BVH prunes with a bounding volume hierarchy.
	BVH Accelerator = iota
	// Flat checks every geometry's box before its exact intersection.
	Flat
	// Exhaustive runs every exact intersection.
	Exhaustive
)

func (a Accelerator) String() string {
	switch a {
	case BVH:
		return "bvh"
	case Flat:
		return "flat"
	case Exhaustive:
		return "exhaustive"
	default:
		return fmt.Sprintf("Accelerator(%d)", int(a))
	}
}

func ParseAccelerator(s string) (Accelerator, error) {
	for _, a := range []Accelerator{BVH, Flat, Exhaustive} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown accelerator %q", s)
}

// Tuning for the surface area heuristic, in units of box area.
const (
	bvhSplitCost = 1.0
	bvhThreshold = 0.0
)

// selectorSlack widens the query segment handed to box tests, so that a
// geometry hit exactly at the current best parameter is still visited and
// ties are broken the same way whichever accelerator is in use.
const selectorSlack = 1e-7

// Scene is everything a tracer needs.  Build it with New and the Add
// methods, then call Crush once; after that it is read-only and safe for
// concurrent queries.
type Scene struct {
	Name       string
	Background color.Color
	Ambient    light.Ambient

	Camera *camera.Camera
	// Distance from the camera to the view plane.
	Distance float64

	Geometries []geometry.Geometry
	Lights     []light.Light

	Accelerator Accelerator

	crushed bool
	tree    *bvh.Tree
	// Geometries with unbounded boxes stay outside the tree.
	unbounded []int
}

type Option func(*Scene)

func WithBackground(c color.Color) Option {
	return func(s *Scene) {
		s.Background = c
	}
}

func WithAmbient(a light.Ambient) Option {
	return func(s *Scene) {
		s.Ambient = a
	}
}

func WithCamera(c *camera.Camera, distance float64) Option {
	return func(s *Scene) {
		s.Camera = c
		s.Distance = distance
	}
}

func WithAccelerator(a Accelerator) Option {
	return func(s *Scene) {
		s.Accelerator = a
	}
}

// New returns an empty scene with a black background and no ambient light.
func New(name string, opts ...Option) *Scene {
	s := &Scene{
		Name:        name,
		Background:  color.Black,
		Accelerator: BVH,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) AddGeometries(gs ...geometry.Geometry) {
	s.Geometries = append(s.Geometries, gs...)
	s.crushed = false
}

func (s *Scene) AddLights(ls ...light.Light) {
	s.Lights = append(s.Lights, ls...)
}

// Crush freezes the geometry list and builds the accelerator.  Queries on a
// scene that hasn't been crushed fall back to exhaustive search.
func (s *Scene) Crush() {
	s.unbounded = nil
	elements := []bvh.Element{}
	for i, g := range s.Geometries {
		b := g.Bounds()
		if !b.IsFinite() {
			s.unbounded = append(s.unbounded, i)
			continue
		}
		elements = append(elements, bvh.Element{Ref: i, Bounds: b})
	}

	s.tree = bvh.New(elements)
	s.tree.Refine(bvhSplitCost, bvhThreshold)
	s.crushed = true
}

// TreeStats describes the acceleration tree built by Crush.
func (s *Scene) TreeStats() bvh.Stats {
	if s.tree == nil {
		return bvh.Stats{}
	}
	return s.tree.Stats()
}

// closest tracks the best hit seen so far.  Hits are ordered by T, then by
// geometry index, so every accelerator settles on the same one.
type closest struct {
	hit   geometry.GeoPoint
	index int
	found bool
}

func (c *closest) offer(index int, hits []geometry.GeoPoint, maxDistance float64) {
	for _, h := range hits {
		if h.T >= maxDistance {
			continue
		}
		if !c.found || h.T < c.hit.T || (h.T == c.hit.T && index < c.index) {
			c.hit = h
			c.index = index
			c.found = true
		}
	}
}

// ClosestIntersection returns the hit with the smallest positive ray
// parameter, or ok == false if the ray escapes the scene.
func (s *Scene) ClosestIntersection(r ray.Ray) (gp geometry.GeoPoint, ok bool) {
	return s.ClosestIntersectionWithin(r, math.Inf(1))
}

// ClosestIntersectionWithin is ClosestIntersection restricted to hits closer
// than maxDistance.
func (s *Scene) ClosestIntersectionWithin(r ray.Ray, maxDistance float64) (geometry.GeoPoint, bool) {
	c := &closest{}

	query := ray.RaySegment{
		TheRay:     r,
		TheSegment: ray.Span{Lo: 0, Hi: maxDistance},
	}
	selector := func(b aabox.AABox) bool {
		if c.found {
			query.TheSegment.Hi = c.hit.T + selectorSlack
		}
		return aabox.RayHitsAABox(query, b)
	}
	visitor := func(i int) {
		c.offer(i, s.Geometries[i].FindIntersections(r), maxDistance)
	}

	s.visit(selector, visitor)
	return c.hit, c.found
}

// Intersections returns every hit closer than maxDistance, in no particular
// order.
func (s *Scene) Intersections(r ray.Ray, maxDistance float64) []geometry.GeoPoint {
	query := ray.RaySegment{
		TheRay:     r,
		TheSegment: ray.Span{Lo: 0, Hi: maxDistance},
	}
	selector := func(b aabox.AABox) bool {
		return aabox.RayHitsAABox(query, b)
	}

	result := []geometry.GeoPoint{}
	visitor := func(i int) {
		for _, h := range s.Geometries[i].FindIntersections(r) {
			if h.T < maxDistance {
				result = append(result, h)
			}
		}
	}

	s.visit(selector, visitor)
	return result
}

func (s *Scene) visit(selector bvh.Selector, visitor bvh.Visitor) {
	switch {
	case s.Accelerator == Exhaustive || !s.crushed:
		for i := range s.Geometries {
			visitor(i)
		}

	case s.Accelerator == Flat:
		for i, g := range s.Geometries {
			if selector(g.Bounds()) {
				visitor(i)
			}
		}

	default:
		for _, i := range s.unbounded {
			if selector(s.Geometries[i].Bounds()) {
				visitor(i)
			}
		}
		s.tree.Query(selector, visitor)
	}
}
