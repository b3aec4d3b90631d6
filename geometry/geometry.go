package geometry

import (
	"fmt"

	"whitted/aabox"
	"whitted/color"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/vec3"

	"golang.org/x/xerrors"
)

// Geometry is implemented by Sphere, Plane, Triangle, and Polygon.
//
// Every Geometry is immutable once constructed, so a single value may be
// queried from any number of goroutines.
type Geometry interface {
	Emission() color.Color
	Material() material.Material

	// Normal returns the outward unit normal at p.  p must be on the surface.
	Normal(p vec3.T) vec3.T

	// FindIntersections returns the points where r crosses the surface at a
	// strictly positive ray parameter.  The result may be empty.
	FindIntersections(r ray.Ray) []GeoPoint

	// Bounds returns the box computed when the geometry was built.
	Bounds() aabox.AABox
}

// GeoPoint is a point on a particular geometry, found by an intersection
// query.  T is the parameter along the query ray.
type GeoPoint struct {
	Geometry Geometry
	Point    vec3.T
	T        float64
}

// Normal is shorthand for gp.Geometry.Normal(gp.Point).
func (gp GeoPoint) Normal() vec3.T {
	return gp.Geometry.Normal(gp.Point)
}

// boundsPad keeps flat and tangent-touching geometry inside its own box
// despite rounding in the slab test.
const boundsPad = 1e-7

// Appearance is the part of a geometry the shader reads: what it emits and
// what it is made of.  It is embedded in every concrete geometry.
type Appearance struct {
	EmissionColor color.Color
	TheMaterial   material.Material
}

func (a *Appearance) Emission() color.Color {
	return a.EmissionColor
}

func (a *Appearance) Material() material.Material {
	return a.TheMaterial
}

// Option customizes the appearance of a geometry at construction.
type Option func(*Appearance)

func WithEmission(c color.Color) Option {
	return func(a *Appearance) {
		a.EmissionColor = c
	}
}

func WithMaterial(m material.Material) Option {
	return func(a *Appearance) {
		a.TheMaterial = m
	}
}

func newAppearance(opts []Option) (Appearance, error) {
	a := Appearance{}
	for _, opt := range opts {
		opt(&a)
	}
	if err := a.TheMaterial.Validate(); err != nil {
		return Appearance{}, newIllegalGeometryError("bad material", err)
	}
	return a, nil
}

// IllegalGeometryError is returned when a geometry's construction rules
// don't hold.  No partially-built geometry is ever returned alongside it.
type IllegalGeometryError struct {
	Message string

	inner error
	frame xerrors.Frame
}

func newIllegalGeometryError(message string, inner error) *IllegalGeometryError {
	return &IllegalGeometryError{
		Message: message,
		inner:   inner,
		frame:   xerrors.Caller(1),
	}
}

func (e *IllegalGeometryError) Error() string {
	if e.inner == nil {
		return fmt.Sprintf("illegal geometry: %s", e.Message)
	}
	return fmt.Sprintf("illegal geometry: %s: %v", e.Message, e.inner)
}

func (e *IllegalGeometryError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *IllegalGeometryError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(fmt.Sprintf("illegal geometry: %s", e.Message))
	if p.Detail() {
		e.frame.Format(p)
	}
	return e.inner
}

func (e *IllegalGeometryError) Unwrap() error {
	return e.inner
}
