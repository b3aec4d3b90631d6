// Package light holds the light sources a scene is lit by.
//
// All lights are immutable values.  Evaluating a light never fails: a point
// that coincides with a light's position simply gets no direction.
package light

import (
	"fmt"
	"math"

	"whitted/color"
	"whitted/vmath/vec3"
)

// Light is a source that illuminates points from a direction and can be
// blocked by geometry.
type Light interface {
	// IntensityAt is the light arriving at p, before any occlusion.
	IntensityAt(p vec3.T) color.Color

	// DirectionTo is the unit vector pointing from the light toward p.  ok is
	// false when the direction is undefined (p is at the light).
	DirectionTo(p vec3.T) (l vec3.T, ok bool)

	// DistanceTo is how far a shadow ray from p has to travel to reach the
	// light.  It is +Inf for lights at infinity.
	DistanceTo(p vec3.T) float64
}

// Ambient is uniform light arriving from everywhere.  It is never occluded.
type Ambient struct {
	Intensity color.Color
	KA        float64
}

func NewAmbient(intensity color.Color, ka float64) Ambient {
	return Ambient{Intensity: intensity, KA: ka}
}

func (a Ambient) IntensityAt(vec3.T) color.Color {
	return a.Intensity.Scale(a.KA)
}

// Directional light arrives along a fixed direction with no falloff, like
// sunlight.
type Directional struct {
	Intensity color.Color
	Direction vec3.T
}

func NewDirectional(intensity color.Color, direction vec3.T) (*Directional, error) {
	d, err := vec3.Unit(direction)
	if err != nil {
		return nil, fmt.Errorf("while normalizing directional light direction: %w", err)
	}
	return &Directional{Intensity: intensity, Direction: d}, nil
}

func (d *Directional) IntensityAt(vec3.T) color.Color {
	return d.Intensity
}

func (d *Directional) DirectionTo(vec3.T) (vec3.T, bool) {
	return d.Direction, true
}

func (d *Directional) DistanceTo(vec3.T) float64 {
	return math.Inf(1)
}

// Point light radiates equally in all directions from Position.  Intensity
// falls off as 1/(KC + KL*d + KQ*d²).
type Point struct {
	Intensity  color.Color
	Position   vec3.T
	KC, KL, KQ float64
}

func checkAttenuation(kc, kl, kq float64) error {
	if kc < 0 || kl < 0 || kq < 0 {
		return fmt.Errorf("attenuation coefficients (%v, %v, %v) must not be negative", kc, kl, kq)
	}
	if kc == 0 && kl == 0 && kq == 0 {
		return fmt.Errorf("attenuation coefficients are all zero")
	}
	return nil
}

func NewPoint(intensity color.Color, position vec3.T, kc, kl, kq float64) (*Point, error) {
	if err := checkAttenuation(kc, kl, kq); err != nil {
		return nil, err
	}
	return &Point{Intensity: intensity, Position: position, KC: kc, KL: kl, KQ: kq}, nil
}

func (pl *Point) attenuation(p vec3.T) float64 {
	d := vec3.Distance(p, pl.Position)
	return pl.KC + pl.KL*d + pl.KQ*d*d
}

func (pl *Point) IntensityAt(p vec3.T) color.Color {
	return pl.Intensity.Reduce(pl.attenuation(p))
}

func (pl *Point) DirectionTo(p vec3.T) (vec3.T, bool) {
	d, err := vec3.Sub(p, pl.Position)
	if err != nil {
		return vec3.T{}, false
	}
	return vec3.Normalize(d), true
}

func (pl *Point) DistanceTo(p vec3.T) float64 {
	return vec3.Distance(p, pl.Position)
}

// Spot is a point light that only shines into the half-space Direction
// points at, brightest along Direction itself.
type Spot struct {
	Point
	Direction vec3.T
}

func NewSpot(intensity color.Color, position, direction vec3.T, kc, kl, kq float64) (*Spot, error) {
	pl, err := NewPoint(intensity, position, kc, kl, kq)
	if err != nil {
		return nil, err
	}
	d, err := vec3.Unit(direction)
	if err != nil {
		return nil, fmt.Errorf("while normalizing spot light direction: %w", err)
	}
	return &Spot{Point: *pl, Direction: d}, nil
}

func (s *Spot) IntensityAt(p vec3.T) color.Color {
	l, ok := s.DirectionTo(p)
	if !ok {
		return color.Black
	}
	facing := math.Max(0, vec3.IProd(s.Direction, l))
	return s.Intensity.Scale(facing).Reduce(s.attenuation(p))
}
