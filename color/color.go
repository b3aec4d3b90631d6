// Package color holds linear RGB radiance values.
//
// Components are non-negative and unbounded while shading; they are only
// clamped when converted for output.
package color

import (
	"image/color"
	"math"
)

type Color struct {
	R, G, B float64
}

var Black = Color{}

func New(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// RGB255 builds a color from components on the 0-255 scale, so that 255 maps
// to 1.0.  Values above 255 are allowed and describe bright lights.
func RGB255(r, g, b float64) Color {
	return Color{R: r / 255, G: g / 255, B: b / 255}
}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Mul is the component-wise product, used to filter one color through another.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Reduce divides every component by k.
func (c Color) Reduce(k float64) Color {
	return Color{c.R / k, c.G / k, c.B / k}
}

func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func (c Color) MaxComponent() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Sum adds up a list of colors.
func Sum(cs ...Color) Color {
	acc := Black
	for _, c := range cs {
		acc = acc.Add(c)
	}
	return acc
}

// Average returns the mean of a non-empty list of colors.
func Average(cs []Color) Color {
	if len(cs) == 0 {
		return Black
	}
	return Sum(cs...).Reduce(float64(len(cs)))
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// NRGBA converts to an 8-bit opaque color, clamping first.
func (c Color) NRGBA() color.NRGBA {
	cl := c.Clamp()
	return color.NRGBA{
		R: uint8(math.Round(cl.R * 255)),
		G: uint8(math.Round(cl.G * 255)),
		B: uint8(math.Round(cl.B * 255)),
		A: 0xff,
	}
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}
