package vec3

import (
	"errors"
	"math"

	"whitted/vmath/approx"
)

// ErrDegenerate is returned by the checked operations when their result
// would be the zero vector.
var ErrDegenerate = errors.New("degenerate geometry: zero vector")

// T is used both for points and for vectors.
type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v.NormSquared())
}

func (v T) NormSquared() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// IsZero reports whether every component of v is within tolerance of zero.
func (v T) IsZero() bool {
	return approx.IsZero(v[0]) && approx.IsZero(v[1]) && approx.IsZero(v[2])
}

// Normalize scales v to unit length.  v must not be the zero vector; use Unit
// when that isn't already known.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

// Unit is the checked form of Normalize.
func Unit(v T) (T, error) {
	if v.IsZero() {
		return T{}, ErrDegenerate
	}
	return Normalize(v), nil
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// Sub returns the vector from b to a.  It fails when the two points coincide.
func Sub(a, b T) (T, error) {
	d := SubVV(a, b)
	if d.IsZero() {
		return T{}, ErrDegenerate
	}
	return d, nil
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func Negate(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Cross is the checked form of CProd.  It fails when a and b are parallel or
// either is zero.
func Cross(a, b T) (T, error) {
	c := CProd(a, b)
	if c.IsZero() {
		return T{}, ErrDegenerate
	}
	return c, nil
}

func Distance(a, b T) float64 {
	return SubVV(a, b).Norm()
}

func DistanceSquared(a, b T) float64 {
	return SubVV(a, b).NormSquared()
}

// Reject returns the component of b that is orthogonal to A.
func Reject(a, b T) T {
	return SubVV(b, MulVS(Normalize(a), IProd(a, b)/a.Norm()))
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

func Min(a, b T) T {
	return T{
		math.Min(a[0], b[0]),
		math.Min(a[1], b[1]),
		math.Min(a[2], b[2]),
	}
}

func Max(a, b T) T {
	return T{
		math.Max(a[0], b[0]),
		math.Max(a[1], b[1]),
		math.Max(a[2], b[2]),
	}
}
