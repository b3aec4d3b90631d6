package camera

import (
	"errors"
	"fmt"

	"whitted/ray"
	"whitted/vmath/approx"
	"whitted/vmath/vec3"
)

// ErrNotOrthogonal is returned when a camera's forward and up vectors aren't
// perpendicular.
var ErrNotOrthogonal = errors.New("camera forward and up vectors are not orthogonal")

// Camera is a pinhole at Position looking along To, with Up pointing toward
// the top of the image and Right toward its right edge.  To, Up and Right are
// orthonormal.
type Camera struct {
	Position vec3.T
	To       vec3.T
	Up       vec3.T
	Right    vec3.T
}

// New builds a camera from a position and two perpendicular directions.
// Neither direction needs to be normalized.
func New(position, to, up vec3.T) (*Camera, error) {
	vTo, err := vec3.Unit(to)
	if err != nil {
		return nil, fmt.Errorf("while normalizing camera forward vector: %w", err)
	}
	vUp, err := vec3.Unit(up)
	if err != nil {
		return nil, fmt.Errorf("while normalizing camera up vector: %w", err)
	}
	if !approx.IsZero(vec3.IProd(vTo, vUp)) {
		return nil, ErrNotOrthogonal
	}

	return &Camera{
		Position: position,
		To:       vTo,
		Up:       vUp,
		Right:    vec3.Normalize(vec3.CProd(vTo, vUp)),
	}, nil
}

// LookAt aims a camera at target.  upHint only needs to be roughly upward;
// its component along the view direction is removed.
func LookAt(position, target, upHint vec3.T) (*Camera, error) {
	to, err := vec3.Sub(target, position)
	if err != nil {
		return nil, fmt.Errorf("while aiming camera: %w", err)
	}
	up := vec3.Reject(to, upHint)
	return New(position, to, up)
}

// RayThroughPixel returns the ray from the camera through the center of pixel
// (row, col) of an nx by ny image.  The view plane is width by height and lies
// distance in front of the camera.
func (c *Camera) RayThroughPixel(row, col, nx, ny int, width, height, distance float64) ray.Ray {
	return c.RayThroughSubpixel(row, col, nx, ny, width, height, distance, 0.5, 0.5)
}

// RayThroughSubpixel is RayThroughPixel aimed at an arbitrary point inside the
// pixel.  fx and fy run from 0 at the pixel's left/top edge to 1 at its
// right/bottom edge.
func (c *Camera) RayThroughSubpixel(row, col, nx, ny int, width, height, distance, fx, fy float64) ray.Ray {
	pc := vec3.AddVV(c.Position, vec3.MulVS(c.To, distance))

	rx := width / float64(nx)
	ry := height / float64(ny)

	xj := (float64(col) + fx - float64(nx)/2) * rx
	yi := (float64(row) + fy - float64(ny)/2) * ry

	pij := pc
	if !approx.IsZero(xj) {
		pij = vec3.AddVV(pij, vec3.MulVS(c.Right, xj))
	}
	if !approx.IsZero(yi) {
		pij = vec3.AddVV(pij, vec3.MulVS(c.Up, -yi))
	}

	// distance > 0 keeps pij off the camera position, so the slope is never
	// zero.
	return ray.Ray{
		Point: c.Position,
		Slope: vec3.Normalize(vec3.SubVV(pij, c.Position)),
	}
}
