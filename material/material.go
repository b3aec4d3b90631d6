// Package material describes how light arriving at a surface is split
// between diffuse scattering, specular highlight, mirror reflection and
// transmission.
package material

import "fmt"

type Material struct {
	// KD scales the diffuse (Lambertian) term.
	KD float64

	// KS scales the specular (Phong) highlight.
	KS float64

	// Shininess is the Phong exponent.  Larger values give tighter highlights.
	Shininess int

	// KR is the fraction of light continued along the mirror direction.
	KR float64

	// KT is the fraction of light continued straight through the surface.
	KT float64
}

func New(kd, ks float64, shininess int, kr, kt float64) Material {
	return Material{KD: kd, KS: ks, Shininess: shininess, KR: kr, KT: kt}
}

// Matte is a purely diffuse material.
func Matte(kd float64) Material {
	return Material{KD: kd}
}

// Mirror reflects everything and scatters nothing.
func Mirror() Material {
	return Material{KR: 1}
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s=%v is outside [0, 1]", name, v)
	}
	return nil
}

// Validate reports the first coefficient that is out of range.
func (m Material) Validate() error {
	if err := checkUnit("kD", m.KD); err != nil {
		return err
	}
	if err := checkUnit("kS", m.KS); err != nil {
		return err
	}
	if err := checkUnit("kR", m.KR); err != nil {
		return err
	}
	if err := checkUnit("kT", m.KT); err != nil {
		return err
	}
	if m.Shininess < 0 {
		return fmt.Errorf("shininess=%d is negative", m.Shininess)
	}
	return nil
}
