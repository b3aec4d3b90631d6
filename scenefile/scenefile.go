// Package scenefile loads scenes from YAML or JSON descriptions.
//
// A file looks like:
//
//	name: demo
//	colorScale: 255
//	background: [0, 0, 0]
//	ambient: {intensity: [255, 255, 255], ka: 0.1}
//	camera: {position: [0, 0, -1000], to: [0, 0, 1], up: [0, -1, 0]}
//	distance: 1000
//	view: {width: 150, height: 150, imageWidth: 500, imageHeight: 500}
//	geometries:
//	  - sphere: {center: [0, 0, 60], radius: 50}
//	    emission: [0, 0, 255]
//	    material: {kd: 0.4, ks: 0.3, shininess: 100, kr: 0.3}
//	lights:
//	  - point: {intensity: [255, 255, 255], position: [0, 100, -100], kc: 1}
//
// Colors are divided by colorScale, so files can use either 0-1 or 0-255
// values.
package scenefile

import (
	"fmt"
	"os"
	"sort"

	"whitted/camera"
	"whitted/color"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/scene"
	"whitted/vmath/vec3"

	"sigs.k8s.io/yaml"
)

// View is the part of a scene file that describes the output image rather
// than the scene.
type View struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ImageWidth  int     `json:"imageWidth"`
	ImageHeight int     `json:"imageHeight"`
}

type triple []float64

func (t triple) vec(what string) (vec3.T, error) {
	if len(t) != 3 {
		return vec3.T{}, fmt.Errorf("%s has %d components, want 3", what, len(t))
	}
	return vec3.T{t[0], t[1], t[2]}, nil
}

type file struct {
	Name        string         `json:"name"`
	ColorScale  float64        `json:"colorScale"`
	Background  triple         `json:"background"`
	Ambient     *ambientSpec   `json:"ambient"`
	Camera      *cameraSpec    `json:"camera"`
	Distance    float64        `json:"distance"`
	View        View           `json:"view"`
	Accelerator string         `json:"accelerator"`
	Geometries  []geometrySpec `json:"geometries"`
	Lights      []lightSpec    `json:"lights"`
}

type ambientSpec struct {
	Intensity triple  `json:"intensity"`
	KA        float64 `json:"ka"`
}

type cameraSpec struct {
	Position triple `json:"position"`
	To       triple `json:"to"`
	Up       triple `json:"up"`
	LookAt   triple `json:"lookAt"`
}

type materialSpec struct {
	KD        float64 `json:"kd"`
	KS        float64 `json:"ks"`
	Shininess int     `json:"shininess"`
	KR        float64 `json:"kr"`
	KT        float64 `json:"kt"`
}

type sphereSpec struct {
	Center triple  `json:"center"`
	Radius float64 `json:"radius"`
}

type planeSpec struct {
	Point  triple   `json:"point"`
	Normal triple   `json:"normal"`
	Points []triple `json:"points"`
}

type verticesSpec struct {
	Vertices []triple `json:"vertices"`
}

type geometrySpec struct {
	Sphere   *sphereSpec   `json:"sphere"`
	Plane    *planeSpec    `json:"plane"`
	Triangle *verticesSpec `json:"triangle"`
	Polygon  *verticesSpec `json:"polygon"`

	Emission triple        `json:"emission"`
	Material *materialSpec `json:"material"`
}

type attenuationSpec struct {
	KC float64 `json:"kc"`
	KL float64 `json:"kl"`
	KQ float64 `json:"kq"`
}

type directionalSpec struct {
	Intensity triple `json:"intensity"`
	Direction triple `json:"direction"`
}

type pointSpec struct {
	Intensity triple `json:"intensity"`
	Position  triple `json:"position"`
	attenuationSpec
}

type spotSpec struct {
	Intensity triple `json:"intensity"`
	Position  triple `json:"position"`
	Direction triple `json:"direction"`
	attenuationSpec
}

type lightSpec struct {
	Directional *directionalSpec `json:"directional"`
	Point       *pointSpec       `json:"point"`
	Spot        *spotSpec        `json:"spot"`
}

// builder turns a parsed file into a scene.
type builder struct {
	colorScale float64
}

func (b *builder) color(t triple, what string) (color.Color, error) {
	if t == nil {
		return color.Black, nil
	}
	v, err := t.vec(what)
	if err != nil {
		return color.Black, err
	}
	for _, x := range v {
		if x < 0 {
			return color.Black, fmt.Errorf("%s has negative component %v", what, x)
		}
	}
	return color.New(v[0], v[1], v[2]).Reduce(b.colorScale), nil
}

func (b *builder) camera(c *cameraSpec) (*camera.Camera, error) {
	position, err := c.Position.vec("camera position")
	if err != nil {
		return nil, err
	}
	up, err := c.Up.vec("camera up")
	if err != nil {
		return nil, err
	}
	if c.LookAt != nil {
		target, err := c.LookAt.vec("camera lookAt")
		if err != nil {
			return nil, err
		}
		return camera.LookAt(position, target, up)
	}
	to, err := c.To.vec("camera to")
	if err != nil {
		return nil, err
	}
	return camera.New(position, to, up)
}

func vertices(ts []triple) ([]vec3.T, error) {
	out := []vec3.T{}
	for i, t := range ts {
		v, err := t.vec(fmt.Sprintf("vertex %d", i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (b *builder) geometry(g geometrySpec) (geometry.Geometry, error) {
	opts := []geometry.Option{}
	emission, err := b.color(g.Emission, "emission")
	if err != nil {
		return nil, err
	}
	opts = append(opts, geometry.WithEmission(emission))
	if m := g.Material; m != nil {
		opts = append(opts, geometry.WithMaterial(material.New(m.KD, m.KS, m.Shininess, m.KR, m.KT)))
	}

	kinds := 0
	for _, set := range []bool{g.Sphere != nil, g.Plane != nil, g.Triangle != nil, g.Polygon != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, fmt.Errorf("want exactly one of sphere, plane, triangle, polygon; got %d", kinds)
	}

	switch {
	case g.Sphere != nil:
		center, err := g.Sphere.Center.vec("sphere center")
		if err != nil {
			return nil, err
		}
		return geometry.NewSphere(center, g.Sphere.Radius, opts...)

	case g.Plane != nil:
		if g.Plane.Points != nil {
			ps, err := vertices(g.Plane.Points)
			if err != nil {
				return nil, err
			}
			if len(ps) != 3 {
				return nil, fmt.Errorf("plane needs 3 points, got %d", len(ps))
			}
			return geometry.NewPlaneFromPoints(ps[0], ps[1], ps[2], opts...)
		}
		point, err := g.Plane.Point.vec("plane point")
		if err != nil {
			return nil, err
		}
		normal, err := g.Plane.Normal.vec("plane normal")
		if err != nil {
			return nil, err
		}
		return geometry.NewPlane(point, normal, opts...)

	case g.Triangle != nil:
		vs, err := vertices(g.Triangle.Vertices)
		if err != nil {
			return nil, err
		}
		if len(vs) != 3 {
			return nil, fmt.Errorf("triangle needs 3 vertices, got %d", len(vs))
		}
		return geometry.NewTriangle(vs[0], vs[1], vs[2], opts...)

	default:
		vs, err := vertices(g.Polygon.Vertices)
		if err != nil {
			return nil, err
		}
		return geometry.NewPolygon(vs, opts...)
	}
}

func (b *builder) light(l lightSpec) (light.Light, error) {
	switch {
	case l.Directional != nil:
		intensity, err := b.color(l.Directional.Intensity, "light intensity")
		if err != nil {
			return nil, err
		}
		direction, err := l.Directional.Direction.vec("light direction")
		if err != nil {
			return nil, err
		}
		return light.NewDirectional(intensity, direction)

	case l.Point != nil:
		intensity, err := b.color(l.Point.Intensity, "light intensity")
		if err != nil {
			return nil, err
		}
		position, err := l.Point.Position.vec("light position")
		if err != nil {
			return nil, err
		}
		return light.NewPoint(intensity, position, l.Point.KC, l.Point.KL, l.Point.KQ)

	case l.Spot != nil:
		intensity, err := b.color(l.Spot.Intensity, "light intensity")
		if err != nil {
			return nil, err
		}
		position, err := l.Spot.Position.vec("light position")
		if err != nil {
			return nil, err
		}
		direction, err := l.Spot.Direction.vec("light direction")
		if err != nil {
			return nil, err
		}
		return light.NewSpot(intensity, position, direction, l.Spot.KC, l.Spot.KL, l.Spot.KQ)
	}
	return nil, fmt.Errorf("want one of directional, point, spot")
}

func (b *builder) build(f *file) (*scene.Scene, error) {
	opts := []scene.Option{}

	background, err := b.color(f.Background, "background")
	if err != nil {
		return nil, err
	}
	opts = append(opts, scene.WithBackground(background))

	if f.Ambient != nil {
		intensity, err := b.color(f.Ambient.Intensity, "ambient intensity")
		if err != nil {
			return nil, err
		}
		opts = append(opts, scene.WithAmbient(light.NewAmbient(intensity, f.Ambient.KA)))
	}

	if f.Camera != nil {
		c, err := b.camera(f.Camera)
		if err != nil {
			return nil, fmt.Errorf("while building camera: %w", err)
		}
		opts = append(opts, scene.WithCamera(c, f.Distance))
	}

	if f.Accelerator != "" {
		a, err := scene.ParseAccelerator(f.Accelerator)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scene.WithAccelerator(a))
	}

	s := scene.New(f.Name, opts...)

	for i, gs := range f.Geometries {
		g, err := b.geometry(gs)
		if err != nil {
			return nil, fmt.Errorf("while building geometry %d: %w", i, err)
		}
		s.AddGeometries(g)
	}

	for i, ls := range f.Lights {
		l, err := b.light(ls)
		if err != nil {
			return nil, fmt.Errorf("while building light %d: %w", i, err)
		}
		s.AddLights(l)
	}

	s.Crush()
	return s, nil
}

// Parse builds a crushed scene from a YAML or JSON description.  Unknown
// fields are errors.
func Parse(data []byte) (*scene.Scene, View, error) {
	f := &file{}
	if err := yaml.UnmarshalStrict(data, f); err != nil {
		return nil, View{}, fmt.Errorf("while unmarshaling scene file: %w", err)
	}

	b := &builder{colorScale: f.ColorScale}
	if b.colorScale == 0 {
		b.colorScale = 1
	}
	if b.colorScale < 0 {
		return nil, View{}, fmt.Errorf("colorScale %v is negative", f.ColorScale)
	}

	s, err := b.build(f)
	if err != nil {
		return nil, View{}, fmt.Errorf("while building scene %q: %w", f.Name, err)
	}
	return s, f.View, nil
}

func Load(path string) (*scene.Scene, View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, View{}, fmt.Errorf("while reading scene file: %w", err)
	}
	return Parse(data)
}

// Builtin parses one of the scenes compiled into the binary.
func Builtin(name string) (*scene.Scene, View, error) {
	data, ok := builtins[name]
	if !ok {
		return nil, View{}, fmt.Errorf("no built-in scene %q", name)
	}
	return Parse([]byte(data))
}

func BuiltinNames() []string {
	names := []string{}
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
