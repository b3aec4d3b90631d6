package geometry

import (
	"math"
	"testing"

	"whitted/color"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/xerrors"
)

var approxVec = cmpopts.EquateApprox(0, 1e-9)

func mustRay(t *testing.T, p, d vec3.T) ray.Ray {
	t.Helper()
	r, err := ray.New(p, d)
	if err != nil {
		t.Fatalf("Unexpected error building ray: %v", err)
	}
	return r
}

func wantIllegal(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("Construction succeeded, want IllegalGeometryError")
	}
	var ige *IllegalGeometryError
	if !xerrors.As(err, &ige) {
		t.Fatalf("Got error %v, want IllegalGeometryError", err)
	}
}

func square(z float64) []vec3.T {
	return []vec3.T{
		{-1, -1, z},
		{1, -1, z},
		{1, 1, z},
		{-1, 1, z},
	}
}

// tiltedPentagon returns a regular pentagon centered on c, lying in a plane
// that isn't aligned with any axis.
func tiltedPentagon(c vec3.T) []vec3.T {
	u := vec3.T{1, 0, 0}
	w := vec3.Normalize(vec3.T{0, 1, 1})
	vs := []vec3.T{}
	for i := 0; i < 5; i++ {
		theta := 2 * math.Pi * float64(i) / 5
		p := vec3.AddVV(c, vec3.AddVV(vec3.MulVS(u, 2*math.Cos(theta)), vec3.MulVS(w, 2*math.Sin(theta))))
		vs = append(vs, p)
	}
	return vs
}

func TestPolygonConstructionSucceeds(t *testing.T) {
	testCases := []struct {
		name     string
		vertices []vec3.T
	}{
		{"square", square(0)},
		{"reversed square", []vec3.T{{-1, 1, 0}, {1, 1, 0}, {1, -1, 0}, {-1, -1, 0}}},
		{"pentagon", tiltedPentagon(vec3.T{3, -2, 7})},
		{"triangle", []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 1}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPolygon(tc.vertices)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			n := p.Normal(tc.vertices[0])
			if math.Abs(n.Norm()-1) > 1e-9 {
				t.Errorf("|normal| = %v, want 1", n.Norm())
			}
			for i := range tc.vertices {
				edge := vec3.SubVV(tc.vertices[(i+1)%len(tc.vertices)], tc.vertices[i])
				if d := vec3.IProd(n, edge); math.Abs(d) > 1e-9 {
					t.Errorf("normal·edge%d = %v, want 0", i, d)
				}
			}

			for _, v := range tc.vertices {
				if !p.Bounds().Contains(v) {
					t.Errorf("Bounds %v don't contain vertex %v", p.Bounds(), v)
				}
			}
		})
	}
}

func TestPolygonConstructionFails(t *testing.T) {
	testCases := []struct {
		name     string
		vertices []vec3.T
	}{
		{"too few", []vec3.T{{0, 0, 0}, {1, 0, 0}}},
		{"first three collinear", []vec3.T{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {2, 2, 0}}},
		{"later three collinear", []vec3.T{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {1, 2, 0}, {0, 2, 0}}},
		{"consecutive duplicate", []vec3.T{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {2, 2, 0}, {0, 2, 0}}},
		{"first two coincide", []vec3.T{{0, 0, 0}, {0, 0, 0}, {2, 2, 0}, {0, 2, 0}}},
		{"not coplanar", []vec3.T{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0.5}}},
		{"concave", []vec3.T{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {1, 1, 0}, {0, 2, 0}}},
		{"bowtie", []vec3.T{{-1, -1, 0}, {1, 1, 0}, {1, -1, 0}, {-1, 1, 0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPolygon(tc.vertices)
			wantIllegal(t, err)
			if p != nil {
				t.Errorf("Got a polygon alongside the error")
			}
		})
	}
}

func TestTriangleConstructionFails(t *testing.T) {
	_, err := NewTriangle(vec3.T{0, 0, 0}, vec3.T{1, 1, 1}, vec3.T{2, 2, 2})
	wantIllegal(t, err)

	_, err = NewTriangle(vec3.T{0, 0, 0}, vec3.T{0, 0, 0}, vec3.T{2, 2, 2})
	wantIllegal(t, err)
}

func TestBadMaterialIsIllegal(t *testing.T) {
	_, err := NewSphere(vec3.T{}, 1, WithMaterial(material.New(2, 0, 0, 0, 0)))
	wantIllegal(t, err)
}

func TestSphereConstructionFails(t *testing.T) {
	for _, r := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := NewSphere(vec3.T{}, r)
		wantIllegal(t, err)
	}
}

func TestSphereIntersections(t *testing.T) {
	s, err := NewSphere(vec3.T{0, 0, 5}, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name   string
		origin vec3.T
		dir    vec3.T
		want   []vec3.T
	}{
		{"through center", vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, []vec3.T{{0, 0, 4}, {0, 0, 6}}},
		{"tangent", vec3.T{1, 0, 0}, vec3.T{0, 0, 1}, nil},
		{"miss", vec3.T{3, 0, 0}, vec3.T{0, 0, 1}, nil},
		{"from inside", vec3.T{0, 0, 4.5}, vec3.T{0, 0, 1}, []vec3.T{{0, 0, 6}}},
		{"from center", vec3.T{0, 0, 5}, vec3.T{0, 1, 0}, []vec3.T{{0, 1, 5}}},
		{"behind", vec3.T{0, 0, 10}, vec3.T{0, 0, 1}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hits := s.FindIntersections(mustRay(t, tc.origin, tc.dir))
			got := []vec3.T{}
			for _, h := range hits {
				if h.T <= 0 {
					t.Errorf("Got hit with t=%v, want t > 0", h.T)
				}
				if h.Geometry != Geometry(s) {
					t.Errorf("Hit doesn't reference the sphere")
				}
				got = append(got, h.Point)
			}
			if diff := cmp.Diff(got, tc.want, approxVec, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestSphereThroughCenterIsSymmetric(t *testing.T) {
	center := vec3.T{2, -3, 1}
	s, err := NewSphere(center, 2.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	origins := []vec3.T{{20, 4, -7}, {-10, -10, -10}, {2, -3, 50}}
	for _, o := range origins {
		hits := s.FindIntersections(mustRay(t, o, vec3.SubVV(center, o)))
		if len(hits) != 2 {
			t.Fatalf("From %v got %d hits, want 2", o, len(hits))
		}
		mid := vec3.MulVS(vec3.AddVV(hits[0].Point, hits[1].Point), 0.5)
		if diff := cmp.Diff(mid, center, approxVec); diff != "" {
			t.Errorf("Hits aren't symmetric about the center; diff (-got +want)\n%s", diff)
		}
		for _, h := range hits {
			if h.T <= 0 {
				t.Errorf("Got t=%v, want t > 0", h.T)
			}
			if d := vec3.Distance(h.Point, center); math.Abs(d-2.5) > 1e-9 {
				t.Errorf("Hit is %v from the center, want 2.5", d)
			}
		}
	}
}

func TestSphereNormal(t *testing.T) {
	s, err := NewSphere(vec3.T{1, 1, 1}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(s.Normal(vec3.T{1, 3, 1}), vec3.T{0, 1, 0}, approxVec); diff != "" {
		t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
	}
}

func TestPlaneIntersections(t *testing.T) {
	p, err := NewPlane(vec3.T{0, 0, 3}, vec3.T{0, 0, 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name   string
		origin vec3.T
		dir    vec3.T
		want   []vec3.T
	}{
		{"head on", vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, []vec3.T{{0, 0, 3}}},
		{"oblique", vec3.T{1, 1, 0}, vec3.T{1, 0, 1}, []vec3.T{{4, 1, 3}}},
		{"parallel", vec3.T{0, 0, 0}, vec3.T{1, 1, 0}, nil},
		{"parallel in plane", vec3.T{0, 0, 3}, vec3.T{1, 0, 0}, nil},
		{"behind", vec3.T{0, 0, 5}, vec3.T{0, 0, 1}, nil},
		{"starts on plane", vec3.T{7, 7, 3}, vec3.T{0, 0, -1}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := []vec3.T{}
			for _, h := range p.FindIntersections(mustRay(t, tc.origin, tc.dir)) {
				got = append(got, h.Point)
			}
			if diff := cmp.Diff(got, tc.want, approxVec, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestPlaneFromPoints(t *testing.T) {
	p, err := NewPlaneFromPoints(vec3.T{0, 0, 1}, vec3.T{1, 0, 1}, vec3.T{0, 1, 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(p.Normal(vec3.T{}), vec3.T{0, 0, 1}, approxVec); diff != "" {
		t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
	}
	if p.Bounds().IsFinite() {
		t.Errorf("Plane bounds are finite")
	}
	if !p.Bounds().Z.Contains(1) || p.Bounds().Z.Contains(1.1) {
		t.Errorf("Bounds %v should be flat around z = 1", p.Bounds())
	}

	_, err = NewPlaneFromPoints(vec3.T{0, 0, 0}, vec3.T{1, 1, 1}, vec3.T{3, 3, 3})
	wantIllegal(t, err)

	_, err = NewPlane(vec3.T{0, 0, 0}, vec3.T{})
	wantIllegal(t, err)
}

func TestPolygonIntersections(t *testing.T) {
	p, err := NewPolygon(square(0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name   string
		origin vec3.T
		dir    vec3.T
		want   []vec3.T
	}{
		{"inside", vec3.T{0, 0, 5}, vec3.T{0, 0, -1}, []vec3.T{{0, 0, 0}}},
		{"inside from below", vec3.T{0.5, -0.5, -2}, vec3.T{0, 0, 1}, []vec3.T{{0.5, -0.5, 0}}},
		{"outside", vec3.T{2, 0, 5}, vec3.T{0, 0, -1}, nil},
		{"on edge", vec3.T{1, 0, 5}, vec3.T{0, 0, -1}, nil},
		{"on vertex", vec3.T{1, 1, 5}, vec3.T{0, 0, -1}, nil},
		{"parallel", vec3.T{0, 0, 5}, vec3.T{1, 0, 0}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := []vec3.T{}
			for _, h := range p.FindIntersections(mustRay(t, tc.origin, tc.dir)) {
				got = append(got, h.Point)
			}
			if diff := cmp.Diff(got, tc.want, approxVec, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestTiltedPentagonIntersection(t *testing.T) {
	c := vec3.T{3, -2, 7}
	p, err := NewPolygon(tiltedPentagon(c))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	n := p.Normal(c)

	hits := p.FindIntersections(mustRay(t, vec3.AddVV(c, vec3.MulVS(n, 5)), vec3.Negate(n)))
	if len(hits) != 1 {
		t.Fatalf("Got %d hits, want 1", len(hits))
	}
	if diff := cmp.Diff(hits[0].Point, c, approxVec); diff != "" {
		t.Errorf("Bad hit point; diff (-got +want)\n%s", diff)
	}
	if math.Abs(hits[0].T-5) > 1e-9 {
		t.Errorf("Got t=%v, want 5", hits[0].T)
	}
}

func TestTriangleReportsItself(t *testing.T) {
	tri, err := NewTriangle(
		vec3.T{-1, -1, 0}, vec3.T{1, -1, 0}, vec3.T{0, 1, 0},
		WithEmission(color.New(1, 0, 0)),
		WithMaterial(material.Matte(0.5)),
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	hits := tri.FindIntersections(mustRay(t, vec3.T{0, 0, -1}, vec3.T{0, 0, 1}))
	if len(hits) != 1 {
		t.Fatalf("Got %d hits, want 1", len(hits))
	}
	if hits[0].Geometry != Geometry(tri) {
		t.Errorf("Hit references %T, want the triangle", hits[0].Geometry)
	}
	if diff := cmp.Diff(hits[0].Geometry.Emission(), color.New(1, 0, 0)); diff != "" {
		t.Errorf("Bad emission; diff (-got +want)\n%s", diff)
	}
	if got := hits[0].Geometry.Material().KD; got != 0.5 {
		t.Errorf("Material().KD = %v, want 0.5", got)
	}

	if hits := tri.FindIntersections(mustRay(t, vec3.T{0.9, 0.9, -1}, vec3.T{0, 0, 1})); len(hits) != 0 {
		t.Errorf("Got hits outside the triangle: %+v", hits)
	}
}
