package light

import (
	"errors"
	"math"
	"testing"

	"whitted/color"
	"whitted/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestAmbient(t *testing.T) {
	a := NewAmbient(color.New(0.5, 1, 2), 0.5)
	if diff := cmp.Diff(a.IntensityAt(vec3.T{1, 2, 3}), color.New(0.25, 0.5, 1), approx); diff != "" {
		t.Errorf("Bad intensity; diff (-got +want)\n%s", diff)
	}

	if got := NewAmbient(color.New(1, 1, 1), 0).IntensityAt(vec3.T{}); !got.IsBlack() {
		t.Errorf("KA=0 gave %v, want black", got)
	}
}

func TestDirectional(t *testing.T) {
	d, err := NewDirectional(color.New(1, 1, 1), vec3.T{0, 0, -3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	l, ok := d.DirectionTo(vec3.T{100, 100, 100})
	if !ok {
		t.Fatalf("DirectionTo reported no direction")
	}
	if diff := cmp.Diff(l, vec3.T{0, 0, -1}, approx); diff != "" {
		t.Errorf("Bad direction; diff (-got +want)\n%s", diff)
	}
	if !math.IsInf(d.DistanceTo(vec3.T{}), 1) {
		t.Errorf("DistanceTo = %v, want +Inf", d.DistanceTo(vec3.T{}))
	}

	if _, err := NewDirectional(color.New(1, 1, 1), vec3.T{}); !errors.Is(err, vec3.ErrDegenerate) {
		t.Errorf("Zero direction gave error %v, want ErrDegenerate", err)
	}
}

func TestPointAttenuation(t *testing.T) {
	pl, err := NewPoint(color.New(10, 20, 30), vec3.T{0, 0, 0}, 1, 0.5, 0.25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name string
		p    vec3.T
		want color.Color
	}{
		// 1 + 0.5*0 + 0.25*0
		{"at light", vec3.T{0, 0, 0}, color.New(10, 20, 30)},
		// 1 + 0.5*2 + 0.25*4 = 3
		{"distance 2", vec3.T{0, 2, 0}, color.New(10.0/3, 20.0/3, 10)},
		// 1 + 0.5*4 + 0.25*16 = 7
		{"distance 4", vec3.T{0, 0, -4}, color.New(10.0/7, 20.0/7, 30.0/7)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(pl.IntensityAt(tc.p), tc.want, approx); diff != "" {
				t.Errorf("Bad intensity; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestPointDirection(t *testing.T) {
	pl, err := NewPoint(color.New(1, 1, 1), vec3.T{1, 1, 1}, 1, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	l, ok := pl.DirectionTo(vec3.T{1, 1, 4})
	if !ok {
		t.Fatalf("DirectionTo reported no direction")
	}
	if diff := cmp.Diff(l, vec3.T{0, 0, 1}, approx); diff != "" {
		t.Errorf("Bad direction; diff (-got +want)\n%s", diff)
	}
	if got := pl.DistanceTo(vec3.T{1, 1, 4}); math.Abs(got-3) > 1e-12 {
		t.Errorf("DistanceTo = %v, want 3", got)
	}

	if _, ok := pl.DirectionTo(vec3.T{1, 1, 1}); ok {
		t.Errorf("DirectionTo the light's own position reported a direction")
	}
}

func TestPointRejectsBadAttenuation(t *testing.T) {
	for _, k := range [][3]float64{{0, 0, 0}, {-1, 0, 0}, {1, -0.1, 0}, {1, 0, -2}} {
		if _, err := NewPoint(color.New(1, 1, 1), vec3.T{}, k[0], k[1], k[2]); err == nil {
			t.Errorf("NewPoint accepted attenuation %v", k)
		}
	}
}

func TestSpot(t *testing.T) {
	s, err := NewSpot(color.New(4, 4, 4), vec3.T{0, 0, 0}, vec3.T{0, 0, 2}, 1, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name string
		p    vec3.T
		want color.Color
	}{
		{"on axis", vec3.T{0, 0, 5}, color.New(4, 4, 4)},
		{"45 degrees", vec3.T{0, 3, 3}, color.New(4, 4, 4).Scale(math.Sqrt(0.5))},
		{"sideways", vec3.T{3, 0, 0}, color.Black},
		{"behind", vec3.T{0, 0, -1}, color.Black},
		{"at light", vec3.T{0, 0, 0}, color.Black},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(s.IntensityAt(tc.p), tc.want, approx); diff != "" {
				t.Errorf("Bad intensity; diff (-got +want)\n%s", diff)
			}
		})
	}

	if _, err := NewSpot(color.New(1, 1, 1), vec3.T{}, vec3.T{}, 1, 0, 0); !errors.Is(err, vec3.ErrDegenerate) {
		t.Errorf("Zero direction gave error %v, want ErrDegenerate", err)
	}
}

func TestLightsImplementInterface(t *testing.T) {
	var _ Light = &Directional{}
	var _ Light = &Point{}
	var _ Light = &Spot{}
}
