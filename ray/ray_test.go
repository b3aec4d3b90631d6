package ray

import (
	"errors"
	"math"
	"testing"

	"whitted/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewNormalizes(t *testing.T) {
	r, err := New(vec3.T{1, 1, 1}, vec3.T{0, 3, 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(r.Slope, vec3.T{0, 0.6, 0.8}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad slope; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(r.Eval(5), vec3.T{1, 4, 5}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad Eval; diff (-got +want)\n%s", diff)
	}
}

func TestNewZeroDirection(t *testing.T) {
	if _, err := New(vec3.T{1, 1, 1}, vec3.T{}); !errors.Is(err, vec3.ErrDegenerate) {
		t.Errorf("New with zero direction error = %v, want ErrDegenerate", err)
	}
}

func TestNewOffset(t *testing.T) {
	n := vec3.T{0, 0, 1}

	testCases := []struct {
		name  string
		slope vec3.T
		want  vec3.T
	}{
		{"along normal", vec3.T{0, 0, 1}, vec3.T{0, 0, 0.5}},
		{"against normal", vec3.T{0, 0, -1}, vec3.T{0, 0, -0.5}},
		{"tangent", vec3.T{1, 0, 0}, vec3.T{0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewOffset(vec3.T{}, tc.slope, n, 0.5)
			if diff := cmp.Diff(r.Point, tc.want); diff != "" {
				t.Errorf("Bad origin; diff (-got +want)\n%s", diff)
			}
			if diff := cmp.Diff(r.Slope, tc.slope); diff != "" {
				t.Errorf("Slope changed; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestSpans(t *testing.T) {
	a := Span{0, 1}
	b := Span{1, 2}
	c := Span{1.5, 3}

	if !SpanOverlaps(a, b) {
		t.Errorf("SpanOverlaps(%v, %v) = false, want true", a, b)
	}
	if SpanOverlaps(a, c) {
		t.Errorf("SpanOverlaps(%v, %v) = true, want false", a, c)
	}
	if diff := cmp.Diff(MinContainingSpan(a, c), Span{0, 3}); diff != "" {
		t.Errorf("Bad MinContainingSpan; diff (-got +want)\n%s", diff)
	}
	if !NaNSpan().IsNaN() {
		t.Errorf("NaNSpan().IsNaN() = false")
	}
	if ForwardSpan().IsFinite() {
		t.Errorf("ForwardSpan().IsFinite() = true")
	}
	if math.IsNaN(ForwardSpan().Lo) {
		t.Errorf("ForwardSpan().Lo is NaN")
	}
}
