package trajectory

import (
	"math"
	"testing"
)

func TestBezierEvalLinear(t *testing.T) {
	b := Bezier{Start: Pt(10, 20), End: Pt(30, 60)}
	if b.Degree() != 1 {
		t.Fatalf("got degree %d, want 1", b.Degree())
	}
	assertNear(t, b.Eval(0), Pt(10, 20), 1e-12)
	assertNear(t, b.Eval(1), Pt(30, 60), 1e-12)
	assertNear(t, b.Eval(0.25), Pt(15, 30), 1e-12)
}

func TestBezierEvalEndpoints(t *testing.T) {
	curves := []Bezier{
		{Start: Pt(0, 0), End: Pt(100, 0)},
		{Start: Pt(0, 0), Control: []Point{Pt(50, 80)}, End: Pt(100, 0)},
		{Start: Pt(0, 0), Control: []Point{Pt(20, 80), Pt(80, 80)}, End: Pt(100, 0)},
		{Start: Pt(0, 0), Control: []Point{Pt(10, 50), Pt(50, 90), Pt(90, 50)}, End: Pt(100, 0)},
	}
	for _, b := range curves {
		assertNear(t, b.Eval(0), b.Start, 1e-12)
		assertNear(t, b.Eval(1), b.End, 1e-12)
	}
}

// The closed-form cubic evaluation must agree with the generic de Casteljau
// evaluator over the whole parameter range.
func TestBezierCubicMatchesDeCasteljau(t *testing.T) {
	b := Bezier{
		Start:   Pt(3.1, 4.1),
		Control: []Point{Pt(5.9, 2.6), Pt(5.3, 5.8)},
		End:     Pt(9.7, 9.3),
	}
	for i := range 101 {
		u := float64(i) / 100
		assertNear(t, b.Eval(u), deCasteljau(b.points(), u), 1e-12)
	}
}

func TestBezierDerivativeFiniteDifference(t *testing.T) {
	curves := []Bezier{
		{Start: Pt(0, 0), Control: []Point{Pt(50, 80)}, End: Pt(100, 0)},
		{Start: Pt(3.1, 4.1), Control: []Point{Pt(5.9, 2.6), Pt(5.3, 5.8)}, End: Pt(9.7, 9.3)},
		{Start: Pt(0, 0), Control: []Point{Pt(10, 50), Pt(50, 90), Pt(90, 50)}, End: Pt(100, 0)},
	}
	const h = 1e-6
	for _, b := range curves {
		for i := 1; i < 10; i++ {
			u := float64(i) / 10
			got := b.Derivative(u)
			want := b.Eval(u + h).Sub(b.Eval(u - h)).Mul(1 / (2 * h))
			if got.Sub(want).Hypot() > 1e-3 {
				t.Errorf("degree %d at t=%g: derivative %s, finite difference %s", b.Degree(), u, got, want)
			}
		}
	}
}

func TestBezierSecondDerivativeFiniteDifference(t *testing.T) {
	curves := []Bezier{
		{Start: Pt(0, 0), Control: []Point{Pt(50, 80)}, End: Pt(100, 0)},
		{Start: Pt(3.1, 4.1), Control: []Point{Pt(5.9, 2.6), Pt(5.3, 5.8)}, End: Pt(9.7, 9.3)},
		{Start: Pt(0, 0), Control: []Point{Pt(10, 50), Pt(50, 90), Pt(90, 50)}, End: Pt(100, 0)},
	}
	const h = 1e-4
	for _, b := range curves {
		for i := 1; i < 10; i++ {
			u := float64(i) / 10
			got := b.SecondDerivative(u)
			want := Vec2(b.Eval(u + h)).Add(Vec2(b.Eval(u - h))).Sub(Vec2(b.Eval(u)).Mul(2)).Mul(1 / (h * h))
			if got.Sub(want).Hypot() > 1e-2 {
				t.Errorf("degree %d at t=%g: second derivative %s, finite difference %s", b.Degree(), u, got, want)
			}
		}
	}
}

func TestHodograph(t *testing.T) {
	// The hodograph of a cubic's control polygon is the control polygon of
	// its closed-form derivative.
	b := Bezier{
		Start:   Pt(0, 0),
		Control: []Point{Pt(10, 20), Pt(40, 20)},
		End:     Pt(50, 0),
	}
	h := hodograph(b.points())
	for i := range 11 {
		u := float64(i) / 10
		got := Vec2(deCasteljau(h, u))
		want := b.Derivative(u)
		if got.Sub(want).Hypot() > 1e-12 {
			t.Errorf("at t=%g: hodograph evaluation %s, derivative %s", u, got, want)
		}
	}
}

func TestBezierDegenerateStart(t *testing.T) {
	// Control point on the start point: the derivative vanishes at t=0.
	b := Bezier{Start: Pt(10, 10), Control: []Point{Pt(10, 10)}, End: Pt(50, 10)}
	if got := b.Derivative(0).Hypot(); got > 1e-12 {
		t.Errorf("got |derivative| %g at cusp, want 0", got)
	}
	if math.IsNaN(b.Eval(0.5).X) {
		t.Error("evaluation produced NaN")
	}
}
