package trajectory

import "testing"

func TestShortestAngleDiff(t *testing.T) {
	cases := []struct {
		from, to, want float64
	}{
		{0, 0, 0},
		{0, 90, 90},
		{90, 0, -90},
		{0, 180, 180},
		{0, 190, -170},
		{350, 10, 20},
		{10, 350, -20},
		{720, 90, 90},
		{-90, 90, 180},
	}
	for _, c := range cases {
		if got := shortestAngleDiff(c.from, c.to); got != c.want {
			t.Errorf("shortestAngleDiff(%g, %g) = %g, want %g", c.from, c.to, got, c.want)
		}
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{360, 0},
		{540, 180},
		{-190, 170},
		{730, 10},
	}
	for _, c := range cases {
		if got := normalizeDegrees(c.in); got != c.want {
			t.Errorf("normalizeDegrees(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestVecAngle(t *testing.T) {
	assertNearFloat(t, Vec(1, 0).AngleDegrees(), 0, 1e-12)
	assertNearFloat(t, Vec(0, 1).AngleDegrees(), 90, 1e-12)
	assertNearFloat(t, Vec(-1, 0).AngleDegrees(), 180, 1e-12)
	assertNearFloat(t, Vec(1, 1).AngleDegrees(), 45, 1e-12)
}
