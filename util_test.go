package trajectory

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 1))
}

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func assertNear(t *testing.T, p0 Point, p1 Point, epsilon float64) {
	t.Helper()
	if d := p1.Sub(p0).Hypot(); d > epsilon {
		t.Fatalf("got %s, expected %s", p0, p1)
	}
}

func assertNearFloat(t *testing.T, got, want, epsilon float64) {
	t.Helper()
	d := got - want
	if d < 0 {
		d = -d
	}
	if d > epsilon {
		t.Fatalf("got %g, expected %g (±%g)", got, want, epsilon)
	}
}
