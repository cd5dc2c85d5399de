package trajectory

// Bezier is a parametric path segment from Start through zero or more control
// points to End. Its degree is derived from the number of control points:
// zero control points make a line, one a quadratic, two a cubic, and so on.
type Bezier struct {
	Start   Point
	Control []Point
	End     Point
}

// Degree returns the polynomial degree of the segment.
func (b Bezier) Degree() int {
	return len(b.Control) + 1
}

// points returns the full ordered control polygon, including both endpoints.
func (b Bezier) points() []Point {
	pts := make([]Point, 0, len(b.Control)+2)
	pts = append(pts, b.Start)
	pts = append(pts, b.Control...)
	pts = append(pts, b.End)
	return pts
}

// Eval evaluates the segment at t ∈ [0, 1]. Degrees one through three use
// closed-form Bernstein blending; higher degrees fall back to de Casteljau.
func (b Bezier) Eval(t float64) Point {
	mt := 1 - t
	switch b.Degree() {
	case 1:
		return b.Start.Lerp(b.End, t)
	case 2:
		p0 := Vec2(b.Start).Mul(mt * mt)
		p1 := Vec2(b.Control[0]).Mul(2 * mt * t)
		p2 := Vec2(b.End).Mul(t * t)
		return Point(p0.Add(p1).Add(p2))
	case 3:
		p0 := Vec2(b.Start).Mul(mt * mt * mt)
		p1 := Vec2(b.Control[0]).Mul(3 * mt * mt * t)
		p2 := Vec2(b.Control[1]).Mul(3 * mt * t * t)
		p3 := Vec2(b.End).Mul(t * t * t)
		return Point(p0.Add(p1).Add(p2).Add(p3))
	default:
		return deCasteljau(b.points(), t)
	}
}

// Derivative evaluates the first derivative of the segment at t ∈ [0, 1].
func (b Bezier) Derivative(t float64) Vec2 {
	mt := 1 - t
	switch b.Degree() {
	case 1:
		return b.End.Sub(b.Start)
	case 2:
		d0 := b.Control[0].Sub(b.Start).Mul(2 * mt)
		d1 := b.End.Sub(b.Control[0]).Mul(2 * t)
		return d0.Add(d1)
	case 3:
		d0 := b.Control[0].Sub(b.Start).Mul(3 * mt * mt)
		d1 := b.Control[1].Sub(b.Control[0]).Mul(6 * mt * t)
		d2 := b.End.Sub(b.Control[1]).Mul(3 * t * t)
		return d0.Add(d1).Add(d2)
	default:
		return Vec2(deCasteljau(hodograph(b.points()), t))
	}
}

// SecondDerivative evaluates the second derivative of the segment at
// t ∈ [0, 1].
func (b Bezier) SecondDerivative(t float64) Vec2 {
	mt := 1 - t
	switch b.Degree() {
	case 1:
		return Vec2{}
	case 2:
		v := Vec2(b.End).Sub(Vec2(b.Control[0]).Mul(2)).Add(Vec2(b.Start))
		return v.Mul(2)
	case 3:
		d0 := Vec2(b.Control[1]).Sub(Vec2(b.Control[0]).Mul(2)).Add(Vec2(b.Start)).Mul(6 * mt)
		d1 := Vec2(b.End).Sub(Vec2(b.Control[1]).Mul(2)).Add(Vec2(b.Control[0])).Mul(6 * t)
		return d0.Add(d1)
	default:
		return Vec2(deCasteljau(hodograph(hodograph(b.points())), t))
	}
}

// deCasteljau evaluates an arbitrary-degree Bézier defined by pts.
func deCasteljau(pts []Point, t float64) Point {
	work := make([]Point, len(pts))
	copy(work, pts)
	for n := len(work) - 1; n > 0; n-- {
		for i := range n {
			work[i] = work[i].Lerp(work[i+1], t)
		}
	}
	return work[0]
}

// hodograph returns the control polygon of the derivative curve, using the
// standard degree-reduction formula qᵢ = n·(pᵢ₊₁ − pᵢ).
func hodograph(pts []Point) []Point {
	n := float64(len(pts) - 1)
	out := make([]Point, len(pts)-1)
	for i := range out {
		out[i] = Point(pts[i+1].Sub(pts[i]).Mul(n))
	}
	return out
}
