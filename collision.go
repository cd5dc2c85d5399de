package trajectory

import "math"

// collisionStep is the timeline sampling cadence, in seconds.
const collisionStep = 0.2

// zeroLengthEpsilon is the start-to-end distance, in inches, below which a
// travel segment is reported as degenerate.
const zeroLengthEpsilon = 0.001

// boundaryEpsilon is the tolerance applied to the field boundary check.
const boundaryEpsilon = 1e-6

// tangentProbe is the parameter offset used to derive a tangential heading
// by finite difference during pose reconstruction.
const tangentProbe = 1e-3

// DetectCollisions samples the timeline at a fixed cadence, reconstructs the
// robot's pose and footprint at each sample, and tests it against the field
// boundary, obstacle polygons, and keep-in zones.
//
// Checks run in priority order per sample, first match wins: boundary, then
// obstacle, then keep-in. Boundary violations are suppressed while the robot
// is within its own footprint radius of the start point, tolerating
// safety-margin overhang while stationary at the origin. One marker is
// emitted per offending sample; clustering is left to callers.
//
// Travel segments whose start and end coincide additionally produce exactly
// one zero-length marker at time 0, tagged with the segment's index. An
// empty or zero-duration timeline yields no collision markers.
func DetectCollisions(pose StartPose, lines []Line, s Settings, shapes []Shape, pred TimePrediction) []CollisionMarker {
	var markers []CollisionMarker
	for _, ev := range pred.Timeline {
		if ev.Kind == EventTravel && ev.StartPoint.Distance(lines[ev.LineIndex].EndPoint) < zeroLengthEpsilon {
			markers = append(markers, CollisionMarker{
				X:            ev.StartPoint.X,
				Y:            ev.StartPoint.Y,
				Time:         0,
				SegmentIndex: ev.LineIndex,
				Kind:         MarkerZeroLength,
			})
		}
	}
	if len(pred.Timeline) == 0 || pred.TotalTime <= 0 {
		return markers
	}

	inflatedLength := s.RobotLength + 2*s.SafetyMargin
	inflatedWidth := s.RobotWidth + 2*s.SafetyMargin
	exclusionRadius := 0.5 * math.Hypot(inflatedLength, inflatedWidth)

	var keepIns []Shape
	var obstacles []Shape
	for _, sh := range shapes {
		switch sh.Kind {
		case ShapeKeepIn:
			keepIns = append(keepIns, sh)
		case ShapeObstacle:
			obstacles = append(obstacles, sh)
		}
	}

	idx := 0
sampling:
	for t := 0.0; t <= pred.TotalTime+boundaryEpsilon; t += collisionStep {
		for idx < len(pred.Timeline)-1 && t > pred.Timeline[idx].EndTime {
			idx++
		}
		ev := pred.Timeline[idx]
		pos, heading := reconstructPose(ev, lines, t)
		segment := -1
		if ev.Kind == EventTravel {
			segment = ev.LineIndex
		}

		corners := footprintCorners(pos, heading, inflatedLength, inflatedWidth)
		if pos.Distance(pose.Point) > exclusionRadius {
			for _, c := range corners {
				if c.X < -boundaryEpsilon || c.X > FieldSize+boundaryEpsilon ||
					c.Y < -boundaryEpsilon || c.Y > FieldSize+boundaryEpsilon {
					markers = append(markers, CollisionMarker{
						X: pos.X, Y: pos.Y, Time: t,
						SegmentIndex: segment,
						Kind:         MarkerBoundary,
					})
					continue sampling
				}
			}
		}

		for _, obstacle := range obstacles {
			if polygonsOverlap(corners[:], obstacle.Vertices) {
				markers = append(markers, CollisionMarker{
					X: pos.X, Y: pos.Y, Time: t,
					SegmentIndex: segment,
					Kind:         MarkerObstacle,
				})
				continue sampling
			}
		}

		if len(keepIns) > 0 {
			bare := footprintCorners(pos, heading, s.RobotLength, s.RobotWidth)
			contained := false
			for _, zone := range keepIns {
				if allInsidePolygon(bare[:], zone.Vertices) {
					contained = true
					break
				}
			}
			if !contained {
				markers = append(markers, CollisionMarker{
					X: pos.X, Y: pos.Y, Time: t,
					SegmentIndex: segment,
					Kind:         MarkerKeepIn,
				})
			}
		}
	}
	return markers
}

// reconstructPose returns the robot's position and heading at time t within
// the given event.
func reconstructPose(ev TimelineEvent, lines []Line, t float64) (Point, float64) {
	switch ev.Kind {
	case EventWait:
		frac := 0.0
		if ev.Duration > 0 {
			frac = clamp((t-ev.StartTime)/ev.Duration, 0, 1)
		}
		return ev.AtPoint, ev.StartHeading + (ev.TargetHeading-ev.StartHeading)*frac
	default:
		line := lines[ev.LineIndex]
		b := Bezier{Start: ev.StartPoint, Control: line.ControlPoints, End: line.EndPoint}
		u := profileParamAt(ev.MotionProfile, t-ev.StartTime)
		pos := b.Eval(u)
		return pos, travelHeading(ev, b, line.Heading, u)
	}
}

// profileParamAt inverts a cumulative time profile: given the elapsed time
// within the segment, it returns the curve parameter u ∈ [0, 1].
func profileParamAt(cumulative []float64, elapsed float64) float64 {
	n := len(cumulative) - 1
	if n < 1 || elapsed >= cumulative[n] {
		// Past the end of the translation profile (a rotation-dominated
		// segment, or rounding): hold the end point.
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	j := 0
	for j < n-1 && cumulative[j+1] < elapsed {
		j++
	}
	dt := cumulative[j+1] - cumulative[j]
	frac := 0.0
	if dt > 0 {
		frac = (elapsed - cumulative[j]) / dt
	}
	return (float64(j) + frac) / float64(n)
}

// travelHeading resolves the robot heading at parameter u of a travel event
// per the segment's heading rule.
func travelHeading(ev TimelineEvent, b Bezier, rule HeadingRule, u float64) float64 {
	switch rule.Kind {
	case HeadingConstant:
		return rule.Degrees
	case HeadingLinear:
		n := len(ev.HeadingProfile) - 1
		if n < 1 {
			return ev.StartHeading
		}
		idx := u * float64(n)
		j := int(idx)
		if j >= n {
			return ev.HeadingProfile[n]
		}
		return ev.HeadingProfile[j] + (idx-float64(j))*(ev.HeadingProfile[j+1]-ev.HeadingProfile[j])
	default:
		// Tangential: probe a small step ahead along the curve.
		var v Vec2
		if u+tangentProbe <= 1 {
			v = b.Eval(u + tangentProbe).Sub(b.Eval(u))
		} else {
			v = b.Eval(1).Sub(b.Eval(1 - tangentProbe))
		}
		if v.Hypot() < derivativeEpsilon {
			return ev.StartHeading
		}
		deg := v.AngleDegrees()
		if rule.Reverse {
			deg += 180
		}
		return deg
	}
}

// footprintCorners returns the four corners of the robot's rectangular
// envelope centered at pos, rotated to the given heading in degrees. The
// length extends along the heading axis.
func footprintCorners(pos Point, headingDeg, length, width float64) [4]Point {
	theta := radians(headingDeg)
	cos, sin := math.Cos(theta), math.Sin(theta)
	forward := Vec(cos, sin).Mul(length / 2)
	side := Vec(-sin, cos).Mul(width / 2)
	return [4]Point{
		pos.Translate(forward).Translate(side),
		pos.Translate(forward).Translate(side.Mul(-1)),
		pos.Translate(forward.Mul(-1)).Translate(side.Mul(-1)),
		pos.Translate(forward.Mul(-1)).Translate(side),
	}
}

// pointInPolygon reports whether pt lies inside poly, by ray casting.
func pointInPolygon(pt Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) &&
			pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// polygonsOverlap applies the point-in-polygon test both ways: any corner of
// the footprint inside the polygon, or any polygon vertex inside the
// footprint. The second direction catches a polygon fully enclosed by, or
// fully enclosing, the footprint's edge samples.
func polygonsOverlap(footprint []Point, poly []Point) bool {
	for _, c := range footprint {
		if pointInPolygon(c, poly) {
			return true
		}
	}
	for _, v := range poly {
		if pointInPolygon(v, footprint) {
			return true
		}
	}
	return false
}

// allInsidePolygon reports whether every point lies inside poly.
func allInsidePolygon(pts []Point, poly []Point) bool {
	for _, pt := range pts {
		if !pointInPolygon(pt, poly) {
			return false
		}
	}
	return true
}
