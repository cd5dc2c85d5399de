package trajectory

import "math"

// derivativeEpsilon is the first-derivative magnitude below which a sample is
// treated as a cusp: the curve stops turning but also stops moving, so the
// curvature radius is forced to zero and the profiler pins velocity there.
const derivativeEpsilon = 1e-9

// crossEpsilon is the |v×a| magnitude below which a sample is treated as
// locally straight, with infinite curvature radius.
const crossEpsilon = 1e-9

// CurveStep describes one sample interval of an analyzed segment. Heading is
// the unwrapped tangent heading, in degrees, at the end of the interval.
type CurveStep struct {
	DeltaLength float64
	Radius      float64
	Rotation    float64
	Heading     float64
}

// CurveAnalysis is the sampled geometry of one segment. StartHeading and
// EndHeading are unwrapped: they chain continuously from the initialHeading
// passed to AnalyzeCurve, even across multiples of 360°.
type CurveAnalysis struct {
	Length                   float64
	MinRadius                float64
	NetRotation              float64
	TangentRotationMagnitude float64
	StartHeading             float64
	EndHeading               float64
	Steps                    []CurveStep
}

// AnalyzeCurve samples the Bézier segment defined by start, control, and end
// at samples+1 evenly spaced parameter values and returns its arc length,
// per-interval curvature radii, and accumulated tangent rotation.
//
// initialHeading, in degrees, is the heading the robot arrives with; the
// returned headings are unwrapped so that StartHeading is the representative
// of the curve's initial tangent direction nearest to it.
func AnalyzeCurve(start Point, control []Point, end Point, samples int, initialHeading float64) CurveAnalysis {
	if samples < 1 {
		samples = 1
	}
	b := Bezier{Start: start, Control: control, End: end}

	pts := make([]Point, samples+1)
	tangents := make([]float64, samples+1)
	radii := make([]float64, samples+1)

	prevTangent := normalizeDegrees(initialHeading)
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		pts[i] = b.Eval(t)
		v := b.Derivative(t)
		a := b.SecondDerivative(t)

		speed := v.Hypot()
		if speed < derivativeEpsilon {
			// Cusp: no usable tangent, zero radius.
			radii[i] = 0
			tangents[i] = prevTangent
		} else {
			cross := math.Abs(v.Cross(a))
			if cross < crossEpsilon {
				radii[i] = math.Inf(1)
			} else {
				radii[i] = speed * speed * speed / cross
			}
			tangents[i] = v.AngleDegrees()
			prevTangent = tangents[i]
		}
	}

	startHeading := initialHeading + shortestAngleDiff(initialHeading, tangents[0])
	heading := startHeading
	steps := make([]CurveStep, samples)
	analysis := CurveAnalysis{
		MinRadius:    math.Inf(1),
		StartHeading: startHeading,
	}
	for i := range steps {
		rotation := shortestAngleDiff(tangents[i], tangents[i+1])
		heading += rotation
		steps[i] = CurveStep{
			DeltaLength: pts[i].Distance(pts[i+1]),
			Radius:      math.Min(radii[i], radii[i+1]),
			Rotation:    rotation,
			Heading:     heading,
		}
		analysis.Length += steps[i].DeltaLength
		analysis.MinRadius = math.Min(analysis.MinRadius, steps[i].Radius)
		analysis.TangentRotationMagnitude += math.Abs(rotation)
	}
	analysis.EndHeading = heading
	analysis.NetRotation = heading - startHeading
	analysis.Steps = steps
	return analysis
}
