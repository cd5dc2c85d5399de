package trajectory

import "math"

// gravity is the standard gravitational acceleration in inches per second
// squared, used by the friction cornering limit sqrt(μ·g·r).
const gravity = 386.22

// fallbackVelocity is the flat cruise speed assumed when the kinematic
// limits are unset and no profiled estimate is possible.
const fallbackVelocity = 30.0

// MotionProfile is the time parameterization of one analyzed segment.
// Cumulative holds the elapsed time at each sample boundary, starting at 0;
// its last entry equals TotalTime.
type MotionProfile struct {
	TotalTime  float64
	Cumulative []float64
}

// ProfileMotion converts sampled segment geometry into a velocity-limited
// time profile.
//
// Each step's local speed ceiling is the tightest of the configured maximum
// velocity, the turning limit ω·r, and the friction cornering limit
// sqrt(μ·g·r). A forward pass accelerates from rest under MaxAcceleration and
// a backward pass decelerates to rest under MaxDeceleration; together they
// yield the fastest velocity achievable at every boundary, collapsing to a
// triangular profile on segments too short to reach cruise speed.
//
// When MaxVelocity or MaxAcceleration is unset the profile degrades to a
// flat constant-velocity estimate.
func ProfileMotion(steps []CurveStep, s Settings) MotionProfile {
	if len(steps) == 0 {
		return MotionProfile{Cumulative: []float64{0}}
	}
	if s.MaxVelocity <= 0 || s.MaxAcceleration <= 0 {
		return flatProfile(steps, s)
	}

	decel := s.MaxDeceleration
	if decel <= 0 {
		decel = s.MaxAcceleration
	}

	n := len(steps)
	limits := make([]float64, n)
	for i, st := range steps {
		if st.Radius == 0 {
			// Cusp: the curve stops turning but also stops moving, so the
			// robot must come to rest here.
			limits[i] = 0
			continue
		}
		limit := s.MaxVelocity
		if s.AngularVelocity > 0 {
			limit = math.Min(limit, s.AngularVelocity*st.Radius)
		}
		if s.FrictionCoefficient > 0 {
			limit = math.Min(limit, math.Sqrt(s.FrictionCoefficient*gravity*st.Radius))
		}
		limits[i] = limit
	}

	v := make([]float64, n+1)
	for i := range n {
		reachable := math.Sqrt(v[i]*v[i] + 2*s.MaxAcceleration*steps[i].DeltaLength)
		v[i+1] = math.Min(limits[i], reachable)
	}
	v[n] = 0
	for i := n - 1; i >= 0; i-- {
		stoppable := math.Sqrt(v[i+1]*v[i+1] + 2*decel*steps[i].DeltaLength)
		v[i] = math.Min(v[i], stoppable)
	}

	cumulative := make([]float64, n+1)
	for i := range n {
		ds := steps[i].DeltaLength
		var dt float64
		if ds > 0 {
			avg := 0.5 * (v[i] + v[i+1])
			if avg > derivativeEpsilon {
				dt = ds / avg
			} else {
				// Both boundary velocities are pinned at zero (a cusp or a
				// zero curvature radius); fall back to the time to cover ds
				// from rest.
				dt = math.Sqrt(2 * ds / s.MaxAcceleration)
			}
		}
		cumulative[i+1] = cumulative[i] + dt
	}
	return MotionProfile{
		TotalTime:  cumulative[n],
		Cumulative: cumulative,
	}
}

// flatProfile is the degraded constant-velocity estimate used when the
// kinematic limits are not configured.
func flatProfile(steps []CurveStep, s Settings) MotionProfile {
	v := s.MaxVelocity
	if v <= 0 {
		v = fallbackVelocity
	}
	cumulative := make([]float64, len(steps)+1)
	for i, st := range steps {
		cumulative[i+1] = cumulative[i] + st.DeltaLength/v
	}
	return MotionProfile{
		TotalTime:  cumulative[len(steps)],
		Cumulative: cumulative,
	}
}

// rotationTime returns the time to turn in place by deg degrees at the
// configured angular velocity.
func rotationTime(deg float64, s Settings) float64 {
	omega := s.AngularVelocity
	if omega <= 0 {
		omega = math.Pi
	}
	return math.Abs(radians(deg)) / omega
}
