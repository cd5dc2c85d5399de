package trajectory

import "math"

// curveSamples is the number of sample intervals used when analyzing a
// segment's geometry.
const curveSamples = 100

// headingEpsilon is the heading disagreement, in degrees, above which an
// implicit turn-in-place is inserted before a travel segment.
const headingEpsilon = 0.1

// BuildTimeline walks the sequence in order, scheduling travel, wait, and
// rotate actions into an absolute-time event list.
//
// A running (position, heading) state threads through the walk. Before each
// travel segment, the segment's required start heading is derived from its
// heading rule; if it disagrees with the current heading by more than a small
// epsilon, an implicit turn-in-place wait event is inserted at the current
// position, paced by the configured angular velocity. Sequence items that
// reference a line index outside the line list are skipped.
//
// The returned events are strictly time-ordered and contiguous: TotalTime is
// the last event's end time and TotalDistance the sum of travel arc lengths.
// The builder is deterministic; identical inputs produce identical output.
func BuildTimeline(pose StartPose, lines []Line, s Settings, seq []SequenceItem) TimePrediction {
	var pred TimePrediction
	pos := pose.Point
	heading := resolveStartHeading(pose, lines, seq)
	now := 0.0

	for _, item := range seq {
		switch item.Kind {
		case ItemWait:
			d := item.DurationMS / 1000
			if d <= 0 {
				continue
			}
			pred.Timeline = append(pred.Timeline, TimelineEvent{
				Kind:          EventWait,
				StartTime:     now,
				EndTime:       now + d,
				Duration:      d,
				LineIndex:     -1,
				StartHeading:  heading,
				TargetHeading: heading,
				AtPoint:       pos,
			})
			now += d

		case ItemRotate:
			if item.Degrees == 0 {
				continue
			}
			d := rotationTime(item.Degrees, s)
			pred.Timeline = append(pred.Timeline, TimelineEvent{
				Kind:          EventWait,
				StartTime:     now,
				EndTime:       now + d,
				Duration:      d,
				LineIndex:     -1,
				StartHeading:  heading,
				TargetHeading: heading + item.Degrees,
				AtPoint:       pos,
			})
			heading += item.Degrees
			now += d

		case ItemPath:
			if item.LineIndex < 0 || item.LineIndex >= len(lines) {
				continue
			}
			line := lines[item.LineIndex]
			b := Bezier{Start: pos, Control: line.ControlPoints, End: line.EndPoint}

			required := requiredStartHeading(b, line.Heading, heading)
			if gap := shortestAngleDiff(heading, required); math.Abs(gap) > headingEpsilon {
				d := rotationTime(gap, s)
				pred.Timeline = append(pred.Timeline, TimelineEvent{
					Kind:          EventWait,
					StartTime:     now,
					EndTime:       now + d,
					Duration:      d,
					LineIndex:     -1,
					StartHeading:  heading,
					TargetHeading: heading + gap,
					AtPoint:       pos,
				})
				heading += gap
				now += d
			}

			analysis := AnalyzeCurve(pos, line.ControlPoints, line.EndPoint, curveSamples, heading)
			profile := ProfileMotion(analysis.Steps, s)

			var requiredRotation float64
			var headingProfile []float64
			endHeading := heading
			switch line.Heading.Kind {
			case HeadingTangential:
				requiredRotation = analysis.TangentRotationMagnitude
				headingProfile = make([]float64, len(analysis.Steps)+1)
				headingProfile[0] = heading
				for i, st := range analysis.Steps {
					headingProfile[i+1] = headingProfile[i] + st.Rotation
				}
				endHeading = headingProfile[len(headingProfile)-1]
			case HeadingLinear:
				sweep := shortestAngleDiff(line.Heading.StartDegrees, line.Heading.EndDegrees)
				requiredRotation = math.Abs(sweep)
				n := len(analysis.Steps)
				headingProfile = make([]float64, n+1)
				for i := range headingProfile {
					headingProfile[i] = heading + sweep*float64(i)/float64(n)
				}
				endHeading = headingProfile[n]
			}

			duration := math.Max(profile.TotalTime, rotationTime(requiredRotation, s))
			for _, m := range line.EventMarkers {
				pred.Markers = append(pred.Markers, ScheduledMarker{
					Name:      m.Name,
					LineIndex: item.LineIndex,
					Time:      now + profileTimeAt(profile.Cumulative, m.Position),
				})
			}
			pred.Timeline = append(pred.Timeline, TimelineEvent{
				Kind:           EventTravel,
				StartTime:      now,
				EndTime:        now + duration,
				Duration:       duration,
				LineIndex:      item.LineIndex,
				StartPoint:     pos,
				Length:         analysis.Length,
				MotionProfile:  profile.Cumulative,
				HeadingProfile: headingProfile,
				StartHeading:   heading,
			})
			pred.SegmentTimes = append(pred.SegmentTimes, duration)
			pred.TotalDistance += analysis.Length
			heading = endHeading
			pos = line.EndPoint
			now += duration
		}
	}

	pred.TotalTime = now
	return pred
}

// resolveStartHeading turns the start pose's heading rule into a concrete
// initial heading. A tangential rule is resolved by probing the travel
// direction of the first path item in the sequence.
func resolveStartHeading(pose StartPose, lines []Line, seq []SequenceItem) float64 {
	switch pose.Heading.Kind {
	case HeadingLinear:
		return pose.Heading.StartDegrees
	case HeadingTangential:
		for _, item := range seq {
			if item.Kind != ItemPath || item.LineIndex < 0 || item.LineIndex >= len(lines) {
				continue
			}
			line := lines[item.LineIndex]
			b := Bezier{Start: pose.Point, Control: line.ControlPoints, End: line.EndPoint}
			return requiredStartHeading(b, pose.Heading, 0)
		}
		return 0
	default:
		return pose.Heading.Degrees
	}
}

// requiredStartHeading returns the heading, in degrees, the robot must hold
// when it begins traveling b under the given rule. current is used as a
// fallback for degenerate segments with no usable travel direction.
func requiredStartHeading(b Bezier, rule HeadingRule, current float64) float64 {
	switch rule.Kind {
	case HeadingConstant:
		return rule.Degrees
	case HeadingLinear:
		return rule.StartDegrees
	default:
		v := b.Derivative(0)
		if v.Hypot() < derivativeEpsilon {
			// Degenerate start tangent; probe a little way along the curve.
			v = b.Eval(1e-3).Sub(b.Start)
		}
		if v.Hypot() < derivativeEpsilon {
			return current
		}
		deg := v.AngleDegrees()
		if rule.Reverse {
			deg += 180
		}
		return deg
	}
}

// profileTimeAt interpolates a cumulative time profile at a fractional
// position along the segment.
func profileTimeAt(cumulative []float64, position float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}
	n := len(cumulative) - 1
	idx := clamp(position, 0, 1) * float64(n)
	j := int(idx)
	if j >= n {
		return cumulative[n]
	}
	return cumulative[j] + (idx-float64(j))*(cumulative[j+1]-cumulative[j])
}
