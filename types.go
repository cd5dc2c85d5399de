package trajectory

// FieldSize is the side length of the square field, in inches.
const FieldSize = 144.0

// HeadingKind selects how a heading rule orients the robot along a segment.
type HeadingKind int

const (
	// HeadingConstant holds a fixed heading for the whole segment.
	HeadingConstant HeadingKind = iota
	// HeadingLinear interpolates from a start heading to an end heading.
	HeadingLinear
	// HeadingTangential follows the direction of travel, optionally reversed.
	HeadingTangential
)

// HeadingRule governs the robot's orientation while traveling a segment.
// Angles are in degrees.
type HeadingRule struct {
	Kind HeadingKind

	// Degrees is the fixed heading for HeadingConstant.
	Degrees float64
	// StartDegrees and EndDegrees bound the interpolation for HeadingLinear.
	StartDegrees float64
	EndDegrees   float64
	// Reverse flips a tangential heading by 180°, for driving backwards.
	Reverse bool
}

// ConstantHeading returns a rule holding the given heading.
func ConstantHeading(deg float64) HeadingRule {
	return HeadingRule{Kind: HeadingConstant, Degrees: deg}
}

// LinearHeading returns a rule interpolating from start to end.
func LinearHeading(startDeg, endDeg float64) HeadingRule {
	return HeadingRule{Kind: HeadingLinear, StartDegrees: startDeg, EndDegrees: endDeg}
}

// TangentialHeading returns a rule that follows the direction of travel.
func TangentialHeading(reverse bool) HeadingRule {
	return HeadingRule{Kind: HeadingTangential, Reverse: reverse}
}

// StartPose is the robot's initial position together with the heading rule
// that determines its initial orientation.
type StartPose struct {
	Point   Point
	Heading HeadingRule
}

// EventMarker names a position along a segment, as a fraction of its
// parameter range. Markers carry no behavior here; the timeline resolves them
// to absolute times for downstream consumers.
type EventMarker struct {
	Name     string
	Position float64
}

// Line is one user-authored path segment: a Bézier from the previous
// segment's end point through ControlPoints to EndPoint. The curve degree is
// derived from the number of control points and never stored.
type Line struct {
	ControlPoints []Point
	EndPoint      Point
	Heading       HeadingRule
	Locked        bool
	Name          string
	EventMarkers  []EventMarker
}

// clone returns a deep copy of the line. Mutation must never alias a
// parent's data.
func (l Line) clone() Line {
	out := l
	if l.ControlPoints != nil {
		out.ControlPoints = make([]Point, len(l.ControlPoints))
		copy(out.ControlPoints, l.ControlPoints)
	}
	if l.EventMarkers != nil {
		out.EventMarkers = make([]EventMarker, len(l.EventMarkers))
		copy(out.EventMarkers, l.EventMarkers)
	}
	return out
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.clone()
	}
	return out
}

// SequenceItemKind tags the variants of a SequenceItem.
type SequenceItemKind int

const (
	// ItemPath travels a referenced line.
	ItemPath SequenceItemKind = iota
	// ItemWait holds position for a duration.
	ItemWait
	// ItemRotate turns in place by a relative angle.
	ItemRotate
)

// SequenceItem is one entry in the execution order. The sequence references
// lines by index, decoupling execution order from storage order.
type SequenceItem struct {
	Kind SequenceItemKind

	// LineIndex references a line for ItemPath.
	LineIndex int
	// DurationMS is the hold time for ItemWait, in milliseconds.
	DurationMS float64
	// Degrees is the relative turn for ItemRotate.
	Degrees float64
	Name    string
}

// PathItem returns a sequence item traveling the line at index i.
func PathItem(i int) SequenceItem {
	return SequenceItem{Kind: ItemPath, LineIndex: i}
}

// WaitItem returns a sequence item holding position for ms milliseconds.
func WaitItem(ms float64, name string) SequenceItem {
	return SequenceItem{Kind: ItemWait, DurationMS: ms, Name: name}
}

// RotateItem returns a sequence item turning in place by deg degrees.
func RotateItem(deg float64, name string) SequenceItem {
	return SequenceItem{Kind: ItemRotate, Degrees: deg, Name: name}
}

// Settings holds the kinematic and physical constants of the robot, plus the
// optimizer's hyperparameters. Distances are in inches, times in seconds,
// angular velocity in radians per second.
type Settings struct {
	MaxVelocity     float64
	MaxAcceleration float64
	MaxDeceleration float64
	AngularVelocity float64

	// FrictionCoefficient bounds cornering speed via sqrt(μ·g·r). Zero
	// disables the friction term.
	FrictionCoefficient float64

	RobotLength  float64
	RobotWidth   float64
	SafetyMargin float64

	Generations      int
	PopulationSize   int
	MutationRate     float64
	MutationStrength float64
}

// DefaultSettings returns settings for a typical 18-inch robot.
func DefaultSettings() Settings {
	return Settings{
		MaxVelocity:         60,
		MaxAcceleration:     60,
		MaxDeceleration:     60,
		AngularVelocity:     3.2,
		FrictionCoefficient: 0,
		RobotLength:         18,
		RobotWidth:          18,
		SafetyMargin:        0,
		Generations:         100,
		PopulationSize:      100,
		MutationRate:        0.2,
		MutationStrength:    12,
	}
}

// ShapeKind tags field geometry as an obstacle or a keep-in zone.
type ShapeKind int

const (
	// ShapeObstacle is a region the robot must stay out of.
	ShapeObstacle ShapeKind = iota
	// ShapeKeepIn is a region the robot must stay inside.
	ShapeKeepIn
)

// Shape is a polygonal region of the field.
type Shape struct {
	Vertices []Point
	Kind     ShapeKind
}

// MarkerKind tags the cause of a collision marker.
type MarkerKind int

const (
	// MarkerBoundary flags a footprint corner outside the field.
	MarkerBoundary MarkerKind = iota
	// MarkerObstacle flags overlap with an obstacle polygon.
	MarkerObstacle
	// MarkerKeepIn flags a footprint not fully inside any keep-in zone.
	MarkerKeepIn
	// MarkerZeroLength flags a degenerate segment whose start and end
	// coincide.
	MarkerZeroLength
)

// CollisionMarker is one detected violation, positioned on the field and on
// the timeline. SegmentIndex is −1 when the violation is not attributable to
// a particular segment.
type CollisionMarker struct {
	X            float64
	Y            float64
	Time         float64
	SegmentIndex int
	Kind         MarkerKind
}

// EventKind tags the variants of a TimelineEvent.
type EventKind int

const (
	// EventTravel drives along a line.
	EventTravel EventKind = iota
	// EventWait holds position, possibly while turning in place.
	EventWait
)

// TimelineEvent is one scheduled action. Events are contiguous and
// non-overlapping; their union spans [0, TotalTime].
type TimelineEvent struct {
	Kind      EventKind
	StartTime float64
	EndTime   float64
	Duration  float64

	// Travel fields.

	LineIndex  int
	StartPoint Point
	Length     float64
	// MotionProfile holds the cumulative travel time at each curve sample
	// boundary; its last entry is the pure translation time, which may be
	// less than Duration when rotation dominates the segment.
	MotionProfile []float64
	// HeadingProfile holds the heading in degrees at each curve sample
	// boundary. It is only populated for linear and tangential heading
	// rules; constant headings are reconstructed from the rule.
	HeadingProfile []float64

	// Wait fields.

	StartHeading  float64
	TargetHeading float64
	AtPoint       Point
}

// ScheduledMarker is an event marker resolved to an absolute timeline time.
type ScheduledMarker struct {
	Name      string
	LineIndex int
	Time      float64
}

// TimePrediction is the full schedule for a sequence: the timeline, its
// total duration and distance, and per-travel-segment times.
type TimePrediction struct {
	TotalTime     float64
	TotalDistance float64
	SegmentTimes  []float64
	Timeline      []TimelineEvent
	Markers       []ScheduledMarker
}
