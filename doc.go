// Package trajectory computes whether a robot can physically execute a
// user-authored path within its kinematic limits, how long the path takes,
// whether the robot collides with field geometry along the way, and, when it
// does, searches for a modified path that is both fast and collision-free.
//
// # Pipeline
//
// The engine is a stack of five pure components; data flows strictly upward:
//
//   - [AnalyzeCurve] samples a Bézier segment and returns its arc length,
//     per-sample curvature radii, and accumulated tangent rotation.
//   - [ProfileMotion] converts that geometry into a curvature-, friction-,
//     and kinematics-bounded velocity profile and integrates travel time.
//   - [BuildTimeline] walks an ordered sequence of path, rotate, and wait
//     actions, inserting implicit turns where headings disagree, and produces
//     an absolute-time event schedule.
//   - [DetectCollisions] samples that schedule at a fixed cadence,
//     reconstructs the robot's pose and footprint, and tests it against the
//     field boundary, obstacles, and keep-in zones.
//   - [Optimize] evolves a population of path variants, scoring each with
//     the components above, toward a fast, collision-free result.
//
// # Geometry
//
// Paths are sequences of [Line] values: Bézier segments from the previous
// segment's end point through zero or more control points to an end point.
// The curve degree is derived from the number of control points (zero for a
// straight line, one for a quadratic, two for a cubic), with degrees one
// through three evaluated in closed form and higher degrees by de Casteljau
// subdivision. All coordinates are field inches on a square [0, FieldSize]
// field; headings are degrees, with tangent angles taken via atan2 and
// accumulated through shortest signed differences so heading profiles stay
// continuous across multiples of 360°.
//
// # Purity and concurrency
//
// The analyzer, profiler, timeline builder, and collision detector are pure
// functions of their inputs, freshly allocating their outputs; they are safe
// to call concurrently without synchronization. [Optimize] is a single
// synchronous call whose only suspension point is a cooperative cancellation
// check at each generation boundary; mutation always deep-copies its parent,
// so population members never alias each other.
//
// # Failure policy
//
// The engine degrades instead of failing: dangling sequence references are
// skipped, geometric singularities (cusps, zero curvature, zero average
// velocity) resolve to explicit sentinels rather than NaN, and the optimizer
// converts non-finite timelines into large finite fitness penalties. A run
// that finds no collision-free candidate still returns its best attempt; the
// caller detects infeasibility by comparing fitness against the collision
// penalty floor.
package trajectory
