package trajectory

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
)

// collisionPenalty is the fitness floor for any colliding candidate. Feasible
// total times stay well below it, so feasible candidates always rank first.
const collisionPenalty = 10000

// infeasiblePenalty is the fitness assigned when a candidate's timeline has
// a non-finite total time, from pathological settings.
const infeasiblePenalty = 20000

// endpointClearance is the minimum distance, in inches, kept between a
// line's first/last control point and its fixed neighboring endpoint, to
// avoid degenerate near-zero tangents.
const endpointClearance = 10

// gridSeedDivisions is the per-axis resolution of the grid search used to
// seed single control points across the field.
const gridSeedDivisions = 8

// offsetSeedRange is the maximum random nudge, in inches, applied to
// midpoint control points when seeding around obstacles.
const offsetSeedRange = 96

// maxControlPoints caps structural mutation: a line never grows beyond this
// many control points.
const maxControlPoints = 3

// Progress is delivered to the progress callback once per generation.
// BestTime is the best candidate's fitness, which equals its total time
// whenever the candidate is collision-free.
type Progress struct {
	Generation int
	BestTime   float64
	BestLines  []Line
}

// OptimizeResult is the outcome of an optimizer run. Fitness at or above the
// collision penalty floor means no collision-free candidate was found; the
// caller must check for that explicitly.
type OptimizeResult struct {
	Lines   []Line
	Fitness float64
	Stopped bool
}

// OptimizeOption configures an Optimize run.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	progress func(Progress)
	rng      *rand.Rand
}

// WithProgress registers a callback invoked once per generation with the
// best candidate found so far.
func WithProgress(fn func(Progress)) OptimizeOption {
	return func(cfg *optimizeConfig) {
		cfg.progress = fn
	}
}

// WithSeed fixes the random number generator's seed, making the run
// deterministic.
func WithSeed(seed uint64) OptimizeOption {
	return func(cfg *optimizeConfig) {
		cfg.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

type individual struct {
	lines   []Line
	fitness float64
}

// Optimize searches for a variant of lines that is both fast and
// collision-free, evolving a population of candidates for the configured
// number of generations.
//
// Fitness is the candidate's total time when it produces no collision
// markers, and the collision penalty floor plus the marker count otherwise,
// so any feasible candidate outranks any colliding one. The best 20% of each
// generation survives unchanged; the rest is refilled by mutating parents
// drawn from the top half, mutating more aggressively while the parent still
// collides.
//
// Cancellation is cooperative: ctx is checked once per generation boundary,
// and a cancelled run returns the best candidate found so far with Stopped
// set. Optimize never fails; at worst it returns the unmodified input with
// its (possibly colliding) fitness.
func Optimize(ctx context.Context, pose StartPose, lines []Line, s Settings, shapes []Shape, seq []SequenceItem, opts ...OptimizeOption) OptimizeResult {
	cfg := optimizeConfig{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	popSize := s.PopulationSize
	if popSize < 2 {
		popSize = 2
	}
	generations := s.Generations
	if generations < 0 {
		generations = 0
	}

	evaluate := func(candidate []Line) float64 {
		pred := BuildTimeline(pose, candidate, s, seq)
		if math.IsNaN(pred.TotalTime) || math.IsInf(pred.TotalTime, 0) {
			return infeasiblePenalty
		}
		markers := DetectCollisions(pose, candidate, s, shapes, pred)
		if len(markers) > 0 {
			return collisionPenalty + float64(len(markers))
		}
		return pred.TotalTime
	}

	pop := seedPopulation(pose, lines, s, shapes, popSize, evaluate, cfg.rng)
	sortByFitness(pop)

	stopped := false
	for gen := 0; gen < generations; gen++ {
		if cfg.progress != nil {
			cfg.progress(Progress{
				Generation: gen,
				BestTime:   pop[0].fitness,
				BestLines:  cloneLines(pop[0].lines),
			})
		}

		select {
		case <-ctx.Done():
			stopped = true
		default:
		}
		if stopped {
			break
		}

		pop = evolve(pop, pose, s, popSize, evaluate, cfg.rng)
		sortByFitness(pop)
	}

	return OptimizeResult{
		Lines:   cloneLines(pop[0].lines),
		Fitness: pop[0].fitness,
		Stopped: stopped,
	}
}

// seedPopulation builds the initial population: the unmodified input, grid
// seeds for unlocked lines without control points, random midpoint offsets
// when obstacles exist, and aggressive mutants of the original for the rest.
func seedPopulation(pose StartPose, lines []Line, s Settings, shapes []Shape, popSize int, evaluate func([]Line) float64, rng *rand.Rand) []individual {
	pop := []individual{{lines: cloneLines(lines), fitness: evaluate(lines)}}

	const cell = FieldSize / gridSeedDivisions
	for li := range lines {
		if lines[li].Locked || len(lines[li].ControlPoints) != 0 {
			continue
		}
		for gx := 0; gx < gridSeedDivisions && len(pop) < popSize; gx++ {
			for gy := 0; gy < gridSeedDivisions && len(pop) < popSize; gy++ {
				cand := cloneLines(lines)
				cand[li].ControlPoints = []Point{Pt((float64(gx)+0.5)*cell, (float64(gy)+0.5)*cell)}
				fitness := evaluate(cand)
				if fitness < collisionPenalty {
					pop = append(pop, individual{lines: cand, fitness: fitness})
				}
			}
		}
	}

	hasObstacles := false
	for _, sh := range shapes {
		if sh.Kind == ShapeObstacle {
			hasObstacles = true
			break
		}
	}
	if hasObstacles {
		unlocked := make([]int, 0, len(lines))
		for li := range lines {
			if !lines[li].Locked {
				unlocked = append(unlocked, li)
			}
		}
		for i := 0; i < popSize/5 && len(pop) < popSize && len(unlocked) > 0; i++ {
			li := unlocked[rng.IntN(len(unlocked))]
			cand := cloneLines(lines)
			offset := Vec(
				(rng.Float64()*2-1)*offsetSeedRange,
				(rng.Float64()*2-1)*offsetSeedRange,
			)
			mid := chainStart(pose, cand, li).Midpoint(cand[li].EndPoint).Translate(offset)
			mid.X = clamp(mid.X, 0, FieldSize)
			mid.Y = clamp(mid.Y, 0, FieldSize)
			if len(cand[li].ControlPoints) == 0 {
				cand[li].ControlPoints = []Point{mid}
			} else {
				cand[li].ControlPoints[rng.IntN(len(cand[li].ControlPoints))] = mid
			}
			pop = append(pop, individual{lines: cand, fitness: evaluate(cand)})
		}
	}

	for len(pop) < popSize {
		cand := mutateLines(cloneLines(lines), pose, s, true, rng)
		pop = append(pop, individual{lines: cand, fitness: evaluate(cand)})
	}
	return pop
}

// evolve produces the next generation: the top 20% survives unchanged and
// the remaining slots are filled by mutating parents drawn uniformly from
// the top half. pop must be sorted ascending by fitness.
func evolve(pop []individual, pose StartPose, s Settings, popSize int, evaluate func([]Line) float64, rng *rand.Rand) []individual {
	eliteCount := max(1, popSize/5)
	parentPool := max(1, popSize/2)
	if eliteCount > len(pop) {
		eliteCount = len(pop)
	}
	if parentPool > len(pop) {
		parentPool = len(pop)
	}

	next := make([]individual, 0, popSize)
	next = append(next, pop[:eliteCount]...)
	for len(next) < popSize {
		parent := pop[rng.IntN(parentPool)]
		aggressive := parent.fitness >= collisionPenalty
		cand := mutateLines(cloneLines(parent.lines), pose, s, aggressive, rng)
		next = append(next, individual{lines: cand, fitness: evaluate(cand)})
	}
	return next
}

// mutateLines mutates a candidate in place and returns it. The candidate
// must be a deep copy; locked lines are left untouched. Aggressive mutation
// is used while the parent still collides: the structural probability rises,
// the jitter rate doubles, and the jitter magnitude is quintupled.
func mutateLines(lines []Line, pose StartPose, s Settings, aggressive bool, rng *rand.Rand) []Line {
	structural := 0.05
	rate := s.MutationRate
	strength := s.MutationStrength
	if aggressive {
		structural = 0.30
		rate = math.Min(1, rate*2)
		strength *= 5
	}

	for i := range lines {
		line := &lines[i]
		if line.Locked {
			continue
		}
		start := chainStart(pose, lines, i)

		if rng.Float64() < structural {
			switch {
			case len(line.ControlPoints) == 0:
				line.ControlPoints = []Point{jitteredMidpoint(start, line.EndPoint, strength, rng)}
			case len(line.ControlPoints) >= maxControlPoints:
				removeControlPoint(line, rng)
			case rng.Float64() < 0.5:
				insertControlPoint(line, start, strength, rng)
			default:
				removeControlPoint(line, rng)
			}
		}

		for j := range line.ControlPoints {
			if rng.Float64() >= rate {
				continue
			}
			cp := &line.ControlPoints[j]
			cp.X = clamp(cp.X+(rng.Float64()*2-1)*strength, 0, FieldSize)
			cp.Y = clamp(cp.Y+(rng.Float64()*2-1)*strength, 0, FieldSize)
		}

		enforceEndpointClearance(line, start)
	}
	return lines
}

func jitteredMidpoint(start, end Point, strength float64, rng *rand.Rand) Point {
	mid := start.Midpoint(end)
	return Pt(
		clamp(mid.X+(rng.Float64()*2-1)*strength, 0, FieldSize),
		clamp(mid.Y+(rng.Float64()*2-1)*strength, 0, FieldSize),
	)
}

func insertControlPoint(line *Line, start Point, strength float64, rng *rand.Rand) {
	pt := jitteredMidpoint(start, line.EndPoint, strength, rng)
	at := len(line.ControlPoints) / 2
	cps := make([]Point, 0, len(line.ControlPoints)+1)
	cps = append(cps, line.ControlPoints[:at]...)
	cps = append(cps, pt)
	cps = append(cps, line.ControlPoints[at:]...)
	line.ControlPoints = cps
}

func removeControlPoint(line *Line, rng *rand.Rand) {
	if len(line.ControlPoints) == 0 {
		return
	}
	at := rng.IntN(len(line.ControlPoints))
	line.ControlPoints = append(line.ControlPoints[:at], line.ControlPoints[at+1:]...)
}

// enforceEndpointClearance pushes a line's first and last control points to
// at least the minimum clearance from their fixed neighboring endpoints.
func enforceEndpointClearance(line *Line, start Point) {
	if len(line.ControlPoints) == 0 {
		return
	}
	first := &line.ControlPoints[0]
	*first = pushAway(*first, start, line.EndPoint)
	last := &line.ControlPoints[len(line.ControlPoints)-1]
	*last = pushAway(*last, line.EndPoint, start)
}

// pushAway moves pt to at least the endpoint clearance from anchor. When pt
// sits on the anchor, the push direction falls back to the direction toward
// fallback, then to the x axis.
func pushAway(pt, anchor, fallback Point) Point {
	dir := pt.Sub(anchor)
	if dir.Hypot() >= endpointClearance {
		return pt
	}
	if dir.Hypot() < derivativeEpsilon {
		dir = fallback.Sub(anchor)
	}
	if dir.Hypot() < derivativeEpsilon {
		dir = Vec(1, 0)
	}
	return anchor.Translate(dir.Mul(endpointClearance / dir.Hypot()))
}

// chainStart returns the start point of line i: the previous line's end
// point, or the start pose for the first line.
func chainStart(pose StartPose, lines []Line, i int) Point {
	if i == 0 {
		return pose.Point
	}
	return lines[i-1].EndPoint
}

func sortByFitness(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness < pop[j].fitness
	})
}
