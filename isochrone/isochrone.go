// isochrone/isochrone.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package isochrone implements the free-space wavefront-expansion solver:
// successor states are advanced by great-circle projection rather than
// grid steps, pruned by merge radius within a layer, optionally limited to
// a beam, and optionally routed through a coarse-to-fine hierarchical pass
// for long crossings.
package isochrone

import (
	"context"
	"math"
	"time"

	"github.com/oceanpilot/georoute/envpack"
	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/landmask"
	"github.com/oceanpilot/georoute/route"
	"github.com/oceanpilot/georoute/vessel"
)

const nmPerDegree = geo.EarthRadiusNm * math.Pi / 180

// State is one expanded isochrone state, arena-stored and referenced by
// index; ParentIndex is always strictly less than the state's own index,
// and -1 at the root.
type State struct {
	Position              geo.Point
	TimeHours             float64
	HeadingDeg            float64 // NaN at the root
	ParentIndex           int
	SegmentDistanceNm     float64
	CumulativeDistanceNm  float64
	EffectiveSpeedKts     float64
	MaxWaveHeightM        float64
	HazardFlags           route.HazardFlags
}

// Request configures a single isochrone solve. Ship is expected to already
// be the safety-cap-adjusted effective vessel model.
type Request struct {
	Start, Destination geo.Point
	DepartTimeHours    float64
	Ship               vessel.Model
	Options            Options
}

// Result is the raw outcome of a solve.
type Result struct {
	Arena           []State
	Chain           []State
	ReachedGoal     bool
	StepCount       int // layers expanded
	FrontierCount   int // size of the terminating layer
	TimedOut        bool
	IsCoarseRoute   bool
	HazardFlags     route.HazardFlags
	DiagnosticFlags route.DiagnosticFlags
}

// Solve runs the isochrone expansion described in the specification,
// dispatching to the hierarchical coarse-then-fine pass when enabled and
// the crossing is long enough to warrant it.
func Solve(ctx context.Context, mask landmask.Mask, sample envpack.SampleFunc, req Request,
	deadline time.Time, abort <-chan struct{}) (*Result, error) {

	opts := req.Options.Clamp()
	req.Options = opts

	if opts.EnableHierarchicalRouting && geo.Distance(req.Start, req.Destination) >= opts.LongRouteThresholdNm {
		return solveHierarchical(ctx, mask, sample, req, deadline, abort)
	}
	return solveFlat(ctx, mask, sample, req, deadline, abort, nil)
}

func solveHierarchical(ctx context.Context, mask landmask.Mask, sample envpack.SampleFunc, req Request,
	deadline time.Time, abort <-chan struct{}) (*Result, error) {

	coarseReq := req
	coarseReq.Options.EnableHierarchicalRouting = false
	coarseCellDiagonalNm := req.Options.CoarseGridResolutionDeg * nmPerDegree * math.Sqrt2
	coarseReq.Options.MergeRadiusNm = clampf(0.6*coarseCellDiagonalNm, minMergeRadiusNm, maxMergeRadiusNm)

	coarseResult, err := solveFlat(ctx, mask, sample, coarseReq, deadline, abort, nil)
	if err != nil || !coarseResult.ReachedGoal {
		return coarseResult, err
	}

	corridor := make([]geo.Point, len(coarseResult.Chain))
	for i, st := range coarseResult.Chain {
		corridor[i] = st.Position
	}

	fineReq := req
	fineReq.Options.EnableHierarchicalRouting = false
	fineResult, err := solveFlat(ctx, mask, sample, fineReq, deadline, abort, corridor)
	if err != nil {
		return fineResult, err
	}
	if fineResult.ReachedGoal {
		return fineResult, nil
	}

	coarseResult.IsCoarseRoute = true
	return coarseResult, nil
}

// candidate is a not-yet-admitted successor, produced during a layer's
// expansion and subject to merge-radius dominance before becoming a State.
type candidate struct {
	parentIdx            int
	position             geo.Point
	timeHours            float64
	headingDeg           float64
	segmentDistanceNm    float64
	cumulativeDistanceNm float64
	effectiveSpeedKts    float64
	maxWaveHeightM       float64
	hazardFlags          route.HazardFlags
}

func solveFlat(ctx context.Context, mask landmask.Mask, sample envpack.SampleFunc, req Request,
	deadline time.Time, abort <-chan struct{}, corridor []geo.Point) (*Result, error) {

	o := req.Options
	ship := req.Ship

	arena := []State{{
		Position:    req.Start,
		TimeHours:   req.DepartTimeHours,
		HeadingDeg:  math.NaN(),
		ParentIndex: -1,
	}}

	var rejectedHazards route.HazardFlags
	var diagFlags route.DiagnosticFlags

	nearestIdx := 0
	nearestDist := geo.Distance(req.Start, req.Destination)

	if nearestDist <= o.GoalRadiusNm {
		return &Result{
			Arena:       arena,
			Chain:       []State{arena[0]},
			ReachedGoal: true,
			StepCount:   0,
			FrontierCount: 1,
		}, nil
	}

	frontier := []int{0}
	layers := 0
	bestArrivalIdx := -1
	timedOut := false

	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			timedOut = true
			goto done
		default:
		}
		if isCancelled(deadline, abort) {
			timedOut = true
			goto done
		}

		var candidates []candidate
		for _, idx := range frontier {
			s := arena[idx]
			if s.TimeHours > o.MaxHours {
				continue
			}

			fromSample, err := sample(s.Position.Lat, s.Position.Lon, s.TimeHours)
			if err != nil {
				diagFlags |= route.SamplerFailure
				continue
			}

			dt := o.TimeStepMinutes / 60
			if o.EnableAdaptiveSampling {
				complexity := localComplexity(ship, fromSample)
				if complexity > o.ComplexityThreshold {
					dt = o.MinTimeStepMinutes / 60
				}
			}

			bearingToGoal := geo.InitialBearing(s.Position, req.Destination)
			isRoot := idx == 0

			for k := 0; k < o.HeadingCount; k++ {
				theta := 360 * float64(k) / float64(o.HeadingCount)

				if !isRoot && geo.HeadingDifference(s.HeadingDeg, theta) > ship.MaxHeadingChangeDeg {
					rejectedHazards |= route.HeadingCap
					continue
				}
				if o.BearingWindowDeg < 180 && geo.HeadingDifference(bearingToGoal, theta) > o.BearingWindowDeg {
					continue
				}

				groundSpeed := ship.GroundSpeedKts(theta, fromSample.WaveHeightM, fromSample.CurrentEastKn, fromSample.CurrentNorthKn)
				distNm := groundSpeed * dt
				newPos := geo.DestinationPoint(s.Position, theta, distNm)

				if corridor != nil && distanceToPolylineNm(newPos, corridor) > o.CorridorWidthNm {
					continue
				}

				destSample, derr := sample(newPos.Lat, newPos.Lon, s.TimeHours+dt)
				if derr != nil {
					diagFlags |= route.SamplerFailure
					continue
				}

				var hazards route.HazardFlags
				reject := false
				if mask.SegmentCrossesLand(s.Position, newPos, 1.0) {
					hazards |= route.LandTouch
					reject = true
				}
				if fromSample.WaveHeightM > ship.MaxWaveHeightM || destSample.WaveHeightM > ship.MaxWaveHeightM {
					hazards |= route.WaveCap
					reject = true
				}
				if destSample.DepthM < ship.MinRequiredDepthM() {
					hazards |= route.Shallow
					reject = true
				}
				if reject {
					rejectedHazards |= hazards
					continue
				}

				maxWave := s.MaxWaveHeightM
				if destSample.WaveHeightM > maxWave {
					maxWave = destSample.WaveHeightM
				}

				candidates = append(candidates, candidate{
					parentIdx:            idx,
					position:             newPos,
					timeHours:            s.TimeHours + dt,
					headingDeg:           theta,
					segmentDistanceNm:    distNm,
					cumulativeDistanceNm: s.CumulativeDistanceNm + distNm,
					effectiveSpeedKts:    groundSpeed,
					maxWaveHeightM:       maxWave,
					hazardFlags:          s.HazardFlags,
				})
			}
		}

		admitted := mergeRadiusPrune(candidates, o.MergeRadiusNm)
		if len(admitted) == 0 {
			break
		}

		layerIndices := make([]int, 0, len(admitted))
		goalReachedThisLayer := false
		for _, c := range admitted {
			st := State{
				Position:             c.position,
				TimeHours:            c.timeHours,
				HeadingDeg:           c.headingDeg,
				ParentIndex:          c.parentIdx,
				SegmentDistanceNm:    c.segmentDistanceNm,
				CumulativeDistanceNm: c.cumulativeDistanceNm,
				EffectiveSpeedKts:    c.effectiveSpeedKts,
				MaxWaveHeightM:       c.maxWaveHeightM,
				HazardFlags:          c.hazardFlags,
			}
			arena = append(arena, st)
			idx := len(arena) - 1
			layerIndices = append(layerIndices, idx)

			d := geo.Distance(st.Position, req.Destination)
			if d < nearestDist {
				nearestDist = d
				nearestIdx = idx
			}
			if d <= o.GoalRadiusNm {
				goalReachedThisLayer = true
				if bestArrivalIdx == -1 || d < geo.Distance(arena[bestArrivalIdx].Position, req.Destination) {
					bestArrivalIdx = idx
				}
			}
		}

		layers++

		if o.BeamWidth > 0 && len(layerIndices) > o.BeamWidth {
			layerIndices = beamLimit(arena, layerIndices, req.Destination, ship.CalmSpeedKts, o.BeamWidth)
		}

		frontier = layerIndices

		if goalReachedThisLayer {
			break
		}
	}

done:
	result := &Result{
		Arena:           arena,
		StepCount:       layers,
		FrontierCount:   len(frontier),
		TimedOut:        timedOut,
		DiagnosticFlags: diagFlags,
	}

	if bestArrivalIdx != -1 {
		result.ReachedGoal = true
		result.Chain = backtrace(arena, bestArrivalIdx)
	} else {
		result.Chain = backtrace(arena, nearestIdx)
	}

	result.HazardFlags = rejectedHazards
	for _, st := range result.Chain {
		result.HazardFlags |= st.HazardFlags
	}

	return result, nil
}

// localComplexity is this module's resolution of the specification's
// under-specified "local complexity metric (wave height, proximity to
// shallow/land)": ambient wave height plus a penalty that grows as depth
// approaches the vessel's minimum required clearance.
func localComplexity(ship vessel.Model, s envpack.Sample) float64 {
	complexity := s.WaveHeightM
	margin := s.DepthM - ship.MinRequiredDepthM()
	if margin < ship.MinRequiredDepthM() {
		complexity += (ship.MinRequiredDepthM() - margin) / 10
	}
	return complexity
}

func mergeRadiusPrune(candidates []candidate, mergeRadiusNm float64) []candidate {
	admitted := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		replacedAt := -1
		dominated := false
		for i := range admitted {
			if geo.Distance(c.position, admitted[i].position) <= mergeRadiusNm {
				dominated = true
				if candidateDominates(c, admitted[i]) {
					replacedAt = i
				}
				break
			}
		}
		if !dominated {
			admitted = append(admitted, c)
		} else if replacedAt != -1 {
			admitted[replacedAt] = c
		}
	}
	return admitted
}

// candidateDominates reports whether a should replace b under an existing
// merge-radius conflict: smaller time first, then smaller cumulative
// distance, then fewer hazard flags set.
func candidateDominates(a, b candidate) bool {
	if a.timeHours != b.timeHours {
		return a.timeHours < b.timeHours
	}
	if a.cumulativeDistanceNm != b.cumulativeDistanceNm {
		return a.cumulativeDistanceNm < b.cumulativeDistanceNm
	}
	return a.hazardFlags.PopCount() < b.hazardFlags.PopCount()
}

func beamLimit(arena []State, indices []int, destination geo.Point, calmSpeedKts float64, beamWidth int) []int {
	alpha := 1 / calmSpeedKts
	type scored struct {
		idx   int
		score float64
	}
	scoredList := make([]scored, len(indices))
	for i, idx := range indices {
		d := geo.Distance(arena[idx].Position, destination)
		scoredList[i] = scored{idx: idx, score: arena[idx].TimeHours + alpha*d}
	}
	for i := 1; i < len(scoredList); i++ {
		for j := i; j > 0 && scoredList[j].score < scoredList[j-1].score; j-- {
			scoredList[j], scoredList[j-1] = scoredList[j-1], scoredList[j]
		}
	}
	if len(scoredList) > beamWidth {
		scoredList = scoredList[:beamWidth]
	}
	out := make([]int, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.idx
	}
	return out
}

func backtrace(arena []State, idx int) []State {
	if idx < 0 {
		return nil
	}
	var chain []State
	for i := idx; i != -1; i = arena[i].ParentIndex {
		chain = append(chain, arena[i])
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func isCancelled(deadline time.Time, abort <-chan struct{}) bool {
	if !deadline.IsZero() && time.Now().After(deadline) {
		return true
	}
	if abort != nil {
		select {
		case <-abort:
			return true
		default:
		}
	}
	return false
}
