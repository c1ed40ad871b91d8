// isochrone/options.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package isochrone

// Bounds the request-level numeric knobs are clamped into. The specification
// leaves several of these bare ("in [min,max]") without naming the bounds or
// a default; the values below are this module's resolution of that
// ambiguity, recorded in DESIGN.md.
const (
	minTimeStepMinutesBound = 1.0
	maxTimeStepMinutesBound = 180.0
	defaultTimeStepMinutes  = 30.0

	minHeadingCount     = 6
	maxHeadingCount     = 72
	defaultHeadingCount = 16

	minMergeRadiusNm     = 5.0
	maxMergeRadiusNm     = 40.0
	defaultMergeRadiusNm = 15.0

	minGoalRadiusNm     = 10.0
	maxGoalRadiusNm     = 60.0
	defaultGoalRadiusNm = 20.0

	minMaxHours     = 12.0
	maxMaxHours     = 720.0
	defaultMaxHours = 240.0

	defaultBearingWindowDeg = 180.0 // full circle: no pruning

	defaultMinTimeStepMinutes   = 10.0
	defaultMaxTimeStepMinutesAS = 60.0
	defaultComplexityThreshold  = 5.0 // meters of significant wave height

	defaultLongRouteThresholdNm    = 1500.0
	defaultCoarseGridResolutionDeg = 2.0
	defaultCorridorWidthNm         = 100.0
)

// Options bounds and tunes a single isochrone solve. Every field has a
// defined default and, where the specification names one, a clamped range;
// Clamp applies both.
type Options struct {
	TimeStepMinutes  float64
	HeadingCount     int
	MergeRadiusNm    float64
	GoalRadiusNm     float64
	MaxHours         float64
	BearingWindowDeg float64
	BeamWidth        int

	EnableAdaptiveSampling bool
	MinTimeStepMinutes     float64
	MaxTimeStepMinutes     float64
	ComplexityThreshold    float64

	EnableHierarchicalRouting bool
	LongRouteThresholdNm      float64
	CoarseGridResolutionDeg   float64
	CorridorWidthNm           float64
}

// DefaultOptions returns the specification's default isochrone request
// configuration.
func DefaultOptions() Options {
	return Options{
		TimeStepMinutes:  defaultTimeStepMinutes,
		HeadingCount:     defaultHeadingCount,
		MergeRadiusNm:    defaultMergeRadiusNm,
		GoalRadiusNm:     defaultGoalRadiusNm,
		MaxHours:         defaultMaxHours,
		BearingWindowDeg: defaultBearingWindowDeg,
		BeamWidth:        0,

		MinTimeStepMinutes:  defaultMinTimeStepMinutes,
		MaxTimeStepMinutes:  defaultMaxTimeStepMinutesAS,
		ComplexityThreshold: defaultComplexityThreshold,

		LongRouteThresholdNm:    defaultLongRouteThresholdNm,
		CoarseGridResolutionDeg: defaultCoarseGridResolutionDeg,
		CorridorWidthNm:         defaultCorridorWidthNm,
	}
}

// Clamp fills in zero-valued fields with their defaults and clamps every
// bounded field into its valid range, as the specification requires of
// request normalization.
func (o Options) Clamp() Options {
	if o.TimeStepMinutes == 0 {
		o.TimeStepMinutes = defaultTimeStepMinutes
	}
	o.TimeStepMinutes = clampf(o.TimeStepMinutes, minTimeStepMinutesBound, maxTimeStepMinutesBound)

	if o.HeadingCount == 0 {
		o.HeadingCount = defaultHeadingCount
	}
	o.HeadingCount = clampi(o.HeadingCount, minHeadingCount, maxHeadingCount)

	if o.MergeRadiusNm == 0 {
		o.MergeRadiusNm = defaultMergeRadiusNm
	}
	o.MergeRadiusNm = clampf(o.MergeRadiusNm, minMergeRadiusNm, maxMergeRadiusNm)

	if o.GoalRadiusNm == 0 {
		o.GoalRadiusNm = defaultGoalRadiusNm
	}
	o.GoalRadiusNm = clampf(o.GoalRadiusNm, minGoalRadiusNm, maxGoalRadiusNm)

	if o.MaxHours == 0 {
		o.MaxHours = defaultMaxHours
	}
	o.MaxHours = clampf(o.MaxHours, minMaxHours, maxMaxHours)

	if o.BearingWindowDeg <= 0 || o.BearingWindowDeg > 180 {
		o.BearingWindowDeg = defaultBearingWindowDeg
	}

	if o.BeamWidth < 0 {
		o.BeamWidth = 0
	}

	if o.EnableAdaptiveSampling {
		if o.MinTimeStepMinutes == 0 {
			o.MinTimeStepMinutes = defaultMinTimeStepMinutes
		}
		if o.MaxTimeStepMinutes == 0 {
			o.MaxTimeStepMinutes = defaultMaxTimeStepMinutesAS
		}
		if o.ComplexityThreshold == 0 {
			o.ComplexityThreshold = defaultComplexityThreshold
		}
	}

	if o.EnableHierarchicalRouting {
		if o.LongRouteThresholdNm == 0 {
			o.LongRouteThresholdNm = defaultLongRouteThresholdNm
		}
		if o.CoarseGridResolutionDeg == 0 {
			o.CoarseGridResolutionDeg = defaultCoarseGridResolutionDeg
		}
		if o.CorridorWidthNm == 0 {
			o.CorridorWidthNm = defaultCorridorWidthNm
		}
	}

	return o
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
