// routepost/routepost.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package routepost turns a solver's raw waypoint chain into the route a
// caller actually wants: attached to the true endpoints, simplified by
// Douglas-Peucker, and filtered of legs and turns too small to matter.
package routepost

import (
	"math"

	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/route"
)

// endpointEpsilonNm is the distance below which a raw chain's endpoint is
// considered to already coincide with the true start/destination, making
// attachment idempotent per the specification's endpoint-attach note.
const endpointEpsilonNm = 0.003 // roughly 5.5 meters

// Options bounds the post-processing pass.
type Options struct {
	SimplifyToleranceNm float64
	MinLegNm            float64
	MinHeadingDeg       float64
}

// Process runs endpoint attachment, Douglas-Peucker simplification, and the
// minimum-leg/minimum-heading filters over raw, returning the simplified
// waypoints, the (possibly endpoint-extended) raw chain, and the index map
// from simplified index to raw index.
func Process(raw []route.Waypoint, start, destination geo.Point, startTimeHours, destTimeHours float64, opts Options) (simplified, rawOut []route.Waypoint, indexMap []int) {
	rawOut = attachEndpoints(raw, start, destination, startTimeHours, destTimeHours)
	if len(rawOut) == 0 {
		return nil, rawOut, nil
	}
	if len(rawOut) == 1 {
		return []route.Waypoint{rawOut[0]}, rawOut, []int{0}
	}

	keep := douglasPeucker(rawOut, opts.SimplifyToleranceNm)
	keep = filterShortLegs(rawOut, keep, opts.MinLegNm, opts.SimplifyToleranceNm)
	keep = filterSmallHeadingChanges(rawOut, keep, opts.MinHeadingDeg)

	simplified = make([]route.Waypoint, len(keep))
	for i, idx := range keep {
		simplified[i] = rawOut[idx]
	}
	markCourseChanges(simplified, opts.MinHeadingDeg)

	return simplified, rawOut, keep
}

func attachEndpoints(raw []route.Waypoint, start, destination geo.Point, startTimeHours, destTimeHours float64) []route.Waypoint {
	if len(raw) == 0 {
		return []route.Waypoint{
			{Lat: start.Lat, Lon: start.Lon, TimeHours: startTimeHours, HasTime: true},
			{Lat: destination.Lat, Lon: destination.Lon, TimeHours: destTimeHours, HasTime: true},
		}
	}

	out := make([]route.Waypoint, 0, len(raw)+2)

	first := raw[0]
	if geo.Distance(geo.NewPoint(first.Lat, first.Lon), start) > endpointEpsilonNm {
		out = append(out, route.Waypoint{Lat: start.Lat, Lon: start.Lon, TimeHours: first.TimeHours, HasTime: first.HasTime})
	}
	out = append(out, raw...)

	last := out[len(out)-1]
	if geo.Distance(geo.NewPoint(last.Lat, last.Lon), destination) > endpointEpsilonNm {
		out = append(out, route.Waypoint{Lat: destination.Lat, Lon: destination.Lon, TimeHours: last.TimeHours, HasTime: last.HasTime})
	}

	return out
}

// douglasPeucker returns the indices (into pts, strictly increasing,
// including 0 and len(pts)-1) retained by Douglas-Peucker simplification
// with spherical cross-track distance.
func douglasPeucker(pts []route.Waypoint, toleranceNm float64) []int {
	if len(pts) <= 2 {
		return allIndices(len(pts))
	}

	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true
	simplifySegment(pts, 0, len(pts)-1, toleranceNm, keep)

	var idx []int
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return idx
}

func simplifySegment(pts []route.Waypoint, lo, hi int, toleranceNm float64, keep []bool) {
	if hi-lo < 2 {
		return
	}
	start := geo.NewPoint(pts[lo].Lat, pts[lo].Lon)
	end := geo.NewPoint(pts[hi].Lat, pts[hi].Lon)

	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		p := geo.NewPoint(pts[i].Lat, pts[i].Lon)
		d := math.Abs(geo.CrossTrackDistanceNm(p, start, end))
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > toleranceNm {
		keep[maxIdx] = true
		simplifySegment(pts, lo, maxIdx, toleranceNm, keep)
		simplifySegment(pts, maxIdx, hi, toleranceNm, keep)
	}
}

// filterShortLegs drops an intermediate retained waypoint when both of its
// adjacent legs are shorter than minLegNm and dropping it would not push
// the resulting cross-track error past toleranceNm.
func filterShortLegs(raw []route.Waypoint, keep []int, minLegNm, toleranceNm float64) []int {
	if minLegNm <= 0 || len(keep) <= 2 {
		return keep
	}

	out := append([]int(nil), keep...)
	for i := 1; i < len(out)-1; {
		prev := geo.NewPoint(raw[out[i-1]].Lat, raw[out[i-1]].Lon)
		cur := geo.NewPoint(raw[out[i]].Lat, raw[out[i]].Lon)
		next := geo.NewPoint(raw[out[i+1]].Lat, raw[out[i+1]].Lon)

		legIn := geo.Distance(prev, cur)
		legOut := geo.Distance(cur, next)
		if legIn >= minLegNm || legOut >= minLegNm {
			i++
			continue
		}

		xt := math.Abs(geo.CrossTrackDistanceNm(cur, prev, next))
		if xt > toleranceNm {
			i++
			continue
		}

		out = append(out[:i], out[i+1:]...)
	}
	return out
}

// filterSmallHeadingChanges drops an intermediate retained waypoint when the
// heading change across it is smaller than minHeadingDeg.
func filterSmallHeadingChanges(raw []route.Waypoint, keep []int, minHeadingDeg float64) []int {
	if minHeadingDeg <= 0 || len(keep) <= 2 {
		return keep
	}

	out := append([]int(nil), keep...)
	for i := 1; i < len(out)-1; {
		prev := geo.NewPoint(raw[out[i-1]].Lat, raw[out[i-1]].Lon)
		cur := geo.NewPoint(raw[out[i]].Lat, raw[out[i]].Lon)
		next := geo.NewPoint(raw[out[i+1]].Lat, raw[out[i+1]].Lon)

		headingIn := geo.InitialBearing(prev, cur)
		headingOut := geo.InitialBearing(cur, next)
		if geo.HeadingDifference(headingIn, headingOut) >= minHeadingDeg {
			i++
			continue
		}
		out = append(out[:i], out[i+1:]...)
	}
	return out
}

func markCourseChanges(wps []route.Waypoint, minHeadingDeg float64) {
	for i := 1; i < len(wps)-1; i++ {
		prev := geo.NewPoint(wps[i-1].Lat, wps[i-1].Lon)
		cur := geo.NewPoint(wps[i].Lat, wps[i].Lon)
		next := geo.NewPoint(wps[i+1].Lat, wps[i+1].Lon)

		headingIn := geo.InitialBearing(prev, cur)
		headingOut := geo.InitialBearing(cur, next)
		wps[i].IsCourseChange = geo.HeadingDifference(headingIn, headingOut) >= minHeadingDeg
	}
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
