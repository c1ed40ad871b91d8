// routepost/routepost_test.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routepost

import (
	"math"
	"testing"

	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/route"
)

func wp(lat, lon, t float64) route.Waypoint {
	return route.Waypoint{Lat: lat, Lon: lon, TimeHours: t, HasTime: true}
}

func TestIndexMapStrictlyIncreasingAndValid(t *testing.T) {
	raw := []route.Waypoint{
		wp(0, 0, 0), wp(0, 1, 1), wp(0.001, 2, 2), wp(0, 3, 3), wp(0, 10, 10),
	}
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(0, 10)

	_, rawOut, idx := Process(raw, start, dest, 0, 10, Options{SimplifyToleranceNm: 1, MinLegNm: 0, MinHeadingDeg: 0})

	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			t.Fatalf("indexMap not strictly increasing at %d: %v", i, idx)
		}
	}
	for _, v := range idx {
		if v < 0 || v >= len(rawOut) {
			t.Fatalf("indexMap entry %d out of range [0,%d)", v, len(rawOut))
		}
	}
}

func TestFirstAndLastMatchEndpoints(t *testing.T) {
	raw := []route.Waypoint{wp(1, 1, 0), wp(2, 2, 1), wp(3, 3, 2)}
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(5, 5)

	simplified, _, _ := Process(raw, start, dest, 0, 5, Options{})
	if simplified[0].Lat != start.Lat || simplified[0].Lon != start.Lon {
		t.Errorf("first waypoint %v does not match start %v", simplified[0], start)
	}
	last := simplified[len(simplified)-1]
	if last.Lat != dest.Lat || last.Lon != dest.Lon {
		t.Errorf("last waypoint %v does not match destination %v", last, dest)
	}
}

func TestEndpointAttachIsIdempotent(t *testing.T) {
	start := geo.NewPoint(10, 10)
	dest := geo.NewPoint(20, 20)
	raw := []route.Waypoint{wp(10, 10, 0), wp(15, 15, 5), wp(20, 20, 10)}

	_, rawOut, _ := Process(raw, start, dest, 0, 10, Options{})
	if len(rawOut) != len(raw) {
		t.Errorf("expected no endpoints to be prepended/appended when raw already matches, got %d points, want %d", len(rawOut), len(raw))
	}
}

func TestSimplificationCrossTrackBound(t *testing.T) {
	// A nearly-straight line with one small jog; a generous tolerance should
	// simplify away the jog while staying within the tolerance.
	raw := []route.Waypoint{
		wp(0, 0, 0), wp(0, 5, 1), wp(0.05, 10, 2), wp(0, 15, 3), wp(0, 20, 4),
	}
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(0, 20)
	tol := 5.0

	simplified, rawOut, idx := Process(raw, start, dest, 0, 4, Options{SimplifyToleranceNm: tol})

	for i := 0; i < len(simplified)-1; i++ {
		a := geo.NewPoint(simplified[i].Lat, simplified[i].Lon)
		b := geo.NewPoint(simplified[i+1].Lat, simplified[i+1].Lon)
		lo, hi := idx[i], idx[i+1]
		for k := lo + 1; k < hi; k++ {
			p := geo.NewPoint(rawOut[k].Lat, rawOut[k].Lon)
			xt := math.Abs(geo.CrossTrackDistanceNm(p, a, b))
			if xt > tol {
				t.Errorf("raw point %d is %f nm off the simplified chord, exceeds tolerance %f", k, xt, tol)
			}
		}
	}
}

func TestMinLegFilterDropsShortIntermediateLegs(t *testing.T) {
	raw := []route.Waypoint{
		wp(0, 0, 0), wp(0, 0.01, 1), wp(0, 10, 2),
	}
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(0, 10)

	simplified, _, _ := Process(raw, start, dest, 0, 2, Options{SimplifyToleranceNm: 50, MinLegNm: 5})
	if len(simplified) != 2 {
		t.Errorf("expected the near-duplicate intermediate point to be dropped, got %d waypoints", len(simplified))
	}
}

func TestMinHeadingFilterDropsNegligibleTurns(t *testing.T) {
	raw := []route.Waypoint{
		wp(0, 0, 0), wp(0, 5, 1), wp(0.001, 10, 2), wp(0, 15, 3),
	}
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(0, 15)

	simplified, _, _ := Process(raw, start, dest, 0, 3, Options{SimplifyToleranceNm: 50, MinHeadingDeg: 45})
	if len(simplified) != 2 {
		t.Errorf("expected negligible-turn waypoint to be dropped, got %d waypoints", len(simplified))
	}
}

func TestEmptyRawProducesDirectLine(t *testing.T) {
	start := geo.NewPoint(0, 0)
	dest := geo.NewPoint(1, 1)
	simplified, rawOut, idx := Process(nil, start, dest, 0, 1, Options{})
	if len(simplified) != 2 || len(rawOut) != 2 || len(idx) != 2 {
		t.Fatalf("expected a direct two-point line for an empty raw chain, got simplified=%d raw=%d idx=%d", len(simplified), len(rawOut), len(idx))
	}
}
