// isochrone/corridor.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package isochrone

import (
	"math"

	"github.com/oceanpilot/georoute/geo"
)

// distanceToPolylineNm returns the minimum great-circle distance, in
// nautical miles, from p to any point on the polyline described by poly.
// Used by the hierarchical fine pass to enforce the corridor constraint
// around a coarse route.
func distanceToPolylineNm(p geo.Point, poly []geo.Point) float64 {
	switch len(poly) {
	case 0:
		return math.Inf(1)
	case 1:
		return geo.Distance(p, poly[0])
	}

	best := math.Inf(1)
	for i := 0; i < len(poly)-1; i++ {
		d := distanceToSegmentNm(p, poly[i], poly[i+1])
		if d < best {
			best = d
		}
	}
	return best
}

func distanceToSegmentNm(p, start, end geo.Point) float64 {
	segLen := geo.Distance(start, end)
	if segLen < 1e-9 {
		return geo.Distance(p, start)
	}

	bearingSegment := geo.InitialBearing(start, end)
	bearingToP := geo.InitialBearing(start, p)
	if geo.HeadingDifference(bearingToP, bearingSegment) > 90 {
		// p projects behind the segment's start.
		return geo.Distance(p, start)
	}

	along := geo.AlongTrackDistanceNm(p, start, end)
	if along > segLen {
		return geo.Distance(p, end)
	}
	return math.Abs(geo.CrossTrackDistanceNm(p, start, end))
}
