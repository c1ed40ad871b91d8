// landmask/landmask.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package landmask loads the binary land-mask raster and answers land/water
// queries for grid cells and great-circle segments.
package landmask

import (
	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/packio"
)

// LoadError is returned by Load when the supplied bytes are malformed,
// truncated, or describe a zero-sized raster.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "landmask: load error: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// Mask is an immutable land-mask raster. The zero value represents "no
// mask loaded": IsLand always returns false and SegmentCrossesLand never
// rejects a segment, matching the specification's "open water assumed
// outside the mask's coverage" rule.
type Mask struct {
	loaded bool
	grid   grid.Descriptor
	cells  []byte
}

// Load parses the 56-byte header and rows*cols body described in the
// specification and returns an immutable Mask. On any structural problem
// it returns a *LoadError and a zero-value Mask that behaves as "no mask
// loaded".
func Load(data []byte) (Mask, error) {
	lm, err := packio.DecodeLandMask(data)
	if err != nil {
		return Mask{}, &LoadError{Err: err}
	}
	return Mask{loaded: true, grid: lm.Grid, cells: lm.Cells}, nil
}

// Loaded reports whether a mask was successfully loaded.
func (m Mask) Loaded() bool { return m.loaded }

// IsLand reports whether the nearest cell to (lat,lon) is land. Points
// outside the mask's coverage, or queries against an unloaded mask, are
// treated as open water.
func (m Mask) IsLand(lat, lon float64) bool {
	if !m.loaded {
		return false
	}
	if lat < m.grid.Lat0 || lat > m.grid.Lat1 || lon < m.grid.Lon0 || lon > m.grid.Lon1 {
		return false
	}
	i, j := m.grid.LatLonToGrid(lat, lon)
	return m.cellIsLand(i, j)
}

func (m Mask) cellIsLand(i, j int) bool {
	if !m.grid.InBounds(i, j) {
		return false
	}
	idx := i*m.grid.Cols() + j
	return m.cells[idx] != 0
}

// SegmentCrossesLand samples the great-circle segment from a to b at
// stepNm intervals (minimum two samples, endpoints included) and reports
// whether any sample falls on land.
func (m Mask) SegmentCrossesLand(a, b geo.Point, stepNm float64) bool {
	if !m.loaded {
		return false
	}
	if stepNm <= 0 {
		stepNm = 1.0
	}

	dist := geo.Distance(a, b)
	samples := int(dist/stepNm) + 1
	if samples < 2 {
		samples = 2
	}

	if dist == 0 {
		return m.IsLand(a.Lat, a.Lon)
	}

	bearing := geo.InitialBearing(a, b)
	for k := 0; k < samples; k++ {
		frac := float64(k) / float64(samples-1)
		d := frac * dist
		p := geo.DestinationPoint(a, bearing, d)
		if m.IsLand(p.Lat, p.Lon) {
			return true
		}
	}
	return false
}

// Description summarizes a loaded mask's extent, resolution, and raw cell
// data, for host-side visualization export.
type Description struct {
	Loaded             bool
	Lat0, Lat1         float64
	Lon0, Lon1         float64
	DLat, DLon         float64
	Rows, Cols         int
	Cells              []byte
}

// Describe returns the mask's extent, resolution, row/col counts, and a
// reference to its cells.
func (m Mask) Describe() Description {
	if !m.loaded {
		return Description{}
	}
	return Description{
		Loaded: true,
		Lat0:   m.grid.Lat0, Lat1: m.grid.Lat1,
		Lon0: m.grid.Lon0, Lon1: m.grid.Lon1,
		DLat: m.grid.DLat, DLon: m.grid.DLon,
		Rows: m.grid.Rows(), Cols: m.grid.Cols(),
		Cells: m.cells,
	}
}

// Grid returns the mask's grid descriptor; the zero Descriptor if unloaded.
func (m Mask) Grid() grid.Descriptor { return m.grid }

func (e *LoadError) Is(target error) bool {
	_, ok := target.(*LoadError)
	return ok
}
