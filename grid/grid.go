// grid/grid.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package grid defines the lat/lon raster that the land mask, environment
// pack, and A* solver are all indexed against.
package grid

import (
	"fmt"
	"math"

	"github.com/oceanpilot/georoute/geo"
)

// Descriptor describes a regular lat/lon raster: rows are indexed south to
// north, columns west to east. Cell (i,j) represents the point
// (Lat0+i*DLat, Lon0+j*DLon).
type Descriptor struct {
	Lat0, Lat1 float64
	Lon0, Lon1 float64
	DLat, DLon float64
}

// Validate reports whether the descriptor satisfies its invariants
// (Lat0<Lat1, Lon0<Lon1, DLat>0, DLon>0).
func (d Descriptor) Validate() error {
	if !(d.Lat0 < d.Lat1) {
		return fmt.Errorf("grid: lat0 (%f) must be < lat1 (%f)", d.Lat0, d.Lat1)
	}
	if !(d.Lon0 < d.Lon1) {
		return fmt.Errorf("grid: lon0 (%f) must be < lon1 (%f)", d.Lon0, d.Lon1)
	}
	if d.DLat <= 0 {
		return fmt.Errorf("grid: dLat must be > 0, got %f", d.DLat)
	}
	if d.DLon <= 0 {
		return fmt.Errorf("grid: dLon must be > 0, got %f", d.DLon)
	}
	return nil
}

// Rows returns the number of rows in the raster.
func (d Descriptor) Rows() int {
	return int(math.Round((d.Lat1-d.Lat0)/d.DLat)) + 1
}

// Cols returns the number of columns in the raster.
func (d Descriptor) Cols() int {
	return int(math.Round((d.Lon1-d.Lon0)/d.DLon)) + 1
}

// InBounds reports whether cell (i,j) is addressable.
func (d Descriptor) InBounds(i, j int) bool {
	return i >= 0 && i < d.Rows() && j >= 0 && j < d.Cols()
}

// CellCenter returns the geographic point at the center of cell (i,j),
// without clamping; callers that may receive out-of-range indices should
// check InBounds first.
func (d Descriptor) CellCenter(i, j int) geo.Point {
	return geo.NewPoint(d.Lat0+float64(i)*d.DLat, d.Lon0+float64(j)*d.DLon)
}

// LatLonToGrid clamps (lat,lon) to the descriptor's bounds and returns the
// nearest integer cell indices.
func (d Descriptor) LatLonToGrid(lat, lon float64) (i, j int) {
	fi, fj := d.LatLonToFractionalGrid(lat, lon)
	return int(math.Round(fi)), int(math.Round(fj))
}

// LatLonToFractionalGrid clamps (lat,lon) to the descriptor's bounds and
// returns fractional cell indices, used internally by bilinear samplers.
func (d Descriptor) LatLonToFractionalGrid(lat, lon float64) (fi, fj float64) {
	lat = clamp(lat, d.Lat0, d.Lat1)
	lon = clamp(lon, d.Lon0, d.Lon1)
	fi = (lat - d.Lat0) / d.DLat
	fj = (lon - d.Lon0) / d.DLon

	rows, cols := float64(d.Rows()-1), float64(d.Cols()-1)
	fi = clamp(fi, 0, rows)
	fj = clamp(fj, 0, cols)
	return fi, fj
}

// GridToLatLon returns the cell-center point for (i,j), clamping
// out-of-range indices to the nearest valid cell.
func (d Descriptor) GridToLatLon(i, j int) geo.Point {
	rows, cols := d.Rows(), d.Cols()
	if i < 0 {
		i = 0
	} else if i >= rows {
		i = rows - 1
	}
	if j < 0 {
		j = 0
	} else if j >= cols {
		j = cols - 1
	}
	return d.CellCenter(i, j)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
