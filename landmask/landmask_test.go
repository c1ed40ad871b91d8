// landmask/landmask_test.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package landmask

import (
	"testing"

	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/packio"
)

// stripMask builds a 3x3-cell mask spanning 2x2 degrees (1 degree
// resolution) with a single land cell at the center.
func stripMask(t *testing.T) Mask {
	t.Helper()
	d := grid.Descriptor{Lat0: 0, Lat1: 2, Lon0: 0, Lon1: 2, DLat: 1, DLon: 1}
	cells := make([]byte, d.Rows()*d.Cols())
	cells[1*d.Cols()+1] = 1 // cell (1,1) = (1,1) is land

	data, err := packio.EncodeLandMask(packio.LandMask{Grid: d, Cells: cells})
	if err != nil {
		t.Fatalf("EncodeLandMask: %v", err)
	}
	m, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestUnloadedMaskIsOpenWater(t *testing.T) {
	var m Mask
	if m.IsLand(0, 0) {
		t.Errorf("unloaded mask should report open water")
	}
	if m.SegmentCrossesLand(geo.NewPoint(0, 0), geo.NewPoint(10, 10), 1) {
		t.Errorf("unloaded mask should never flag a land crossing")
	}
}

func TestIsLandKnownCells(t *testing.T) {
	m := stripMask(t)
	if !m.IsLand(1, 1) {
		t.Errorf("expected (1,1) to be land")
	}
	if m.IsLand(0, 0) {
		t.Errorf("expected (0,0) to be open water")
	}
}

func TestIsLandOutOfBounds(t *testing.T) {
	m := stripMask(t)
	// (1000,1000) lies outside the mask's coverage, which IsLand treats as
	// open water before any grid clamping.
	if m.IsLand(1000, 1000) {
		t.Errorf("out-of-bounds point should be open water")
	}
}

// TestIsLandOutOfBoundsOverridesClampedLand uses a mask whose clamped
// corner cell IS land, so a bounds-check bypass (falling through to
// LatLonToGrid's clamp) would report land instead of open water.
func TestIsLandOutOfBoundsOverridesClampedLand(t *testing.T) {
	d := grid.Descriptor{Lat0: 0, Lat1: 2, Lon0: 0, Lon1: 2, DLat: 1, DLon: 1}
	cells := make([]byte, d.Rows()*d.Cols())
	cells[2*d.Cols()+2] = 1 // far corner (2,2) is land

	data, err := packio.EncodeLandMask(packio.LandMask{Grid: d, Cells: cells})
	if err != nil {
		t.Fatalf("EncodeLandMask: %v", err)
	}
	m, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !m.IsLand(2, 2) {
		t.Errorf("expected in-bounds corner (2,2) to be land")
	}
	if m.IsLand(1000, 1000) {
		t.Errorf("out-of-bounds query clamping to a land cell must still report open water")
	}
}

func TestSegmentCrossesLandSymmetric(t *testing.T) {
	m := stripMask(t)
	a := geo.NewPoint(1, 0)
	b := geo.NewPoint(1, 2)
	fwd := m.SegmentCrossesLand(a, b, 5)
	rev := m.SegmentCrossesLand(b, a, 5)
	if fwd != rev {
		t.Errorf("SegmentCrossesLand should be symmetric: forward=%v reverse=%v", fwd, rev)
	}
	if !fwd {
		t.Errorf("segment through the land cell should cross land")
	}
}

func TestLoadMalformedHeader(t *testing.T) {
	if _, err := Load([]byte("too short")); err == nil {
		t.Errorf("expected LoadError for truncated header")
	} else if _, ok := err.(*LoadError); !ok {
		t.Errorf("expected *LoadError, got %T", err)
	}
}

func TestDescribe(t *testing.T) {
	m := stripMask(t)
	d := m.Describe()
	if !d.Loaded {
		t.Fatalf("expected Loaded=true")
	}
	if d.Rows != 3 || d.Cols != 3 {
		t.Errorf("unexpected dimensions: %dx%d", d.Rows, d.Cols)
	}
	if len(d.Cells) != 9 {
		t.Errorf("expected 9 cells, got %d", len(d.Cells))
	}
}
