// envpack/envpack_test.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package envpack

import (
	"math"
	"testing"

	"github.com/oceanpilot/georoute/grid"
)

func testGrid() grid.Descriptor {
	return grid.Descriptor{Lat0: 0, Lat1: 2, Lon0: 0, Lon1: 2, DLat: 1, DLon: 1}
}

func TestUnloadedPackIsBenign(t *testing.T) {
	var p Pack
	s := p.Sample(10, 10, 0)
	if s.WaveHeightM != DefaultWaveHeightM || s.DepthM != DefaultDepthM {
		t.Errorf("unloaded pack should be calm sea, deep water: got %+v", s)
	}
	if s.CurrentEastKn != 0 || s.CurrentNorthKn != 0 {
		t.Errorf("unloaded pack should have zero current: got %+v", s)
	}
}

func TestSampleAtCellCenterExact(t *testing.T) {
	g := testGrid()
	n := g.Rows() * g.Cols()
	curU := make([]float32, n)
	curV := make([]float32, n)
	for i := range curU {
		curU[i] = float32(i)
		curV[i] = float32(i) * 2
	}

	p, err := Load(g, curU, curV, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for i := 0; i < g.Rows(); i++ {
		for j := 0; j < g.Cols(); j++ {
			c := g.CellCenter(i, j)
			s := p.Sample(c.Lat, c.Lon, 0)
			idx := i*g.Cols() + j
			if math.Abs(s.CurrentEastKn-float64(curU[idx])) > 1e-6 {
				t.Errorf("cell (%d,%d): east=%f, want %f", i, j, s.CurrentEastKn, curU[idx])
			}
		}
	}
}

func TestSampleOutOfBoundsClamps(t *testing.T) {
	g := testGrid()
	n := g.Rows() * g.Cols()
	curU := make([]float32, n)
	curV := make([]float32, n)
	p, err := Load(g, curU, curV, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Should not panic and should equal the clamped edge-cell sample.
	far := p.Sample(1000, 1000, 0)
	edge := p.Sample(g.Lat1, g.Lon1, 0)
	if far != edge {
		t.Errorf("out-of-bounds sample %+v should equal clamped edge sample %+v", far, edge)
	}
}

func TestSampleContinuity(t *testing.T) {
	g := grid.Descriptor{Lat0: 0, Lat1: 10, Lon0: 0, Lon1: 10, DLat: 1, DLon: 1}
	n := g.Rows() * g.Cols()
	curU := make([]float32, n)
	for i := range curU {
		curU[i] = float32(i % g.Cols())
	}
	curV := make([]float32, n)
	p, err := Load(g, curU, curV, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a := p.Sample(5.0, 5.0, 0)
	b := p.Sample(5.0001, 5.0001, 0)
	if math.Abs(a.CurrentEastKn-b.CurrentEastKn) > 0.01 {
		t.Errorf("sampler should be continuous: %+v vs %+v", a, b)
	}
}

func TestDefaultsWhenPlaneAbsent(t *testing.T) {
	g := testGrid()
	n := g.Rows() * g.Cols()
	curU, curV := make([]float32, n), make([]float32, n)
	maskLand := make([]byte, n)
	maskLand[0] = 1 // cell (0,0) is land

	p, err := Load(g, curU, curV, nil, maskLand, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := g.CellCenter(0, 0)
	s := p.Sample(c.Lat, c.Lon, 0)
	if s.DepthM != ShallowDepthM {
		t.Errorf("land-masked cell with no depth plane should report ShallowDepthM, got %f", s.DepthM)
	}

	c = g.CellCenter(1, 1)
	s = p.Sample(c.Lat, c.Lon, 0)
	if s.DepthM != DefaultDepthM {
		t.Errorf("open-water cell with no depth plane should report DefaultDepthM, got %f", s.DepthM)
	}
	if s.WaveHeightM != DefaultWaveHeightM {
		t.Errorf("pack with no wave_hs plane should report DefaultWaveHeightM, got %f", s.WaveHeightM)
	}
}

func TestLoadRejectsMismatchedPlaneSize(t *testing.T) {
	g := testGrid()
	n := g.Rows() * g.Cols()
	curU := make([]float32, n)
	curV := make([]float32, n-1)
	if _, err := Load(g, curU, curV, nil, nil, nil, nil); err == nil {
		t.Errorf("expected error for mismatched cur_v size")
	}
}
