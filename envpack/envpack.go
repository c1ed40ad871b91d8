// envpack/envpack.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package envpack holds the gridded ocean-current, wave-height, and depth
// fields the solvers sample at every expansion, and performs the bilinear
// interpolation between grid points.
package envpack

import (
	"fmt"

	"github.com/oceanpilot/georoute/grid"
)

const (
	// DefaultWaveHeightM is returned when no wave_hs plane was loaded.
	DefaultWaveHeightM = 1.0
	// DefaultDepthM is returned for open-water cells when no depth plane
	// was loaded.
	DefaultDepthM = 5000.0
	// ShallowDepthM is returned for cells flagged as land when no depth
	// plane was loaded.
	ShallowDepthM = 5.0
)

// Sample is an environment reading at a single point and time.
type Sample struct {
	CurrentEastKn  float64
	CurrentNorthKn float64
	WaveHeightM    float64
	DepthM         float64
}

// Pack is an immutable environment pack: a grid descriptor plus up to six
// co-registered planes. Sampling is pure and safe for concurrent use once
// loaded.
type Pack struct {
	loaded bool
	grid   grid.Descriptor

	curU, curV    []float32
	waveHs        []float32 // optional
	depth         []float32 // optional
	maskLand      []byte    // optional
	maskShallow   []byte    // optional
}

// Load stores the given planes after validating that every present plane
// has exactly rows*cols elements. curU and curV are required; the rest may
// be nil.
func Load(g grid.Descriptor, curU, curV, waveHs []float32, maskLand, maskShallow []byte, depth []float32) (Pack, error) {
	if err := g.Validate(); err != nil {
		return Pack{}, fmt.Errorf("envpack: %w", err)
	}
	n := g.Rows() * g.Cols()

	if len(curU) != n {
		return Pack{}, fmt.Errorf("envpack: cur_u has %d elements, want %d", len(curU), n)
	}
	if len(curV) != n {
		return Pack{}, fmt.Errorf("envpack: cur_v has %d elements, want %d", len(curV), n)
	}
	if waveHs != nil && len(waveHs) != n {
		return Pack{}, fmt.Errorf("envpack: wave_hs has %d elements, want %d", len(waveHs), n)
	}
	if depth != nil && len(depth) != n {
		return Pack{}, fmt.Errorf("envpack: depth has %d elements, want %d", len(depth), n)
	}
	if maskLand != nil && len(maskLand) != n {
		return Pack{}, fmt.Errorf("envpack: mask_land has %d elements, want %d", len(maskLand), n)
	}
	if maskShallow != nil && len(maskShallow) != n {
		return Pack{}, fmt.Errorf("envpack: mask_shallow has %d elements, want %d", len(maskShallow), n)
	}

	return Pack{
		loaded: true, grid: g,
		curU: curU, curV: curV, waveHs: waveHs, depth: depth,
		maskLand: maskLand, maskShallow: maskShallow,
	}, nil
}

// Loaded reports whether a pack has been loaded.
func (p Pack) Loaded() bool { return p.loaded }

// Sample returns a bilinearly-interpolated environment reading at
// (lat,lon). timeHours is accepted for forward compatibility with future
// forecast packs but is currently ignored, since a pack is time-invariant
// within a solve. If no pack has been loaded, Sample returns a benign
// calm-sea, deep-water reading.
func (p Pack) Sample(lat, lon float64, timeHours float64) Sample {
	if !p.loaded {
		return Sample{WaveHeightM: DefaultWaveHeightM, DepthM: DefaultDepthM}
	}

	u := p.bilinear(p.curU, lat, lon)
	v := p.bilinear(p.curV, lat, lon)

	s := Sample{CurrentEastKn: float64(u), CurrentNorthKn: float64(v)}

	if p.waveHs != nil {
		s.WaveHeightM = float64(p.bilinear(p.waveHs, lat, lon))
	} else {
		s.WaveHeightM = DefaultWaveHeightM
	}

	if p.depth != nil {
		s.DepthM = float64(p.bilinear(p.depth, lat, lon))
	} else if p.isLandMasked(lat, lon) {
		s.DepthM = ShallowDepthM
	} else {
		s.DepthM = DefaultDepthM
	}

	return s
}

// Grid returns the pack's grid descriptor; the zero Descriptor if unloaded.
func (p Pack) Grid() grid.Descriptor { return p.grid }

func (p Pack) isLandMasked(lat, lon float64) bool {
	if p.maskLand == nil {
		return false
	}
	i, j := p.grid.LatLonToGrid(lat, lon)
	if !p.grid.InBounds(i, j) {
		return false
	}
	return p.maskLand[i*p.grid.Cols()+j] != 0
}

// bilinear samples plane at (lat,lon), clamping outside the grid to the
// nearest edge cell.
func (p Pack) bilinear(plane []float32, lat, lon float64) float32 {
	fi, fj := p.grid.LatLonToFractionalGrid(lat, lon)

	i0 := int(fi)
	j0 := int(fj)
	rows, cols := p.grid.Rows(), p.grid.Cols()
	i1, j1 := i0+1, j0+1
	if i1 >= rows {
		i1 = rows - 1
	}
	if j1 >= cols {
		j1 = cols - 1
	}

	ti := fi - float64(i0)
	tj := fj - float64(j0)

	v00 := plane[i0*cols+j0]
	v01 := plane[i0*cols+j1]
	v10 := plane[i1*cols+j0]
	v11 := plane[i1*cols+j1]

	top := float64(v00)*(1-tj) + float64(v01)*tj
	bot := float64(v10)*(1-tj) + float64(v11)*tj
	return float32(top*(1-ti) + bot*ti)
}
