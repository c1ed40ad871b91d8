// packio/packio_test.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packio

import (
	"testing"

	"github.com/oceanpilot/georoute/grid"
)

func smallMask() LandMask {
	d := grid.Descriptor{Lat0: 0, Lat1: 1, Lon0: 0, Lon1: 1, DLat: 1, DLon: 1}
	return LandMask{Grid: d, Cells: []byte{0, 1, 1, 0}}
}

func TestLandMaskRoundTrip(t *testing.T) {
	m := smallMask()
	data, err := EncodeLandMask(m)
	if err != nil {
		t.Fatalf("EncodeLandMask: %v", err)
	}
	if len(data) != LandMaskHeaderSize+4 {
		t.Fatalf("encoded size = %d, want %d", len(data), LandMaskHeaderSize+4)
	}

	got, err := DecodeLandMask(data)
	if err != nil {
		t.Fatalf("DecodeLandMask: %v", err)
	}
	if got.Grid != m.Grid {
		t.Errorf("grid mismatch: got %+v, want %+v", got.Grid, m.Grid)
	}
	for i := range m.Cells {
		if got.Cells[i] != m.Cells[i] {
			t.Errorf("cell %d mismatch: got %d, want %d", i, got.Cells[i], m.Cells[i])
		}
	}
}

func TestDecodeLandMaskTruncatedHeader(t *testing.T) {
	if _, err := DecodeLandMask(make([]byte, 10)); err == nil {
		t.Errorf("expected error decoding truncated header")
	}
}

func TestDecodeLandMaskBadSize(t *testing.T) {
	m := smallMask()
	data, _ := EncodeLandMask(m)
	data = data[:len(data)-1] // drop one body byte
	if _, err := DecodeLandMask(data); err == nil {
		t.Errorf("expected error decoding body with wrong size")
	}
}

func TestDecodeLandMaskZeroRowsCols(t *testing.T) {
	// A header whose rows/cols fields are stomped to zero should fail,
	// even though the float64 extent fields are otherwise well-formed.
	d := grid.Descriptor{Lat0: 0, Lat1: 1, Lon0: 0, Lon1: 1, DLat: 1, DLon: 1}
	m := LandMask{Grid: d, Cells: []byte{0, 1, 1, 0}}
	data, err := EncodeLandMask(m)
	if err != nil {
		t.Fatalf("EncodeLandMask: %v", err)
	}
	// Stomp the little-endian uint32 rows field (offset 48) to zero.
	for i := 48; i < 52; i++ {
		data[i] = 0
	}
	if _, err := DecodeLandMask(data); err == nil {
		t.Errorf("expected error decoding header with zero rows")
	}
}

func TestFloat32PlaneRoundTrip(t *testing.T) {
	plane := []float32{1.5, -2.25, 0, 1000.125}
	data, err := EncodeFloat32Plane(plane)
	if err != nil {
		t.Fatalf("EncodeFloat32Plane: %v", err)
	}
	got, err := DecodeFloat32Plane(data)
	if err != nil {
		t.Fatalf("DecodeFloat32Plane: %v", err)
	}
	if len(got) != len(plane) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(plane))
	}
	for i := range plane {
		if got[i] != plane[i] {
			t.Errorf("element %d: got %f, want %f", i, got[i], plane[i])
		}
	}
}

func TestValidatePlanesSizeMismatch(t *testing.T) {
	d := grid.Descriptor{Lat0: 0, Lat1: 1, Lon0: 0, Lon1: 1, DLat: 1, DLon: 1}
	n := d.Rows() * d.Cols()
	p := Planes{
		Grid: d,
		CurU: make([]float32, n),
		CurV: make([]float32, n-1), // wrong size
	}
	if err := ValidatePlanes(p); err == nil {
		t.Errorf("expected error for mismatched plane size")
	}
}

func smallPlanes() Planes {
	d := grid.Descriptor{Lat0: 0, Lat1: 1, Lon0: 0, Lon1: 1, DLat: 1, DLon: 1}
	n := d.Rows() * d.Cols()
	curU := make([]float32, n)
	curV := make([]float32, n)
	waveHs := make([]float32, n)
	for i := 0; i < n; i++ {
		curU[i] = float32(i) * 0.1
		curV[i] = float32(i) * -0.2
		waveHs[i] = float32(i)
	}
	return Planes{Grid: d, CurU: curU, CurV: curV, WaveHs: waveHs}
}

func TestEnvPackBundleRoundTrip(t *testing.T) {
	p := smallPlanes()
	data, err := EncodeEnvPackBundle(p)
	if err != nil {
		t.Fatalf("EncodeEnvPackBundle: %v", err)
	}

	got, err := DecodeEnvPackBundle(data)
	if err != nil {
		t.Fatalf("DecodeEnvPackBundle: %v", err)
	}
	if got.Grid != p.Grid {
		t.Errorf("grid mismatch: got %+v, want %+v", got.Grid, p.Grid)
	}
	for i := range p.CurU {
		if got.CurU[i] != p.CurU[i] || got.CurV[i] != p.CurV[i] || got.WaveHs[i] != p.WaveHs[i] {
			t.Fatalf("element %d mismatch", i)
		}
	}
	if got.Depth != nil || got.MaskLand != nil || got.MaskShallow != nil {
		t.Errorf("expected absent optional planes to decode as nil, got Depth=%v MaskLand=%v MaskShallow=%v",
			got.Depth, got.MaskLand, got.MaskShallow)
	}
}

func TestEnvPackBundleRoundTripWithAllPlanes(t *testing.T) {
	p := smallPlanes()
	n := p.Grid.Rows() * p.Grid.Cols()
	p.Depth = make([]float32, n)
	p.MaskLand = make([]byte, n)
	p.MaskShallow = make([]byte, n)
	for i := 0; i < n; i++ {
		p.Depth[i] = float32(i) * 5
		p.MaskLand[i] = byte(i % 2)
		p.MaskShallow[i] = byte((i + 1) % 2)
	}

	data, err := EncodeEnvPackBundle(p)
	if err != nil {
		t.Fatalf("EncodeEnvPackBundle: %v", err)
	}
	got, err := DecodeEnvPackBundle(data)
	if err != nil {
		t.Fatalf("DecodeEnvPackBundle: %v", err)
	}
	for i := 0; i < n; i++ {
		if got.Depth[i] != p.Depth[i] || got.MaskLand[i] != p.MaskLand[i] || got.MaskShallow[i] != p.MaskShallow[i] {
			t.Fatalf("optional plane element %d mismatch", i)
		}
	}
}

func TestDecodeEnvPackBundleTruncatedHeader(t *testing.T) {
	if _, err := DecodeEnvPackBundle(make([]byte, 10)); err == nil {
		t.Errorf("expected error decoding truncated bundle header")
	}
}

func TestDecodeEnvPackBundleTruncatedBody(t *testing.T) {
	p := smallPlanes()
	data, err := EncodeEnvPackBundle(p)
	if err != nil {
		t.Fatalf("EncodeEnvPackBundle: %v", err)
	}
	if _, err := DecodeEnvPackBundle(data[:len(data)-4]); err == nil {
		t.Errorf("expected error decoding truncated bundle body")
	}
}
