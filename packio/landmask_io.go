// packio/landmask_io.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package packio implements the on-disk/over-the-wire binary layouts for
// the land-mask raster and environment-pack planes.
package packio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/oceanpilot/georoute/grid"
)

// LandMaskHeaderSize is the fixed byte size of the land-mask header,
// offsets 0..56 of the file layout in the spec.
const LandMaskHeaderSize = 56

// LandMask is the decoded land-mask raster: a grid descriptor plus a
// row-major, south-to-north by row, west-to-east by column byte array
// where a nonzero value means land.
type LandMask struct {
	Grid  grid.Descriptor
	Cells []byte
}

// DecodeLandMask parses the bit-exact binary layout described in the
// specification:
//
//	offset 0:  float64 lat0
//	offset 8:  float64 lat1
//	offset 16: float64 lon0
//	offset 24: float64 lon1
//	offset 32: float64 dLat
//	offset 40: float64 dLon
//	offset 48: uint32  rows   (little-endian)
//	offset 52: uint32  cols   (little-endian)
//	offset 56: uint8[rows*cols] cells
func DecodeLandMask(data []byte) (LandMask, error) {
	if len(data) < LandMaskHeaderSize {
		return LandMask{}, fmt.Errorf("landmask: truncated header: have %d bytes, need at least %d", len(data), LandMaskHeaderSize)
	}

	r := bytes.NewReader(data)
	var hdr struct {
		Lat0, Lat1, Lon0, Lon1, DLat, DLon float64
		Rows, Cols                         uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return LandMask{}, fmt.Errorf("landmask: invalid header: %w", err)
	}

	if hdr.Rows == 0 || hdr.Cols == 0 {
		return LandMask{}, fmt.Errorf("landmask: invalid header: zero rows or cols (%d x %d)", hdr.Rows, hdr.Cols)
	}

	d := grid.Descriptor{Lat0: hdr.Lat0, Lat1: hdr.Lat1, Lon0: hdr.Lon0, Lon1: hdr.Lon1, DLat: hdr.DLat, DLon: hdr.DLon}
	if err := d.Validate(); err != nil {
		return LandMask{}, fmt.Errorf("landmask: invalid header: %w", err)
	}

	wantRows, wantCols := d.Rows(), d.Cols()
	if wantRows != int(hdr.Rows) || wantCols != int(hdr.Cols) {
		return LandMask{}, fmt.Errorf("landmask: header rows/cols (%d,%d) inconsistent with extent/resolution (%d,%d)",
			hdr.Rows, hdr.Cols, wantRows, wantCols)
	}

	bodySize := int(hdr.Rows) * int(hdr.Cols)
	wantSize := LandMaskHeaderSize + bodySize
	if len(data) != wantSize {
		return LandMask{}, fmt.Errorf("landmask: size mismatch: file is %d bytes, expected %d (56 + %d*%d)",
			len(data), wantSize, hdr.Rows, hdr.Cols)
	}

	cells := make([]byte, bodySize)
	copy(cells, data[LandMaskHeaderSize:])

	return LandMask{Grid: d, Cells: cells}, nil
}

// EncodeLandMask renders a LandMask back to the bit-exact binary layout
// DecodeLandMask parses; used by georoute-packtool and by round-trip tests.
func EncodeLandMask(m LandMask) ([]byte, error) {
	if err := m.Grid.Validate(); err != nil {
		return nil, err
	}
	rows, cols := m.Grid.Rows(), m.Grid.Cols()
	if len(m.Cells) != rows*cols {
		return nil, fmt.Errorf("landmask: cells length %d does not match rows*cols %d", len(m.Cells), rows*cols)
	}

	var buf bytes.Buffer
	hdr := struct {
		Lat0, Lat1, Lon0, Lon1, DLat, DLon float64
		Rows, Cols                         uint32
	}{m.Grid.Lat0, m.Grid.Lat1, m.Grid.Lon0, m.Grid.Lon1, m.Grid.DLat, m.Grid.DLon, uint32(rows), uint32(cols)}

	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	buf.Write(m.Cells)
	return buf.Bytes(), nil
}
