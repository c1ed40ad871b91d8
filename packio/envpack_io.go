// packio/envpack_io.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/oceanpilot/georoute/grid"
)

// Planes holds the decoded environment-pack fields. WaveHs, Depth,
// MaskLand, and MaskShallow are optional and may be nil.
type Planes struct {
	Grid                grid.Descriptor
	CurU, CurV          []float32
	WaveHs              []float32
	Depth               []float32
	MaskLand, MaskShallow []byte
}

// ValidatePlanes checks that every present plane has exactly Grid.Rows()*Grid.Cols()
// elements, as required of an environment pack by the specification.
func ValidatePlanes(p Planes) error {
	if err := p.Grid.Validate(); err != nil {
		return err
	}
	n := p.Grid.Rows() * p.Grid.Cols()

	check := func(name string, length, want int) error {
		if length != 0 && length != want {
			return fmt.Errorf("envpack: plane %q has %d elements, want %d (rows*cols)", name, length, want)
		}
		return nil
	}

	if len(p.CurU) != n {
		return fmt.Errorf("envpack: plane %q has %d elements, want %d (rows*cols)", "cur_u", len(p.CurU), n)
	}
	if len(p.CurV) != n {
		return fmt.Errorf("envpack: plane %q has %d elements, want %d (rows*cols)", "cur_v", len(p.CurV), n)
	}
	if err := check("wave_hs", len(p.WaveHs), n); err != nil {
		return err
	}
	if err := check("depth", len(p.Depth), n); err != nil {
		return err
	}
	if err := check("mask_land", len(p.MaskLand), n); err != nil {
		return err
	}
	if err := check("mask_shallow", len(p.MaskShallow), n); err != nil {
		return err
	}
	return nil
}

// DecodeFloat32Plane decodes a flat, row-major, little-endian float32 plane
// from raw bytes — the wire representation named in the specification's
// binary formats section. The host is expected to have already separated
// the four planes (east, north, wave, depth) before calling this; it is
// provided for hosts that transport planes as raw byte buffers rather than
// pre-decoded float32 slices.
func DecodeFloat32Plane(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("envpack: plane byte length %d is not a multiple of 4", len(data))
	}
	n := len(data) / 4
	out := make([]float32, n)
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("envpack: decode plane: %w", err)
	}
	return out, nil
}

// EncodeFloat32Plane is the inverse of DecodeFloat32Plane, used by
// round-trip tests.
func EncodeFloat32Plane(plane []float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, plane); err != nil {
		return nil, fmt.Errorf("envpack: encode plane: %w", err)
	}
	return buf.Bytes(), nil
}

// bundle presence bits, set in EncodeEnvPackBundle's header when the
// corresponding optional plane is present.
const (
	bundleHasWaveHs      = 1 << 0
	bundleHasDepth       = 1 << 1
	bundleHasMaskLand    = 1 << 2
	bundleHasMaskShallow = 1 << 3
)

// EnvPackBundleHeaderSize is the fixed byte size of the bundle header that
// precedes the concatenated planes.
const EnvPackBundleHeaderSize = 56

// EncodeEnvPackBundle packs every plane in p into a single byte stream: a
// fixed header (grid descriptor, row/col counts, a presence bitmask for the
// optional planes) followed by cur_u, cur_v, and then whichever optional
// planes are present, in that fixed order. This is the single-blob format
// the pack store fetches and caches under one manifest key, analogous to
// the land mask's self-contained file layout.
func EncodeEnvPackBundle(p Planes) ([]byte, error) {
	if err := ValidatePlanes(p); err != nil {
		return nil, err
	}

	var flags uint32
	if len(p.WaveHs) != 0 {
		flags |= bundleHasWaveHs
	}
	if len(p.Depth) != 0 {
		flags |= bundleHasDepth
	}
	if len(p.MaskLand) != 0 {
		flags |= bundleHasMaskLand
	}
	if len(p.MaskShallow) != 0 {
		flags |= bundleHasMaskShallow
	}

	var buf bytes.Buffer
	hdr := struct {
		Lat0, Lat1, Lon0, Lon1, DLat, DLon float64
		Rows, Cols                         uint32
		Flags                              uint32
	}{p.Grid.Lat0, p.Grid.Lat1, p.Grid.Lon0, p.Grid.Lon1, p.Grid.DLat, p.Grid.DLon,
		uint32(p.Grid.Rows()), uint32(p.Grid.Cols()), flags}
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("envpack: encode bundle header: %w", err)
	}

	if err := binary.Write(&buf, binary.LittleEndian, p.CurU); err != nil {
		return nil, fmt.Errorf("envpack: encode cur_u: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, p.CurV); err != nil {
		return nil, fmt.Errorf("envpack: encode cur_v: %w", err)
	}
	if flags&bundleHasWaveHs != 0 {
		if err := binary.Write(&buf, binary.LittleEndian, p.WaveHs); err != nil {
			return nil, fmt.Errorf("envpack: encode wave_hs: %w", err)
		}
	}
	if flags&bundleHasDepth != 0 {
		if err := binary.Write(&buf, binary.LittleEndian, p.Depth); err != nil {
			return nil, fmt.Errorf("envpack: encode depth: %w", err)
		}
	}
	if flags&bundleHasMaskLand != 0 {
		buf.Write(p.MaskLand)
	}
	if flags&bundleHasMaskShallow != 0 {
		buf.Write(p.MaskShallow)
	}

	return buf.Bytes(), nil
}

// DecodeEnvPackBundle is the inverse of EncodeEnvPackBundle.
func DecodeEnvPackBundle(data []byte) (Planes, error) {
	if len(data) < EnvPackBundleHeaderSize {
		return Planes{}, fmt.Errorf("envpack: truncated bundle header: have %d bytes, need at least %d", len(data), EnvPackBundleHeaderSize)
	}

	r := bytes.NewReader(data)
	var hdr struct {
		Lat0, Lat1, Lon0, Lon1, DLat, DLon float64
		Rows, Cols                         uint32
		Flags                              uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return Planes{}, fmt.Errorf("envpack: invalid bundle header: %w", err)
	}

	g := grid.Descriptor{Lat0: hdr.Lat0, Lat1: hdr.Lat1, Lon0: hdr.Lon0, Lon1: hdr.Lon1, DLat: hdr.DLat, DLon: hdr.DLon}
	if err := g.Validate(); err != nil {
		return Planes{}, fmt.Errorf("envpack: invalid bundle header: %w", err)
	}
	if g.Rows() != int(hdr.Rows) || g.Cols() != int(hdr.Cols) {
		return Planes{}, fmt.Errorf("envpack: bundle rows/cols (%d,%d) inconsistent with extent/resolution (%d,%d)",
			hdr.Rows, hdr.Cols, g.Rows(), g.Cols())
	}
	n := g.Rows() * g.Cols()

	readFloats := func() ([]float32, error) {
		out := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	readBytes := func() ([]byte, error) {
		out := make([]byte, n)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	p := Planes{Grid: g}
	var err error
	if p.CurU, err = readFloats(); err != nil {
		return Planes{}, fmt.Errorf("envpack: decode cur_u: %w", err)
	}
	if p.CurV, err = readFloats(); err != nil {
		return Planes{}, fmt.Errorf("envpack: decode cur_v: %w", err)
	}
	if hdr.Flags&bundleHasWaveHs != 0 {
		if p.WaveHs, err = readFloats(); err != nil {
			return Planes{}, fmt.Errorf("envpack: decode wave_hs: %w", err)
		}
	}
	if hdr.Flags&bundleHasDepth != 0 {
		if p.Depth, err = readFloats(); err != nil {
			return Planes{}, fmt.Errorf("envpack: decode depth: %w", err)
		}
	}
	if hdr.Flags&bundleHasMaskLand != 0 {
		if p.MaskLand, err = readBytes(); err != nil {
			return Planes{}, fmt.Errorf("envpack: decode mask_land: %w", err)
		}
	}
	if hdr.Flags&bundleHasMaskShallow != 0 {
		if p.MaskShallow, err = readBytes(); err != nil {
			return Planes{}, fmt.Errorf("envpack: decode mask_shallow: %w", err)
		}
	}

	return p, nil
}
