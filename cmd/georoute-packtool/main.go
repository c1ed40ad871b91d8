// cmd/georoute-packtool/main.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/iancoleman/orderedmap"

	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/landmask"
	"github.com/oceanpilot/georoute/packio"
)

var (
	op = flag.String("op", "", "operation: encode-landmask, describe-landmask, or encode-envpack")

	lat0 = flag.Float64("lat0", 0, "grid south latitude bound")
	lat1 = flag.Float64("lat1", 0, "grid north latitude bound")
	lon0 = flag.Float64("lon0", 0, "grid west longitude bound")
	lon1 = flag.Float64("lon1", 0, "grid east longitude bound")
	dlat = flag.Float64("dlat", 0, "grid latitude resolution in degrees")
	dlon = flag.Float64("dlon", 0, "grid longitude resolution in degrees")

	cellsPath = flag.String("cells", "", "encode-landmask: raw rows*cols byte file, nonzero means land")
	inPath    = flag.String("in", "", "describe-landmask: path to a binary land-mask file")
	outPath   = flag.String("out", "", "output path (defaults to stdout for describe-landmask)")

	curUPath        = flag.String("curu", "", "encode-envpack: raw little-endian float32 eastward current plane")
	curVPath        = flag.String("curv", "", "encode-envpack: raw little-endian float32 northward current plane")
	waveHsPath      = flag.String("wavehs", "", "encode-envpack: optional raw little-endian float32 significant wave height plane")
	depthPath       = flag.String("depth", "", "encode-envpack: optional raw little-endian float32 depth plane")
	maskLandPath    = flag.String("maskland", "", "encode-envpack: optional raw byte land mask plane")
	maskShallowPath = flag.String("maskshallow", "", "encode-envpack: optional raw byte shallow mask plane")
)

func main() {
	flag.Parse()

	var err error
	switch *op {
	case "encode-landmask":
		err = encodeLandMask()
	case "describe-landmask":
		err = describeLandMask()
	case "encode-envpack":
		err = encodeEnvPack()
	default:
		err = fmt.Errorf("unknown -op %q, want encode-landmask, describe-landmask, or encode-envpack", *op)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-packtool: %v\n", err)
		os.Exit(1)
	}
}

func descriptorFromFlags() grid.Descriptor {
	return grid.Descriptor{Lat0: *lat0, Lat1: *lat1, Lon0: *lon0, Lon1: *lon1, DLat: *dlat, DLon: *dlon}
}

func encodeLandMask() error {
	if *cellsPath == "" || *outPath == "" {
		return fmt.Errorf("encode-landmask requires -cells and -out")
	}
	cells, err := os.ReadFile(*cellsPath)
	if err != nil {
		return fmt.Errorf("read cells: %w", err)
	}
	g := descriptorFromFlags()
	data, err := packio.EncodeLandMask(packio.LandMask{Grid: g, Cells: cells})
	if err != nil {
		return fmt.Errorf("encode land mask: %w", err)
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}
	fmt.Printf("wrote %d bytes to %s (%d rows x %d cols)\n", len(data), *outPath, g.Rows(), g.Cols())
	return nil
}

func describeLandMask() error {
	if *inPath == "" {
		return fmt.Errorf("describe-landmask requires -in")
	}
	data, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", *inPath, err)
	}
	m, err := landmask.Load(data)
	if err != nil {
		return fmt.Errorf("load land mask: %w", err)
	}

	desc := m.Describe()
	legend := orderedmap.New()
	legend.Set("loaded", desc.Loaded)
	legend.Set("lat0", desc.Lat0)
	legend.Set("lat1", desc.Lat1)
	legend.Set("lon0", desc.Lon0)
	legend.Set("lon1", desc.Lon1)
	legend.Set("dLat", desc.DLat)
	legend.Set("dLon", desc.DLon)
	legend.Set("rows", desc.Rows)
	legend.Set("cols", desc.Cols)
	legend.Set("landCells", countNonzero(desc.Cells))
	legend.Set("totalCells", len(desc.Cells))

	out, err := json.MarshalIndent(legend, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal legend: %w", err)
	}

	if *outPath == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(*outPath, out, 0644)
}

func countNonzero(b []byte) int {
	n := 0
	for _, v := range b {
		if v != 0 {
			n++
		}
	}
	return n
}

func encodeEnvPack() error {
	if *curUPath == "" || *curVPath == "" || *outPath == "" {
		return fmt.Errorf("encode-envpack requires -curu, -curv, and -out")
	}

	g := descriptorFromFlags()
	curU, err := readFloat32Plane(*curUPath)
	if err != nil {
		return fmt.Errorf("read cur_u: %w", err)
	}
	curV, err := readFloat32Plane(*curVPath)
	if err != nil {
		return fmt.Errorf("read cur_v: %w", err)
	}

	p := packio.Planes{Grid: g, CurU: curU, CurV: curV}

	if *waveHsPath != "" {
		if p.WaveHs, err = readFloat32Plane(*waveHsPath); err != nil {
			return fmt.Errorf("read wave_hs: %w", err)
		}
	}
	if *depthPath != "" {
		if p.Depth, err = readFloat32Plane(*depthPath); err != nil {
			return fmt.Errorf("read depth: %w", err)
		}
	}
	if *maskLandPath != "" {
		if p.MaskLand, err = os.ReadFile(*maskLandPath); err != nil {
			return fmt.Errorf("read mask_land: %w", err)
		}
	}
	if *maskShallowPath != "" {
		if p.MaskShallow, err = os.ReadFile(*maskShallowPath); err != nil {
			return fmt.Errorf("read mask_shallow: %w", err)
		}
	}

	data, err := packio.EncodeEnvPackBundle(p)
	if err != nil {
		return fmt.Errorf("encode environment pack: %w", err)
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}
	fmt.Printf("wrote %d bytes to %s (%d rows x %d cols)\n", len(data), *outPath, g.Rows(), g.Cols())
	return nil
}

func readFloat32Plane(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return packio.DecodeFloat32Plane(data)
}
