// cmd/georoute-solve/main.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goforj/godump"

	"github.com/oceanpilot/georoute/engine"
	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/isochrone"
	"github.com/oceanpilot/georoute/log"
	"github.com/oceanpilot/georoute/packio"
	"github.com/oceanpilot/georoute/route"
	"github.com/oceanpilot/georoute/routepost"
	"github.com/oceanpilot/georoute/vessel"
)

var (
	lat0 = flag.Float64("lat0", -80, "grid south latitude bound")
	lat1 = flag.Float64("lat1", 80, "grid north latitude bound")
	lon0 = flag.Float64("lon0", -180, "grid west longitude bound")
	lon1 = flag.Float64("lon1", 180, "grid east longitude bound")
	dlat = flag.Float64("dlat", 0.5, "grid latitude resolution in degrees")
	dlon = flag.Float64("dlon", 0.5, "grid longitude resolution in degrees")

	landMaskPath = flag.String("landmask", "", "path to a binary land-mask file")
	envPackPath  = flag.String("envpack", "", "path to a binary environment-pack bundle")

	mode      = flag.String("mode", "astar", "solve mode: astar or isochrone")
	start     = flag.String("start", "", "start position, \"lat,lon\"")
	dest      = flag.String("dest", "", "destination position, \"lat,lon\"")
	departHrs = flag.Float64("depart", 0, "departure time, hours since epoch of the environment pack")

	calmSpeedKts  = flag.Float64("calm-speed", 14, "vessel calm-water speed, knots")
	minSpeedKts   = flag.Float64("min-speed", 3, "vessel minimum speed, knots")
	maxWaveM      = flag.Float64("max-wave", 8, "vessel max significant wave height, meters")
	maxHeadingDeg = flag.Float64("max-heading-change", 90, "vessel max heading change per step, degrees")
	draftM        = flag.Float64("draft", 5, "vessel draft, meters")
	safetyBufferM = flag.Float64("safety-buffer", 10, "minimum under-keel clearance, meters")
	waveDragCoeff = flag.Float64("wave-drag", 0.1, "knots of speed lost per meter of significant wave height")

	logLevel = flag.String("log-level", envOr("ROUTER_LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	logDir   = flag.String("log-dir", "", "directory for log files; empty uses georoute under the user cache directory")

	maxSolveSeconds = flag.Float64("max-solve-seconds", envOrFloat("ROUTER_MAX_SOLVE_SECONDS", 120), "solve deadline, seconds from the start of the solve")
	defaultBeam     = flag.Int("beam", envOrInt("ROUTER_DEFAULT_BEAM", 0), "isochrone beam width (0 keeps the solver default)")
	defaultHeadings = flag.Int("headings", envOrInt("ROUTER_DEFAULT_HEADINGS", 0), "isochrone heading count (0 keeps the solver default)")
)

// envOr, envOrFloat, and envOrInt let the host-level toggles the
// specification recommends (ROUTER_LOG_LEVEL, ROUTER_MAX_SOLVE_SECONDS,
// ROUTER_DEFAULT_BEAM, ROUTER_DEFAULT_HEADINGS) seed flag defaults, while
// still letting an explicit flag override them.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envOrFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	flag.Parse()

	g := grid.Descriptor{Lat0: *lat0, Lat1: *lat1, Lon0: *lon0, Lon1: *lon1, DLat: *dlat, DLon: *dlon}
	lg := log.New(*logLevel, *logDir)

	e, err := engine.New(g, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-solve: %v\n", err)
		os.Exit(1)
	}

	if *landMaskPath != "" {
		data, err := os.ReadFile(*landMaskPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "georoute-solve: read land mask: %v\n", err)
			os.Exit(1)
		}
		if err := e.LoadLandMask(data); err != nil {
			fmt.Fprintf(os.Stderr, "georoute-solve: load land mask: %v\n", err)
			os.Exit(1)
		}
	}

	if *envPackPath != "" {
		data, err := os.ReadFile(*envPackPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "georoute-solve: read environment pack: %v\n", err)
			os.Exit(1)
		}
		planes, err := packio.DecodeEnvPackBundle(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "georoute-solve: decode environment pack: %v\n", err)
			os.Exit(1)
		}
		if err := e.LoadEnvironmentPack(planes); err != nil {
			fmt.Fprintf(os.Stderr, "georoute-solve: load environment pack: %v\n", err)
			os.Exit(1)
		}
	}

	startPt, err := parseLatLon(*start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-solve: -start: %v\n", err)
		os.Exit(1)
	}
	destPt, err := parseLatLon(*dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-solve: -dest: %v\n", err)
		os.Exit(1)
	}

	solveMode, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-solve: -mode: %v\n", err)
		os.Exit(1)
	}

	ship := vessel.Model{
		CalmSpeedKts:        *calmSpeedKts,
		MinSpeedKts:         *minSpeedKts,
		MaxWaveHeightM:      *maxWaveM,
		MaxHeadingChangeDeg: *maxHeadingDeg,
		DraftM:              *draftM,
		SafetyDepthBufferM:  *safetyBufferM,
		WaveDragCoefficient: *waveDragCoeff,
	}

	isoOpts := isochrone.DefaultOptions()
	if *defaultBeam > 0 {
		isoOpts.BeamWidth = *defaultBeam
	}
	if *defaultHeadings > 0 {
		isoOpts.HeadingCount = *defaultHeadings
	}

	req := engine.Request{
		Mode:             solveMode,
		Start:            startPt,
		Destination:      destPt,
		DepartTimeHours:  *departHrs,
		Ship:             &ship,
		IsochroneOptions: isoOpts,
		PostProcess:      routepost.Options{},
	}

	deadline := time.Now().Add(time.Duration(*maxSolveSeconds * float64(time.Second)))
	resp, err := e.Solve(context.Background(), req, deadline, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "georoute-solve: solve failed: %v\n", err)
		os.Exit(1)
	}

	godump.Dump(resp)
}

func parseLatLon(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return geo.NewPoint(lat, lon), nil
}

func parseMode(s string) (route.Mode, error) {
	switch strings.ToLower(s) {
	case "astar":
		return route.ASTAR, nil
	case "isochrone":
		return route.ISOCHRONE, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, want astar or isochrone", s)
	}
}
