// engine/engine.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package engine is the solve façade: it normalizes a request, picks the
// sampler and the concrete solver (A* or isochrone), post-processes the
// winning chain, and reduces everything down to a uniform route.Response.
// It owns no global state; an Engine value holds the immutable land mask,
// environment pack, and default vessel model a host loaded into it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/brunoga/deep"

	"github.com/oceanpilot/georoute/astar"
	"github.com/oceanpilot/georoute/envpack"
	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/isochrone"
	"github.com/oceanpilot/georoute/landmask"
	"github.com/oceanpilot/georoute/log"
	"github.com/oceanpilot/georoute/packio"
	"github.com/oceanpilot/georoute/route"
	"github.com/oceanpilot/georoute/routepost"
	"github.com/oceanpilot/georoute/util"
	"github.com/oceanpilot/georoute/vessel"
)

const (
	defaultSimplifyToleranceNm = 2.0
	defaultMinLegNm            = 1.0
	defaultMinHeadingDeg       = 5.0
)

// Engine is a loaded routing instance: grid, land mask, environment pack,
// and default vessel model, all immutable after load. It is safe to call
// Solve concurrently from multiple goroutines; each call owns its own
// solver state arena.
type Engine struct {
	logger *log.Logger

	grid grid.Descriptor
	mask landmask.Mask
	pack envpack.Pack

	ship vessel.Model
	caps vessel.SafetyCaps
}

// New constructs an Engine over grid, logging a one-time resource snapshot
// through lg. A nil lg is accepted: Debug and Info records are dropped, and
// Warn and Error records go to the default slog logger.
func New(g grid.Descriptor, lg *log.Logger) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, validationErrorf("invalid grid descriptor: %w", err)
	}

	e := &Engine{
		logger: lg,
		grid:   g,
		ship:   vessel.Default(),
	}

	stats := util.SnapshotStats()
	e.logger.Info("engine constructed",
		slog.Int("rows", g.Rows()), slog.Int("cols", g.Cols()),
		slog.Int("numCPU", stats.NumCPU), slog.Int("goroutines", stats.Goroutines),
		slog.Uint64("memAllocBytes", stats.MemAllocBytes), slog.Uint64("memTotalBytes", stats.MemTotalBytes))

	return e, nil
}

// NewEngine constructs an Engine with a discarding logger, for library
// callers that don't want file-backed logging.
func NewEngine(g grid.Descriptor) (*Engine, error) {
	return New(g, log.Discard())
}

// LoadLandMask parses and installs a binary land-mask raster, replacing
// any previously loaded mask.
func (e *Engine) LoadLandMask(data []byte) error {
	m, err := landmask.Load(data)
	if err != nil {
		e.logger.Error("load land mask failed", slog.String("error", err.Error()))
		return &LoadError{Err: err}
	}
	e.mask = m
	e.logger.Info("loaded land mask", slog.Int("rows", m.Grid().Rows()), slog.Int("cols", m.Grid().Cols()))
	return nil
}

// LoadEnvironmentPack installs a set of pre-decoded environment planes,
// replacing any previously loaded pack.
func (e *Engine) LoadEnvironmentPack(p packio.Planes) error {
	if err := packio.ValidatePlanes(p); err != nil {
		e.logger.Error("load environment pack failed", slog.String("error", err.Error()))
		return &LoadError{Err: err}
	}
	pack, err := envpack.Load(p.Grid, p.CurU, p.CurV, p.WaveHs, p.MaskLand, p.MaskShallow, p.Depth)
	if err != nil {
		e.logger.Error("load environment pack failed", slog.String("error", err.Error()))
		return &LoadError{Err: err}
	}
	e.pack = pack
	e.logger.Info("loaded environment pack", slog.Int("rows", p.Grid.Rows()), slog.Int("cols", p.Grid.Cols()))
	return nil
}

// SetSafetyCaps installs the default safety caps every solve overlays onto
// its vessel model, absent a per-request override.
func (e *Engine) SetSafetyCaps(caps vessel.SafetyCaps) { e.caps = caps }

// SetVesselModel installs the default vessel model every solve uses,
// absent a per-request override.
func (e *Engine) SetVesselModel(m vessel.Model) { e.ship = m }

// SampleEnvironment samples the loaded pack directly (or the calm-sea
// default, if no pack is loaded), bypassing the solver machinery.
func (e *Engine) SampleEnvironment(lat, lon, timeHours float64) envpack.Sample {
	sampler := envpack.Calm()
	if e.pack.Loaded() {
		sampler = envpack.FromPack(e.pack)
	}
	s, _ := sampler(lat, lon, timeHours)
	return s
}

func (e *Engine) GridToLatLon(i, j int) geo.Point { return e.grid.GridToLatLon(i, j) }

func (e *Engine) LatLonToGrid(lat, lon float64) (i, j int) { return e.grid.LatLonToGrid(lat, lon) }

func (e *Engine) GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.Distance(geo.NewPoint(lat1, lon1), geo.NewPoint(lat2, lon2))
}

func (e *Engine) NormalizeLongitude(lon float64) float64 { return geo.NormalizeLongitude(lon) }

func (e *Engine) CrossesAntiMeridian(lon1, lon2 float64) bool {
	return geo.CrossesAntiMeridian(lon1, lon2)
}

func (e *Engine) GetLandMaskData() landmask.Description { return e.mask.Describe() }

// Request configures a single solve.
type Request struct {
	Mode            route.Mode
	Start           geo.Point
	Destination     geo.Point
	DepartTimeHours float64

	// Ship and SafetyCaps, left nil, fall back to the Engine's configured
	// defaults (SetVesselModel / SetSafetyCaps).
	Ship       *vessel.Model
	SafetyCaps *vessel.SafetyCaps

	IsochroneOptions isochrone.Options
	PostProcess      routepost.Options

	// Sampler, if non-nil, is the host-supplied C10 hook: preferred over
	// the internal pack sampler, with automatic fallback on error.
	Sampler envpack.SampleFunc
}

// Solve normalizes req, selects the solver by mode, post-processes the
// winning chain, and returns a uniform route.Response. A panic inside a
// solver is recovered and reported as an *InternalError rather than
// crashing the caller.
func (e *Engine) Solve(ctx context.Context, req Request, deadline time.Time, abort <-chan struct{}) (resp *route.Response, err error) {
	e.logger.Debug("solve request", slog.String("mode", req.Mode.String()),
		slog.Float64("startLat", req.Start.Lat), slog.Float64("startLon", req.Start.Lon),
		slog.Float64("destLat", req.Destination.Lat), slog.Float64("destLon", req.Destination.Lon))

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("solve panicked", slog.Any("recover", r))
			resp, err = nil, &InternalError{Err: fmt.Errorf("recovered panic: %v", r)}
		}
	}()

	req = deep.MustCopy(req)

	if verr := validateRequest(req); verr != nil {
		e.logger.Warn("request failed validation", slog.String("error", verr.Error()))
		return nil, verr
	}

	ship := e.ship
	if req.Ship != nil {
		ship = *req.Ship
	}
	caps := e.caps
	if req.SafetyCaps != nil {
		caps = *req.SafetyCaps
	}
	ship = vessel.Effective(ship, caps)
	if verr := ship.Validate(); verr != nil {
		return nil, &ValidationError{Err: verr}
	}

	sample, flags := e.buildSampler(req.Sampler)

	switch req.Mode {
	case route.ASTAR:
		resp, err = e.solveAstar(ctx, req, ship, sample, deadline, abort, flags)
	case route.ISOCHRONE:
		resp, err = e.solveIsochrone(ctx, req, ship, sample, deadline, abort, flags)
	default:
		return nil, validationErrorf("unknown solve mode %v", req.Mode)
	}

	if err != nil {
		e.logger.Warn("solve returned error", slog.String("error", err.Error()))
		return nil, err
	}
	if !resp.Diagnostics.ReachedGoal {
		if resp.Diagnostics.TimedOut {
			e.logger.Warn("solve timed out", slog.Int("stepCount", resp.Diagnostics.StepCount))
		} else {
			e.logger.Warn("solve exhausted its budget without reaching the goal", slog.Int("stepCount", resp.Diagnostics.StepCount))
		}
	}
	return resp, nil
}

// buildSampler prefers req's host-supplied sampler, falling back to the
// internal pack sampler (or a calm-sea default) on failure or absence. The
// returned flags pointer accumulates route.SamplerFailure for every
// fallback that occurs during the solve that follows.
func (e *Engine) buildSampler(host envpack.SampleFunc) (envpack.SampleFunc, *route.DiagnosticFlags) {
	flags := new(route.DiagnosticFlags)

	internal := envpack.Calm()
	if e.pack.Loaded() {
		internal = envpack.FromPack(e.pack)
	}
	if host == nil {
		return internal, flags
	}

	wrapped := func(lat, lon, timeHours float64) (envpack.Sample, error) {
		s, herr := host(lat, lon, timeHours)
		if herr == nil {
			return s, nil
		}
		*flags |= route.SamplerFailure
		e.logger.Warn("host sampler failed, falling back to internal sampler", slog.String("error", herr.Error()))
		return internal(lat, lon, timeHours)
	}
	return wrapped, flags
}

func (e *Engine) solveAstar(ctx context.Context, req Request, ship vessel.Model, sample envpack.SampleFunc,
	deadline time.Time, abort <-chan struct{}, flags *route.DiagnosticFlags) (*route.Response, error) {

	si, sj := e.grid.LatLonToGrid(req.Start.Lat, req.Start.Lon)
	gi, gj := e.grid.LatLonToGrid(req.Destination.Lat, req.Destination.Lon)

	areq := astar.Request{StartI: si, StartJ: sj, GoalI: gi, GoalJ: gj, DepartTimeHours: req.DepartTimeHours}
	res, err := astar.Solve(ctx, e.grid, e.mask, ship, sample, areq, deadline, abort)
	if err != nil {
		e.logger.Debug("astar solve ended early", slog.String("error", err.Error()))
	}

	rawChain := e.astarChainToWaypoints(res.Chain, sample)
	return e.finishResponse(route.ASTAR, req, rawChain, res.ReachedGoal, res.StepCount, res.FrontierCount,
		res.TimedOut, res.RejectedHazards, *flags, false)
}

func (e *Engine) solveIsochrone(ctx context.Context, req Request, ship vessel.Model, sample envpack.SampleFunc,
	deadline time.Time, abort <-chan struct{}, flags *route.DiagnosticFlags) (*route.Response, error) {

	ireq := isochrone.Request{
		Start:           req.Start,
		Destination:     req.Destination,
		DepartTimeHours: req.DepartTimeHours,
		Ship:            ship,
		Options:         req.IsochroneOptions,
	}
	res, err := isochrone.Solve(ctx, e.mask, sample, ireq, deadline, abort)
	if err != nil {
		e.logger.Debug("isochrone solve ended early", slog.String("error", err.Error()))
	}

	*flags |= res.DiagnosticFlags
	rawChain := isochroneChainToWaypoints(res.Chain)
	return e.finishResponse(route.ISOCHRONE, req, rawChain, res.ReachedGoal, res.StepCount, res.FrontierCount,
		res.TimedOut, res.HazardFlags, *flags, res.IsCoarseRoute)
}

func (e *Engine) astarChainToWaypoints(chain []*astar.Node, sample envpack.SampleFunc) []route.Waypoint {
	out := make([]route.Waypoint, len(chain))
	for i, n := range chain {
		p := e.grid.CellCenter(n.I, n.J)
		wp := route.Waypoint{Lat: p.Lat, Lon: p.Lon, TimeHours: n.TimeHours, HasTime: true}
		if !math.IsNaN(n.HeadingIn) {
			wp.HeadingDeg, wp.HasHeading = n.HeadingIn, true
		}
		if s, serr := sample(p.Lat, p.Lon, n.TimeHours); serr == nil {
			wp.MaxWaveHeightM = s.WaveHeightM
		}
		out[i] = wp
	}
	return out
}

func isochroneChainToWaypoints(chain []isochrone.State) []route.Waypoint {
	out := make([]route.Waypoint, len(chain))
	for i, st := range chain {
		wp := route.Waypoint{
			Lat: st.Position.Lat, Lon: st.Position.Lon,
			TimeHours: st.TimeHours, HasTime: true,
			MaxWaveHeightM: st.MaxWaveHeightM,
		}
		if !math.IsNaN(st.HeadingDeg) {
			wp.HeadingDeg, wp.HasHeading = st.HeadingDeg, true
		}
		out[i] = wp
	}
	return out
}

func (e *Engine) finishResponse(mode route.Mode, req Request, rawChain []route.Waypoint, reachedGoal bool,
	stepCount, frontierCount int, timedOut bool, hazardFlags route.HazardFlags, diagFlags route.DiagnosticFlags,
	isCoarse bool) (*route.Response, error) {

	opts := req.PostProcess
	if opts.SimplifyToleranceNm == 0 {
		opts.SimplifyToleranceNm = defaultSimplifyToleranceNm
	}
	if opts.MinLegNm == 0 {
		opts.MinLegNm = defaultMinLegNm
	}
	if opts.MinHeadingDeg == 0 {
		opts.MinHeadingDeg = defaultMinHeadingDeg
	}

	etaHours := lastTimeHours(rawChain, req.DepartTimeHours)
	simplified, rawOut, indexMap := routepost.Process(rawChain, req.Start, req.Destination, req.DepartTimeHours, etaHours, opts)

	diag := computeDiagnostics(rawOut, req.Destination, req.DepartTimeHours, reachedGoal, stepCount, frontierCount,
		timedOut, hazardFlags, diagFlags)

	return &route.Response{
		Mode:          mode,
		Waypoints:     simplified,
		WaypointsRaw:  rawOut,
		IndexMap:      indexMap,
		EtaHours:      diag.EtaHours,
		IsCoarseRoute: isCoarse,
		Diagnostics:   diag,
	}, nil
}

func computeDiagnostics(chain []route.Waypoint, destination geo.Point, departTimeHours float64, reachedGoal bool,
	stepCount, frontierCount int, timedOut bool, hazardFlags route.HazardFlags, flags route.DiagnosticFlags) route.Diagnostics {

	var total, maxWave float64
	eta := departTimeHours
	for i, wp := range chain {
		if i > 0 {
			a := geo.NewPoint(chain[i-1].Lat, chain[i-1].Lon)
			b := geo.NewPoint(wp.Lat, wp.Lon)
			total += geo.Distance(a, b)
		}
		if wp.MaxWaveHeightM > maxWave {
			maxWave = wp.MaxWaveHeightM
		}
		if wp.HasTime {
			eta = wp.TimeHours
		}
	}

	var avgSpeed float64
	if eta > departTimeHours {
		avgSpeed = total / (eta - departTimeHours)
	}

	finalDist := math.Inf(1)
	if len(chain) > 0 {
		last := geo.NewPoint(chain[len(chain)-1].Lat, chain[len(chain)-1].Lon)
		finalDist = geo.Distance(last, destination)
	}

	return route.Diagnostics{
		TotalDistanceNm:       total,
		AverageSpeedKts:       avgSpeed,
		MaxWaveHeightM:        maxWave,
		StepCount:             stepCount,
		FrontierCount:         frontierCount,
		ReachedGoal:           reachedGoal,
		FinalDistanceToGoalNm: finalDist,
		EtaHours:              eta,
		HazardFlags:           hazardFlags,
		TimedOut:              timedOut,
		Flags:                 flags,
	}
}

func lastTimeHours(chain []route.Waypoint, fallback float64) float64 {
	if len(chain) == 0 {
		return fallback
	}
	last := chain[len(chain)-1]
	if last.HasTime {
		return last.TimeHours
	}
	return fallback
}

func validateRequest(req Request) error {
	if math.IsNaN(req.Start.Lat) || math.IsNaN(req.Start.Lon) {
		return validationErrorf("start point has NaN coordinates")
	}
	if math.IsNaN(req.Destination.Lat) || math.IsNaN(req.Destination.Lon) {
		return validationErrorf("destination point has NaN coordinates")
	}
	if math.IsNaN(req.DepartTimeHours) {
		return validationErrorf("departTimeHours is NaN")
	}
	if req.Mode != route.ASTAR && req.Mode != route.ISOCHRONE {
		return validationErrorf("unknown solve mode %v", req.Mode)
	}
	return nil
}
