// astar/astar.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package astar implements the time-dependent A* solver: 8-connected
// search on the routing grid with environment-aware edge cost, grounded in
// the classic container/heap A* shape (open-list heap keyed by f-cost,
// closed set keyed by cell, parent-pointer back-chain).
package astar

import (
	"container/heap"
	"context"
	"math"
	"time"

	"github.com/oceanpilot/georoute/envpack"
	"github.com/oceanpilot/georoute/geo"
	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/landmask"
	"github.com/oceanpilot/georoute/route"
	"github.com/oceanpilot/georoute/vessel"
)

// cancelCheckInterval is the number of popped nodes between deadline/abort
// checks (specification: N ~= 1024).
const cancelCheckInterval = 1024

// Request names the start and goal cells and the departure time.
type Request struct {
	StartI, StartJ int
	GoalI, GoalJ   int
	DepartTimeHours float64
}

// Node is one A* search state: a cell, the time and cost to reach it, and
// a parent pointer forming the backtrace chain.
type Node struct {
	I, J      int
	TimeHours float64
	GCost     float64
	FCost     float64
	HeadingIn float64 // heading of the edge that reached this node; NaN at the root
	Parent    *Node

	heapIndex int
}

// Result is the raw outcome of a solve: a parent-chain walked from start to
// the best node reached, plus search diagnostics.
type Result struct {
	Chain           []*Node
	ReachedGoal     bool
	StepCount       int
	FrontierCount   int
	TimedOut        bool
	RejectedHazards route.HazardFlags
}

///////////////////////////////////////////////////////////////////////////
// open-list heap

type openList []*Node

func (h openList) Len() int { return len(h) }
func (h openList) Less(i, j int) bool {
	if h[i].FCost != h[j].FCost {
		return h[i].FCost < h[j].FCost
	}
	// Tie-break toward larger gCost: goal-directed, prefers nodes that
	// have made more progress from the start.
	return h[i].GCost > h[j].GCost
}
func (h openList) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex, h[j].heapIndex = i, j
}
func (h *openList) Push(x any) {
	n := x.(*Node)
	n.heapIndex = len(*h)
	*h = append(*h, n)
}
func (h *openList) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return node
}

type cellKey struct{ i, j int }

///////////////////////////////////////////////////////////////////////////

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Solve runs the time-dependent A* search described in the specification.
// deadline (if non-zero) and abort are checked every cancelCheckInterval
// popped nodes; on cancellation the best-so-far chain (nearest to goal) is
// returned with ReachedGoal=false and TimedOut=true.
func Solve(ctx context.Context, g grid.Descriptor, mask landmask.Mask, ship vessel.Model, sample envpack.SampleFunc,
	req Request, deadline time.Time, abort <-chan struct{}) (*Result, error) {

	startI, startJ := clampToGrid(g, req.StartI, req.StartJ)
	goalI, goalJ := clampToGrid(g, req.GoalI, req.GoalJ)
	goalPoint := g.CellCenter(goalI, goalJ)

	start := &Node{I: startI, J: startJ, TimeHours: req.DepartTimeHours, HeadingIn: math.NaN()}
	start.FCost = heuristic(g, start, goalPoint, ship.CalmSpeedKts)

	open := &openList{}
	heap.Init(open)
	heap.Push(open, start)

	closedBest := make(map[cellKey]float64)
	var best *Node
	bestDistToGoal := math.Inf(1)
	var rejectedHazards route.HazardFlags

	steps := 0
	for open.Len() > 0 {
		select {
		case <-ctx.Done():
			return cancelledResult(best, start, steps, open.Len(), rejectedHazards), ctx.Err()
		default:
		}

		if steps%cancelCheckInterval == 0 {
			if isCancelled(deadline, abort) {
				return cancelledResult(best, start, steps, open.Len(), rejectedHazards), nil
			}
		}

		cur := heap.Pop(open).(*Node)
		steps++

		key := cellKey{cur.I, cur.J}
		if bestG, ok := closedBest[key]; ok && bestG <= cur.GCost {
			continue
		}
		closedBest[key] = cur.GCost

		d := geo.Distance(g.CellCenter(cur.I, cur.J), goalPoint)
		if d < bestDistToGoal {
			bestDistToGoal = d
			best = cur
		}

		if cur.I == goalI && cur.J == goalJ {
			return &Result{
				Chain:           backtrace(cur),
				ReachedGoal:     true,
				StepCount:       steps,
				FrontierCount:   open.Len(),
				RejectedHazards: rejectedHazards,
			}, nil
		}

		for _, off := range neighborOffsets {
			ni, nj := cur.I+off[0], cur.J+off[1]
			if !g.InBounds(ni, nj) {
				continue
			}

			child, hazards := tryEdge(g, mask, ship, sample, cur, ni, nj)
			rejectedHazards |= hazards
			if child == nil {
				continue
			}

			if bestG, seen := closedBest[cellKey{ni, nj}]; seen && bestG <= child.GCost {
				continue
			}

			child.FCost = child.GCost + heuristic(g, child, goalPoint, ship.CalmSpeedKts)
			heap.Push(open, child)
		}
	}

	return &Result{
		Chain:           backtrace(best),
		ReachedGoal:     false,
		StepCount:       steps,
		FrontierCount:   0,
		RejectedHazards: rejectedHazards,
	}, nil
}

// tryEdge evaluates the edge from a popped node to one of its neighbors. A
// nil Node means the edge was rejected; hazards records why (land, wave,
// depth, or heading-cap), and is zero only for a sampler-failure skip.
func tryEdge(g grid.Descriptor, mask landmask.Mask, ship vessel.Model, sample envpack.SampleFunc, from *Node, ni, nj int) (*Node, route.HazardFlags) {
	fromPt := g.CellCenter(from.I, from.J)
	toPt := g.CellCenter(ni, nj)
	mid := geo.Midpoint(fromPt, toPt)

	midSample, err := sample(mid.Lat, mid.Lon, from.TimeHours)
	if err != nil {
		return nil, 0
	}

	fromSample, ferr := sample(fromPt.Lat, fromPt.Lon, from.TimeHours)
	toSample, terr := sample(toPt.Lat, toPt.Lon, from.TimeHours)
	if ferr != nil || terr != nil {
		return nil, 0
	}

	var hazards route.HazardFlags
	if mask.SegmentCrossesLand(fromPt, toPt, 1.0) {
		hazards |= route.LandTouch
	}
	if fromSample.WaveHeightM > ship.MaxWaveHeightM || toSample.WaveHeightM > ship.MaxWaveHeightM {
		hazards |= route.WaveCap
	}
	if toSample.DepthM < ship.MinRequiredDepthM() {
		hazards |= route.Shallow
	}
	if hazards != 0 {
		return nil, hazards
	}

	heading := geo.InitialBearing(fromPt, toPt)
	if !math.IsNaN(from.HeadingIn) && geo.HeadingDifference(from.HeadingIn, heading) > ship.MaxHeadingChangeDeg {
		return nil, route.HeadingCap
	}

	distNm := geo.Distance(fromPt, toPt)
	groundSpeed := ship.GroundSpeedKts(heading, midSample.WaveHeightM, midSample.CurrentEastKn, midSample.CurrentNorthKn)
	edgeCost := distNm / groundSpeed

	return &Node{
		I: ni, J: nj,
		TimeHours: from.TimeHours + edgeCost,
		GCost:     from.GCost + edgeCost,
		HeadingIn: heading,
		Parent:    from,
	}, 0
}

func heuristic(g grid.Descriptor, n *Node, goal geo.Point, calmSpeedKts float64) float64 {
	d := geo.Distance(g.CellCenter(n.I, n.J), goal)
	return d / calmSpeedKts
}

func backtrace(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var chain []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func cancelledResult(best, start *Node, steps, frontier int, rejectedHazards route.HazardFlags) *Result {
	if best == nil {
		best = start
	}
	return &Result{
		Chain:           backtrace(best),
		ReachedGoal:     false,
		StepCount:       steps,
		FrontierCount:   frontier,
		TimedOut:        true,
		RejectedHazards: rejectedHazards,
	}
}

func isCancelled(deadline time.Time, abort <-chan struct{}) bool {
	if !deadline.IsZero() && time.Now().After(deadline) {
		return true
	}
	if abort != nil {
		select {
		case <-abort:
			return true
		default:
		}
	}
	return false
}

func clampToGrid(g grid.Descriptor, i, j int) (int, int) {
	rows, cols := g.Rows(), g.Cols()
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
	return i, j
}
