package router

import (
	"errors"
	"fmt"
	"slices"

	"panel-router/internal/design"
	"panel-router/internal/obstacle"
	"panel-router/pkg/geometry"
)

// ErrCorruptArena is returned when a route's parent links do not lead back
// to its start node.
var ErrCorruptArena = errors.New("corrupt search arena")

// 8-connected neighbors: orthogonal first, then diagonal.
var neighborOffsets = [8]geometry.PointInt{
	{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1},
	{X: -1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1},
}

const (
	stepCost       = 10
	firstDiagonal  = 4
	heuristicScale = 10
)

// heuristic is the octile distance with weights 10 and 14.
func heuristic(p, target geometry.PointInt) int {
	dx := abs(p.X - target.X)
	dy := abs(p.Y - target.Y)
	diag := min(dx, dy)
	straight := dx + dy
	return 14*diag + 10*(straight-2*diag)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// routeJob is the read-only context for running one route definition over
// one batch. units is the batch's window into the results.
type routeJob struct {
	design     *design.Design
	plan       layerPlan
	layerSlot  int
	routeIndex int
	def        *design.RouteDefinition
	minDist    float64
	diagCost   int
	units      []RoutedUnit
}

// phase advances one searching unit by one step of an iteration.
type phase func(j *routeJob, u *unitState)

// iteration is the order in which phases run over a chunk.
var iteration = [...]phase{selectBest, checkDone, expand, score, admit}

// runChunk routes units lo..hi-1 of the batch in lockstep until every one
// of them is terminal, then collects their routes.
func (j *routeJob) runChunk(a *Arena, lo, hi int) error {
	searching := 0
	for i := lo; i < hi; i++ {
		if j.start(a, i) {
			searching++
		}
	}

	for searching > 0 {
		for _, step := range iteration {
			for i := lo; i < hi; i++ {
				if u := &a.units[i]; u.status == Searching {
					step(j, u)
				}
			}
		}
		searching = 0
		for i := lo; i < hi; i++ {
			if a.units[i].status == Searching {
				searching++
			}
		}
	}

	for i := lo; i < hi; i++ {
		if err := j.collect(&a.units[i], &j.units[i]); err != nil {
			return fmt.Errorf("unit %d: %w", j.units[i].Unit.Number, err)
		}
	}
	return nil
}

// start seeds unit i's open list with the route's start node. Units that are
// out of spec or already failed are marked Skipped.
func (j *routeJob) start(a *Arena, i int) bool {
	ru := &j.units[i]
	if !ru.RoutingGood {
		a.units[i].status = Skipped
		return false
	}

	u := a.unit(i)
	xf := ru.Unit.DieTransforms(j.design)
	if u.obs == nil {
		u.obs = j.plan.obstacles.Unit(xf)
	}
	u.start = endpointPos(j.def.From, xf)
	u.target = endpointPos(j.def.To, xf)

	u.open.reset()
	u.closed.reset()
	clear(u.seen)

	u.open.insert(node{
		pos:    u.start,
		f:      heuristicScale * heuristic(u.start, u.target),
		parent: NoParent,
	})
	u.seen[u.start] = struct{}{}
	u.status = Searching
	return true
}

// endpointPos returns an endpoint's grid position, moved with its die when
// the endpoint is shifted.
func endpointPos(ep design.Endpoint, xf []geometry.AffineTransform) geometry.PointInt {
	p := ep.Point
	if ep.Shifted && ep.DieIndex >= 0 && ep.DieIndex < len(xf) {
		p = xf[ep.DieIndex].Apply(p)
	}
	return p.Round()
}

// selectBest moves the open node with the lowest f to the closed list.
func selectBest(_ *routeJob, u *unitState) {
	s, ok := u.open.min()
	if !ok {
		u.status = FailedUnreachable
		return
	}
	n := u.open.remove(s)
	slot, ok := u.closed.push(n.pos, n.parent)
	if !ok {
		u.status = FailedCapacity
		return
	}
	u.best = n
	u.bestSlot = slot
}

// checkDone ends the search on reaching the target, or when the closed list
// is full. Reaching the target wins if both happen on the same step.
func checkDone(_ *routeJob, u *unitState) {
	switch {
	case u.best.pos == u.target:
		u.status = Succeeded
	case u.closed.full():
		u.status = FailedCapacity
	}
}

func expand(_ *routeJob, u *unitState) {
	for i, off := range neighborOffsets {
		u.neighbors[i] = candidate{
			node: node{
				pos:    u.best.pos.Add(off),
				g:      u.best.g,
				parent: u.bestSlot,
			},
			valid: true,
		}
	}
}

// score drops neighbors already seen or rejected by the obstacle model and
// computes g and f for the rest.
func score(j *routeJob, u *unitState) {
	for i := range u.neighbors {
		c := &u.neighbors[i]
		if _, dup := u.seen[c.pos]; dup {
			c.valid = false
			continue
		}
		extra, ok := u.obs.Evaluate(c.pos, j.def.NetID, j.minDist, u.hash)
		if !ok {
			c.valid = false
			continue
		}
		c.g += stepCost
		if i >= firstDiagonal {
			c.g += j.diagCost
		}
		c.f = c.g + heuristicScale*heuristic(c.pos, u.target) + extra
	}
}

// admit inserts the valid neighbors into the open list. Running out of open
// slots is a capacity failure.
func admit(_ *routeJob, u *unitState) {
	for i := range u.neighbors {
		c := &u.neighbors[i]
		if !c.valid {
			continue
		}
		if _, ok := u.open.insert(c.node); !ok {
			u.status = FailedCapacity
			return
		}
		u.seen[c.pos] = struct{}{}
	}
}

// collect writes a finished unit's outcome into its result slot. A found
// route is reduced to its corner points and every point it visits is
// committed to the unit's hash as an obstacle for later routes.
func (j *routeJob) collect(u *unitState, ru *RoutedUnit) error {
	route := &ru.Layers[j.layerSlot].Routes[j.routeIndex]
	route.Status = u.status
	if u.status != Succeeded {
		if u.status.Failed() {
			ru.RoutingGood = false
		}
		return nil
	}

	var path []geometry.PointInt
	for s := u.bestSlot; s != NoParent; {
		if s < 0 || int(s) >= u.closed.size() || len(path) > u.closed.size() {
			return fmt.Errorf("%w: closed slot %d", ErrCorruptArena, s)
		}
		pos, parent := u.closed.at(s)
		path = append(path, pos)
		u.hash.insert(obstacle.CommittedPoint{Pos: pos, NetID: j.def.NetID, TraceWidth: j.def.TraceWidth})
		s = parent
	}
	slices.Reverse(path)

	route.Points = corners(path)
	route.Good = true
	if u.hash.overflow {
		ru.HashOverflow = true
	}
	return nil
}

// corners keeps the end points of a grid path and every point where the
// step direction changes.
func corners(path []geometry.PointInt) []geometry.PointInt {
	if len(path) <= 2 {
		return slices.Clone(path)
	}
	out := []geometry.PointInt{path[0]}
	for k := 1; k < len(path)-1; k++ {
		if path[k].Sub(path[k-1]) != path[k+1].Sub(path[k]) {
			out = append(out, path[k])
		}
	}
	return append(out, path[len(path)-1])
}
