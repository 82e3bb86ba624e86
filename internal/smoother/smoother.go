// Package smoother reduces routed grid paths to the fewest vertices that
// still clear every other net's geometry.
package smoother

import (
	"log"
	"slices"

	"panel-router/internal/config"
	"panel-router/internal/design"
	"panel-router/internal/obstacle"
	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// Smoother simplifies the routes of a results set in place.
type Smoother struct {
	cfg config.Config
}

// New creates a Smoother.
func New(cfg config.Config) *Smoother {
	return &Smoother{cfg: cfg}
}

// Smooth replaces the points of every good route of every good unit with a
// simplified polyline. Routing flags are left untouched. Units are processed
// in batches, each unit on its own goroutine.
func (s *Smoother) Smooth(d *design.Design, res *router.Results) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	layers := make(map[int]*obstacle.Layer)
	defs := make(map[int]*design.Layer)
	for i := range d.Layers {
		l := &d.Layers[i]
		layers[l.Number] = obstacle.NewLayer(d, l)
		defs[l.Number] = l
	}

	batch := s.cfg.SmoothBatchSize
	numBatches := (len(res.Units) + batch - 1) / batch
	for b := 0; b < numBatches; b++ {
		lo := b * batch
		hi := min(lo+batch, len(res.Units))

		var g errgroup.Group
		g.SetLimit(s.cfg.WorkerLimit())
		for i := lo; i < hi; i++ {
			ru := &res.Units[i]
			if !ru.RoutingGood {
				continue
			}
			g.Go(func() error {
				smoothUnit(d, ru, layers, defs)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if s.cfg.Verbose {
			log.Printf("[Smoother] finished batch %d of %d", b+1, numBatches)
		}
	}
	return nil
}

func smoothUnit(d *design.Design, ru *router.RoutedUnit, layers map[int]*obstacle.Layer, defs map[int]*design.Layer) {
	xf := ru.Unit.DieTransforms(d)
	for li := range ru.Layers {
		rl := &ru.Layers[li]
		def, ok := defs[rl.LayerNumber]
		if !ok {
			continue
		}
		set := layers[rl.LayerNumber].Unit(xf)
		for ri := range rl.Routes {
			r := &rl.Routes[ri]
			if !r.Good || r.RouteIndex >= len(def.Routes) {
				continue
			}
			rd := &def.Routes[r.RouteIndex]
			r.Points = SmoothRoute(r.Points, func(a, b geometry.Point2D) bool {
				return segmentClear(a, b, set, rl, ri, def, rd.NetID, d.MinDistance(rd.TraceWidth))
			})
		}
	}
}

// segmentClear checks a candidate shortcut against the layer's obstacles and
// every other route of the unit on the same layer.
func segmentClear(a, b geometry.Point2D, set *obstacle.Set, rl *router.RoutedLayer, self int, def *design.Layer, netID int, minDist float64) bool {
	if !set.SegmentClear(a, b, netID, minDist) {
		return false
	}
	for k := range rl.Routes {
		other := &rl.Routes[k]
		if k == self || len(other.Points) == 0 || other.RouteIndex >= len(def.Routes) {
			continue
		}
		od := &def.Routes[other.RouteIndex]
		if od.NetID == netID {
			continue
		}
		if !obstacle.PolylineClear(a, b, other.Points, od.TraceWidth, minDist) {
			return false
		}
	}
	return true
}

// SmoothRoute walks the route from its first point, each time jumping to the
// furthest later point whose straight segment is clear. When no segment is
// clear it steps to the next point. The first and last points are kept.
func SmoothRoute(points []geometry.PointInt, isClear func(a, b geometry.Point2D) bool) []geometry.PointInt {
	if len(points) <= 2 {
		return slices.Clone(points)
	}
	last := len(points) - 1
	out := []geometry.PointInt{points[0]}
	for i := 0; i < last; {
		next := i + 1
		for j := last; j > i+1; j-- {
			if isClear(points[i].ToFloat(), points[j].ToFloat()) {
				next = j
				break
			}
		}
		out = append(out, points[next])
		i = next
	}
	return out
}
