// Package obstacle implements the clearance model shared by the router and
// the smoother: hard rejection below the minimum distance and tiered extra
// cost just outside it.
package obstacle

import (
	"panel-router/internal/design"
	"panel-router/pkg/geometry"
)

// TierBand is the width of each soft-penalty band beyond the hard threshold.
const TierBand = 10.0

// tierCosts[i] is the extra cost for a clearance in band i.
var tierCosts = [...]int{400, 200, 100}

// Tier classifies one obstacle's clearance against the minimum distance a
// trace needs. It returns false when the clearance is a hard violation.
func Tier(clearance, minDist float64) (int, bool) {
	if clearance < minDist {
		return 0, false
	}
	band := int((clearance - minDist) / TierBand)
	if band < len(tierCosts) {
		return tierCosts[band], true
	}
	return 0, true
}

// CommittedPoint is a point of a route already collected for the same unit.
type CommittedPoint struct {
	Pos        geometry.PointInt
	NetID      int
	TraceWidth float64
}

// Committed gives access to committed route points near a grid position.
type Committed interface {
	// Near calls fn for each committed point in the cells around p until fn
	// returns false.
	Near(p geometry.PointInt, fn func(CommittedPoint) bool)
}

// Layer is the obstacle geometry of one routing layer in nominal coordinates.
// It is read-only once built and shared by every unit.
type Layer struct {
	KeepIn geometry.Rect
	Pads   []design.Pad
	Paths  []design.Path
	dies   []design.DieLayerRef
}

// NewLayer gathers the fixed and dynamic obstacles of a design layer.
func NewLayer(d *design.Design, layer *design.Layer) *Layer {
	return &Layer{
		KeepIn: d.Rules.RouteKeepIn,
		Pads:   layer.FixedPads,
		Paths:  layer.FixedPaths,
		dies:   d.DieLayers(layer.Number),
	}
}

// Set is a layer's obstacles as seen by one unit: the fixed geometry plus
// every die's dynamic geometry moved to the unit's measured die placement.
type Set struct {
	*Layer
	DynamicPads  []design.Pad
	DynamicPaths []design.Path
}

// Unit applies one transform per design die to the layer's dynamic geometry.
func (l *Layer) Unit(xf []geometry.AffineTransform) *Set {
	s := &Set{Layer: l}
	for _, ref := range l.dies {
		t := geometry.Identity()
		if ref.DieIndex < len(xf) {
			t = xf[ref.DieIndex]
		}
		for _, p := range ref.Layer.DynamicPads {
			p.Center = t.Apply(p.Center)
			s.DynamicPads = append(s.DynamicPads, p)
		}
		for _, p := range ref.Layer.DynamicPaths {
			p.From = t.Apply(p.From)
			p.To = t.Apply(p.To)
			s.DynamicPaths = append(s.DynamicPaths, p)
		}
	}
	return s
}

// Evaluate scores a candidate grid position for a trace of net netID that
// needs minDist clearance. It returns the extra cost of the worst nearby
// obstacle, or false when the position is unusable. committed may be nil.
func (s *Set) Evaluate(pos geometry.PointInt, netID int, minDist float64, committed Committed) (int, bool) {
	if !s.KeepIn.ContainsInt(pos) {
		return 0, false
	}
	p := pos.ToFloat()
	extra := 0

	for _, pads := range [2][]design.Pad{s.Pads, s.DynamicPads} {
		for _, pad := range pads {
			if pad.NetID == netID {
				continue
			}
			cost, ok := Tier(p.Distance(pad.Center)-pad.Radius, minDist)
			if !ok {
				return 0, false
			}
			extra = max(extra, cost)
		}
	}

	for _, paths := range [2][]design.Path{s.Paths, s.DynamicPaths} {
		for _, path := range paths {
			if path.NetID == netID {
				continue
			}
			d := geometry.DistancePointToSegment(p, path.From, path.To)
			cost, ok := Tier(d-path.TraceWidth/2, minDist)
			if !ok {
				return 0, false
			}
			extra = max(extra, cost)
		}
	}

	if committed == nil {
		return extra, true
	}
	ok := true
	committed.Near(pos, func(cp CommittedPoint) bool {
		if cp.NetID == netID {
			return true
		}
		var cost int
		cost, ok = Tier(p.Distance(cp.Pos.ToFloat())-cp.TraceWidth/2, minDist)
		extra = max(extra, cost)
		return ok
	})
	if !ok {
		return 0, false
	}
	return extra, true
}

// SegmentClear reports whether the straight segment a-b keeps minDist from
// every pad and path of another net. Soft tiers do not apply.
func (s *Set) SegmentClear(a, b geometry.Point2D, netID int, minDist float64) bool {
	for _, pads := range [2][]design.Pad{s.Pads, s.DynamicPads} {
		for _, pad := range pads {
			if pad.NetID == netID {
				continue
			}
			if geometry.DistancePointToSegment(pad.Center, a, b)-pad.Radius < minDist {
				return false
			}
		}
	}
	for _, paths := range [2][]design.Path{s.Paths, s.DynamicPaths} {
		for _, path := range paths {
			if path.NetID == netID {
				continue
			}
			if geometry.DistanceSegmentToSegment(a, b, path.From, path.To)-path.TraceWidth/2 < minDist {
				return false
			}
		}
	}
	return true
}

// PolylineClear reports whether segment a-b keeps minDist from every segment
// of a polyline drawn with the given width.
func PolylineClear(a, b geometry.Point2D, poly []geometry.PointInt, width, minDist float64) bool {
	if len(poly) == 1 {
		return geometry.DistancePointToSegment(poly[0].ToFloat(), a, b)-width/2 >= minDist
	}
	for k := 1; k < len(poly); k++ {
		d := geometry.DistanceSegmentToSegment(a, b, poly[k-1].ToFloat(), poly[k].ToFloat())
		if d-width/2 < minDist {
			return false
		}
	}
	return true
}
