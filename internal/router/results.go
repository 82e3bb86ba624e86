package router

import (
	"fmt"

	"panel-router/internal/placement"
	"panel-router/pkg/geometry"
)

// Status is the search outcome of one unit for one route definition.
type Status uint8

const (
	// Skipped units were out of spec or had already failed an earlier route.
	Skipped Status = iota
	Searching
	Succeeded
	// FailedCapacity means the closed list filled or the open list ran out
	// of slots before the target was reached.
	FailedCapacity
	// FailedUnreachable means the open list emptied before the target was reached.
	FailedUnreachable
)

var statusNames = [...]string{"skipped", "searching", "succeeded", "failed_capacity", "failed_unreachable"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Terminal reports whether the search for this unit has ended.
func (s Status) Terminal() bool { return s != Searching }

// Failed reports whether the search ended without a route.
func (s Status) Failed() bool { return s == FailedCapacity || s == FailedUnreachable }

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown route status %q", b)
}

// WorkRange selects units Start..End, inclusive, of a shift table.
type WorkRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of units in the range.
func (w WorkRange) Len() int { return w.End - w.Start + 1 }

// Results is the output of one routing run.
type Results struct {
	RunID     string       `json:"run_id"`
	PanelID   string       `json:"panel_id,omitempty"`
	WorkRange WorkRange    `json:"work_range"`
	Units     []RoutedUnit `json:"units"`
}

// RoutedUnit is the routing outcome of one unit.
type RoutedUnit struct {
	Unit placement.Unit `json:"unit"`
	// RoutingGood starts as the unit's in-spec flag and is cleared by the
	// first failed route. It is never set again.
	RoutingGood bool `json:"routing_good"`
	// HashOverflow records that committed points were dropped for this unit,
	// so later routes saw fewer obstacles than were actually drawn.
	HashOverflow bool          `json:"hash_overflow,omitempty"`
	Layers       []RoutedLayer `json:"layers,omitempty"`
}

// RoutedLayer holds one route per route definition of a design layer.
type RoutedLayer struct {
	LayerNumber int     `json:"layer"`
	Routes      []Route `json:"routes"`
}

// Route is the polyline found for one route definition.
type Route struct {
	RouteIndex int                 `json:"route_index"`
	Status     Status              `json:"status"`
	Good       bool                `json:"good"`
	Points     []geometry.PointInt `json:"points,omitempty"`
}

// Layer returns the routed layer with the given number.
func (u *RoutedUnit) Layer(number int) (*RoutedLayer, bool) {
	for i := range u.Layers {
		if u.Layers[i].LayerNumber == number {
			return &u.Layers[i], true
		}
	}
	return nil, false
}

// presize creates every result container before parallel work starts, so
// workers only ever write to their own unit's slots.
func presize(shifts *placement.Table, wr WorkRange, layers []layerPlan) []RoutedUnit {
	units := make([]RoutedUnit, wr.Len())
	for i := range units {
		u := shifts.Units[wr.Start+i]
		units[i] = RoutedUnit{
			Unit:        u,
			RoutingGood: u.InSpec,
			Layers:      make([]RoutedLayer, len(layers)),
		}
		for li, lp := range layers {
			routes := make([]Route, len(lp.layer.Routes))
			for ri := range routes {
				routes[ri].RouteIndex = ri
			}
			units[i].Layers[li] = RoutedLayer{LayerNumber: lp.layer.Number, Routes: routes}
		}
	}
	return units
}
