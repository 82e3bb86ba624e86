// Package design holds the routing request: panel outline, keep-in region,
// spacing rules, per-layer obstacles and route definitions, and the unit dies
// whose geometry moves with each unit's measured placement.
package design

import (
	"errors"
	"fmt"

	"panel-router/pkg/geometry"
)

// ErrInvalidDesign is wrapped by every validation failure.
var ErrInvalidDesign = errors.New("invalid design")

// Design is an immutable routing request.
type Design struct {
	Number   string `json:"number,omitempty" yaml:"number,omitempty"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`

	// Panel is the manufacturing panel outline.
	Panel geometry.Rect `json:"panel" yaml:"panel"`
	Rules Rules         `json:"rules" yaml:"rules"`

	Layers   []Layer `json:"layers" yaml:"layers"`
	UnitDies []Die   `json:"unit_dies,omitempty" yaml:"unit_dies,omitempty"`
}

// Rules are the global routing constraints.
type Rules struct {
	MinGlobalSpacing float64       `json:"min_global_spacing" yaml:"min_global_spacing"`
	RouteKeepIn      geometry.Rect `json:"route_keep_in" yaml:"route_keep_in"`
}

// Layer is one routing layer of the unit design.
type Layer struct {
	Number     int               `json:"number" yaml:"number"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	FixedPads  []Pad             `json:"fixed_pads,omitempty" yaml:"fixed_pads,omitempty"`
	FixedPaths []Path            `json:"fixed_paths,omitempty" yaml:"fixed_paths,omitempty"`
	Routes     []RouteDefinition `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// Pad is a round obstacle belonging to a net.
type Pad struct {
	Center geometry.Point2D `json:"center" yaml:"center"`
	Radius float64          `json:"radius" yaml:"radius"`
	NetID  int              `json:"net" yaml:"net"`
}

// Path is a straight trace segment belonging to a net.
type Path struct {
	From       geometry.Point2D `json:"from" yaml:"from"`
	To         geometry.Point2D `json:"to" yaml:"to"`
	TraceWidth float64          `json:"trace_width" yaml:"trace_width"`
	NetID      int              `json:"net" yaml:"net"`
}

// Endpoint is one end of a route definition. A shifted endpoint is attached
// to a unit die and moves with that die's measured placement error.
type Endpoint struct {
	Point    geometry.Point2D `json:"point" yaml:"point"`
	Shifted  bool             `json:"shifted,omitempty" yaml:"shifted,omitempty"`
	DieIndex int              `json:"die,omitempty" yaml:"die,omitempty"`
}

// RouteDefinition specifies one net connection to be routed on a layer.
type RouteDefinition struct {
	From       Endpoint `json:"from" yaml:"from"`
	To         Endpoint `json:"to" yaml:"to"`
	TraceWidth float64  `json:"trace_width" yaml:"trace_width"`
	NetID      int      `json:"net" yaml:"net"`
}

// Die is a sub-component of every unit. Its layer geometry is expressed in
// nominal unit coordinates and is moved per unit by the placement table.
type Die struct {
	Name             string            `json:"name" yaml:"name"`
	Outline          geometry.Rect     `json:"outline" yaml:"outline"`
	Layers           []DieLayer        `json:"layers,omitempty" yaml:"layers,omitempty"`
	ShiftConstraints []ShiftConstraint `json:"shift_constraints,omitempty" yaml:"shift_constraints,omitempty"`
}

// DieLayer holds a die's dynamic obstacles on one layer number.
type DieLayer struct {
	Number       int    `json:"number" yaml:"number"`
	DynamicPads  []Pad  `json:"dynamic_pads,omitempty" yaml:"dynamic_pads,omitempty"`
	DynamicPaths []Path `json:"dynamic_paths,omitempty" yaml:"dynamic_paths,omitempty"`
}

// ShiftConstraint limits the radial displacement of a reference point on a die.
type ShiftConstraint struct {
	X              float64 `json:"x" yaml:"x"`
	Y              float64 `json:"y" yaml:"y"`
	MaxRadialShift float64 `json:"max_radial_shift" yaml:"max_radial_shift"`
}

// DieLayerRef pairs a die layer with the index of the die that owns it.
type DieLayerRef struct {
	DieIndex int
	Layer    *DieLayer
}

// MinDistance returns the clearance a trace of the given width must keep
// from other nets' geometry.
func (d *Design) MinDistance(traceWidth float64) float64 {
	return traceWidth/2 + d.Rules.MinGlobalSpacing
}

// LayerByNumber finds a layer by its layer number.
func (d *Design) LayerByNumber(number int) (*Layer, bool) {
	for i := range d.Layers {
		if d.Layers[i].Number == number {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

// DieLayers returns every die layer with the given number that carries
// dynamic obstacles.
func (d *Design) DieLayers(number int) []DieLayerRef {
	var refs []DieLayerRef
	for di := range d.UnitDies {
		die := &d.UnitDies[di]
		for li := range die.Layers {
			dl := &die.Layers[li]
			if dl.Number != number {
				continue
			}
			if len(dl.DynamicPads) == 0 && len(dl.DynamicPaths) == 0 {
				continue
			}
			refs = append(refs, DieLayerRef{DieIndex: di, Layer: dl})
		}
	}
	return refs
}

// RoutedLayerCount returns how many layers have at least one route definition.
func (d *Design) RoutedLayerCount() int {
	n := 0
	for i := range d.Layers {
		if len(d.Layers[i].Routes) > 0 {
			n++
		}
	}
	return n
}

// Validate checks the design for values the router cannot work with.
func (d *Design) Validate() error {
	if d.Panel.Width <= 0 || d.Panel.Height <= 0 {
		return fmt.Errorf("%w: panel outline %gx%g", ErrInvalidDesign, d.Panel.Width, d.Panel.Height)
	}
	keepIn := d.Rules.RouteKeepIn
	if keepIn.Width <= 0 || keepIn.Height <= 0 {
		return fmt.Errorf("%w: route keep-in %gx%g", ErrInvalidDesign, keepIn.Width, keepIn.Height)
	}
	if d.Rules.MinGlobalSpacing < 0 {
		return fmt.Errorf("%w: negative global spacing %g", ErrInvalidDesign, d.Rules.MinGlobalSpacing)
	}

	seen := make(map[int]bool, len(d.Layers))
	for _, layer := range d.Layers {
		if seen[layer.Number] {
			return fmt.Errorf("%w: duplicate layer number %d", ErrInvalidDesign, layer.Number)
		}
		seen[layer.Number] = true

		if err := validateObstacles(layer.FixedPads, layer.FixedPaths); err != nil {
			return fmt.Errorf("layer %d: %w", layer.Number, err)
		}
		for ri, rd := range layer.Routes {
			if rd.TraceWidth <= 0 {
				return fmt.Errorf("%w: layer %d route %d: trace width %g", ErrInvalidDesign, layer.Number, ri, rd.TraceWidth)
			}
			for _, ep := range []Endpoint{rd.From, rd.To} {
				if ep.Shifted && (ep.DieIndex < 0 || ep.DieIndex >= len(d.UnitDies)) {
					return fmt.Errorf("%w: layer %d route %d: die index %d out of range", ErrInvalidDesign, layer.Number, ri, ep.DieIndex)
				}
			}
		}
	}

	for _, die := range d.UnitDies {
		for _, dl := range die.Layers {
			if err := validateObstacles(dl.DynamicPads, dl.DynamicPaths); err != nil {
				return fmt.Errorf("die %q layer %d: %w", die.Name, dl.Number, err)
			}
		}
	}
	return nil
}

func validateObstacles(pads []Pad, paths []Path) error {
	for i, p := range pads {
		if p.Radius < 0 {
			return fmt.Errorf("%w: pad %d has negative radius", ErrInvalidDesign, i)
		}
	}
	for i, p := range paths {
		if p.TraceWidth < 0 {
			return fmt.Errorf("%w: path %d has negative width", ErrInvalidDesign, i)
		}
	}
	return nil
}
