// Package placement holds the per-unit placement shift table measured after
// fabrication, and the shift limit checks that decide which units are worth routing.
package placement

import (
	"errors"
	"fmt"

	"panel-router/internal/design"
	"panel-router/pkg/geometry"
)

// ErrUnitCount is returned when a table has fewer units than a work range needs.
var ErrUnitCount = errors.New("placement table too short")

// Table is the placement shift table for one panel.
type Table struct {
	DesignNumber   string `json:"design_number,omitempty" yaml:"design_number,omitempty"`
	DesignRevision string `json:"design_revision,omitempty" yaml:"design_revision,omitempty"`
	PanelID        string `json:"panel_id,omitempty" yaml:"panel_id,omitempty"`
	Units          []Unit `json:"units" yaml:"units"`
}

// Unit is one repeated design instance on the panel.
type Unit struct {
	Number int              `json:"number" yaml:"number"`
	Center geometry.Point2D `json:"center" yaml:"center"`
	InSpec bool             `json:"in_spec" yaml:"in_spec"`
	Dies   []DieShift       `json:"dies,omitempty" yaml:"dies,omitempty"`
}

// DieShift is the measured placement error of one die in a unit.
type DieShift struct {
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Nominal geometry.Point2D `json:"nominal" yaml:"nominal"`
	Shift   geometry.Point2D `json:"shift" yaml:"shift"`
	Theta   float64          `json:"theta" yaml:"theta"`
	// Unmeasured marks a die the metrology tool could not measure.
	Unmeasured bool `json:"unmeasured,omitempty" yaml:"unmeasured,omitempty"`
}

// DieTransform returns the transform moving die dieIndex's nominal geometry
// to its measured position, rotating about pivot (the die's nominal center).
// Dies without a measurement are left in place.
func (u *Unit) DieTransform(dieIndex int, pivot geometry.Point2D) geometry.AffineTransform {
	if dieIndex < 0 || dieIndex >= len(u.Dies) {
		return geometry.Identity()
	}
	ds := u.Dies[dieIndex]
	return geometry.RigidAbout(ds.Shift, ds.Theta, pivot)
}

// DieTransforms returns one transform per design die for this unit.
func (u *Unit) DieTransforms(d *design.Design) []geometry.AffineTransform {
	out := make([]geometry.AffineTransform, len(d.UnitDies))
	for i := range d.UnitDies {
		out[i] = u.DieTransform(i, d.UnitDies[i].Outline.Center)
	}
	return out
}

// CheckRange verifies that the table covers units start..end inclusive.
func (t *Table) CheckRange(start, end int) error {
	if start < 0 || end < start || end >= len(t.Units) {
		return fmt.Errorf("%w: range %d..%d, table has %d units", ErrUnitCount, start, end, len(t.Units))
	}
	return nil
}

// Load reads a shift table from a JSON or YAML file.
func Load(path string) (*Table, error) {
	var t Table
	if err := design.DecodeFile(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes the table as JSON or YAML depending on the extension.
func (t *Table) Save(path string) error {
	return design.EncodeFile(path, t)
}
