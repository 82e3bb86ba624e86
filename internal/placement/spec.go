package placement

import (
	"math"

	"panel-router/internal/design"
)

// RadialShift returns how far the constraint point (cx, cy) of a die moves
// under the die's measured shift and rotation.
func RadialShift(ds DieShift, c design.ShiftConstraint) float64 {
	sin, cos := math.Sincos(ds.Theta)
	rx := c.X*cos - c.Y*sin
	ry := c.Y*cos + c.X*sin
	tx := math.Abs(ds.Shift.X) + math.Abs(rx-c.X)
	ty := math.Abs(ds.Shift.Y) + math.Abs(ry-c.Y)
	return math.Hypot(tx, ty)
}

// DieInSpec reports whether the die shift honours every constraint of the
// design die. An unmeasured die is never in spec.
func DieInSpec(ds DieShift, die *design.Die) bool {
	if ds.Unmeasured {
		return false
	}
	for _, c := range die.ShiftConstraints {
		if RadialShift(ds, c) >= c.MaxRadialShift {
			return false
		}
	}
	return true
}

// MarkInSpec recomputes every unit's InSpec flag against the design's die
// shift constraints and returns the number of units in spec. Die shifts are
// matched to design dies by name, falling back to position.
func MarkInSpec(t *Table, d *design.Design) int {
	byName := make(map[string]*design.Die, len(d.UnitDies))
	for i := range d.UnitDies {
		byName[d.UnitDies[i].Name] = &d.UnitDies[i]
	}

	good := 0
	for ui := range t.Units {
		unit := &t.Units[ui]
		inSpec := true
		for di, ds := range unit.Dies {
			die, ok := byName[ds.Name]
			if !ok && di < len(d.UnitDies) {
				die, ok = &d.UnitDies[di], true
			}
			if !ok {
				continue
			}
			inSpec = inSpec && DieInSpec(ds, die)
		}
		unit.InSpec = inSpec
		if inSpec {
			good++
		}
	}
	return good
}
