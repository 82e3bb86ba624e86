package placement

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"panel-router/internal/design"
	"panel-router/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDieDesign() *design.Design {
	return &design.Design{
		Number:   "D012345",
		Revision: "B",
		Panel:    geometry.NewRect(0, 0, 1000, 1000),
		Rules:    design.Rules{MinGlobalSpacing: 5, RouteKeepIn: geometry.NewRect(0, 0, 900, 900)},
		UnitDies: []design.Die{
			{
				Name:             "CPU",
				Outline:          geometry.NewRect(-20, 0, 10, 10),
				ShiftConstraints: []design.ShiftConstraint{{X: 5, Y: 0, MaxRadialShift: 2}},
			},
			{Name: "MEM", Outline: geometry.NewRect(20, 0, 10, 10)},
		},
	}
}

func TestRadialShift(t *testing.T) {
	c := design.ShiftConstraint{X: 10, Y: 0, MaxRadialShift: 1}

	assert.InDelta(t, 0, RadialShift(DieShift{}, c), 1e-12)
	assert.InDelta(t, 5, RadialShift(DieShift{Shift: geometry.Point2D{X: 3, Y: -4}}, c), 1e-12)

	// quarter turn moves (10,0) to (0,10)
	got := RadialShift(DieShift{Theta: math.Pi / 2}, c)
	assert.InDelta(t, math.Hypot(10, 10), got, 1e-9)
}

func TestDieInSpec(t *testing.T) {
	die := &design.Die{ShiftConstraints: []design.ShiftConstraint{{X: 0, Y: 0, MaxRadialShift: 2}}}

	tests := []struct {
		name string
		ds   DieShift
		want bool
	}{
		{"no shift", DieShift{}, true},
		{"below limit", DieShift{Shift: geometry.Point2D{X: 1.9}}, true},
		{"at limit", DieShift{Shift: geometry.Point2D{X: 2}}, false},
		{"unmeasured", DieShift{Unmeasured: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DieInSpec(tt.ds, die))
		})
	}
}

func TestMarkInSpec(t *testing.T) {
	d := twoDieDesign()
	tbl := &Table{Units: []Unit{
		{Number: 1, Dies: []DieShift{{Name: "CPU"}, {Name: "MEM", Shift: geometry.Point2D{X: 50}}}},
		{Number: 2, Dies: []DieShift{{Name: "CPU", Shift: geometry.Point2D{Y: 3}}, {Name: "MEM"}}},
		{Number: 3, Dies: []DieShift{{}, {}}},
	}}

	good := MarkInSpec(tbl, d)
	assert.Equal(t, 2, good)
	assert.True(t, tbl.Units[0].InSpec, "MEM has no constraints")
	assert.False(t, tbl.Units[1].InSpec)
	assert.True(t, tbl.Units[2].InSpec, "unnamed dies match by position")
}

func TestDieTransforms(t *testing.T) {
	d := twoDieDesign()
	u := Unit{Dies: []DieShift{{Shift: geometry.Point2D{X: 1, Y: 2}}}}

	xf := u.DieTransforms(d)
	require.Len(t, xf, 2)
	assert.Equal(t, geometry.Point2D{X: -19, Y: 2}, xf[0].Apply(geometry.Point2D{X: -20, Y: 0}))
	assert.True(t, xf[1].IsIdentity(), "missing die shift leaves geometry in place")

	rot := Unit{Dies: []DieShift{{Theta: math.Pi}}}
	p := rot.DieTransform(0, geometry.Point2D{X: -20, Y: 0}).Apply(geometry.Point2D{X: -15, Y: 0})
	assert.InDelta(t, -25, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestCheckRange(t *testing.T) {
	tbl := &Table{Units: make([]Unit, 3)}
	assert.NoError(t, tbl.CheckRange(0, 2))
	assert.NoError(t, tbl.CheckRange(1, 1))
	assert.ErrorIs(t, tbl.CheckRange(0, 3), ErrUnitCount)
	assert.ErrorIs(t, tbl.CheckRange(2, 1), ErrUnitCount)
	assert.ErrorIs(t, tbl.CheckRange(-1, 0), ErrUnitCount)
}

func TestSaveLoad(t *testing.T) {
	want := &Table{
		PanelID: "P-7",
		Units: []Unit{{
			Number: 1,
			Center: geometry.Point2D{X: 100, Y: 50},
			InSpec: true,
			Dies:   []DieShift{{Name: "CPU", Shift: geometry.Point2D{X: 0.5}, Theta: 0.01}},
		}},
	}
	for _, name := range []string{"shifts.json", "shifts.yml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, want.Save(path))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

const viewMetrologyReport = "Report,Die placement\r" +
	"CAD File Name, D012345_B\r" +
	"\r" +
	"Index,Overall Status,Type,XCenter Nom.,YCenter Nom.,XCenter Devi.,YCenter Devi.,Angle Act.\r" +
	"1,OK,CPU,80,0,0.5,-0.25,0.1\r" +
	"2,OK,MEM,120,0,0,0,0\r" +
	"3,OK,CPU,-120,0,0,0,n/a\r" +
	"4,NG,MEM,-80,0,9,9,9\r"

func TestParseViewMetrology(t *testing.T) {
	d := twoDieDesign()

	tbl, err := ParseViewMetrology(strings.NewReader(viewMetrologyReport), d, ImportOptions{PanelID: "P1", CheckDrawing: true})
	require.NoError(t, err)

	assert.Equal(t, "P1", tbl.PanelID)
	require.Len(t, tbl.Units, 2)

	u := tbl.Units[0]
	assert.Equal(t, 1, u.Number)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 0}, u.Center)
	assert.True(t, u.InSpec)
	require.Len(t, u.Dies, 2)
	assert.Equal(t, geometry.Point2D{X: 0.5, Y: -0.25}, u.Dies[0].Shift)
	assert.InDelta(t, 0.1*math.Pi/180, u.Dies[0].Theta, 1e-12)
	assert.Equal(t, "MEM", u.Dies[1].Name)

	u = tbl.Units[1]
	assert.Equal(t, geometry.Point2D{X: -100, Y: 0}, u.Center)
	assert.Zero(t, u.Dies[0].Theta, "unparsable angle reads as zero")
	assert.False(t, u.InSpec, "NG row marks the unit out of spec")
	assert.True(t, u.Dies[1].Unmeasured)
	assert.Zero(t, u.Dies[1].Shift)
}

func TestParseViewMetrologyErrors(t *testing.T) {
	d := twoDieDesign()

	t.Run("no header", func(t *testing.T) {
		_, err := ParseViewMetrology(strings.NewReader("a,b,c\n1,2,3\n"), d, ImportOptions{})
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("unknown die", func(t *testing.T) {
		report := strings.Replace(viewMetrologyReport, "2,OK,MEM", "2,OK,GPU", 1)
		_, err := ParseViewMetrology(strings.NewReader(report), d, ImportOptions{})
		assert.ErrorContains(t, err, "unknown die type")
	})

	t.Run("drawing mismatch", func(t *testing.T) {
		other := twoDieDesign()
		other.Revision = "C"
		_, err := ParseViewMetrology(strings.NewReader(viewMetrologyReport), other, ImportOptions{CheckDrawing: true})
		assert.ErrorIs(t, err, ErrDrawingMismatch)
	})
}
