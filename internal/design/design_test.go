package design

import (
	"path/filepath"
	"testing"

	"panel-router/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDesign() *Design {
	return &Design{
		Number:   "D000123",
		Revision: "A",
		Panel:    geometry.NewRect(0, 0, 1000, 1000),
		Rules: Rules{
			MinGlobalSpacing: 5,
			RouteKeepIn:      geometry.NewRect(0, 0, 800, 800),
		},
		Layers: []Layer{
			{
				Number:    1,
				Name:      "RDL1",
				FixedPads: []Pad{{Center: geometry.Point2D{X: 10, Y: 10}, Radius: 4, NetID: 2}},
				Routes: []RouteDefinition{{
					From:       Endpoint{Point: geometry.Point2D{X: -50, Y: 0}, Shifted: true, DieIndex: 0},
					To:         Endpoint{Point: geometry.Point2D{X: 50, Y: 0}},
					TraceWidth: 10,
					NetID:      1,
				}},
			},
			{Number: 2, Name: "RDL2"},
		},
		UnitDies: []Die{{
			Name:    "CPU",
			Outline: geometry.NewRect(-50, 0, 40, 40),
			Layers: []DieLayer{
				{Number: 1, DynamicPads: []Pad{{Center: geometry.Point2D{X: -40, Y: 0}, Radius: 3, NetID: 7}}},
				{Number: 2},
			},
		}},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleDesign().Validate())

	tests := []struct {
		name   string
		mutate func(d *Design)
	}{
		{"empty panel", func(d *Design) { d.Panel.Width = 0 }},
		{"empty keep-in", func(d *Design) { d.Rules.RouteKeepIn.Height = -1 }},
		{"negative spacing", func(d *Design) { d.Rules.MinGlobalSpacing = -1 }},
		{"duplicate layer", func(d *Design) { d.Layers[1].Number = 1 }},
		{"zero trace width", func(d *Design) { d.Layers[0].Routes[0].TraceWidth = 0 }},
		{"bad die index", func(d *Design) { d.Layers[0].Routes[0].From.DieIndex = 3 }},
		{"negative pad radius", func(d *Design) { d.Layers[0].FixedPads[0].Radius = -1 }},
		{"negative dynamic path width", func(d *Design) {
			d.UnitDies[0].Layers[0].DynamicPaths = []Path{{TraceWidth: -2}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDesign()
			tt.mutate(d)
			assert.ErrorIs(t, d.Validate(), ErrInvalidDesign)
		})
	}
}

func TestDieLayersSkipsEmpty(t *testing.T) {
	d := sampleDesign()

	refs := d.DieLayers(1)
	require.Len(t, refs, 1)
	assert.Equal(t, 0, refs[0].DieIndex)
	assert.Len(t, refs[0].Layer.DynamicPads, 1)

	assert.Empty(t, d.DieLayers(2), "die layer without obstacles is ignored")
	assert.Empty(t, d.DieLayers(9))
}

func TestLayerLookups(t *testing.T) {
	d := sampleDesign()

	l, ok := d.LayerByNumber(2)
	require.True(t, ok)
	assert.Equal(t, "RDL2", l.Name)
	_, ok = d.LayerByNumber(5)
	assert.False(t, ok)

	assert.Equal(t, 1, d.RoutedLayerCount())
	assert.InDelta(t, 10.0, d.MinDistance(10), 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"design.json", "design.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := sampleDesign()
			require.NoError(t, want.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	d := sampleDesign()
	d.Panel.Width = 0
	require.NoError(t, d.Save(path))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidDesign)
}
