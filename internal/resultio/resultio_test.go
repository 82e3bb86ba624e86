package resultio

import (
	"bytes"
	"path/filepath"
	"testing"

	"panel-router/internal/placement"
	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() *router.Results {
	return &router.Results{
		RunID:     "3f1c2a7e-0000-4000-8000-000000000001",
		PanelID:   "P1",
		WorkRange: router.WorkRange{Start: 4, End: 5},
		Units: []router.RoutedUnit{
			{
				Unit:        placement.Unit{Number: 5, Center: geometry.Point2D{X: 10, Y: 20}, InSpec: true},
				RoutingGood: true,
				Layers: []router.RoutedLayer{{
					LayerNumber: 2,
					Routes: []router.Route{{
						RouteIndex: 0,
						Status:     router.Succeeded,
						Good:       true,
						Points:     []geometry.PointInt{{X: 0, Y: 0}, {X: 3, Y: 3}},
					}},
				}},
			},
			{
				Unit:   placement.Unit{Number: 6},
				Layers: []router.RoutedLayer{{LayerNumber: 2, Routes: []router.Route{{Status: router.Skipped}}}},
			},
		},
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResults()))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), got)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run"+Ext)
	require.NoError(t, Save(path, sampleResults()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, router.Skipped, got.Units[1].Layers[0].Routes[0].Status)
}

func TestReadRejectsPlainJSON(t *testing.T) {
	_, err := Read(bytes.NewBufferString(`{"units":[]}`))
	assert.Error(t, err)
}
