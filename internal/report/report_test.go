package report

import (
	"bytes"
	"testing"

	"panel-router/internal/placement"
	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func TestPolylineLength(t *testing.T) {
	assert.Zero(t, PolylineLength(nil))
	assert.Zero(t, PolylineLength([]geometry.PointInt{{X: 1, Y: 1}}))
	assert.InDelta(t, 5+10, PolylineLength([]geometry.PointInt{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 13, Y: 4}}), 1e-12)
}

func TestSummarize(t *testing.T) {
	good := router.Route{Status: router.Succeeded, Good: true, Points: []geometry.PointInt{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	bent := router.Route{Status: router.Succeeded, Good: true, Points: []geometry.PointInt{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20}}}
	failed := router.Route{Status: router.FailedCapacity}

	res := &router.Results{Units: []router.RoutedUnit{
		{Unit: placement.Unit{InSpec: true}, RoutingGood: true, Layers: []router.RoutedLayer{{Routes: []router.Route{good, bent}}}},
		{Unit: placement.Unit{InSpec: true}, RoutingGood: false, HashOverflow: true, Layers: []router.RoutedLayer{{Routes: []router.Route{good, failed}}}},
		{Unit: placement.Unit{InSpec: false}, Layers: []router.RoutedLayer{{Routes: []router.Route{{Status: router.Skipped}}}}},
	}}

	s := Summarize(res)
	assert.Equal(t, 3, s.Units)
	assert.Equal(t, 1, s.GoodUnits)
	assert.Equal(t, 1, s.FailedUnits)
	assert.Equal(t, 1, s.OutOfSpec)
	assert.Equal(t, 1, s.HashOverflow)
	assert.Equal(t, 3, s.GoodRoutes)
	assert.Equal(t, 1, s.FailedRoutes)

	assert.InDelta(t, 8.0/3, s.Vertices.Mean, 1e-12)
	assert.Equal(t, 4.0, s.Vertices.Max)
	assert.InDelta(t, 50.0/3, s.Length.Mean, 1e-12)
	assert.Equal(t, 30.0, s.Length.Max)
	assert.Greater(t, s.Length.StdDev, 0.0)

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "out of spec:  1")
	assert.Contains(t, buf.String(), "hash overflow: 1")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&router.Results{})
	assert.Zero(t, s.Units)
	assert.Equal(t, Stats{}, s.Vertices)
}
