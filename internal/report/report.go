// Package report summarizes a routing run for the command line.
package report

import (
	"fmt"
	"io"
	"math"

	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes one per-route measurement.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}

// Summary counts the outcomes of a run.
type Summary struct {
	Units        int `json:"units"`
	GoodUnits    int `json:"good_units"`
	OutOfSpec    int `json:"out_of_spec"`
	FailedUnits  int `json:"failed_units"`
	HashOverflow int `json:"hash_overflow"`

	GoodRoutes   int `json:"good_routes"`
	FailedRoutes int `json:"failed_routes"`

	Vertices Stats `json:"vertices"`
	Length   Stats `json:"length"`
}

// Summarize computes a Summary over every unit of res.
func Summarize(res *router.Results) Summary {
	var (
		s        Summary
		vertices []float64
		lengths  []float64
	)
	s.Units = len(res.Units)
	for i := range res.Units {
		u := &res.Units[i]
		switch {
		case !u.Unit.InSpec:
			s.OutOfSpec++
		case u.RoutingGood:
			s.GoodUnits++
		default:
			s.FailedUnits++
		}
		if u.HashOverflow {
			s.HashOverflow++
		}
		for _, l := range u.Layers {
			for _, r := range l.Routes {
				if r.Status.Failed() {
					s.FailedRoutes++
				}
				if !r.Good {
					continue
				}
				s.GoodRoutes++
				vertices = append(vertices, float64(len(r.Points)))
				lengths = append(lengths, PolylineLength(r.Points))
			}
		}
	}
	s.Vertices = describe(vertices)
	s.Length = describe(lengths)
	return s
}

func describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Stats{Mean: mean, StdDev: std, Max: floats.Max(xs)}
}

// PolylineLength returns the summed segment lengths of a route.
func PolylineLength(points []geometry.PointInt) float64 {
	if len(points) < 2 {
		return 0
	}
	seg := make([]float64, len(points)-1)
	for k := 1; k < len(points); k++ {
		seg[k-1] = points[k-1].ToFloat().Distance(points[k].ToFloat())
	}
	return floats.Sum(seg)
}

// Print writes the summary as aligned text.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "units:          %d\n", s.Units)
	fmt.Fprintf(w, "  routed good:  %d\n", s.GoodUnits)
	fmt.Fprintf(w, "  out of spec:  %d\n", s.OutOfSpec)
	fmt.Fprintf(w, "  failed:       %d\n", s.FailedUnits)
	if s.HashOverflow > 0 {
		fmt.Fprintf(w, "  hash overflow: %d\n", s.HashOverflow)
	}
	fmt.Fprintf(w, "routes good:    %d\n", s.GoodRoutes)
	fmt.Fprintf(w, "routes failed:  %d\n", s.FailedRoutes)
	fmt.Fprintf(w, "vertices/route: mean %.2f, std %.2f, max %.0f\n", s.Vertices.Mean, s.Vertices.StdDev, s.Vertices.Max)
	fmt.Fprintf(w, "length/route:   mean %.2f, std %.2f, max %.2f\n", s.Length.Mean, s.Length.StdDev, s.Length.Max)
}
