// Command routetest routes a synthetic panel and prints per-stage timings.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"panel-router/internal/config"
	"panel-router/internal/design"
	"panel-router/internal/placement"
	"panel-router/internal/report"
	"panel-router/internal/router"
	"panel-router/internal/smoother"
	"panel-router/pkg/geometry"
)

func main() {
	units := flag.Int("n", 64, "Number of units on the panel")
	routes := flag.Int("routes", 4, "Route definitions per layer")
	layers := flag.Int("layers", 2, "Routed layers")
	shift := flag.Float64("shift", 3, "Maximum die shift (design units)")
	theta := flag.Float64("theta", 0.5, "Maximum die rotation (degrees)")
	outOfSpec := flag.Float64("bad", 0.1, "Fraction of units out of spec")
	seed := flag.Int64("seed", 1, "Random seed")
	configPath := flag.String("config", "", "Router config TOML")
	verbose := flag.Bool("v", false, "Log router progress")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Verbose = cfg.Verbose || *verbose

	d := syntheticDesign(*layers, *routes)
	if err := d.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Synthetic design invalid: %v\n", err)
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seed))
	shifts := syntheticShifts(rng, d, *units, *shift, *theta*math.Pi/180, *outOfSpec)

	fmt.Printf("=== Panel: %d units, %d layers x %d routes ===\n", *units, *layers, *routes)

	began := time.Now()
	res, err := router.New(cfg).Route(d, shifts, router.WorkRange{Start: 0, End: *units - 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Routing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Routing:   %s\n", time.Since(began).Round(time.Millisecond))

	before := report.Summarize(res)
	began = time.Now()
	if err := smoother.New(cfg).Smooth(d, res); err != nil {
		fmt.Fprintf(os.Stderr, "Smoothing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Smoothing: %s\n", time.Since(began).Round(time.Millisecond))
	fmt.Printf("Vertices/route before smoothing: %.2f\n\n", before.Vertices.Mean)

	report.Summarize(res).Print(os.Stdout)
}

// syntheticDesign builds a unit with one die on the left and fixed pads on
// the right. Each route runs from a die pad to a fixed pad.
func syntheticDesign(layers, routes int) *design.Design {
	const pitch = 40.0
	d := &design.Design{
		Number:   "D000000",
		Revision: "SYN",
		Panel:    geometry.NewRect(0, 0, 1000, 1000),
		Rules: design.Rules{
			MinGlobalSpacing: 4,
			RouteKeepIn:      geometry.NewRect(0, 0, 600, pitch*float64(routes+2)),
		},
		UnitDies: []design.Die{{
			Name:             "DIE",
			Outline:          geometry.NewRect(-200, 0, 60, pitch*float64(routes)),
			ShiftConstraints: []design.ShiftConstraint{{X: 0, Y: pitch * float64(routes) / 2, MaxRadialShift: 6}},
		}},
	}
	for l := 1; l <= layers; l++ {
		layer := design.Layer{Number: l, Name: fmt.Sprintf("RDL%d", l)}
		dieLayer := design.DieLayer{Number: l}
		for r := 0; r < routes; r++ {
			y := pitch * (float64(r) - float64(routes-1)/2)
			net := l*100 + r
			from := geometry.Point2D{X: -200, Y: y}
			to := geometry.Point2D{X: 200, Y: y}
			dieLayer.DynamicPads = append(dieLayer.DynamicPads, design.Pad{Center: from, Radius: 6, NetID: net})
			layer.FixedPads = append(layer.FixedPads, design.Pad{Center: to, Radius: 6, NetID: net})
			layer.Routes = append(layer.Routes, design.RouteDefinition{
				From:       design.Endpoint{Point: from, Shifted: true},
				To:         design.Endpoint{Point: to},
				TraceWidth: 6,
				NetID:      net,
			})
		}
		d.Layers = append(d.Layers, layer)
		d.UnitDies[0].Layers = append(d.UnitDies[0].Layers, dieLayer)
	}
	return d
}

func syntheticShifts(rng *rand.Rand, d *design.Design, n int, maxShift, maxTheta, bad float64) *placement.Table {
	t := &placement.Table{DesignNumber: d.Number, DesignRevision: d.Revision, PanelID: "synthetic"}
	for i := 0; i < n; i++ {
		ds := placement.DieShift{
			Name:  d.UnitDies[0].Name,
			Shift: geometry.Point2D{X: (rng.Float64()*2 - 1) * maxShift, Y: (rng.Float64()*2 - 1) * maxShift},
			Theta: (rng.Float64()*2 - 1) * maxTheta,
		}
		if rng.Float64() < bad {
			ds.Unmeasured = true
		}
		t.Units = append(t.Units, placement.Unit{Number: i + 1, Dies: []placement.DieShift{ds}})
	}
	good := placement.MarkInSpec(t, d)
	fmt.Printf("Shift table: %d of %d units in spec\n", good, n)
	return t
}
