// Package router runs the batched grid search that routes every unit of a
// panel. Layers, batches and route definitions run one after another; within
// a route definition the units of a batch are split into chunks that search
// in parallel.
package router

import (
	"errors"
	"fmt"
	"log"

	"panel-router/internal/config"
	"panel-router/internal/design"
	"panel-router/internal/obstacle"
	"panel-router/internal/placement"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrWorkRange is returned when the work range does not fit the shift table.
var ErrWorkRange = errors.New("invalid work range")

// Router routes designs with a fixed configuration.
type Router struct {
	cfg config.Config
}

// New creates a Router.
func New(cfg config.Config) *Router {
	return &Router{cfg: cfg}
}

// layerPlan is a design layer that has routes, with its obstacle geometry.
type layerPlan struct {
	layer     *design.Layer
	obstacles *obstacle.Layer
}

func planLayers(d *design.Design) []layerPlan {
	var plans []layerPlan
	for i := range d.Layers {
		l := &d.Layers[i]
		if len(l.Routes) == 0 {
			continue
		}
		plans = append(plans, layerPlan{layer: l, obstacles: obstacle.NewLayer(d, l)})
	}
	return plans
}

// Route searches every route definition of every layer for the units in wr.
// Per-unit failures are reported on the results, never as errors.
func (r *Router) Route(d *design.Design, shifts *placement.Table, wr WorkRange) (*Results, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := shifts.CheckRange(wr.Start, wr.End); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkRange, err)
	}

	plans := planLayers(d)
	res := &Results{
		RunID:     uuid.NewString(),
		PanelID:   shifts.PanelID,
		WorkRange: wr,
		Units:     presize(shifts, wr, plans),
	}

	n := wr.Len()
	batchSize := r.cfg.BatchSize
	numBatches := (n + batchSize - 1) / batchSize
	if r.cfg.Verbose {
		log.Printf("[Router] run %s: %d units, %d batches, %d routed layers", res.RunID, n, numBatches, len(plans))
	}

	arena := NewArena(min(batchSize, n), r.cfg.OpenCapacity, r.cfg.ClosedCapacity,
		newGridSpec(d.Panel, r.cfg.ChunkSize), r.cfg.PointsPerChunk)

	for li, plan := range plans {
		if r.cfg.Verbose {
			log.Printf("[Router] layer %d (%s): %d routes", plan.layer.Number, plan.layer.Name, len(plan.layer.Routes))
		}
		for b := 0; b < numBatches; b++ {
			lo := b * batchSize
			hi := min(lo+batchSize, n)
			arena.Reset(hi - lo)

			for ri := range plan.layer.Routes {
				def := &plan.layer.Routes[ri]
				job := &routeJob{
					design:     d,
					plan:       plan,
					layerSlot:  li,
					routeIndex: ri,
					def:        def,
					minDist:    d.MinDistance(def.TraceWidth),
					diagCost:   r.cfg.DiagonalPreCost,
					units:      res.Units[lo:hi],
				}
				if err := r.runBatch(job, arena); err != nil {
					return nil, fmt.Errorf("layer %d route %d: %w", plan.layer.Number, ri, err)
				}
				r.logOutcome(job, arena, b, numBatches)
			}
			if r.cfg.Verbose {
				log.Printf("[Router] batch %d/%d: arena holds %.1f MiB", b+1, numBatches, float64(arena.Bytes())/(1<<20))
			}
		}
	}
	return res, nil
}

// runBatch splits the arena's units into work chunks and searches them in
// parallel. It returns once every chunk is done.
func (r *Router) runBatch(job *routeJob, a *Arena) error {
	var g errgroup.Group
	g.SetLimit(r.cfg.WorkerLimit())
	for lo := 0; lo < a.Len(); lo += r.cfg.WorkChunk {
		hi := min(lo+r.cfg.WorkChunk, a.Len())
		g.Go(func() error {
			return job.runChunk(a, lo, hi)
		})
	}
	return g.Wait()
}

// logOutcome reports failures of one route definition over a batch as a
// single line. Progress is logged only in verbose mode.
func (r *Router) logOutcome(job *routeJob, a *Arena, batch, numBatches int) {
	var counts [len(statusNames)]int
	overflow := 0
	for i := range a.units {
		counts[a.units[i].status]++
		if h := a.units[i].hash; h != nil && h.overflow {
			overflow++
		}
	}

	number := job.plan.layer.Number
	if failed := counts[FailedCapacity] + counts[FailedUnreachable]; failed > 0 {
		log.Printf("[Router] layer %d route %d batch %d/%d: %d units failed (%d capacity, %d unreachable)",
			number, job.routeIndex, batch+1, numBatches, failed, counts[FailedCapacity], counts[FailedUnreachable])
	}
	if overflow > 0 {
		log.Printf("[Router] layer %d route %d batch %d/%d: committed points dropped for %d units",
			number, job.routeIndex, batch+1, numBatches, overflow)
	}
	if r.cfg.Verbose {
		log.Printf("[Router] finished route %d of %d, batch %d of %d: %d routed, %d skipped",
			job.routeIndex+1, len(job.plan.layer.Routes), batch+1, numBatches, counts[Succeeded], counts[Skipped])
	}
}
