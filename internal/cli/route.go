package cli

import (
	"errors"
	"fmt"
	"log"
	"time"

	"panel-router/internal/project"
	"panel-router/internal/report"
	"panel-router/internal/resultio"
	"panel-router/internal/router"
	"panel-router/internal/smoother"

	"github.com/spf13/cobra"
)

type routeFlags struct {
	job        string
	designPath string
	shiftsPath string
	outPath    string
	start, end int
	noSmooth   bool
}

func newRouteCommand(g *globalFlags) *cobra.Command {
	f := &routeFlags{}
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route every in-spec unit, smooth the routes and write a results archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoute(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.job, "job", "", "routing job file ("+project.Ext+")")
	fl.StringVarP(&f.designPath, "design", "d", "", "design file (JSON or YAML)")
	fl.StringVarP(&f.shiftsPath, "shifts", "s", "", "placement shift table (JSON or YAML)")
	fl.StringVarP(&f.outPath, "out", "o", "", "results archive ("+resultio.Ext+")")
	fl.IntVar(&f.start, "start", 0, "first unit index")
	fl.IntVar(&f.end, "end", -1, "last unit index, inclusive (-1 = last unit)")
	fl.BoolVar(&f.noSmooth, "no-smooth", false, "skip path smoothing")
	return cmd
}

// applyJob fills unset flags from a job file.
func (f *routeFlags) applyJob(cmd *cobra.Command) (configPath string, err error) {
	if f.job == "" {
		return "", nil
	}
	job, err := project.Load(f.job)
	if err != nil {
		return "", fmt.Errorf("load job: %w", err)
	}
	fl := cmd.Flags()
	if !fl.Changed("design") {
		f.designPath = job.GetDesignPath(f.job)
	}
	if !fl.Changed("shifts") {
		f.shiftsPath = job.GetShiftsPath(f.job)
	}
	if !fl.Changed("out") {
		f.outPath = job.GetResultsPath(f.job)
	}
	if job.WorkRange != nil && !fl.Changed("start") && !fl.Changed("end") {
		f.start, f.end = job.WorkRange.Start, job.WorkRange.End
	}
	if !fl.Changed("no-smooth") {
		f.noSmooth = !job.Smooth
	}
	return job.GetConfigPath(f.job), nil
}

func runRoute(cmd *cobra.Command, g *globalFlags, f *routeFlags) error {
	jobConfig, err := f.applyJob(cmd)
	if err != nil {
		return err
	}
	if f.designPath == "" || f.shiftsPath == "" || f.outPath == "" {
		return errors.New("route needs --design, --shifts and --out, or a --job")
	}
	cfg, err := g.loadConfig(jobConfig)
	if err != nil {
		return err
	}
	d, shifts, err := loadInputs(f.designPath, f.shiftsPath)
	if err != nil {
		return err
	}

	wr := router.WorkRange{Start: f.start, End: f.end}
	if wr.End < 0 {
		wr.End = len(shifts.Units) - 1
	}

	began := time.Now()
	res, err := router.New(cfg).Route(d, shifts, wr)
	if err != nil {
		return err
	}
	log.Printf("[Router] routed %d units in %s", wr.Len(), time.Since(began).Round(time.Millisecond))

	if !f.noSmooth {
		began = time.Now()
		if err := smoother.New(cfg).Smooth(d, res); err != nil {
			return err
		}
		log.Printf("[Smoother] smoothed in %s", time.Since(began).Round(time.Millisecond))
	}

	if err := resultio.Save(f.outPath, res); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	report.Summarize(res).Print(cmd.OutOrStdout())
	return nil
}
