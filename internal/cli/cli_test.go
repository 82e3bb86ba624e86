package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"panel-router/internal/design"
	"panel-router/internal/placement"
	"panel-router/internal/project"
	"panel-router/internal/resultio"
	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `open_capacity = 5000
closed_capacity = 2000
batch_size = 1
smooth_batch_size = 1
work_chunk = 1
workers = 2
`

const testReport = "CAD File Name, D000042_A\n" +
	"Index,Overall Status,Type,XCenter Nom.,YCenter Nom.,XCenter Devi.,YCenter Devi.,Angle Act.\n" +
	"1,OK,CPU,-40,0,1,0,0\n" +
	"2,OK,CPU,260,0,5,0,0\n"

type fixture struct {
	dir                      string
	config, design, csv      string
	shifts, results, preview string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		config:  filepath.Join(dir, "router.toml"),
		design:  filepath.Join(dir, "design.yaml"),
		csv:     filepath.Join(dir, "report.csv"),
		shifts:  filepath.Join(dir, "shifts.json"),
		results: filepath.Join(dir, "run"+resultio.Ext),
		preview: filepath.Join(dir, "unit.png"),
	}
	require.NoError(t, os.WriteFile(f.config, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(f.csv, []byte(testReport), 0o644))

	d := &design.Design{
		Number:   "D000042",
		Revision: "A",
		Panel:    geometry.NewRect(0, 0, 200, 200),
		Rules:    design.Rules{MinGlobalSpacing: 1, RouteKeepIn: geometry.NewRect(0, 0, 200, 200)},
		Layers: []design.Layer{{
			Number: 1,
			Name:   "RDL1",
			Routes: []design.RouteDefinition{{
				From:       design.Endpoint{Point: geometry.Point2D{X: -40, Y: 0}, Shifted: true},
				To:         design.Endpoint{Point: geometry.Point2D{X: 40, Y: 0}},
				TraceWidth: 2,
				NetID:      1,
			}},
		}},
		UnitDies: []design.Die{{
			Name:             "CPU",
			Outline:          geometry.NewRect(-40, 0, 10, 10),
			ShiftConstraints: []design.ShiftConstraint{{MaxRadialShift: 2}},
		}},
	}
	require.NoError(t, d.Save(f.design))
	return f
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestImportRouteSmoothPreview(t *testing.T) {
	f := newFixture(t)

	out := run(t, "shifts", "import", "--design", f.design, "--csv", f.csv, "--out", f.shifts, "--panel", "P9", "--check-drawing")
	assert.Contains(t, out, "2 units, 1 in spec")

	shifts, err := placement.Load(f.shifts)
	require.NoError(t, err)
	assert.Equal(t, "P9", shifts.PanelID)

	out = run(t, "route", "--config", f.config, "--design", f.design, "--shifts", f.shifts, "--out", f.results)
	assert.Contains(t, out, "routed good:  1")
	assert.Contains(t, out, "out of spec:  1")

	res, err := resultio.Load(f.results)
	require.NoError(t, err)
	require.Len(t, res.Units, 2)
	assert.Equal(t, "P9", res.PanelID)
	r := res.Units[0].Layers[0].Routes[0]
	assert.True(t, r.Good)
	assert.Equal(t, []geometry.PointInt{{X: -39, Y: 0}, {X: 40, Y: 0}}, r.Points)
	assert.False(t, res.Units[1].RoutingGood)

	smoothed := filepath.Join(f.dir, "smoothed"+resultio.Ext)
	run(t, "smooth", "--config", f.config, "--design", f.design, "--in", f.results, "--out", smoothed)
	_, err = os.Stat(smoothed)
	require.NoError(t, err)

	out = run(t, "preview", "--design", f.design, "--in", smoothed, "--out", f.preview, "--scale", "0.5")
	assert.Contains(t, out, "116x116")
	_, err = os.Stat(f.preview)
	assert.NoError(t, err)

	out = run(t, "shifts", "check", "--design", f.design, "--shifts", f.shifts)
	assert.Contains(t, out, "1 in spec")
}

func TestRouteFromJob(t *testing.T) {
	f := newFixture(t)
	run(t, "shifts", "import", "--design", f.design, "--csv", f.csv, "--out", f.shifts)

	jobPath := filepath.Join(f.dir, "panel"+project.Ext)
	job := project.New("panel")
	job.SetDesign(jobPath, f.design)
	job.SetShifts(jobPath, f.shifts)
	job.SetConfig(jobPath, f.config)
	job.WorkRange = &router.WorkRange{Start: 0, End: 0}
	require.NoError(t, job.Save(jobPath))

	run(t, "route", "--job", jobPath)

	res, err := resultio.Load(job.GetResultsPath(jobPath))
	require.NoError(t, err)
	assert.Len(t, res.Units, 1)
	assert.True(t, res.Units[0].RoutingGood)
}

func TestRouteNeedsInputs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"route", "--design", "x.json"})
	assert.Error(t, cmd.Execute())
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "panelroute")
}
