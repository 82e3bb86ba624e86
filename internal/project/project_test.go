package project

import (
	"path/filepath"
	"testing"

	"panel-router/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsRelativeToJob(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "jobs", "panel7"+Ext)

	job := New("panel7")
	job.SetDesign(jobPath, filepath.Join(dir, "designs", "d.yaml"))
	job.SetShifts(jobPath, filepath.Join(dir, "jobs", "shifts.json"))

	assert.Equal(t, filepath.Join("..", "designs", "d.yaml"), job.DesignPath)
	assert.Equal(t, "shifts.json", job.ShiftsPath)
	assert.Equal(t, filepath.Join(dir, "designs", "d.yaml"), job.GetDesignPath(jobPath))
	assert.Equal(t, filepath.Join(dir, "jobs", "shifts.json"), job.GetShiftsPath(jobPath))
	assert.Empty(t, job.GetConfigPath(jobPath))
	assert.Equal(t, filepath.Join(dir, "jobs", "panel7_results.json.zst"), job.GetResultsPath(jobPath))

	job.ResultsPath = "/var/out/r.json.zst"
	assert.Equal(t, "/var/out/r.json.zst", job.GetResultsPath(jobPath))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job"+Ext)
	job := New("job")
	job.PanelID = "P-3"
	job.DesignPath = "d.json"
	job.WorkRange = &router.WorkRange{Start: 10, End: 19}
	require.NoError(t, job.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "P-3", got.PanelID)
	assert.Equal(t, "d.json", got.DesignPath)
	assert.True(t, got.Smooth)
	require.NotNil(t, got.WorkRange)
	assert.Equal(t, 10, got.WorkRange.Len())
	assert.False(t, got.Modified.Before(got.Created))
}
