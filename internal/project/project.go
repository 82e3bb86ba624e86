// Package project provides routing job files: a small JSON manifest naming
// the design, shift table, config and results archive of one panel run.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"panel-router/internal/router"
)

// Ext is the job file extension.
const Ext = ".prjob"

// File represents a routing job file (.prjob). Paths are stored relative to
// the job file when possible.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	PanelID     string    `json:"panel_id,omitempty"`
	Description string    `json:"description,omitempty"`

	DesignPath  string `json:"design"`
	ShiftsPath  string `json:"shifts"`
	ConfigPath  string `json:"config,omitempty"`
	ResultsPath string `json:"results,omitempty"`

	// WorkRange limits the run to part of the shift table; nil routes every unit.
	WorkRange *router.WorkRange `json:"work_range,omitempty"`
	Smooth    bool              `json:"smooth"`
}

// New creates a job file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Smooth:   true,
	}
}

// Load loads a job from a .prjob file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var job File
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

// Save saves the job to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func relativeTo(jobPath, path string) string {
	rel, err := filepath.Rel(filepath.Dir(jobPath), path)
	if err != nil {
		return path
	}
	return rel
}

func resolve(jobPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(jobPath), path)
}

// SetDesign sets the design path (relative to the job).
func (p *File) SetDesign(jobPath, designPath string) {
	p.DesignPath = relativeTo(jobPath, designPath)
	p.Modified = time.Now()
}

// SetShifts sets the shift table path (relative to the job).
func (p *File) SetShifts(jobPath, shiftsPath string) {
	p.ShiftsPath = relativeTo(jobPath, shiftsPath)
	p.Modified = time.Now()
}

// SetConfig sets the router config path (relative to the job).
func (p *File) SetConfig(jobPath, configPath string) {
	p.ConfigPath = relativeTo(jobPath, configPath)
	p.Modified = time.Now()
}

// GetDesignPath returns the absolute path to the design.
func (p *File) GetDesignPath(jobPath string) string {
	return resolve(jobPath, p.DesignPath)
}

// GetShiftsPath returns the absolute path to the shift table.
func (p *File) GetShiftsPath(jobPath string) string {
	return resolve(jobPath, p.ShiftsPath)
}

// GetConfigPath returns the absolute path to the config, or "" for defaults.
func (p *File) GetConfigPath(jobPath string) string {
	return resolve(jobPath, p.ConfigPath)
}

// GetResultsPath returns the absolute path to the results archive.
func (p *File) GetResultsPath(jobPath string) string {
	if p.ResultsPath == "" {
		// Default: job_name_results.json.zst
		base := jobPath[:len(jobPath)-len(filepath.Ext(jobPath))]
		return base + "_results.json.zst"
	}
	return resolve(jobPath, p.ResultsPath)
}
