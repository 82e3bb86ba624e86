// Package config provides the router's tuning parameters and their TOML file form.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFile = "router.toml"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the capacities and batching parameters of a routing run.
type Config struct {
	// OpenCapacity is the number of open-list slots per unit.
	OpenCapacity int `toml:"open_capacity"`
	// ClosedCapacity is the closed-list length at which a search fails.
	ClosedCapacity int `toml:"closed_capacity"`
	// ChunkSize is the edge length of a committed-point hash cell.
	ChunkSize float64 `toml:"chunk_size"`
	// PointsPerChunk bounds how many committed points one hash cell holds.
	PointsPerChunk int `toml:"points_per_chunk"`

	BatchSize       int `toml:"batch_size"`
	SmoothBatchSize int `toml:"smooth_batch_size"`
	// WorkChunk is the number of units one parallel task advances in lockstep.
	WorkChunk int `toml:"work_chunk"`
	// Workers limits parallel tasks; 0 uses GOMAXPROCS.
	Workers int `toml:"workers"`

	DiagonalPreCost int  `toml:"diagonal_pre_cost"`
	Verbose         bool `toml:"verbose"`
}

// Default returns the production parameters.
func Default() Config {
	return Config{
		OpenCapacity:    15000,
		ClosedCapacity:  8000,
		ChunkSize:       500,
		PointsPerChunk:  3000,
		BatchSize:       500,
		SmoothBatchSize: 500,
		WorkChunk:       16,
		Workers:         0,
		DiagonalPreCost: 4,
	}
}

// DefaultPath returns ~/.config/panel-router/router.toml.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "panel-router", configFile)
}

// Load reads a TOML file on top of Default. Keys the file sets that Config
// does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the config as TOML.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate rejects parameters the router cannot run with.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"open_capacity", c.OpenCapacity},
		{"closed_capacity", c.ClosedCapacity},
		{"points_per_chunk", c.PointsPerChunk},
		{"batch_size", c.BatchSize},
		{"smooth_batch_size", c.SmoothBatchSize},
		{"work_chunk", c.WorkChunk},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %g", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.DiagonalPreCost < 0 {
		return fmt.Errorf("%w: diagonal_pre_cost must not be negative", ErrInvalidConfig)
	}
	return nil
}

// WorkerLimit returns the number of parallel tasks to allow.
func (c Config) WorkerLimit() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
