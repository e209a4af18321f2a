package mcp

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"hire-oracle/internal/scenario"
	"hire-oracle/internal/simulation"
)

// loadScenario resolves path inside the data directory. Absolute paths and
// paths escaping the data directory are rejected.
func (s *Server) loadScenario(path string) (*scenario.File, error) {
	if path == "" {
		return &scenario.File{}, nil
	}
	if filepath.IsAbs(path) {
		return nil, fmt.Errorf("scenario_path must be relative to the data directory")
	}

	full := filepath.Join(s.cfg.DataPath, path)
	rel, err := filepath.Rel(s.cfg.DataPath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("scenario_path %q escapes the data directory", path)
	}
	return scenario.Load(full)
}

// EngineOverrides are the per-call engine knobs shared by every tool.
type EngineOverrides struct {
	Iterations    int     `json:"iterations,omitempty" jsonschema:"number of Monte Carlo trials (default from server config)"`
	Seed          string  `json:"seed,omitempty" jsonschema:"RNG seed; identical inputs and seed give identical results"`
	PriorStrength float64 `json:"prior_strength,omitempty" jsonschema:"pseudo-observations per side of the symmetric Beta prior"`
}

func (o EngineOverrides) config() simulation.ForecastConfig {
	return simulation.ForecastConfig{
		Iterations:    o.Iterations,
		Seed:          o.Seed,
		PriorStrength: o.PriorStrength,
	}
}

// forecastConfig layers server config, scenario overrides and call overrides.
func (s *Server) forecastConfig(file *scenario.File, call EngineOverrides) simulation.ForecastConfig {
	return file.ForecastConfig(s.cfg.Forecast).Merge(call.config())
}

func orderedParams(table simulation.StageParamTable) []simulation.StageParams {
	out := make([]simulation.StageParams, 0, len(table))
	for _, stage := range table.Stages() {
		out = append(out, table[stage])
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
