// Package scenario reads and writes the files that feed a forecast: stage
// history, the current roster, an optional start date and config overrides.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hire-oracle/internal/simulation"
)

// Format is the on-disk encoding of a scenario file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Checkpoint is a past snapshot used for walk-forward validation.
type Checkpoint struct {
	Date           string                           `json:"date" yaml:"date" jsonschema:"as-of date (YYYY-MM-DD)"`
	History        []simulation.StageHistoricalData `json:"history,omitempty" yaml:"history,omitempty" jsonschema:"stage history known on the as-of date"`
	Candidates     []simulation.PipelineCandidate   `json:"candidates,omitempty" yaml:"candidates,omitempty" jsonschema:"roster on the as-of date"`
	ActualHireDate string                           `json:"actual_hire_date,omitempty" yaml:"actual_hire_date,omitempty" jsonschema:"date (YYYY-MM-DD) of the next hire after the snapshot"`
}

// File is one requisition's forecast input.
type File struct {
	Name        string                           `json:"name,omitempty" yaml:"name,omitempty" jsonschema:"requisition or scenario name"`
	StartDate   string                           `json:"start_date,omitempty" yaml:"start_date,omitempty" jsonschema:"forecast origin (YYYY-MM-DD); defaults to today"`
	History     []simulation.StageHistoricalData `json:"history,omitempty" yaml:"history,omitempty" jsonschema:"historical per-stage aggregates"`
	Candidates  []simulation.PipelineCandidate   `json:"candidates,omitempty" yaml:"candidates,omitempty" jsonschema:"active pipeline roster"`
	Config      *simulation.ForecastConfig       `json:"config,omitempty" yaml:"config,omitempty" jsonschema:"engine overrides; zero fields keep the configured value"`
	Checkpoints []Checkpoint                     `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty" jsonschema:"past snapshots for backtesting"`
}

// FormatFor picks the encoding from a file extension. Anything that is not
// .json is treated as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a scenario file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scenario and rejects unknown fields.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return &f, nil
}

// Save writes f to path in the format implied by its extension.
func Save(path string, f *File) error {
	var (
		data []byte
		err  error
	)
	switch FormatFor(path) {
	case FormatJSON:
		data, err = json.MarshalIndent(f, "", "  ")
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Start resolves the forecast origin, falling back to today (UTC midnight).
func (f *File) Start(now time.Time) (time.Time, error) {
	if f.StartDate == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate("start_date", f.StartDate)
}

// ForecastConfig overlays the file's overrides on base.
func (f *File) ForecastConfig(base simulation.ForecastConfig) simulation.ForecastConfig {
	if f.Config == nil {
		return base
	}
	return base.Merge(*f.Config)
}

// BacktestCheckpoints converts the file's checkpoints for the engine.
func (f *File) BacktestCheckpoints() ([]simulation.BacktestCheckpoint, error) {
	out := make([]simulation.BacktestCheckpoint, 0, len(f.Checkpoints))
	for i, cp := range f.Checkpoints {
		date, err := parseDate(fmt.Sprintf("checkpoints[%d].date", i), cp.Date)
		if err != nil {
			return nil, err
		}
		bc := simulation.BacktestCheckpoint{
			Date:       date,
			History:    cp.History,
			Candidates: cp.Candidates,
		}
		if cp.ActualHireDate != "" {
			hired, err := parseDate(fmt.Sprintf("checkpoints[%d].actual_hire_date", i), cp.ActualHireDate)
			if err != nil {
				return nil, err
			}
			bc.ActualHireDate = &hired
		}
		out = append(out, bc)
	}
	return out, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", field, value)
	}
	return t, nil
}
