package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/drill.report/internal/plan"
	"github.com/banshee-data/drill.report/internal/sim"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// The schema matches the /api/config endpoint so the same JSON can be used
// for both startup configuration and runtime inspection. All fields are
// optional; the Get* methods supply defaults for anything omitted, so
// partial configs are safe.
type TuningConfig struct {
	// Engine timing params
	QuantumMs         *int `json:"quantum_ms,omitempty"`
	DetectThresholdMs *int `json:"detect_threshold_ms,omitempty"`
	CycleMs           *int `json:"cycle_ms,omitempty"`

	// Outcome params
	SuccessRate *float64 `json:"success_rate,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`

	// Planner params. The defaults fit the standard 5.0-pitch drilling
	// grid; workpieces with another pitch must set these explicitly.
	RowTolerance       *float64 `json:"row_tolerance,omitempty"`
	PairingIndexOffset *int     `json:"pairing_index_offset,omitempty"`
	CenterEpsilon      *float64 `json:"center_epsilon,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.QuantumMs != nil && *c.QuantumMs <= 0 {
		return fmt.Errorf("quantum_ms must be positive, got %d", *c.QuantumMs)
	}
	if c.DetectThresholdMs != nil && *c.DetectThresholdMs <= 0 {
		return fmt.Errorf("detect_threshold_ms must be positive, got %d", *c.DetectThresholdMs)
	}
	if c.CycleMs != nil && *c.CycleMs <= 0 {
		return fmt.Errorf("cycle_ms must be positive, got %d", *c.CycleMs)
	}
	if c.DetectThresholdMs != nil && c.CycleMs != nil && *c.DetectThresholdMs > *c.CycleMs {
		return fmt.Errorf("detect_threshold_ms %d must not exceed cycle_ms %d",
			*c.DetectThresholdMs, *c.CycleMs)
	}
	if c.SuccessRate != nil {
		if *c.SuccessRate < 0 || *c.SuccessRate > 1 {
			return fmt.Errorf("success_rate must be between 0 and 1, got %f", *c.SuccessRate)
		}
	}
	if c.RowTolerance != nil && *c.RowTolerance <= 0 {
		return fmt.Errorf("row_tolerance must be positive, got %f", *c.RowTolerance)
	}
	if c.PairingIndexOffset != nil && *c.PairingIndexOffset < 1 {
		return fmt.Errorf("pairing_index_offset must be >= 1, got %d", *c.PairingIndexOffset)
	}
	if c.CenterEpsilon != nil && *c.CenterEpsilon < 0 {
		return fmt.Errorf("center_epsilon must be non-negative, got %f", *c.CenterEpsilon)
	}
	return nil
}

// GetQuantum returns the quantum_ms value as a duration, or the default.
func (c *TuningConfig) GetQuantum() time.Duration {
	if c.QuantumMs == nil {
		return 100 * time.Millisecond
	}
	return time.Duration(*c.QuantumMs) * time.Millisecond
}

// GetDetectThreshold returns the detect_threshold_ms value as a duration,
// or the default.
func (c *TuningConfig) GetDetectThreshold() time.Duration {
	if c.DetectThresholdMs == nil {
		return 9500 * time.Millisecond
	}
	return time.Duration(*c.DetectThresholdMs) * time.Millisecond
}

// GetCycle returns the cycle_ms value as a duration, or the default.
func (c *TuningConfig) GetCycle() time.Duration {
	if c.CycleMs == nil {
		return 10000 * time.Millisecond
	}
	return time.Duration(*c.CycleMs) * time.Millisecond
}

// GetSuccessRate returns the success_rate value or the default.
func (c *TuningConfig) GetSuccessRate() float64 {
	if c.SuccessRate == nil {
		return 0.995
	}
	return *c.SuccessRate
}

// GetSeed returns the seed value or the default.
func (c *TuningConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetRowTolerance returns the row_tolerance value or the default.
func (c *TuningConfig) GetRowTolerance() float64 {
	if c.RowTolerance == nil {
		return 5.0
	}
	return *c.RowTolerance
}

// GetPairingIndexOffset returns the pairing_index_offset value or the default.
func (c *TuningConfig) GetPairingIndexOffset() int {
	if c.PairingIndexOffset == nil {
		return 2
	}
	return *c.PairingIndexOffset
}

// GetCenterEpsilon returns the center_epsilon value or the default.
func (c *TuningConfig) GetCenterEpsilon() float64 {
	if c.CenterEpsilon == nil {
		return 1.0
	}
	return *c.CenterEpsilon
}

// EngineConfig assembles the sim.Config the tuning values describe.
func (c *TuningConfig) EngineConfig() sim.Config {
	return sim.Config{
		Quantum:         c.GetQuantum(),
		DetectThreshold: c.GetDetectThreshold(),
		Cycle:           c.GetCycle(),
		SuccessRate:     c.GetSuccessRate(),
		Seed:            c.GetSeed(),
		Plan: plan.Config{
			RowTolerance:  c.GetRowTolerance(),
			PairingOffset: c.GetPairingIndexOffset(),
			CenterEpsilon: c.GetCenterEpsilon(),
		},
	}
}
