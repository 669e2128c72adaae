package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rationsim/rationsim/sim/allocation"
)

// SimulationConfig holds every tunable of a run. It is a value type: each
// Simulator keeps its own copy, so runs never share configuration state.
type SimulationConfig struct {
	NPeriods       int     `yaml:"n_periods" json:"n_periods"`             // horizon in periods [6,60]
	DiscountFactor float64 `yaml:"discount_factor" json:"discount_factor"` // λ in (0.5,1]

	// Cost weights; each in [0,1], not required to sum to 1.
	Alpha float64 `yaml:"alpha" json:"alpha"` // transport
	Beta  float64 `yaml:"beta" json:"beta"`   // stockout
	Gamma float64 `yaml:"gamma" json:"gamma"` // leakage
	Delta float64 `yaml:"delta" json:"delta"` // equity

	// Fraud dynamics
	InspectionEffectiveness float64 `yaml:"inspection_effectiveness" json:"inspection_effectiveness"` // η
	FraudShockScale         float64 `yaml:"fraud_shock_scale" json:"fraud_shock_scale"`               // ε_max

	// Supply and budget
	SupplyFraction  float64 `yaml:"supply_fraction" json:"supply_fraction"`
	InspectionCost  float64 `yaml:"inspection_cost" json:"inspection_cost"`     // κ per inspection
	BudgetPerPeriod float64 `yaml:"budget_per_period" json:"budget_per_period"` // B
	StockoutPenalty float64 `yaml:"stockout_penalty" json:"stockout_penalty"`   // π per kg unmet

	MinServiceLevel     float64 `yaml:"min_service_level" json:"min_service_level"`
	MaxAllocationRatio  float64 `yaml:"max_allocation_ratio" json:"max_allocation_ratio"`
	InspectionThreshold float64 `yaml:"inspection_threshold" json:"inspection_threshold"`
	CVaRConfidence      float64 `yaml:"cvar_confidence" json:"cvar_confidence"`

	Policy allocation.Policy `yaml:"policy" json:"policy"`
	Seed   int64             `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the balanced baseline configuration.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		NPeriods:                24,
		DiscountFactor:          0.95,
		Alpha:                   0.25,
		Beta:                    0.35,
		Gamma:                   0.25,
		Delta:                   0.15,
		InspectionEffectiveness: 0.40,
		FraudShockScale:         0.03,
		SupplyFraction:          0.91,
		InspectionCost:          5000,
		BudgetPerPeriod:         50_000_000,
		StockoutPenalty:         50,
		MinServiceLevel:         0.70,
		MaxAllocationRatio:      2.0,
		InspectionThreshold:     0.65,
		CVaRConfidence:          0.95,
		Policy:                  allocation.Optimized,
		Seed:                    42,
	}
}

// ConfigValidationError reports a configuration field outside its declared range.
type ConfigValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field against its declared range. The first
// violation is returned as a *ConfigValidationError.
func (c SimulationConfig) Validate() error {
	if c.NPeriods < 6 || c.NPeriods > 60 {
		return &ConfigValidationError{"n_periods", c.NPeriods, "must be in [6, 60]"}
	}
	checks := []struct {
		name      string
		val       float64
		lo, hi    float64
		loOpen    bool
		unbounded bool
	}{
		{name: "discount_factor", val: c.DiscountFactor, lo: 0.5, hi: 1.0, loOpen: true},
		{name: "alpha", val: c.Alpha, lo: 0, hi: 1},
		{name: "beta", val: c.Beta, lo: 0, hi: 1},
		{name: "gamma", val: c.Gamma, lo: 0, hi: 1},
		{name: "delta", val: c.Delta, lo: 0, hi: 1},
		{name: "inspection_effectiveness", val: c.InspectionEffectiveness, lo: 0, hi: 1},
		{name: "fraud_shock_scale", val: c.FraudShockScale, lo: 0, hi: 0.20},
		{name: "supply_fraction", val: c.SupplyFraction, lo: 0.5, hi: 1.0},
		{name: "inspection_cost", val: c.InspectionCost, lo: 0, unbounded: true},
		{name: "budget_per_period", val: c.BudgetPerPeriod, lo: 0, unbounded: true},
		{name: "stockout_penalty", val: c.StockoutPenalty, lo: 0, unbounded: true},
		{name: "min_service_level", val: c.MinServiceLevel, lo: 0, hi: 1},
		{name: "max_allocation_ratio", val: c.MaxAllocationRatio, lo: 1, hi: 5},
		{name: "inspection_threshold", val: c.InspectionThreshold, lo: 0, hi: 1},
		{name: "cvar_confidence", val: c.CVaRConfidence, lo: 0.5, hi: 0.999},
	}
	for _, ck := range checks {
		if math.IsNaN(ck.val) || math.IsInf(ck.val, 0) {
			return &ConfigValidationError{ck.name, ck.val, "must be a finite number"}
		}
		if ck.unbounded {
			if ck.val < ck.lo {
				return &ConfigValidationError{ck.name, ck.val, fmt.Sprintf("must be >= %g", ck.lo)}
			}
			continue
		}
		if ck.loOpen && ck.val <= ck.lo {
			return &ConfigValidationError{ck.name, ck.val, fmt.Sprintf("must be in (%g, %g]", ck.lo, ck.hi)}
		}
		if ck.val < ck.lo || ck.val > ck.hi {
			return &ConfigValidationError{ck.name, ck.val, fmt.Sprintf("must be in [%g, %g]", ck.lo, ck.hi)}
		}
	}
	if !c.Policy.Valid() {
		return &ConfigValidationError{"policy", int(c.Policy), "must be one of proportional, optimized, equity_first, risk_averse"}
	}
	return nil
}

// OptimizerParams projects the configuration onto the allocation optimizer.
func (c SimulationConfig) OptimizerParams() allocation.Params {
	return allocation.Params{
		Alpha:               c.Alpha,
		Beta:                c.Beta,
		Gamma:               c.Gamma,
		InspectionCost:      c.InspectionCost,
		MaxRatio:            c.MaxAllocationRatio,
		InspectionThreshold: c.InspectionThreshold,
	}
}

// WithPolicy returns a copy of the configuration using policy p.
func (c SimulationConfig) WithPolicy(p allocation.Policy) SimulationConfig {
	c.Policy = p
	return c
}

// LoadConfig reads a YAML configuration file layered over DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected. The result is
// not validated; call Validate before running.
func LoadConfig(path string) (SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationConfig{}, fmt.Errorf("reading simulation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes over DefaultConfig with strict field checking.
// An empty document yields DefaultConfig.
func ParseConfig(data []byte) (SimulationConfig, error) {
	return DefaultConfig().Overlay(data)
}

// Overlay decodes YAML bytes over a copy of c. Keys absent from data keep
// c's values; unknown keys are rejected.
func (c SimulationConfig) Overlay(data []byte) (SimulationConfig, error) {
	cfg := c
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return SimulationConfig{}, fmt.Errorf("parsing simulation config: %w", err)
	}
	return cfg, nil
}
