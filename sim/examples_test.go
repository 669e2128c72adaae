package sim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rationsim/rationsim/sim/allocation"
)

// TestExampleConfigs_Drought verifies that drought.yaml loads, validates and
// produces stockouts when run against tight supply.
func TestExampleConfigs_Drought(t *testing.T) {
	// GIVEN the drought.yaml example config
	cfg, err := LoadConfig(filepath.Join("..", "examples", "drought.yaml"))
	require.NoError(t, err, "failed to load drought.yaml")

	// THEN validation passes and the overrides are applied
	require.NoError(t, cfg.Validate())
	assert.Equal(t, allocation.EquityFirst, cfg.Policy)
	assert.Equal(t, 12, cfg.NPeriods)
	assert.Equal(t, 0.60, cfg.SupplyFraction)

	// THEN unspecified keys keep their defaults
	assert.Equal(t, DefaultConfig().Seed, cfg.Seed)
	assert.Equal(t, DefaultConfig().CVaRConfidence, cfg.CVaRConfidence)

	// WHEN run on inputs with supply at 60% of mean demand
	in := testInputs(6, cfg.NPeriods)
	for i := range in.SupplySchedule {
		in.SupplySchedule[i] *= 0.60 / 0.9
	}
	res, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	// THEN demand goes unmet
	assert.Greater(t, res.TotalStockoutKg, 0.0)
}

// TestExampleConfigs_FraudHotspot verifies that fraud-hotspot.yaml loads and
// validates.
func TestExampleConfigs_FraudHotspot(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "examples", "fraud-hotspot.yaml"))
	require.NoError(t, err, "failed to load fraud-hotspot.yaml")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, allocation.RiskAverse, cfg.Policy)
	assert.Equal(t, 0.10, cfg.FraudShockScale)
	assert.Equal(t, 0.45, cfg.InspectionThreshold)
	assert.Equal(t, 150000.0, cfg.BudgetPerPeriod)
}
