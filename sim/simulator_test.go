package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rationsim/rationsim/sim/allocation"
	"github.com/rationsim/rationsim/sim/internal/testutil"
	"github.com/rationsim/rationsim/sim/trace"
)

// infeasibleSolver reports every LP as infeasible.
type infeasibleSolver struct{}

func (infeasibleSolver) Solve(allocation.Problem) allocation.Solution {
	return allocation.Solution{Status: allocation.StatusInfeasible}
}

func TestSimulator_PeriodInvariants_AllPolicies(t *testing.T) {
	in := testInputs(8, 12)
	for _, p := range allocation.AllPolicies() {
		t.Run(p.String(), func(t *testing.T) {
			// GIVEN a simulator for policy p
			cfg := testConfig().WithPolicy(p)
			s := mustSimulator(cfg, in)

			// WHEN the run completes
			res, err := s.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, res.Periods, cfg.NPeriods)

			// THEN every period satisfies the bounds
			for _, pr := range res.Periods {
				for i, x := range pr.Allocation {
					upper := cfg.MaxAllocationRatio * max(pr.DemandMean[i], 1)
					assert.GreaterOrEqual(t, x, 0.0)
					assert.LessOrEqual(t, x, upper+1e-9, "period %d district %d", pr.Period, i)
				}
				assert.LessOrEqual(t, pr.TotalSupplyKg, in.SupplySchedule[pr.Period]+1e-6)
				testutil.AssertSliceWithin(t, "fraud_prob_end", pr.FraudProbEnd, 0.01, 0.99, 0)
				testutil.AssertSliceWithin(t, "service_ratio", pr.ServiceRatio, 0, 1, 0)
				for i, inv := range pr.InventoryEnd {
					assert.GreaterOrEqual(t, inv, 0.0, "period %d district %d", pr.Period, i)
				}
			}
			assert.Equal(t, StateCompleted, s.State())
		})
	}
}

func TestSimulator_StateCarriesAcrossPeriods(t *testing.T) {
	res, err := mustSimulator(testConfig(), testInputs(5, 12)).Run(context.Background())
	require.NoError(t, err)

	for t0 := 1; t0 < len(res.Periods); t0++ {
		prev, cur := res.Periods[t0-1], res.Periods[t0]
		assert.Equal(t, prev.InventoryEnd, cur.InventoryStart, "inventory at period %d", t0)
		assert.Equal(t, prev.FraudProbEnd, cur.FraudProbStart, "fraud at period %d", t0)
	}
}

func TestSimulator_Determinism(t *testing.T) {
	// GIVEN two simulators with identical config, seed and inputs
	cfg := testConfig()
	in := testInputs(6, 12)

	a, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)
	b, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	// THEN the period records and summaries are bit-identical
	assert.Equal(t, a.Periods, b.Periods)
	assert.Equal(t, a.TotalDiscountedCost, b.TotalDiscountedCost)
	assert.Equal(t, a.TotalStockoutKg, b.TotalStockoutKg)
	assert.Equal(t, a.CVaRCost, b.CVaRCost)
	assert.Equal(t, a.CostSeries, b.CostSeries)
	assert.Equal(t, a.DistrictFinal, b.DistrictFinal)

	// AND only the run identity differs
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestSimulator_SeedChangesOutcome(t *testing.T) {
	cfg := testConfig()
	in := testInputs(6, 12)
	a, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)
	cfg.Seed++
	b, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.Periods[0].DemandRealized, b.Periods[0].DemandRealized)
}

func TestSimulator_LeakageUsesPreUpdateFraud(t *testing.T) {
	cfg := testConfig()
	cfg.InspectionEffectiveness = 1
	cfg.BudgetPerPeriod = 1e9
	res, err := mustSimulator(cfg, testInputs(4, 12)).Run(context.Background())
	require.NoError(t, err)

	for _, pr := range res.Periods {
		total := 0.0
		for i := range pr.Leakage {
			assert.InDelta(t, pr.FraudProbStart[i]*pr.Allocation[i], pr.Leakage[i], 1e-9)
			total += pr.Leakage[i]
		}
		assert.InDelta(t, total, pr.CostLeakage, 1e-6)
	}
}

func TestSimulator_FullInspectionEffectDrivesFraudToFloor(t *testing.T) {
	// GIVEN η = 1, no drift and every district above the threshold
	cfg := testConfig()
	cfg.InspectionEffectiveness = 1
	cfg.FraudShockScale = 0
	cfg.InspectionThreshold = 0
	s := mustSimulator(cfg, testInputs(4, 12))

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// THEN every district is inspected and its fraud probability clamps to 0.01
	first := res.Periods[0]
	assert.Equal(t, []int{1, 1, 1, 1}, first.Inspections)
	for _, p := range first.FraudProbEnd {
		assert.Equal(t, 0.01, p)
	}
}

func TestSimulator_NoInspectionNoDriftKeepsFraud(t *testing.T) {
	cfg := testConfig()
	cfg.FraudShockScale = 0
	cfg.BudgetPerPeriod = 0
	cfg.InspectionThreshold = 1
	in := testInputs(4, 12)

	res, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	last := res.Periods[len(res.Periods)-1]
	assert.InDeltaSlice(t, in.InitialFraudProb, last.FraudProbEnd, 1e-12)
}

func TestSimulator_ProportionalScenarioA(t *testing.T) {
	// GIVEN three identical districts with no stock, supply for half of demand
	in := testInputs(3, 6)
	for i := range in.Districts {
		in.InitialInventory[i] = 0
		for t0 := range in.DemandMean[i] {
			in.DemandMean[i][t0] = 100
		}
	}
	for t0 := range in.SupplySchedule {
		in.SupplySchedule[t0] = 150
	}
	cfg := testConfig().WithPolicy(allocation.Proportional)
	cfg.NPeriods = 6

	res, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{50, 50, 50}, res.Periods[0].Allocation, 1e-9)
}

func TestSimulator_ZeroSupplyNeverFails(t *testing.T) {
	in := testInputs(4, 12)
	for t0 := range in.SupplySchedule {
		in.SupplySchedule[t0] = 0
	}
	for i := range in.InitialInventory {
		in.InitialInventory[i] = 0
	}
	for _, p := range allocation.AllPolicies() {
		res, err := mustSimulator(testConfig().WithPolicy(p), in).Run(context.Background())
		require.NoError(t, err, p.String())
		for _, pr := range res.Periods {
			assert.Zero(t, pr.TotalSupplyKg)
			assert.Zero(t, pr.SupplyUtilPct)
			assert.NotEmpty(t, pr.GovernanceViolations)
		}
	}
}

func TestSimulator_CostTotalIsWeightedSum(t *testing.T) {
	cfg := testConfig()
	res, err := mustSimulator(cfg, testInputs(5, 12)).Run(context.Background())
	require.NoError(t, err)

	for _, pr := range res.Periods {
		want := cfg.Alpha*pr.CostTransport + cfg.Beta*pr.CostStockout + cfg.Gamma*pr.CostLeakage + cfg.Delta*pr.CostEquity
		testutil.AssertFloat64Equal(t, "cost_total", want, pr.CostTotal, 1e-12)
	}
}

func TestSimulator_FallbackRecordedAndTraced(t *testing.T) {
	cfg := testConfig().WithPolicy(allocation.RiskAverse)
	s := mustSimulator(cfg, testInputs(4, 12), WithSolver(infeasibleSolver{}))

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	for _, pr := range res.Periods {
		assert.True(t, pr.Fallback)
		assert.Equal(t, "infeasible", pr.FallbackReason)
	}
	require.NotNil(t, res.TraceSummary)
	assert.Equal(t, cfg.NPeriods, res.TraceSummary.FallbackPeriods)
	assert.Equal(t, cfg.NPeriods, SummarizeResult(res).FallbackPeriods)
}

func TestSimulator_TraceLevelNone(t *testing.T) {
	s := mustSimulator(testConfig(), testInputs(4, 12), WithTraceLevel(trace.TraceLevelNone))
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Trace)
	assert.Nil(t, res.TraceSummary)
}

func TestSimulator_TraceCountsMatchSnapshots(t *testing.T) {
	res, err := mustSimulator(testConfig(), testInputs(8, 12)).Run(context.Background())
	require.NoError(t, err)

	inspections := 0
	for _, pr := range res.Periods {
		inspections += pr.NInspections
	}
	assert.Equal(t, inspections, res.TraceSummary.TotalInspections)
}

func TestSimulator_AgentActions(t *testing.T) {
	in := testInputs(4, 12)
	cfg := testConfig()
	res, err := mustSimulator(cfg, in).Run(context.Background())
	require.NoError(t, err)

	first := res.Periods[0]
	assert.Equal(t, in.Districts[3].Name, first.Agents.Geo.MaxCostDistrict)
	assert.InDelta(t, first.TotalSupplyKg, first.Agents.Allocation.TotalAllocatedKg, 1e-9)
	assert.Equal(t, first.NInspections, first.Agents.Allocation.Inspections)
	assert.Equal(t, cfg.Policy.String(), first.Agents.Allocation.Policy)
	assert.Equal(t, first.SupplyUtilPct, first.Agents.Governance.SupplyUtilPct)
	assert.Equal(t, first.AvgFraudProb, first.Agents.Fraud.AvgFraudProb)
}

func TestSimulator_RunsOnlyOnce(t *testing.T) {
	s := mustSimulator(testConfig(), testInputs(3, 12))
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.Error(t, err)
}

func TestSimulator_CancelledBetweenPeriods(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := mustSimulator(testConfig(), testInputs(3, 12))

	res, err := s.Run(ctx)

	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateRunning, s.State())
	assert.Empty(t, s.Periods())
}

func TestNewSimulator_InvalidConfigRejectedBeforeProvider(t *testing.T) {
	called := false
	provider := ProviderFunc(func() (*Inputs, error) {
		called = true
		return testInputs(3, 12), nil
	})
	cfg := testConfig()
	cfg.NPeriods = 2

	_, err := NewSimulator(cfg, provider)

	var cve *ConfigValidationError
	assert.True(t, errors.As(err, &cve))
	assert.False(t, called)
}

func TestNewSimulator_ProviderErrors(t *testing.T) {
	boom := errors.New("boom")
	short := testInputs(3, 4)
	badFraud := testInputs(3, 12)
	badFraud.InitialFraudProb[1] = 1.5
	ragged := testInputs(3, 12)
	ragged.TransportCost = ragged.TransportCost[:2]

	tests := []struct {
		name     string
		provider DataProvider
		wrapped  error
	}{
		{"nil provider", nil, nil},
		{"provider failure", ProviderFunc(func() (*Inputs, error) { return nil, boom }), boom},
		{"nil inputs", ProviderFunc(func() (*Inputs, error) { return nil, nil }), nil},
		{"too few periods", StaticProvider(short), errShape},
		{"fraud out of range", StaticProvider(badFraud), errShape},
		{"ragged vectors", StaticProvider(ragged), errShape},
		{"no districts", StaticProvider(&Inputs{}), errShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator(testConfig(), tt.provider)

			var dpe *DataProviderError
			require.True(t, errors.As(err, &dpe), "got %v", err)
			if tt.wrapped != nil {
				assert.True(t, errors.Is(err, tt.wrapped))
			}
		})
	}
}

func TestSimState_String(t *testing.T) {
	assert.Equal(t, "initialized", StateInitialized.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "state(7)", SimState(7).String())
}
