package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rationsim/rationsim/sim/allocation"
)

// PolicySummary is one policy's row in a Comparison.
type PolicySummary struct {
	Policy              allocation.Policy `json:"policy"`
	RunID               string            `json:"run_id"`
	TotalDiscountedCost float64           `json:"total_discounted_cost"`
	AvgServiceLevel     float64           `json:"avg_service_level"`
	AvgFraudProb        float64           `json:"avg_fraud_prob"`
	TotalLeakageKg      float64           `json:"total_leakage_kg"`
	TotalStockoutKg     float64           `json:"total_stockout_kg"`
	CVaRCost            float64           `json:"cvar_cost"`
	FallbackPeriods     int               `json:"fallback_periods"`
	CostSeries          []float64         `json:"cost_series"`
	ServiceLevelSeries  []float64         `json:"service_level_series"`
	FraudProbSeries     []float64         `json:"fraud_prob_series"`
}

// Comparison holds side-by-side results of every policy on identical inputs
// and seed. Entries follow allocation.AllPolicies order.
type Comparison struct {
	Config  SimulationConfig    `json:"config"`
	Entries []PolicySummary     `json:"entries"`
	Results []*SimulationResult `json:"-"`
}

// Get returns the entry for policy p.
func (c *Comparison) Get(p allocation.Policy) (PolicySummary, bool) {
	for _, e := range c.Entries {
		if e.Policy == p {
			return e, true
		}
	}
	return PolicySummary{}, false
}

// Cheapest returns the entry with the lowest discounted cost. Ties keep the
// earlier policy.
func (c *Comparison) Cheapest() PolicySummary {
	best := c.Entries[0]
	for _, e := range c.Entries[1:] {
		if e.TotalDiscountedCost < best.TotalDiscountedCost {
			best = e
		}
	}
	return best
}

// SummarizeResult reduces a result to its comparison row.
func SummarizeResult(res *SimulationResult) PolicySummary {
	fallbacks := 0
	for _, pr := range res.Periods {
		if pr.Fallback {
			fallbacks++
		}
	}
	return PolicySummary{
		Policy:              res.Policy,
		RunID:               res.RunID,
		TotalDiscountedCost: res.TotalDiscountedCost,
		AvgServiceLevel:     res.AvgServiceLevel,
		AvgFraudProb:        res.AvgFraudProb,
		TotalLeakageKg:      res.TotalLeakageKg,
		TotalStockoutKg:     res.TotalStockoutKg,
		CVaRCost:            res.CVaRCost,
		FallbackPeriods:     fallbacks,
		CostSeries:          res.CostSeries,
		ServiceLevelSeries:  res.ServiceLevelSeries,
		FraudProbSeries:     res.FraudProbSeries,
	}
}

// ComparePolicies runs all four policies against the same inputs and seed.
// The provider is consulted once; each run gets its own simulator and
// configuration copy, and runs execute concurrently. The first failure
// cancels the remaining runs.
func ComparePolicies(ctx context.Context, cfg SimulationConfig, provider DataProvider, opts ...Option) (*Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in, err := fetchInputs(provider, cfg.NPeriods)
	if err != nil {
		return nil, err
	}
	shared := StaticProvider(in)

	policies := allocation.AllPolicies()
	sims := make([]*Simulator, len(policies))
	for i, p := range policies {
		s, err := NewSimulator(cfg.WithPolicy(p), shared, opts...)
		if err != nil {
			return nil, fmt.Errorf("building %s simulator: %w", p, err)
		}
		sims[i] = s
	}

	results := make([]*SimulationResult, len(policies))
	g, gctx := errgroup.WithContext(ctx)
	for i := range sims {
		g.Go(func() error {
			res, err := sims[i].Run(gctx)
			if err != nil {
				return fmt.Errorf("%s run: %w", policies[i], err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Config:  cfg,
		Entries: make([]PolicySummary, len(results)),
		Results: results,
	}
	for i, res := range results {
		cmp.Entries[i] = SummarizeResult(res)
	}
	return cmp, nil
}
