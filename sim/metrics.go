package sim

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rationsim/rationsim/sim/allocation"
	"github.com/rationsim/rationsim/sim/trace"
)

// SimulationResult is the immutable outcome of one run. Periods, the
// summary statistics and the series are a pure function of config, inputs
// and seed; RunID, WallTime and RuntimeSeconds identify and time the run and
// differ between otherwise identical runs.
//
// TotalStockoutKg sums each period's aggregate shortfall of realized demand
// against the allocation, max(0, TotalDemandKg − TotalSupplyKg). It differs
// from the sum of per-district Stockout vectors, which also counts districts
// short while others hold surplus.
type SimulationResult struct {
	RunID         string            `json:"run_id"`
	Policy        allocation.Policy `json:"policy"`
	Config        SimulationConfig  `json:"config"`
	NDistricts    int               `json:"n_districts"`
	DistrictNames []string          `json:"district_names"`
	NPeriods      int               `json:"n_periods"`
	Periods       []PeriodSnapshot  `json:"periods"`

	TotalDiscountedCost float64 `json:"total_discounted_cost"`
	AvgServiceLevel     float64 `json:"avg_service_level"`
	AvgFraudProb        float64 `json:"avg_fraud_prob"`
	TotalLeakageKg      float64 `json:"total_leakage_kg"`
	TotalStockoutKg     float64 `json:"total_stockout_kg"`
	CVaRCost            float64 `json:"cvar_cost"`

	WallTime       time.Duration `json:"-"`
	RuntimeSeconds float64       `json:"runtime_seconds"`

	CostSeries            []float64 `json:"cost_series"`
	CostTransportSeries   []float64 `json:"cost_transport_series"`
	CostStockoutSeries    []float64 `json:"cost_stockout_series"`
	CostLeakageSeries     []float64 `json:"cost_leakage_series"`
	CostEquitySeries      []float64 `json:"cost_equity_series"`
	ServiceLevelSeries    []float64 `json:"service_level_series"`
	FraudProbSeries       []float64 `json:"fraud_prob_series"`
	InventoryTotalSeries  []float64 `json:"inventory_total_series"`
	AllocationTotalSeries []float64 `json:"allocation_total_series"`

	DistrictFinal []DistrictFinalState `json:"district_final_state"`

	Trace        *trace.SimulationTrace `json:"-"`                       // nil if trace level is "none"
	TraceSummary *trace.TraceSummary    `json:"trace_summary,omitempty"` // nil if trace level is "none"
}

// DistrictFinalState summarizes one district over the whole run.
type DistrictFinalState struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Shops            int     `json:"shops"`
	Beneficiaries    int     `json:"beneficiaries"`
	FinalInventoryKg float64 `json:"final_inventory_kg"`
	FinalFraudProb   float64 `json:"final_fraud_prob"`
	AvgServiceRatio  float64 `json:"avg_service_ratio"`
	TotalLeakageKg   float64 `json:"total_leakage_kg"`
	InspectedPeriods int     `json:"inspected_periods"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	DistKm           float64 `json:"dist_km"`
}

// aggregate folds the period snapshots into a SimulationResult.
func aggregate(cfg SimulationConfig, in *Inputs, periods []PeriodSnapshot, tr *trace.SimulationTrace, wall time.Duration) *SimulationResult {
	T := len(periods)
	res := &SimulationResult{
		RunID:                 uuid.NewString(),
		Policy:                cfg.Policy,
		Config:                cfg,
		NDistricts:            in.N(),
		DistrictNames:         in.DistrictNames(),
		NPeriods:              T,
		Periods:               periods,
		WallTime:              wall,
		RuntimeSeconds:        wall.Seconds(),
		CostSeries:            make([]float64, T),
		CostTransportSeries:   make([]float64, T),
		CostStockoutSeries:    make([]float64, T),
		CostLeakageSeries:     make([]float64, T),
		CostEquitySeries:      make([]float64, T),
		ServiceLevelSeries:    make([]float64, T),
		FraudProbSeries:       make([]float64, T),
		InventoryTotalSeries:  make([]float64, T),
		AllocationTotalSeries: make([]float64, T),
		Trace:                 tr,
	}
	if tr != nil {
		res.TraceSummary = trace.Summarize(tr)
	}

	discount := 1.0
	for t, pr := range periods {
		res.TotalDiscountedCost += discount * pr.CostTotal
		discount *= cfg.DiscountFactor

		res.TotalLeakageKg += floats.Sum(pr.Leakage)
		res.TotalStockoutKg += math.Max(0, pr.TotalDemandKg-pr.TotalSupplyKg)

		res.CostSeries[t] = pr.CostTotal
		res.CostTransportSeries[t] = pr.CostTransport
		res.CostStockoutSeries[t] = pr.CostStockout
		res.CostLeakageSeries[t] = pr.CostLeakage
		res.CostEquitySeries[t] = pr.CostEquity
		res.ServiceLevelSeries[t] = pr.AvgServiceRatio
		res.FraudProbSeries[t] = pr.AvgFraudProb
		res.InventoryTotalSeries[t] = floats.Sum(pr.InventoryEnd)
		res.AllocationTotalSeries[t] = pr.TotalSupplyKg
	}
	if T > 0 {
		res.AvgServiceLevel = stat.Mean(res.ServiceLevelSeries, nil)
		res.AvgFraudProb = stat.Mean(res.FraudProbSeries, nil)
	}
	res.CVaRCost = CVaR(res.CostSeries, cfg.CVaRConfidence)
	res.DistrictFinal = districtFinal(in, periods)
	return res
}

// CVaR returns the empirical tail mean of costs: with costs sorted ascending
// and k = ceil(confidence·T), the mean of sorted[k:], or the largest cost when
// k reaches T. Returns 0 for an empty series. costs is not modified.
func CVaR(costs []float64, confidence float64) float64 {
	T := len(costs)
	if T == 0 {
		return 0
	}
	sorted := make([]float64, T)
	copy(sorted, costs)
	sort.Float64s(sorted)

	k := int(math.Ceil(confidence * float64(T)))
	if k < 0 {
		k = 0
	}
	if k >= T {
		return sorted[T-1]
	}
	return stat.Mean(sorted[k:], nil)
}

func districtFinal(in *Inputs, periods []PeriodSnapshot) []DistrictFinalState {
	out := make([]DistrictFinalState, in.N())
	for i, d := range in.Districts {
		fs := DistrictFinalState{
			ID:            d.ID,
			Name:          d.Name,
			Shops:         d.Shops,
			Beneficiaries: d.Beneficiaries,
			Lat:           d.Lat,
			Lon:           d.Lon,
			DistKm:        d.DistKm,
		}
		if len(periods) > 0 {
			last := periods[len(periods)-1]
			fs.FinalInventoryKg = last.InventoryEnd[i]
			fs.FinalFraudProb = last.FraudProbEnd[i]
			service := 0.0
			for _, pr := range periods {
				service += pr.ServiceRatio[i]
				fs.TotalLeakageKg += pr.Leakage[i]
				fs.InspectedPeriods += pr.Inspections[i]
			}
			fs.AvgServiceRatio = service / float64(len(periods))
		}
		out[i] = fs
	}
	return out
}
