package sim

// PeriodSnapshot is the immutable record of one period: the state the
// optimizer saw, its decisions, the realized outcomes and the costs.
// Per-district slices are indexed like Inputs.Districts and are never shared
// with the simulator's live state.
type PeriodSnapshot struct {
	Period int `json:"period"`

	InventoryStart []float64 `json:"inventory_start"`
	InventoryEnd   []float64 `json:"inventory_end"`
	DemandMean     []float64 `json:"demand_mean"`
	DemandRealized []float64 `json:"demand_realized"`
	FraudProbStart []float64 `json:"fraud_prob_start"`
	FraudProbEnd   []float64 `json:"fraud_prob_end"`
	ServiceRatio   []float64 `json:"service_ratio"`
	Allocation     []float64 `json:"allocation"`
	Inspections    []int     `json:"inspections"`
	Leakage        []float64 `json:"leakage"`
	Stockout       []float64 `json:"stockout"`

	CostTransport float64 `json:"cost_transport"`
	CostStockout  float64 `json:"cost_stockout"`
	CostLeakage   float64 `json:"cost_leakage"`
	CostEquity    float64 `json:"cost_equity"`
	CostTotal     float64 `json:"cost_total"`

	NStockouts      int     `json:"n_stockouts"`
	NInspections    int     `json:"n_inspections"`
	TotalDemandKg   float64 `json:"total_demand_kg"` // realized
	TotalSupplyKg   float64 `json:"total_supply_kg"` // allocated
	SupplyUtilPct   float64 `json:"supply_util_pct"`
	AvgServiceRatio float64 `json:"avg_service_ratio"`
	AvgFraudProb    float64 `json:"avg_fraud_prob"` // pre-update

	// Fallback is set when the configured policy could not be solved and
	// proportional allocation was used for this period.
	Fallback       bool   `json:"fallback"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	GovernanceViolations []string `json:"governance_violations"`

	Agents AgentActions `json:"agent_actions"`
}

// AgentActions summarizes, per decision role, what drove the period.
type AgentActions struct {
	Demand     DemandAction     `json:"demand_agent"`
	Fraud      FraudAction      `json:"fraud_agent"`
	Geo        GeoAction        `json:"geo_agent"`
	Allocation AllocationAction `json:"allocation_agent"`
	Governance GovernanceAction `json:"governance_agent"`
}

// DemandAction summarizes the forecast the optimizer saw.
type DemandAction struct {
	UnderstockRisk  int     `json:"districts_with_understock_risk"` // forecast > 1.5 × inventory
	TotalForecastKg float64 `json:"total_forecast_demand_kg"`
}

// FraudAction summarizes fraud estimates at decision time.
type FraudAction struct {
	HighRiskDistricts int     `json:"high_risk_districts"`
	AvgFraudProb      float64 `json:"avg_fraud_prob"`
}

// GeoAction summarizes transport costs.
type GeoAction struct {
	AvgCostPerKg    float64 `json:"avg_cost_per_kg"`
	MaxCostDistrict string  `json:"max_cost_district"`
}

// AllocationAction summarizes the optimizer's decision.
type AllocationAction struct {
	Policy            string  `json:"policy"`
	TotalAllocatedKg  float64 `json:"total_allocated_kg"`
	DistrictsReceived int     `json:"districts_receiving_allocation"`
	Inspections       int     `json:"n_inspections_recommended"`
}

// GovernanceAction summarizes constraint validation.
type GovernanceAction struct {
	Violations    []string `json:"policy_violations"`
	SupplyUtilPct float64  `json:"supply_utilisation_pct"`
}
