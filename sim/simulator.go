package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rationsim/rationsim/sim/allocation"
	"github.com/rationsim/rationsim/sim/trace"
)

const (
	// Fraud probabilities are kept inside [minFraudProb, maxFraudProb].
	minFraudProb = 0.01
	maxFraudProb = 0.99

	// equityScale brings the variance of service ratios to the magnitude of
	// the other cost terms.
	equityScale = 1e6

	// understockFactor flags a district whose forecast exceeds its stock by this multiple.
	understockFactor = 1.5
)

// SimState is the lifecycle stage of a Simulator.
type SimState int

const (
	StateInitialized SimState = iota
	StateRunning
	StateCompleted
)

func (s SimState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option customizes a Simulator at construction.
type Option func(*Simulator)

// WithSolver replaces the default simplex solver used by LP-backed policies.
func WithSolver(solver allocation.Solver) Option {
	return func(s *Simulator) { s.solver = solver }
}

// WithTraceLevel sets decision-trace collection. The default is
// trace.TraceLevelDecisions.
func WithTraceLevel(level trace.TraceLevel) Option {
	return func(s *Simulator) { s.traceLevel = level }
}

// Simulator advances inventory and fraud state period by period under one
// allocation policy. It owns its configuration copy, run state and RNG
// stream, and runs at most once.
type Simulator struct {
	cfg    SimulationConfig
	inputs *Inputs

	optimizer  *allocation.Optimizer
	solver     allocation.Solver
	rng        *rand.Rand
	traceLevel trace.TraceLevel
	trace      *trace.SimulationTrace

	state SimState

	// run state; replaced with fresh slices every period
	inventory []float64
	fraud     []float64

	periods []PeriodSnapshot
}

// NewSimulator validates cfg, fetches inputs from provider and prepares a
// run. Configuration problems are returned as *ConfigValidationError; any
// provider failure or malformed input as *DataProviderError.
func NewSimulator(cfg SimulationConfig, provider DataProvider, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in, err := fetchInputs(provider, cfg.NPeriods)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:        cfg,
		inputs:     in,
		traceLevel: trace.TraceLevelDecisions,
		state:      StateInitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.optimizer = allocation.NewOptimizer(cfg.Policy, cfg.OptimizerParams(), s.solver)
	s.rng = NewRunRNG(cfg.Seed)
	s.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: s.traceLevel})

	n := in.N()
	s.inventory = make([]float64, n)
	s.fraud = make([]float64, n)
	copy(s.inventory, in.InitialInventory)
	for i, p := range in.InitialFraudProb {
		s.fraud[i] = clamp(p, minFraudProb, maxFraudProb)
	}
	s.periods = make([]PeriodSnapshot, 0, cfg.NPeriods)

	logrus.Debugf("[sim] initialized: policy=%s districts=%d periods=%d seed=%d",
		cfg.Policy, n, cfg.NPeriods, cfg.Seed)
	return s, nil
}

func fetchInputs(provider DataProvider, nPeriods int) (*Inputs, error) {
	if provider == nil {
		return nil, &DataProviderError{Reason: "no data provider configured"}
	}
	in, err := provider.Provide()
	if err != nil {
		var dpe *DataProviderError
		if errors.As(err, &dpe) {
			return nil, err
		}
		return nil, &DataProviderError{Reason: "provide failed", Err: err}
	}
	if in == nil {
		return nil, &DataProviderError{Reason: "provider returned no inputs"}
	}
	if err := in.Validate(nPeriods); err != nil {
		return nil, &DataProviderError{Reason: "invalid inputs", Err: err}
	}
	return in, nil
}

// State returns the lifecycle stage.
func (s *Simulator) State() SimState { return s.state }

// Config returns the simulator's configuration copy.
func (s *Simulator) Config() SimulationConfig { return s.cfg }

// Inputs returns the provider data the run uses. Callers must not modify it.
func (s *Simulator) Inputs() *Inputs { return s.inputs }

// Periods returns the snapshots recorded so far.
func (s *Simulator) Periods() []PeriodSnapshot {
	out := make([]PeriodSnapshot, len(s.periods))
	copy(out, s.periods)
	return out
}

// Trace returns the decision trace, or nil when tracing is disabled.
func (s *Simulator) Trace() *trace.SimulationTrace {
	if !s.trace.Enabled() {
		return nil
	}
	return s.trace
}

// Run executes every period in order and aggregates the result. ctx is
// checked between periods; on cancellation the simulator stays in
// StateRunning and ctx.Err() is returned wrapped.
func (s *Simulator) Run(ctx context.Context) (*SimulationResult, error) {
	if s.state != StateInitialized {
		return nil, fmt.Errorf("simulator cannot run: state is %s", s.state)
	}
	s.state = StateRunning
	start := time.Now()

	for t := 0; t < s.cfg.NPeriods; t++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation stopped before period %d: %w", t, err)
		}
		s.periods = append(s.periods, s.step(t))
	}

	s.state = StateCompleted
	res := aggregate(s.cfg, s.inputs, s.periods, s.Trace(), time.Since(start))
	logrus.Infof("[sim] %s completed %d periods: discounted cost %.2f, avg service %.4f, cvar %.2f",
		s.cfg.Policy, s.cfg.NPeriods, res.TotalDiscountedCost, res.AvgServiceLevel, res.CVaRCost)
	return res, nil
}

// step runs one period and advances the run state.
func (s *Simulator) step(t int) PeriodSnapshot {
	cfg := s.cfg
	in := s.inputs
	n := in.N()

	inv := s.inventory
	p := s.fraud
	mu := column(in.DemandMean, t)
	sd := column(in.DemandStd, t)
	supply := in.SupplySchedule[t]

	agents := AgentActions{
		Demand: demandAction(mu, inv),
		Fraud:  fraudAction(p, cfg.InspectionThreshold),
		Geo:    geoAction(in),
	}

	// 1. allocate
	dec := s.optimizer.Allocate(allocation.State{
		Inventory:     inv,
		DemandMean:    mu,
		DemandStd:     sd,
		FraudProb:     p,
		TransportCost: in.TransportCost,
		SupplyTotal:   supply,
		Budget:        cfg.BudgetPerPeriod,
	})
	x, y := dec.Allocation, dec.Inspect
	if dec.Fallback && s.trace.Enabled() {
		s.trace.RecordFallback(trace.FallbackRecord{Period: t, Policy: cfg.Policy.String(), Reason: dec.FallbackReason})
	}
	if s.trace.Enabled() {
		s.recordInspections(t, dec)
	}

	// 2. governance
	violations := s.checkGovernance(t, inv, x, mu)

	// 3. realized demand, drawn in district order
	realized := make([]float64, n)
	for i := 0; i < n; i++ {
		realized[i] = s.drawDemand(mu[i], sd[i])
	}

	leakage := make([]float64, n)
	stockout := make([]float64, n)
	service := make([]float64, n)
	invEnd := make([]float64, n)
	for i := 0; i < n; i++ {
		// 4. leakage uses the fraud probability at decision time
		leakage[i] = p[i] * x[i]
		// 5.
		effective := math.Max(inv[i]+x[i]-leakage[i], 0)
		// 6.
		stockout[i] = math.Max(realized[i]-effective, 0)
		service[i] = 1
		if realized[i] > 0 {
			service[i] = clamp(effective/realized[i], 0, 1)
		}
		// 7.
		invEnd[i] = math.Max(effective-realized[i], 0)
	}

	// 8. fraud drift, drawn after all demand draws
	shock := distuv.Uniform{Min: 0, Max: cfg.FraudShockScale, Src: s.rng}
	pEnd := make([]float64, n)
	for i := 0; i < n; i++ {
		reduced := p[i] * (1 - cfg.InspectionEffectiveness*float64(y[i]))
		pEnd[i] = clamp(reduced+shock.Rand(), minFraudProb, maxFraudProb)
	}

	// 9. costs
	costTransport := floats.Dot(in.TransportCost, x)
	costStockout := cfg.StockoutPenalty * floats.Sum(stockout)
	costLeakage := floats.Sum(leakage)
	costEquity := stat.PopVariance(service, nil) * equityScale
	costTotal := cfg.Alpha*costTransport + cfg.Beta*costStockout + cfg.Gamma*costLeakage + cfg.Delta*costEquity

	allocated := floats.Sum(x)
	nInspections := 0
	for _, v := range y {
		nInspections += v
	}
	nStockouts := 0
	for _, so := range stockout {
		if so > 0 {
			nStockouts++
		}
	}
	utilPct := 100 * allocated / math.Max(supply, 1)

	agents.Allocation = allocationAction(cfg.Policy, x, nInspections)
	agents.Governance = GovernanceAction{Violations: violations, SupplyUtilPct: utilPct}

	snap := PeriodSnapshot{
		Period:               t,
		InventoryStart:       inv,
		InventoryEnd:         invEnd,
		DemandMean:           mu,
		DemandRealized:       realized,
		FraudProbStart:       p,
		FraudProbEnd:         pEnd,
		ServiceRatio:         service,
		Allocation:           x,
		Inspections:          y,
		Leakage:              leakage,
		Stockout:             stockout,
		CostTransport:        costTransport,
		CostStockout:         costStockout,
		CostLeakage:          costLeakage,
		CostEquity:           costEquity,
		CostTotal:            costTotal,
		NStockouts:           nStockouts,
		NInspections:         nInspections,
		TotalDemandKg:        floats.Sum(realized),
		TotalSupplyKg:        allocated,
		SupplyUtilPct:        utilPct,
		AvgServiceRatio:      stat.Mean(service, nil),
		AvgFraudProb:         stat.Mean(p, nil),
		Fallback:             dec.Fallback,
		FallbackReason:       dec.FallbackReason,
		GovernanceViolations: violations,
		Agents:               agents,
	}
	logrus.Debugf("[period %02d] allocated=%.1f/%.1f inspections=%d stockouts=%d cost=%.2f",
		t, allocated, supply, nInspections, nStockouts, costTotal)

	// 11. advance; the old slices now belong to the snapshot
	s.inventory = invEnd
	s.fraud = pEnd
	return snap
}

// drawDemand samples a log-normal whose mean is max(μ,1) and whose standard
// deviation is σ scaled to the same base.
func (s *Simulator) drawDemand(mean, std float64) float64 {
	m := math.Max(mean, 1)
	cv := std / m
	sigma := math.Sqrt(math.Log(1 + cv*cv))
	dist := distuv.LogNormal{Mu: math.Log(m) - sigma*sigma/2, Sigma: sigma, Src: s.rng}
	return dist.Rand()
}

// checkGovernance counts districts whose projected coverage falls below the
// minimum service level. Violations are reported, never enforced.
func (s *Simulator) checkGovernance(t int, inv, x, mu []float64) []string {
	below := 0
	for i := range mu {
		coverage := 1.0
		if mu[i] > 0 {
			coverage = (inv[i] + x[i]) / mu[i]
		}
		if coverage >= s.cfg.MinServiceLevel {
			continue
		}
		below++
		if s.trace.Enabled() {
			d := s.inputs.Districts[i]
			s.trace.RecordGovernance(trace.GovernanceRecord{
				Period:       t,
				DistrictID:   d.ID,
				DistrictName: d.Name,
				Coverage:     coverage,
				Required:     s.cfg.MinServiceLevel,
			})
		}
	}
	violations := make([]string, 0, 1)
	if below > 0 {
		msg := fmt.Sprintf("%d districts below min service level %g", below, s.cfg.MinServiceLevel)
		violations = append(violations, msg)
		logrus.Infof("[period %02d] governance: %s", t, msg)
	}
	return violations
}

func (s *Simulator) recordInspections(t int, dec allocation.Decision) {
	kappa := s.cfg.InspectionCost
	for i, v := range dec.Inspect {
		if v == 0 {
			continue
		}
		rec := trace.InspectionRecord{
			Period:     t,
			DistrictID: s.inputs.Districts[i].ID,
			FraudProb:  s.fraud[i],
			Allocation: dec.Allocation[i],
			Mandatory:  dec.Mandatory[i],
		}
		if !rec.Mandatory {
			rec.ROI = allocation.InspectionROI(s.fraud[i], dec.Allocation[i], s.inputs.TransportCost[i], kappa)
		}
		s.trace.RecordInspection(rec)
	}
}

func demandAction(mu, inv []float64) DemandAction {
	risk := 0
	for i := range mu {
		if mu[i] > inv[i]*understockFactor {
			risk++
		}
	}
	return DemandAction{UnderstockRisk: risk, TotalForecastKg: floats.Sum(mu)}
}

func fraudAction(p []float64, threshold float64) FraudAction {
	high := 0
	for _, v := range p {
		if v > threshold {
			high++
		}
	}
	return FraudAction{HighRiskDistricts: high, AvgFraudProb: stat.Mean(p, nil)}
}

func geoAction(in *Inputs) GeoAction {
	return GeoAction{
		AvgCostPerKg:    stat.Mean(in.TransportCost, nil),
		MaxCostDistrict: in.Districts[floats.MaxIdx(in.TransportCost)].Name,
	}
}

func allocationAction(policy allocation.Policy, x []float64, inspections int) AllocationAction {
	received := 0
	for _, v := range x {
		if v > 0 {
			received++
		}
	}
	return AllocationAction{
		Policy:            policy.String(),
		TotalAllocatedKg:  floats.Sum(x),
		DistrictsReceived: received,
		Inspections:       inspections,
	}
}

// column extracts period t from a [district][period] matrix into a fresh slice.
func column(m [][]float64, t int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[t]
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
