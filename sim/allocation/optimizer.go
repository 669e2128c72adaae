package allocation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// riskZ is the one-tailed 95th-percentile normal factor used to buffer the
// risk-averse demand target.
const riskZ = 1.645

// Params groups the cost weights and limits the optimizer needs.
type Params struct {
	Alpha               float64 // transport weight
	Beta                float64 // stockout weight
	Gamma               float64 // leakage weight
	InspectionCost      float64 // κ, per inspection
	MaxRatio            float64 // max allocation / max(demand_mean, 1)
	InspectionThreshold float64 // fraud probability above which inspection is mandatory
}

// State is one period's view of the system, one entry per district.
type State struct {
	Inventory     []float64
	DemandMean    []float64
	DemandStd     []float64
	FraudProb     []float64
	TransportCost []float64
	SupplyTotal   float64
	Budget        float64
}

// N returns the number of districts.
func (s State) N() int { return len(s.Inventory) }

func (s State) checkShape() {
	n := s.N()
	if len(s.DemandMean) != n || len(s.DemandStd) != n || len(s.FraudProb) != n || len(s.TransportCost) != n {
		panic(fmt.Sprintf("allocation.State: vector lengths differ (inventory=%d demand_mean=%d demand_std=%d fraud=%d transport=%d)",
			n, len(s.DemandMean), len(s.DemandStd), len(s.FraudProb), len(s.TransportCost)))
	}
}

// Decision is the optimizer's output for one period.
type Decision struct {
	Allocation []float64
	Inspect    []int
	// Fallback is set when an LP-backed policy could not be solved and
	// proportional allocation was substituted for this period.
	Fallback       bool
	FallbackReason string
	// Mandatory marks inspections forced by the fraud threshold.
	Mandatory []bool
	// InspectionSpend is the budget consumed by the chosen inspections.
	InspectionSpend float64
}

// proposal is a policy's raw allocation before clipping and renormalization.
type proposal struct {
	x        []float64
	fallback bool
	reason   string
}

type proposeFunc func(o *Optimizer, st State) proposal

// Optimizer produces allocations and inspection decisions for a fixed policy.
// It holds no per-period state.
type Optimizer struct {
	policy  Policy
	params  Params
	solver  Solver
	propose proposeFunc
}

// NewOptimizer builds an optimizer for the given policy. A nil solver selects
// the gonum simplex solver. Panics on an unknown policy.
func NewOptimizer(policy Policy, params Params, solver Solver) *Optimizer {
	if solver == nil {
		solver = NewSimplexSolver()
	}
	o := &Optimizer{policy: policy, params: params, solver: solver}
	switch policy {
	case Proportional:
		o.propose = proposeProportional
	case Optimized:
		o.propose = proposeOptimized
	case EquityFirst:
		o.propose = proposeEquityFirst
	case RiskAverse:
		o.propose = proposeRiskAverse
	default:
		panic(fmt.Sprintf("unhandled allocation policy %d", int(policy)))
	}
	return o
}

// Policy returns the policy the optimizer was built with.
func (o *Optimizer) Policy() Policy { return o.policy }

// Params returns a copy of the optimizer parameters.
func (o *Optimizer) Params() Params { return o.params }

// Allocate computes the allocation and inspection vectors for one period.
// It never returns an error: solver failures degrade to proportional
// allocation and are reported through Decision.Fallback.
func (o *Optimizer) Allocate(st State) Decision {
	st.checkShape()

	p := o.propose(o, st)
	if p.fallback {
		logrus.Warnf("[allocation] %s policy fell back to proportional: %s", o.policy, p.reason)
	}
	x := o.clip(p.x, st.DemandMean, st.SupplyTotal)
	inspect, mandatory, spend := o.selectInspections(st.FraudProb, x, st.TransportCost, st.Budget)

	return Decision{
		Allocation:      x,
		Inspect:         inspect,
		Fallback:        p.fallback,
		FallbackReason:  p.reason,
		Mandatory:       mandatory,
		InspectionSpend: spend,
	}
}

// MaxAllocation returns the per-district allocation cap max_ratio·max(μ_i, 1).
func (o *Optimizer) MaxAllocation(demandMean []float64) []float64 {
	caps := make([]float64, len(demandMean))
	for i, mu := range demandMean {
		caps[i] = o.params.MaxRatio * math.Max(mu, 1)
	}
	return caps
}

// clip bounds each allocation to [0, cap_i] and scales the vector down
// proportionally when it overshoots the supply.
func (o *Optimizer) clip(raw, demandMean []float64, supply float64) []float64 {
	caps := o.MaxAllocation(demandMean)
	x := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) {
			v = 0
		}
		x[i] = math.Min(math.Max(v, 0), caps[i])
	}
	total := floats.Sum(x)
	if total > supply && total > 0 {
		floats.Scale(supply/total, x)
	}
	return x
}

// proportionalSplit allocates supply ∝ demand, or equally when total demand
// is not positive.
func proportionalSplit(demandMean []float64, supply float64) []float64 {
	n := len(demandMean)
	x := make([]float64, n)
	if n == 0 {
		return x
	}
	total := floats.Sum(demandMean)
	if total <= 0 {
		for i := range x {
			x[i] = supply / float64(n)
		}
		return x
	}
	for i, mu := range demandMean {
		x[i] = mu / total * supply
	}
	return x
}

func proposeProportional(_ *Optimizer, st State) proposal {
	return proposal{x: proportionalSplit(st.DemandMean, st.SupplyTotal)}
}

func proposeOptimized(o *Optimizer, st State) proposal {
	n := st.N()
	cMax := math.Max(floats.Max(append([]float64{0}, st.TransportCost...)), 1e-9)

	prob := Problem{
		AllocCost: make([]float64, n),
		SlackCost: make([]float64, n),
		Shortfall: make([]float64, n),
		Upper:     o.MaxAllocation(st.DemandMean),
		Supply:    st.SupplyTotal,
	}
	for i := 0; i < n; i++ {
		prob.AllocCost[i] = o.params.Alpha*st.TransportCost[i]/cMax + o.params.Gamma*st.FraudProb[i]
		prob.SlackCost[i] = o.params.Beta
		prob.Shortfall[i] = math.Max(0, st.DemandMean[i]-st.Inventory[i])
	}
	return o.solveOrFallback(prob, st)
}

func proposeRiskAverse(o *Optimizer, st State) proposal {
	n := st.N()
	cMax := math.Max(floats.Max(append([]float64{0}, st.TransportCost...)), 1e-9)

	target := make([]float64, n)
	prob := Problem{
		AllocCost: make([]float64, n),
		SlackCost: make([]float64, n),
		Shortfall: make([]float64, n),
		Supply:    st.SupplyTotal,
	}
	for i := 0; i < n; i++ {
		mu, sd := st.DemandMean[i], st.DemandStd[i]
		cv := 0.0
		if mu > 0 {
			cv = sd / mu
		}
		target[i] = mu + riskZ*sd
		prob.AllocCost[i] = o.params.Alpha*st.TransportCost[i]/cMax + o.params.Gamma*st.FraudProb[i]
		prob.SlackCost[i] = o.params.Beta * (1 + cv)
		prob.Shortfall[i] = math.Max(0, target[i]-st.Inventory[i])
	}
	prob.Upper = o.MaxAllocation(target)
	return o.solveOrFallback(prob, st)
}

func (o *Optimizer) solveOrFallback(prob Problem, st State) proposal {
	sol := o.solver.Solve(prob)
	if !sol.OK() {
		reason := sol.Status.String()
		if sol.Err != nil {
			reason = fmt.Sprintf("%s: %v", sol.Status, sol.Err)
		}
		return proposal{
			x:        proportionalSplit(st.DemandMean, st.SupplyTotal),
			fallback: true,
			reason:   reason,
		}
	}
	return proposal{x: sol.X}
}

func proposeEquityFirst(_ *Optimizer, st State) proposal {
	n := st.N()
	x := make([]float64, n)
	if n == 0 {
		return proposal{x: x}
	}
	totalShortfall := 0.0
	for i := 0; i < n; i++ {
		totalShortfall += math.Max(0, st.DemandMean[i]-st.Inventory[i])
	}
	if totalShortfall <= 0 {
		for i := range x {
			x[i] = st.SupplyTotal / float64(n)
		}
		return proposal{x: x}
	}

	tau := math.Min(1, st.SupplyTotal/totalShortfall)
	for i := 0; i < n; i++ {
		x[i] = math.Max(0, tau*st.DemandMean[i]-st.Inventory[i])
	}
	// Leftover supply goes to every district equally, covered or not.
	leftover := math.Max(0, st.SupplyTotal-floats.Sum(x))
	if leftover > 0 {
		floats.AddConst(leftover/float64(n), x)
	}
	return proposal{x: x}
}
