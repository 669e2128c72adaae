// Package sim provides the multi-period allocation simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - config.go: SimulationConfig, its defaults and range validation
//   - inputs.go: the DataProvider contract and input shape checks
//   - simulator.go: the period loop (allocate, realize demand, leakage, fraud drift, costs)
//   - metrics.go: aggregation into a SimulationResult, including CVaR
//
// # Architecture
//
// The sim package owns the run state machine and result types; decision
// logic and data sources live in sub-packages:
//   - sim/allocation/: the four allocation policies, LP solver and inspection selection
//   - sim/provider/: synthetic and file-backed DataProvider implementations
//   - sim/trace/: decision trace recording (fallbacks, governance, inspections)
//
// # Determinism
//
// Each Simulator owns one RNG stream derived from SimulationConfig.Seed.
// Within a period it draws N log-normal demands, then N fraud shocks, in
// district order. Identical configuration and inputs reproduce identical
// snapshots. ComparePolicies runs independent simulators concurrently; no
// state is shared between them.
package sim
