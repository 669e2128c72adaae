// Package trace provides decision-trace recording for allocation runs.
// This package has no dependencies on sim/ or sim/allocation/; it stores pure data types.
package trace

// FallbackRecord captures a period in which an LP-backed policy could not be
// solved and proportional allocation was substituted.
type FallbackRecord struct {
	Period int
	Policy string
	Reason string
}

// GovernanceRecord captures one district whose projected coverage fell below
// the minimum service level.
type GovernanceRecord struct {
	Period       int
	DistrictID   string
	DistrictName string
	Coverage     float64 // (inventory + allocation) / forecast demand
	Required     float64
}

// InspectionRecord captures a single inspection decision.
type InspectionRecord struct {
	Period     int
	DistrictID string
	FraudProb  float64 // pre-update probability that triggered or ranked the inspection
	Allocation float64
	Mandatory  bool    // forced by the fraud threshold rather than chosen by ROI
	ROI        float64 // 0 for mandatory inspections
}
