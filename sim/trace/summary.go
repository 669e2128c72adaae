package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	FallbackPeriods       int            `json:"fallback_periods"`
	GovernanceViolations  int            `json:"governance_violations"`
	GovernancePeriods     int            `json:"governance_periods"` // periods with at least one violation
	TotalInspections      int            `json:"total_inspections"`
	MandatoryInspections  int            `json:"mandatory_inspections"`
	ROIInspections        int            `json:"roi_inspections"`
	MeanInspectedFraud    float64        `json:"mean_inspected_fraud"`
	InspectionsByDistrict map[string]int `json:"inspections_by_district"` // district ID → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		InspectionsByDistrict: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	periods := make(map[int]bool)
	for _, f := range st.Fallbacks {
		periods[f.Period] = true
	}
	summary.FallbackPeriods = len(periods)

	summary.GovernanceViolations = len(st.Governance)
	govPeriods := make(map[int]bool)
	for _, g := range st.Governance {
		govPeriods[g.Period] = true
	}
	summary.GovernancePeriods = len(govPeriods)

	summary.TotalInspections = len(st.Inspections)
	if len(st.Inspections) > 0 {
		totalFraud := 0.0
		for _, r := range st.Inspections {
			if r.Mandatory {
				summary.MandatoryInspections++
			} else {
				summary.ROIInspections++
			}
			summary.InspectionsByDistrict[r.DistrictID]++
			totalFraud += r.FraudProb
		}
		summary.MeanInspectedFraud = totalFraud / float64(len(st.Inspections))
	}

	return summary
}
