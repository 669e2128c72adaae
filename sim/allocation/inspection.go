package allocation

import "sort"

// roiEpsilon keeps the ROI denominator positive when κ and transport cost are zero.
const roiEpsilon = 1e-9

// InspectionROI returns the expected leakage recovered per unit of inspection
// spend: p_i·x_i / (κ + c_i·x_i + ε). Districts receiving no allocation score 0.
func InspectionROI(fraudProb, allocation, transportCost float64, inspectionCost float64) float64 {
	if allocation <= 0 {
		return 0
	}
	return fraudProb * allocation / (inspectionCost + transportCost*allocation + roiEpsilon)
}

// selectInspections marks districts above the fraud threshold unconditionally,
// then spends the remaining budget greedily in descending ROI order. Selection
// stops at the first district with ROI ≤ 0 or once another inspection would
// exceed the budget.
func (o *Optimizer) selectInspections(fraudProb, allocation, transportCost []float64, budget float64) ([]int, []bool, float64) {
	n := len(fraudProb)
	inspect := make([]int, n)
	mandatory := make([]bool, n)
	kappa := o.params.InspectionCost

	spent := 0.0
	for i, p := range fraudProb {
		if p > o.params.InspectionThreshold {
			inspect[i] = 1
			mandatory[i] = true
			spent += kappa
		}
	}

	type candidate struct {
		idx int
		roi float64
	}
	candidates := make([]candidate, 0, n)
	for i := 0; i < n; i++ {
		if mandatory[i] {
			continue
		}
		candidates = append(candidates, candidate{idx: i, roi: InspectionROI(fraudProb[i], allocation[i], transportCost[i], kappa)})
	}
	// Stable so that equal-ROI districts keep index order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].roi > candidates[b].roi
	})

	for _, c := range candidates {
		if c.roi <= 0 {
			break
		}
		if spent+kappa > budget {
			break
		}
		inspect[c.idx] = 1
		spent += kappa
	}
	return inspect, mandatory, spent
}
