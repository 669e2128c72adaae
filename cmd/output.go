package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rationsim/rationsim/sim"
)

// printResult writes a run's headline metrics as an aligned table.
func printResult(w io.Writer, res *sim.SimulationResult) {
	fmt.Fprintf(w, "=== Simulation Results (%s) ===\n", res.Policy)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run_id\t%s\n", res.RunID)
	fmt.Fprintf(tw, "districts\t%d\n", res.NDistricts)
	fmt.Fprintf(tw, "periods\t%d\n", res.NPeriods)
	fmt.Fprintf(tw, "total_discounted_cost\t%.2f\n", res.TotalDiscountedCost)
	fmt.Fprintf(tw, "cvar_cost\t%.2f\n", res.CVaRCost)
	fmt.Fprintf(tw, "avg_service_level\t%.4f\n", res.AvgServiceLevel)
	fmt.Fprintf(tw, "avg_fraud_prob\t%.4f\n", res.AvgFraudProb)
	fmt.Fprintf(tw, "total_leakage_kg\t%.1f\n", res.TotalLeakageKg)
	fmt.Fprintf(tw, "total_stockout_kg\t%.1f\n", res.TotalStockoutKg)
	fmt.Fprintf(tw, "runtime_seconds\t%.3f\n", res.RuntimeSeconds)
	if ts := res.TraceSummary; ts != nil {
		fmt.Fprintf(tw, "fallback_periods\t%d\n", ts.FallbackPeriods)
		fmt.Fprintf(tw, "governance_violations\t%d\n", ts.GovernanceViolations)
		fmt.Fprintf(tw, "inspections\t%d (%d mandatory)\n", ts.TotalInspections, ts.MandatoryInspections)
	}
	_ = tw.Flush()
}

// printComparison writes one row per policy in comparison order.
func printComparison(w io.Writer, cmp *sim.Comparison) {
	fmt.Fprintln(w, "=== Policy Comparison ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "policy\tdiscounted_cost\tcvar\tservice\tfraud\tleakage_kg\tstockout_kg\tfallbacks\t")
	for _, e := range cmp.Entries {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.4f\t%.4f\t%.1f\t%.1f\t%d\t\n",
			e.Policy, e.TotalDiscountedCost, e.CVaRCost, e.AvgServiceLevel, e.AvgFraudProb,
			e.TotalLeakageKg, e.TotalStockoutKg, e.FallbackPeriods)
	}
	_ = tw.Flush()
	if len(cmp.Entries) > 0 {
		fmt.Fprintf(w, "lowest discounted cost: %s\n", cmp.Cheapest().Policy)
	}
}

// writeJSON writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
