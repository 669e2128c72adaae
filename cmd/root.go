package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rationsim/rationsim/sim"
	"github.com/rationsim/rationsim/sim/allocation"
	"github.com/rationsim/rationsim/sim/provider"
	"github.com/rationsim/rationsim/sim/trace"
)

var (
	// CLI flags for the simulation horizon and cost model
	nPeriods                int     // Number of planning periods
	discountFactor          float64 // Per-period discount λ
	alpha                   float64 // Transport cost weight
	beta                    float64 // Stockout cost weight
	gamma                   float64 // Leakage cost weight
	delta                   float64 // Equity cost weight
	inspectionEffectiveness float64 // Fraction of fraud removed by one inspection
	fraudShockScale         float64 // Upper bound of the per-period fraud drift
	supplyFraction          float64 // Mean procurement fraction of forecast demand
	inspectionCost          float64 // Cost of one inspection
	budgetPerPeriod         float64 // Inspection budget per period
	stockoutPenalty         float64 // Penalty per kg unmet
	minServiceLevel         float64 // Governance floor on coverage
	maxAllocationRatio      float64 // Allocation cap as a multiple of forecast demand
	inspectionThreshold     float64 // Fraud probability that makes inspection mandatory
	cvarConfidence          float64 // CVaR tail confidence
	policyName              string  // Allocation policy
	seed                    int64   // Master seed

	// CLI flags for inputs, layering and output
	presetName string // Preset from defaults.yaml
	configPath string // YAML config file layered over the preset
	dataPath   string // Prepared inputs file; synthetic when empty
	commodity  string // Commodity driving synthetic demand
	startMonth int    // Calendar month of period 0 for synthetic demand
	outputPath string // JSON results path
	logLevel   string // Log verbosity level
	traceLevel string // Decision trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rationsim",
	Short: "Multi-period ration allocation and fraud inspection simulator",
}

// runCmd executes a single-policy simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation with one allocation policy",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting simulation: policy=%s periods=%d seed=%d", cfg.Policy, cfg.NPeriods, cfg.Seed)

		s, err := sim.NewSimulator(cfg, p, sim.WithTraceLevel(trace.TraceLevel(traceLevel)))
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		res, err := s.Run(context.Background())
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printResult(os.Stdout, res)
		if outputPath != "" {
			if err := writeJSON(outputPath, res); err != nil {
				logrus.Fatalf("Writing results: %v", err)
			}
			logrus.Infof("Results written to %s", outputPath)
		}
		logrus.Info("Simulation complete.")
	},
}

// compareCmd runs every policy on identical inputs and seed
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all four allocation policies side by side",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Comparing policies: periods=%d seed=%d", cfg.NPeriods, cfg.Seed)

		cmp, err := sim.ComparePolicies(context.Background(), cfg, p, sim.WithTraceLevel(trace.TraceLevel(traceLevel)))
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}

		printComparison(os.Stdout, cmp)
		if outputPath != "" {
			if err := writeJSON(outputPath, cmp); err != nil {
				logrus.Fatalf("Writing results: %v", err)
			}
			logrus.Infof("Comparison written to %s", outputPath)
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	if !trace.IsValidTraceLevel(traceLevel) {
		logrus.Fatalf("Invalid trace level: %s", traceLevel)
	}
}

// resolveConfig layers DefaultConfig, the --preset, the --config file and
// finally every flag the user set explicitly, then validates the result.
func resolveConfig(flags *pflag.FlagSet) (sim.SimulationConfig, error) {
	cfg := sim.DefaultConfig()
	if presetName != "" {
		p, err := GetPreset(presetName)
		if err != nil {
			return sim.SimulationConfig{}, err
		}
		if cfg, err = p.Apply(cfg); err != nil {
			return sim.SimulationConfig{}, err
		}
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return sim.SimulationConfig{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		if cfg, err = cfg.Overlay(data); err != nil {
			return sim.SimulationConfig{}, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	floats := []struct {
		flag string
		src  float64
		dst  *float64
	}{
		{"discount-factor", discountFactor, &cfg.DiscountFactor},
		{"alpha", alpha, &cfg.Alpha},
		{"beta", beta, &cfg.Beta},
		{"gamma", gamma, &cfg.Gamma},
		{"delta", delta, &cfg.Delta},
		{"inspection-effectiveness", inspectionEffectiveness, &cfg.InspectionEffectiveness},
		{"fraud-shock-scale", fraudShockScale, &cfg.FraudShockScale},
		{"supply-fraction", supplyFraction, &cfg.SupplyFraction},
		{"inspection-cost", inspectionCost, &cfg.InspectionCost},
		{"budget-per-period", budgetPerPeriod, &cfg.BudgetPerPeriod},
		{"stockout-penalty", stockoutPenalty, &cfg.StockoutPenalty},
		{"min-service-level", minServiceLevel, &cfg.MinServiceLevel},
		{"max-allocation-ratio", maxAllocationRatio, &cfg.MaxAllocationRatio},
		{"inspection-threshold", inspectionThreshold, &cfg.InspectionThreshold},
		{"cvar-confidence", cvarConfidence, &cfg.CVaRConfidence},
	}
	for _, f := range floats {
		if flags.Changed(f.flag) {
			*f.dst = f.src
		}
	}
	if flags.Changed("n-periods") {
		cfg.NPeriods = nPeriods
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("policy") {
		p, err := allocation.ParsePolicy(policyName)
		if err != nil {
			return sim.SimulationConfig{}, err
		}
		cfg.Policy = p
	}

	if err := cfg.Validate(); err != nil {
		return sim.SimulationConfig{}, err
	}
	return cfg, nil
}

// buildProvider selects the file loader when --data is set, else the
// synthetic generator.
func buildProvider(cfg sim.SimulationConfig) (sim.DataProvider, error) {
	if dataPath != "" {
		return provider.File{Path: dataPath}, nil
	}
	return syntheticProvider(cfg)
}

func syntheticProvider(cfg sim.SimulationConfig) (*provider.Synthetic, error) {
	c, err := provider.ParseCommodity(commodity)
	if err != nil {
		return nil, err
	}
	g := provider.NewSynthetic(cfg)
	g.Commodity = c
	g.StartMonth = startMonth
	return g, nil
}

// registerSimulationFlags binds the shared flags onto fs.
func registerSimulationFlags(fs *pflag.FlagSet) {
	d := sim.DefaultConfig()

	fs.IntVar(&nPeriods, "n-periods", d.NPeriods, "Number of planning periods [6, 60]")
	fs.Float64Var(&discountFactor, "discount-factor", d.DiscountFactor, "Per-period discount factor (0.5, 1]")
	fs.Float64Var(&alpha, "alpha", d.Alpha, "Transport cost weight")
	fs.Float64Var(&beta, "beta", d.Beta, "Stockout cost weight")
	fs.Float64Var(&gamma, "gamma", d.Gamma, "Leakage cost weight")
	fs.Float64Var(&delta, "delta", d.Delta, "Equity cost weight")
	fs.Float64Var(&inspectionEffectiveness, "inspection-effectiveness", d.InspectionEffectiveness, "Fraction of fraud removed by an inspection")
	fs.Float64Var(&fraudShockScale, "fraud-shock-scale", d.FraudShockScale, "Upper bound of the per-period fraud drift")
	fs.Float64Var(&supplyFraction, "supply-fraction", d.SupplyFraction, "Mean procurement fraction of forecast demand")
	fs.Float64Var(&inspectionCost, "inspection-cost", d.InspectionCost, "Cost of one inspection")
	fs.Float64Var(&budgetPerPeriod, "budget-per-period", d.BudgetPerPeriod, "Inspection budget per period")
	fs.Float64Var(&stockoutPenalty, "stockout-penalty", d.StockoutPenalty, "Penalty per kg of unmet demand")
	fs.Float64Var(&minServiceLevel, "min-service-level", d.MinServiceLevel, "Governance floor on district coverage")
	fs.Float64Var(&maxAllocationRatio, "max-allocation-ratio", d.MaxAllocationRatio, "Allocation cap as a multiple of forecast demand")
	fs.Float64Var(&inspectionThreshold, "inspection-threshold", d.InspectionThreshold, "Fraud probability that forces an inspection")
	fs.Float64Var(&cvarConfidence, "cvar-confidence", d.CVaRConfidence, "CVaR tail confidence")
	fs.StringVar(&policyName, "policy", d.Policy.String(), "Allocation policy (proportional, optimized, equity_first, risk_averse)")
	fs.Int64Var(&seed, "seed", d.Seed, "Master seed for demand, fraud drift and synthetic inputs")

	fs.StringVar(&presetName, "preset", "", "Preset name from defaults.yaml (see `rationsim presets`)")
	fs.StringVar(&configPath, "config", "", "YAML config file layered over the preset")
	fs.StringVar(&dataPath, "data", "", "Prepared inputs file (.yaml, .yml or .json); synthetic when empty")
	fs.StringVar(&commodity, "commodity", string(provider.Rice), "Commodity for synthetic demand (rice, wheat, sugar)")
	fs.IntVar(&startMonth, "start-month", provider.DefaultStartMonth, "Calendar month of period 0 for synthetic demand, 0 = January")
	fs.StringVar(&outputPath, "output", "", "Write JSON results to this path")
	fs.StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelDecisions), "Decision trace level (none, decisions)")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	registerSimulationFlags(runCmd.Flags())
	registerSimulationFlags(compareCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
