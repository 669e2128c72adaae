package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rationsim/rationsim/sim"
	"github.com/rationsim/rationsim/sim/allocation"
	"github.com/rationsim/rationsim/sim/provider"
)

// parseFlags registers the shared flags on a fresh set, which resets every
// bound variable to its default, then parses args.
func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerSimulationFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestResolveConfig_NoFlagsIsDefault(t *testing.T) {
	cfg, err := resolveConfig(parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestResolveConfig_FlagsOverridePreset(t *testing.T) {
	// GIVEN the fraud-control preset and an explicit --alpha
	fs := parseFlags(t, "--preset", "fraud-control", "--alpha", "0.9")

	// WHEN resolving
	cfg, err := resolveConfig(fs)

	// THEN the flag wins and other preset values survive
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Alpha)
	assert.Equal(t, 0.50, cfg.Gamma)
	assert.Equal(t, allocation.RiskAverse, cfg.Policy)
}

func TestResolveConfig_UnchangedFlagsDoNotClobberPreset(t *testing.T) {
	// --beta is registered with the default 0.35; leaving it unset must not
	// overwrite the preset's 0.30.
	cfg, err := resolveConfig(parseFlags(t, "--preset", "equity-first"))
	require.NoError(t, err)
	assert.Equal(t, 0.30, cfg.Beta)
	assert.Equal(t, allocation.EquityFirst, cfg.Policy)
}

func TestResolveConfig_LayerOrder(t *testing.T) {
	// GIVEN a config file that overrides the preset's delta and policy
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delta: 0.2\npolicy: proportional\nseed: 7\n"), 0644))
	fs := parseFlags(t, "--preset", "equity-first", "--config", path, "--seed", "9")

	cfg, err := resolveConfig(fs)

	// THEN preset < file < flags
	require.NoError(t, err)
	assert.Equal(t, 0.10, cfg.Alpha, "from preset")
	assert.Equal(t, 0.2, cfg.Delta, "from file")
	assert.Equal(t, allocation.Proportional, cfg.Policy, "from file")
	assert.Equal(t, int64(9), cfg.Seed, "from flag")
}

func TestResolveConfig_Errors(t *testing.T) {
	badYAML := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("alpah: 0.3\n"), 0644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown preset", []string{"--preset", "nope"}, "unknown preset"},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, "reading config"},
		{"unknown config key", []string{"--config", badYAML}, "alpah"},
		{"unknown policy", []string{"--policy", "greedy"}, "greedy"},
		{"out of range flag", []string{"--n-periods", "3"}, "n_periods"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveConfig(parseFlags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveConfig_ValidationErrorIsTyped(t *testing.T) {
	_, err := resolveConfig(parseFlags(t, "--discount-factor", "0.5"))
	var cve *sim.ConfigValidationError
	require.True(t, errors.As(err, &cve))
	assert.Equal(t, "discount_factor", cve.Field)
}

func TestBuildProvider(t *testing.T) {
	t.Run("data file selects the loader", func(t *testing.T) {
		parseFlags(t, "--data", "inputs.yaml")
		p, err := buildProvider(sim.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, provider.File{Path: "inputs.yaml"}, p)
	})
	t.Run("synthetic carries commodity and start month", func(t *testing.T) {
		parseFlags(t, "--commodity", "Wheat", "--start-month", "0")
		p, err := buildProvider(sim.DefaultConfig())
		require.NoError(t, err)
		g, ok := p.(*provider.Synthetic)
		require.True(t, ok)
		assert.Equal(t, provider.Wheat, g.Commodity)
		assert.Equal(t, 0, g.StartMonth)
		assert.Equal(t, sim.DefaultConfig().Seed, g.Seed)
	})
	t.Run("unknown commodity", func(t *testing.T) {
		parseFlags(t, "--commodity", "millet")
		_, err := buildProvider(sim.DefaultConfig())
		assert.Error(t, err)
	})
}

func TestGenerateInputs_LoadableByRun(t *testing.T) {
	// GIVEN synthetic inputs written to disk
	fs := parseFlags(t, "--n-periods", "6")
	cfg, err := resolveConfig(fs)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, generateInputs(cfg, path))

	// WHEN loaded through the file provider
	in, err := provider.File{Path: path}.Provide()

	// THEN the shape matches the registry and horizon
	require.NoError(t, err)
	require.NoError(t, in.Validate(6))
	assert.Equal(t, len(provider.Registry()), in.N())
}

func TestPrintComparison_OneRowPerPolicy(t *testing.T) {
	cmp := &sim.Comparison{}
	for i, p := range allocation.AllPolicies() {
		cmp.Entries = append(cmp.Entries, sim.PolicySummary{Policy: p, TotalDiscountedCost: float64(10 - i)})
	}

	var buf bytes.Buffer
	printComparison(&buf, cmp)
	out := buf.String()

	for _, p := range allocation.AllPolicies() {
		assert.Contains(t, out, p.String())
	}
	assert.Contains(t, out, "lowest discounted cost: risk_averse")
	// title, header, four rows and the verdict
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 7)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	summary := sim.PolicySummary{Policy: allocation.EquityFirst, TotalDiscountedCost: 12.5}

	require.NoError(t, writeJSON(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "equity_first", got["policy"])
	assert.Equal(t, 12.5, got["total_discounted_cost"])
}

func TestPrintPresetsAndDistricts(t *testing.T) {
	cfg, err := loadDefaultsConfig(defaultsYAML)
	require.NoError(t, err)

	var buf bytes.Buffer
	printPresets(&buf, cfg.Presets)
	assert.Contains(t, buf.String(), "fraud-control")

	buf.Reset()
	printDistricts(&buf, provider.Registry())
	assert.Contains(t, buf.String(), "Adilabad")
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), len(provider.Registry())+1)
}
