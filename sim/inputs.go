package sim

import (
	"errors"
	"fmt"
	"math"
)

// District is the static identity of one distribution area. None of its
// fields change during a run.
type District struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Beneficiaries int     `yaml:"beneficiaries" json:"beneficiaries"`
	Shops         int     `yaml:"shops" json:"shops"`
	Lat           float64 `yaml:"lat" json:"lat"`
	Lon           float64 `yaml:"lon" json:"lon"`
	DistKm        float64 `yaml:"dist_km" json:"dist_km"`
}

// Inputs is everything a simulator needs from a data provider. Per-period
// vectors are indexed [district][period].
type Inputs struct {
	Districts        []District  `yaml:"districts" json:"districts"`
	TransportCost    []float64   `yaml:"transport_cost" json:"transport_cost"`
	InitialInventory []float64   `yaml:"initial_inventory" json:"initial_inventory"`
	InitialFraudProb []float64   `yaml:"initial_fraud_prob" json:"initial_fraud_prob"`
	DemandMean       [][]float64 `yaml:"demand_mean" json:"demand_mean"`
	DemandStd        [][]float64 `yaml:"demand_std" json:"demand_std"`
	SupplySchedule   []float64   `yaml:"supply_schedule" json:"supply_schedule"`
}

// N returns the number of districts.
func (in *Inputs) N() int { return len(in.Districts) }

// DataProvider supplies district data, forecasts and the supply schedule.
type DataProvider interface {
	Provide() (*Inputs, error)
}

// ProviderFunc adapts a function to DataProvider.
type ProviderFunc func() (*Inputs, error)

// Provide calls f.
func (f ProviderFunc) Provide() (*Inputs, error) { return f() }

// StaticProvider returns the same inputs on every call.
func StaticProvider(in *Inputs) DataProvider {
	return ProviderFunc(func() (*Inputs, error) { return in, nil })
}

// DataProviderError wraps a provider failure or malformed provider output.
// It is always fatal to the run.
type DataProviderError struct {
	Reason string
	Err    error
}

func (e *DataProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data provider: %s: %v", e.Reason, e.Err)
	}
	return "data provider: " + e.Reason
}

func (e *DataProviderError) Unwrap() error { return e.Err }

var errShape = errors.New("malformed inputs")

// Validate checks that every vector has the right length for nPeriods and
// that values are finite and in range. Schedules longer than nPeriods are
// accepted; only the first nPeriods entries are used.
func (in *Inputs) Validate(nPeriods int) error {
	n := in.N()
	if n == 0 {
		return fmt.Errorf("%w: no districts", errShape)
	}
	vectors := []struct {
		name string
		v    []float64
	}{
		{"transport_cost", in.TransportCost},
		{"initial_inventory", in.InitialInventory},
		{"initial_fraud_prob", in.InitialFraudProb},
	}
	for _, vec := range vectors {
		if len(vec.v) != n {
			return fmt.Errorf("%w: %s has %d entries, want %d", errShape, vec.name, len(vec.v), n)
		}
		for i, x := range vec.v {
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return fmt.Errorf("%w: %s[%d]=%v must be finite and non-negative", errShape, vec.name, i, x)
			}
		}
	}
	for i, p := range in.InitialFraudProb {
		if p > 1 {
			return fmt.Errorf("%w: initial_fraud_prob[%d]=%v must be in [0, 1]", errShape, i, p)
		}
	}
	matrices := []struct {
		name string
		m    [][]float64
	}{
		{"demand_mean", in.DemandMean},
		{"demand_std", in.DemandStd},
	}
	for _, mat := range matrices {
		if len(mat.m) != n {
			return fmt.Errorf("%w: %s has %d rows, want %d", errShape, mat.name, len(mat.m), n)
		}
		for i, row := range mat.m {
			if len(row) < nPeriods {
				return fmt.Errorf("%w: %s[%d] has %d periods, want %d", errShape, mat.name, i, len(row), nPeriods)
			}
			for t, x := range row[:nPeriods] {
				if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
					return fmt.Errorf("%w: %s[%d][%d]=%v must be finite and non-negative", errShape, mat.name, i, t, x)
				}
			}
		}
	}
	if len(in.SupplySchedule) < nPeriods {
		return fmt.Errorf("%w: supply_schedule has %d periods, want %d", errShape, len(in.SupplySchedule), nPeriods)
	}
	for t, s := range in.SupplySchedule[:nPeriods] {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return fmt.Errorf("%w: supply_schedule[%d]=%v must be finite and non-negative", errShape, t, s)
		}
	}
	return nil
}

// DistrictNames returns the district names in index order.
func (in *Inputs) DistrictNames() []string {
	names := make([]string, len(in.Districts))
	for i, d := range in.Districts {
		names[i] = d.Name
	}
	return names
}
