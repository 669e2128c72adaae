package sim

import (
	"fmt"
	"math"
)

// testInputs builds a deterministic n-district, T-period fixture with
// varied demand, transport cost and fraud so that every policy has
// something to trade off.
func testInputs(n, periods int) *Inputs {
	in := &Inputs{
		Districts:        make([]District, n),
		TransportCost:    make([]float64, n),
		InitialInventory: make([]float64, n),
		InitialFraudProb: make([]float64, n),
		DemandMean:       make([][]float64, n),
		DemandStd:        make([][]float64, n),
		SupplySchedule:   make([]float64, periods),
	}
	for i := 0; i < n; i++ {
		in.Districts[i] = District{
			ID:            fmt.Sprintf("T%02d", i+1),
			Name:          fmt.Sprintf("District %d", i+1),
			Beneficiaries: 10000 * (i + 1),
			Shops:         50 * (i + 1),
			DistKm:        float64(20 * i),
		}
		in.TransportCost[i] = 0.40 + 0.011*in.Districts[i].DistKm
		in.InitialFraudProb[i] = 0.05 + 0.1*float64(i%8)
		in.DemandMean[i] = make([]float64, periods)
		in.DemandStd[i] = make([]float64, periods)
		base := 1000.0 * float64(1+i%4)
		for t := 0; t < periods; t++ {
			mu := base * (1 + 0.1*math.Sin(float64(t+i)))
			in.DemandMean[i][t] = mu
			in.DemandStd[i][t] = 0.15 * mu
			in.SupplySchedule[t] += 0.9 * mu
		}
		in.InitialInventory[i] = 0.8 * base
	}
	return in
}

// testConfig is DefaultConfig shortened to keep tests fast.
func testConfig() SimulationConfig {
	cfg := DefaultConfig()
	cfg.NPeriods = 12
	cfg.BudgetPerPeriod = 20000
	return cfg
}

func mustSimulator(cfg SimulationConfig, in *Inputs, opts ...Option) *Simulator {
	s, err := NewSimulator(cfg, StaticProvider(in), opts...)
	if err != nil {
		panic(err)
	}
	return s
}
