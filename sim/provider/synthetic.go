// Package provider implements sim.DataProvider: a seeded synthetic generator
// over the built-in Telangana district registry, and a loader for inputs
// prepared elsewhere.
package provider

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rationsim/rationsim/sim"
)

// Commodity selects which monthly volume drives base demand.
type Commodity string

const (
	Rice  Commodity = "rice"
	Wheat Commodity = "wheat"
	Sugar Commodity = "sugar"
)

// ParseCommodity resolves a commodity name, case-insensitively.
func ParseCommodity(name string) (Commodity, error) {
	switch c := Commodity(strings.ToLower(strings.TrimSpace(name))); c {
	case Rice, Wheat, Sugar:
		return c, nil
	}
	return "", fmt.Errorf("unknown commodity %q; valid: rice, wheat, sugar", name)
}

const (
	// DefaultStartMonth is May (0 = January), the month of the registry volumes.
	DefaultStartMonth = 4

	collectionUplift = 1.10 // late collection and wastage on top of distributed volume
	annualGrowth     = 1.02
	demandNoiseSD    = 0.015
	demandCV         = 0.15
	bufferMonths     = 1.8
	inventoryJitter  = 0.15
	supplyJitter     = 0.01
	baseTransport    = 0.40  // per kg at distance 0
	transportPerKm   = 0.011 // per kg per km
	patternMean      = 0.91
	// procurement band around patternMean; it moves with the supply fraction
	// and is then held inside [0.5, 1.0]
	procurementMin = 0.82
	procurementMax = 0.97
)

// seasonal demand multipliers, index 0 = January.
var seasonal = [12]float64{1.10, 1.02, 1.12, 0.97, 0.95, 0.94, 1.05, 1.00, 1.03, 1.08, 1.10, 1.05}

// procurement fraction pattern for the first 24 periods; later periods use patternMean.
var procurement = [24]float64{
	0.91, 0.88, 0.87, 0.89, 0.91, 0.93,
	0.94, 0.95, 0.93, 0.91, 0.90, 0.91,
	0.91, 0.88, 0.87, 0.89, 0.91, 0.93,
	0.94, 0.95, 0.93, 0.91, 0.90, 0.91,
}

// Synthetic generates inputs for the 33-district registry. Output is a pure
// function of its fields.
type Synthetic struct {
	NPeriods       int
	Seed           int64
	SupplyFraction float64 // mean procurement fraction of total forecast demand
	StartMonth     int     // calendar month of period 0, 0 = January
	Commodity      Commodity
}

// NewSynthetic returns a generator matching cfg's horizon, seed and supply fraction.
func NewSynthetic(cfg sim.SimulationConfig) *Synthetic {
	return &Synthetic{
		NPeriods:       cfg.NPeriods,
		Seed:           cfg.Seed,
		SupplyFraction: cfg.SupplyFraction,
		StartMonth:     DefaultStartMonth,
		Commodity:      Rice,
	}
}

func (g *Synthetic) validate() error {
	if g.NPeriods <= 0 {
		return fmt.Errorf("n_periods must be positive, got %d", g.NPeriods)
	}
	if g.StartMonth < 0 || g.StartMonth > 11 {
		return fmt.Errorf("start month must be in [0, 11], got %d", g.StartMonth)
	}
	if g.SupplyFraction < 0.5 || g.SupplyFraction > 1 {
		return fmt.Errorf("supply fraction must be in [0.5, 1], got %v", g.SupplyFraction)
	}
	if _, err := ParseCommodity(string(g.Commodity)); err != nil {
		return err
	}
	return nil
}

// Provide generates the inputs. Draw order on the provider stream is: demand
// noise (district-major), initial inventory factors, then supply jitter.
func (g *Synthetic) Provide() (*sim.Inputs, error) {
	if err := g.validate(); err != nil {
		return nil, &sim.DataProviderError{Reason: "synthetic generator misconfigured", Err: err}
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(g.Seed)).ForSubsystem(sim.SubsystemProvider)
	noise := distuv.Normal{Mu: 1, Sigma: demandNoiseSD, Src: rng}

	reg := Registry()
	n, T := len(reg), g.NPeriods
	in := &sim.Inputs{
		Districts:        make([]sim.District, n),
		TransportCost:    make([]float64, n),
		InitialInventory: make([]float64, n),
		InitialFraudProb: make([]float64, n),
		DemandMean:       make([][]float64, n),
		DemandStd:        make([][]float64, n),
		SupplySchedule:   make([]float64, T),
	}

	for i, e := range reg {
		in.Districts[i] = e.District
		in.TransportCost[i] = baseTransport + transportPerKm*e.DistKm
		in.InitialFraudProb[i] = e.FraudSeed

		base := e.Volume(g.Commodity) * collectionUplift
		in.DemandMean[i] = make([]float64, T)
		in.DemandStd[i] = make([]float64, T)
		for t := 0; t < T; t++ {
			month := (g.StartMonth + t) % 12
			growth := math.Pow(annualGrowth, float64(t/12))
			mu := math.Max(base*seasonal[month]*growth*noise.Rand(), 1)
			in.DemandMean[i][t] = mu
			in.DemandStd[i][t] = demandCV * mu
		}
	}

	invFactor := distuv.Uniform{Min: 1 - inventoryJitter, Max: 1 + inventoryJitter, Src: rng}
	for i := range reg {
		in.InitialInventory[i] = in.DemandMean[i][0] * bufferMonths * invFactor.Rand()
	}

	jitter := distuv.Uniform{Min: -supplyJitter, Max: supplyJitter, Src: rng}
	shift := g.SupplyFraction - patternMean
	lo := math.Max(procurementMin+shift, 0.5)
	hi := math.Min(procurementMax+shift, 1.0)
	for t := 0; t < T; t++ {
		pattern := patternMean
		if t < len(procurement) {
			pattern = procurement[t]
		}
		frac := math.Min(math.Max(pattern+shift+jitter.Rand(), lo), hi)
		total := 0.0
		for i := range reg {
			total += in.DemandMean[i][t]
		}
		in.SupplySchedule[t] = total * frac
	}

	logrus.Debugf("[provider] synthetic inputs: %d districts, %d periods, commodity=%s seed=%d",
		n, T, g.Commodity, g.Seed)
	return in, nil
}
