package provider

import "github.com/rationsim/rationsim/sim"

// RegistryEntry is one district of the built-in Telangana registry: its
// identity plus monthly distribution volumes (kg) and a calibrated initial
// fraud probability.
type RegistryEntry struct {
	sim.District
	RiceKg    float64
	WheatKg   float64
	SugarKg   float64
	FraudSeed float64
}

// Volume returns the monthly kg for commodity c. Districts that do not
// distribute c fall back to their rice volume.
func (e RegistryEntry) Volume(c Commodity) float64 {
	var v float64
	switch c {
	case Wheat:
		v = e.WheatKg
	case Sugar:
		v = e.SugarKg
	default:
		v = e.RiceKg
	}
	if v == 0 {
		return e.RiceKg
	}
	return v
}

// Registry returns a copy of the 33-district registry in ID order. Distances
// are to Hyderabad; volumes are May 2025 actuals.
func Registry() []RegistryEntry {
	out := make([]RegistryEntry, len(telangana))
	copy(out, telangana)
	return out
}

var telangana = []RegistryEntry{
	{District: sim.District{ID: "D01", Name: "Adilabad", Beneficiaries: 192_757, Shops: 356, Lat: 19.664, Lon: 78.532, DistKm: 283}, RiceKg: 3_887_966, WheatKg: 0, SugarKg: 185, FraudSeed: 0.22},
	{District: sim.District{ID: "D02", Name: "Bhadrdri Kothagudem", Beneficiaries: 297_189, Shops: 443, Lat: 17.549, Lon: 80.616, DistKm: 224}, RiceKg: 4_803_811, WheatKg: 0, SugarKg: 5_596, FraudSeed: 0.20},
	{District: sim.District{ID: "D03", Name: "Hanumakonda", Beneficiaries: 231_516, Shops: 414, Lat: 17.977, Lon: 79.598, DistKm: 145}, RiceKg: 3_993_309, WheatKg: 0, SugarKg: 216, FraudSeed: 0.12},
	{District: sim.District{ID: "D04", Name: "Hyderabad", Beneficiaries: 647_282, Shops: 700, Lat: 17.385, Lon: 78.487, DistKm: 0}, RiceKg: 14_443_412, WheatKg: 2_245_346, SugarKg: 22_422, FraudSeed: 0.07},
	{District: sim.District{ID: "D05", Name: "Jagityal", Beneficiaries: 318_732, Shops: 592, Lat: 18.793, Lon: 78.741, DistKm: 179}, RiceKg: 5_519_789, WheatKg: 0, SugarKg: 22, FraudSeed: 0.15},
	{District: sim.District{ID: "D06", Name: "Janagaon", Beneficiaries: 163_283, Shops: 335, Lat: 17.727, Lon: 79.152, DistKm: 114}, RiceKg: 2_601_429, WheatKg: 0, SugarKg: 2_246, FraudSeed: 0.10},
	{District: sim.District{ID: "D07", Name: "Jayashankar Bhupalpalli", Beneficiaries: 125_589, Shops: 277, Lat: 18.432, Lon: 80.006, DistKm: 198}, RiceKg: 2_060_033, WheatKg: 0, SugarKg: 0, FraudSeed: 0.18},
	{District: sim.District{ID: "D08", Name: "Jogulamba Gadwal", Beneficiaries: 164_357, Shops: 335, Lat: 16.226, Lon: 77.799, DistKm: 182}, RiceKg: 3_266_397, WheatKg: 6_456, SugarKg: 2_024, FraudSeed: 0.17},
	{District: sim.District{ID: "D09", Name: "Kamareddy", Beneficiaries: 256_732, Shops: 592, Lat: 18.322, Lon: 78.336, DistKm: 131}, RiceKg: 5_188_866, WheatKg: 0, SugarKg: 2_438, FraudSeed: 0.12},
	{District: sim.District{ID: "D10", Name: "Karimnagar", Beneficiaries: 290_402, Shops: 566, Lat: 18.438, Lon: 79.132, DistKm: 162}, RiceKg: 5_326_297, WheatKg: 0, SugarKg: 1, FraudSeed: 0.16},
	{District: sim.District{ID: "D11", Name: "Khammam", Beneficiaries: 415_905, Shops: 748, Lat: 17.247, Lon: 80.150, DistKm: 195}, RiceKg: 6_752_910, WheatKg: 0, SugarKg: 9_476, FraudSeed: 0.14},
	{District: sim.District{ID: "D12", Name: "Kumarambheem Asifabad", Beneficiaries: 141_904, Shops: 314, Lat: 19.364, Lon: 79.286, DistKm: 273}, RiceKg: 2_804_329, WheatKg: 0, SugarKg: 0, FraudSeed: 0.25},
	{District: sim.District{ID: "D13", Name: "Mahabubabad", Beneficiaries: 243_204, Shops: 558, Lat: 17.601, Lon: 80.002, DistKm: 168}, RiceKg: 3_663_948, WheatKg: 0, SugarKg: 900, FraudSeed: 0.13},
	{District: sim.District{ID: "D14", Name: "Mahbubnagar", Beneficiaries: 245_463, Shops: 506, Lat: 16.733, Lon: 77.983, DistKm: 110}, RiceKg: 4_242_163, WheatKg: 3_852, SugarKg: 7, FraudSeed: 0.19},
	{District: sim.District{ID: "D15", Name: "Manchiryala", Beneficiaries: 223_844, Shops: 423, Lat: 18.873, Lon: 79.439, DistKm: 202}, RiceKg: 3_862_099, WheatKg: 0, SugarKg: 199, FraudSeed: 0.15},
	{District: sim.District{ID: "D16", Name: "Medak", Beneficiaries: 216_716, Shops: 520, Lat: 18.045, Lon: 78.262, DistKm: 90}, RiceKg: 3_881_136, WheatKg: 0, SugarKg: 0, FraudSeed: 0.11},
	{District: sim.District{ID: "D17", Name: "Medchal", Beneficiaries: 537_810, Shops: 618, Lat: 17.618, Lon: 78.562, DistKm: 29}, RiceKg: 12_310_868, WheatKg: 839_556, SugarKg: 7_941, FraudSeed: 0.08},
	{District: sim.District{ID: "D18", Name: "Mulugu", Beneficiaries: 94_628, Shops: 222, Lat: 18.196, Lon: 80.100, DistKm: 207}, RiceKg: 1_535_514, WheatKg: 0, SugarKg: 0, FraudSeed: 0.21},
	{District: sim.District{ID: "D19", Name: "Nagarkarnool", Beneficiaries: 243_722, Shops: 552, Lat: 16.477, Lon: 78.322, DistKm: 126}, RiceKg: 4_015_431, WheatKg: 0, SugarKg: 433, FraudSeed: 0.16},
	{District: sim.District{ID: "D20", Name: "Nalgonda", Beneficiaries: 484_210, Shops: 997, Lat: 17.047, Lon: 79.267, DistKm: 93}, RiceKg: 7_666_553, WheatKg: 0, SugarKg: 6_380, FraudSeed: 0.13},
	{District: sim.District{ID: "D21", Name: "Narayanpet", Beneficiaries: 145_684, Shops: 301, Lat: 16.745, Lon: 77.491, DistKm: 163}, RiceKg: 2_768_061, WheatKg: 0, SugarKg: 682, FraudSeed: 0.15},
	{District: sim.District{ID: "D22", Name: "Nirmal", Beneficiaries: 219_972, Shops: 412, Lat: 19.096, Lon: 78.338, DistKm: 225}, RiceKg: 4_002_726, WheatKg: 0, SugarKg: 0, FraudSeed: 0.17},
	{District: sim.District{ID: "D23", Name: "Nizamabad", Beneficiaries: 403_510, Shops: 759, Lat: 18.672, Lon: 78.094, DistKm: 163}, RiceKg: 7_815_400, WheatKg: 0, SugarKg: 0, FraudSeed: 0.14},
	{District: sim.District{ID: "D24", Name: "Peddapalli", Beneficiaries: 223_553, Shops: 410, Lat: 18.618, Lon: 79.376, DistKm: 184}, RiceKg: 3_704_959, WheatKg: 0, SugarKg: 1, FraudSeed: 0.13},
	{District: sim.District{ID: "D25", Name: "Rajanna Siricilla", Beneficiaries: 177_851, Shops: 345, Lat: 18.386, Lon: 78.837, DistKm: 155}, RiceKg: 3_032_772, WheatKg: 0, SugarKg: 6_138, FraudSeed: 0.13},
	{District: sim.District{ID: "D26", Name: "Ranga Reddy", Beneficiaries: 572_792, Shops: 936, Lat: 17.246, Lon: 78.372, DistKm: 18}, RiceKg: 12_953_556, WheatKg: 467_188, SugarKg: 5_404, FraudSeed: 0.09},
	{District: sim.District{ID: "D27", Name: "Sangareddy", Beneficiaries: 381_017, Shops: 845, Lat: 17.619, Lon: 78.089, DistKm: 55}, RiceKg: 7_841_638, WheatKg: 0, SugarKg: 0, FraudSeed: 0.10},
	{District: sim.District{ID: "D28", Name: "Siddipet", Beneficiaries: 298_985, Shops: 686, Lat: 18.103, Lon: 78.847, DistKm: 110}, RiceKg: 5_505_663, WheatKg: 7_598, SugarKg: 2_461, FraudSeed: 0.10},
	{District: sim.District{ID: "D29", Name: "Suryapet", Beneficiaries: 326_057, Shops: 735, Lat: 17.141, Lon: 79.623, DistKm: 130}, RiceKg: 5_153_375, WheatKg: 0, SugarKg: 1_296, FraudSeed: 0.12},
	{District: sim.District{ID: "D30", Name: "Vikarabad", Beneficiaries: 251_097, Shops: 588, Lat: 17.338, Lon: 77.908, DistKm: 73}, RiceKg: 4_870_765, WheatKg: 0, SugarKg: 0, FraudSeed: 0.10},
	{District: sim.District{ID: "D31", Name: "Wanaparthy", Beneficiaries: 161_316, Shops: 325, Lat: 16.367, Lon: 78.065, DistKm: 142}, RiceKg: 2_608_385, WheatKg: 0, SugarKg: 10, FraudSeed: 0.15},
	{District: sim.District{ID: "D32", Name: "Warangal", Beneficiaries: 267_141, Shops: 509, Lat: 17.977, Lon: 79.598, DistKm: 145}, RiceKg: 4_329_349, WheatKg: 0, SugarKg: 0, FraudSeed: 0.11},
	{District: sim.District{ID: "D33", Name: "Yadadri Bhuvanagiri", Beneficiaries: 218_963, Shops: 515, Lat: 17.509, Lon: 78.882, DistKm: 56}, RiceKg: 3_807_576, WheatKg: 0, SugarKg: 1, FraudSeed: 0.09},
}
