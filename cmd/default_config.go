package cmd

import (
	"github.com/swapsim/swapsim/sim"
)

// DefaultConfig builds a small three-station demo network used when no
// config file is given. The demand curve follows a commuter pattern with
// morning and evening peaks.
func DefaultConfig() *sim.SimulationConfig {
	cfg := &sim.SimulationConfig{
		DurationDays:     1,
		RandomSeed:       42,
		DemandMultiplier: 1.0,
		DemandCurve: sim.DemandCurve{
			BaseArrivalsPerHour: []float64{
				2, 1, 1, 1, 2, 4, // 00-05
				8, 14, 18, 12, 8, 8, // 06-11
				10, 9, 8, 8, 10, 14, // 12-17
				18, 16, 10, 6, 4, 3, // 18-23
			},
		},
		Stations: []sim.StationConfig{
			{
				ID:              "st_central",
				Name:            "Central Hub",
				Location:        sim.Location{Lat: 12.9716, Lon: 77.5946},
				TotalBatteries:  20,
				ChargerCount:    4,
				ChargePowerKW:   60,
				SwapTimeSeconds: 90,
			},
			{
				ID:              "st_east",
				Name:            "East Market",
				Location:        sim.Location{Lat: 12.9784, Lon: 77.6408},
				TotalBatteries:  12,
				ChargerCount:    3,
				ChargePowerKW:   60,
				SwapTimeSeconds: 90,
			},
			{
				ID:               "st_depot",
				Name:             "South Depot",
				Location:         sim.Location{Lat: 12.9141, Lon: 77.6101},
				TotalBatteries:   8,
				ChargerCount:     2,
				ChargePowerKW:    30,
				SwapTimeSeconds:  120,
				GridPowerLimitKW: 45,
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}
