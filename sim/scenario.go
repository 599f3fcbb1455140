package sim

import (
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ScenarioOutcome bundles the results of a comparison run.
type ScenarioOutcome struct {
	Baseline *SimulationResult `json:"baseline"`
	// Scenario is nil when the config carries no scenario; otherwise its
	// BaselineComparison field holds the deltas against Baseline.
	Scenario *SimulationResult `json:"scenario,omitempty"`
}

// Result returns the result of interest: the scenario run when one was
// requested, the baseline otherwise.
func (o *ScenarioOutcome) Result() *SimulationResult {
	if o.Scenario != nil {
		return o.Scenario
	}
	return o.Baseline
}

// ApplyInterventions deep-copies the baseline configuration and applies the
// scenario's interventions in list order. Later interventions compound on
// earlier ones targeting the same station; there is no reconciliation beyond
// left-to-right application. The baseline config object is never mutated.
func ApplyInterventions(base *SimulationConfig) (*SimulationConfig, error) {
	effective := base.Clone()
	if base.Scenario == nil {
		return effective, nil
	}

	for idx, iv := range base.Scenario.Interventions {
		if err := applyIntervention(effective, idx, iv); err != nil {
			return nil, err
		}
	}

	// Scenario-specific hour adjustments compose onto the curve multipliers.
	if len(base.Scenario.DemandAdjustments) > 0 {
		if effective.DemandCurve.HourMultipliers == nil {
			effective.DemandCurve.HourMultipliers = make(map[int]float64)
		}
		for h, m := range base.Scenario.DemandAdjustments {
			cur, ok := effective.DemandCurve.HourMultipliers[h]
			if !ok {
				cur = 1.0
			}
			effective.DemandCurve.HourMultipliers[h] = cur * m
		}
	}
	return effective, nil
}

func applyIntervention(cfg *SimulationConfig, idx int, iv Intervention) error {
	switch iv.Type {
	case InterventionDemandMultiplier:
		if iv.TargetStationID == "" {
			cfg.DemandMultiplier *= iv.Multiplier
			logrus.Infof("intervention %d: global demand ×%.2f", idx, iv.Multiplier)
			return nil
		}
		st := findStation(cfg, iv.TargetStationID)
		if st == nil {
			return configErrorf("intervention %d: unknown target_station_id %q", idx, iv.TargetStationID)
		}
		st.DemandMultiplier = st.StationDemand() * iv.Multiplier
		logrus.Infof("intervention %d: station %s demand ×%.2f", idx, st.ID, iv.Multiplier)

	case InterventionModifyChargers:
		st := findStation(cfg, iv.TargetStationID)
		if st == nil {
			return configErrorf("intervention %d: unknown target_station_id %q", idx, iv.TargetStationID)
		}
		st.ChargerCount = iv.NewCount
		logrus.Infof("intervention %d: station %s charger_count=%d", idx, st.ID, iv.NewCount)

	case InterventionModifyInventory:
		st := findStation(cfg, iv.TargetStationID)
		if st == nil {
			return configErrorf("intervention %d: unknown target_station_id %q", idx, iv.TargetStationID)
		}
		st.TotalBatteries += iv.Delta
		if st.TotalBatteries < 1 {
			return configErrorf("intervention %d: inventory delta %d leaves station %s with %d batteries",
				idx, iv.Delta, st.ID, st.TotalBatteries)
		}
		logrus.Infof("intervention %d: station %s total_batteries=%d", idx, st.ID, st.TotalBatteries)

	case InterventionAddStation:
		if findStation(cfg, iv.Station.ID) != nil {
			return configErrorf("intervention %d: station id %q already exists", idx, iv.Station.ID)
		}
		added := *iv.Station
		if added.Name == "" {
			added.Name = "Station " + added.ID
		}
		cfg.Stations = append(cfg.Stations, added)
		logrus.Infof("intervention %d: added station %s", idx, added.ID)

	case InterventionRemoveStation:
		pos := -1
		for i := range cfg.Stations {
			if cfg.Stations[i].ID == iv.TargetStationID {
				pos = i
				break
			}
		}
		if pos < 0 {
			return configErrorf("intervention %d: unknown target_station_id %q", idx, iv.TargetStationID)
		}
		if len(cfg.Stations) == 1 {
			return configErrorf("intervention %d: cannot remove the last station", idx)
		}
		cfg.Stations = append(cfg.Stations[:pos], cfg.Stations[pos+1:]...)
		logrus.Infof("intervention %d: removed station %s", idx, iv.TargetStationID)

	default:
		return configErrorf("intervention %d: unknown type %q", idx, iv.Type)
	}
	return nil
}

func findStation(cfg *SimulationConfig, id string) *StationConfig {
	for i := range cfg.Stations {
		if cfg.Stations[i].ID == id {
			return &cfg.Stations[i]
		}
	}
	return nil
}

// RunScenario executes the baseline simulation and, when a scenario is
// configured, the intervened simulation under the identical seed. The two
// runs own disjoint state graphs and execute in parallel goroutines.
func RunScenario(cfg *SimulationConfig) (*ScenarioOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baselineCfg := cfg.Clone()
	baselineCfg.Scenario = nil

	if cfg.Scenario == nil {
		sim, err := NewSimulator(baselineCfg)
		if err != nil {
			return nil, err
		}
		result, err := sim.Run()
		if err != nil {
			return nil, err
		}
		return &ScenarioOutcome{Baseline: result}, nil
	}

	scenarioCfg, err := ApplyInterventions(cfg)
	if err != nil {
		return nil, err
	}

	var baseResult, scenResult *SimulationResult
	var g errgroup.Group
	g.Go(func() error {
		s, err := NewSimulator(baselineCfg)
		if err != nil {
			return err
		}
		baseResult, err = s.Run()
		return err
	})
	g.Go(func() error {
		s, err := NewSimulator(scenarioCfg)
		if err != nil {
			return err
		}
		scenResult, err = s.Run()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scenResult.BaselineComparison = Compare(baseResult, scenResult)
	return &ScenarioOutcome{Baseline: baseResult, Scenario: scenResult}, nil
}

// Compare computes scenario-vs-baseline deltas: percentage for wait time,
// throughput, and utilization; absolute for lost swaps and opex.
func Compare(baseline, scenario *SimulationResult) *BaselineComparison {
	return &BaselineComparison{
		WaitTimeDeltaPct:    pctDelta(baseline.CityAvgWaitTime, scenario.CityAvgWaitTime),
		ThroughputDeltaPct:  pctDelta(baseline.CityThroughputPerHour, scenario.CityThroughputPerHour),
		UtilizationDeltaPct: pctDelta(baseline.AvgChargerUtilization, scenario.AvgChargerUtilization),
		LostSwapsDelta:      scenario.CityLostSwaps - baseline.CityLostSwaps,
		OpexDelta:           scenario.EstimatedOpexCost - baseline.EstimatedOpexCost,
	}
}

// pctDelta returns the percentage change from base to next, rounded to two
// decimals. 0 when base is zero.
func pctDelta(base, next float64) float64 {
	if base == 0 {
		return 0
	}
	return math.Round((next-base)/base*10000) / 100
}
