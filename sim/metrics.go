package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/swapsim/swapsim/sim/telemetry"
)

// Distribution captures the statistical summary of a metric.
type Distribution struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns a zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// stationAccumulator gathers one station's raw counters during the single
// pass over the telemetry stream.
type stationAccumulator struct {
	totalSwaps    int
	lostSwaps     int
	waits         []float64
	maxWait       float64
	busySeconds   float64
	energyKWh     float64
	cycles        int
	peakQueue     int
	availCount    int
	availPrev     float64 // time of the last availability change
	availIntegral float64
}

// AggregateKPIs reduces the full ordered telemetry stream into per-station
// and city-wide metrics, including the cost breakdown. Single pass; the
// stream is consumed after the horizon completes, never online. cfg must be
// the effective (post-intervention) configuration the run executed with.
func AggregateKPIs(cfg *SimulationConfig, records []telemetry.Record) *SimulationResult {
	horizon := cfg.Horizon()
	accs := make(map[string]*stationAccumulator, len(cfg.Stations))
	for i := range cfg.Stations {
		accs[cfg.Stations[i].ID] = &stationAccumulator{
			availCount: cfg.Stations[i].TotalBatteries,
		}
	}

	for _, rec := range records {
		acc, ok := accs[rec.StationID]
		if !ok {
			continue
		}
		switch rec.Type {
		case telemetry.EventVehicleArrival:
			if rec.Meta.QueueLength > acc.peakQueue {
				acc.peakQueue = rec.Meta.QueueLength
			}
		case telemetry.EventSwapStart:
			acc.waits = append(acc.waits, rec.Meta.WaitSeconds)
			if rec.Meta.WaitSeconds > acc.maxWait {
				acc.maxWait = rec.Meta.WaitSeconds
			}
			acc.accrueAvailability(rec.Time)
			acc.availCount--
		case telemetry.EventSwapComplete:
			acc.totalSwaps++
		case telemetry.EventLostSwap:
			acc.lostSwaps++
		case telemetry.EventChargeComplete:
			acc.busySeconds += rec.Meta.DurationSeconds
			acc.energyKWh += rec.Meta.EnergyKWh
			acc.cycles++
			acc.accrueAvailability(rec.Time)
			acc.availCount++
		}
	}

	result := &SimulationResult{
		DurationDays: cfg.DurationDays,
		ScenarioName: "baseline",
	}
	if cfg.Scenario != nil {
		result.ScenarioName = cfg.Scenario.Name
	}

	var (
		totalWait       float64
		totalBusy       float64
		totalChargerCap float64
		totalCycles     int
		sumIdlePct      float64
		allWaits        []float64
	)

	for i := range cfg.Stations {
		sc := &cfg.Stations[i]
		acc := accs[sc.ID]
		acc.accrueAvailability(horizon)

		kpi := StationKpi{
			StationID:          sc.ID,
			TotalSwaps:         acc.totalSwaps,
			LostSwaps:          acc.lostSwaps,
			MaxWaitTimeSeconds: acc.maxWait,
			TotalEnergyKWh:     acc.energyKWh,
			PeakQueueLength:    acc.peakQueue,
		}
		if len(acc.waits) > 0 {
			kpi.AvgWaitTimeSeconds = stat.Mean(acc.waits, nil)
		}
		chargerCap := float64(sc.ChargerCount) * horizon
		if chargerCap > 0 {
			kpi.ChargerUtilization = clamp01(acc.busySeconds / chargerCap)
		}
		if sc.TotalBatteries > 0 && horizon > 0 {
			kpi.IdleInventoryPct = acc.availIntegral / (float64(sc.TotalBatteries) * horizon) * 100.0
		}
		result.StationKpis = append(result.StationKpis, kpi)

		result.CityTotalSwaps += acc.totalSwaps
		result.CityLostSwaps += acc.lostSwaps
		result.TotalEnergyKWh += acc.energyKWh
		for _, w := range acc.waits {
			totalWait += w
		}
		allWaits = append(allWaits, acc.waits...)
		totalBusy += acc.busySeconds
		totalChargerCap += chargerCap
		totalCycles += acc.cycles
		sumIdlePct += kpi.IdleInventoryPct
	}

	if len(allWaits) > 0 {
		result.CityAvgWaitTime = totalWait / float64(len(allWaits))
	}
	durationHours := float64(cfg.DurationDays) * 24.0
	if durationHours > 0 {
		result.CityThroughputPerHour = float64(result.CityTotalSwaps) / durationHours
	}
	if totalChargerCap > 0 {
		result.AvgChargerUtilization = clamp01(totalBusy / totalChargerCap)
	}
	if len(cfg.Stations) > 0 {
		result.AvgIdleInventoryPct = sumIdlePct / float64(len(cfg.Stations))
	}
	result.WaitTime = NewDistribution(allWaits)

	// The tariff bills grid-side draw; delivered energy is scaled back up by
	// the charge efficiency to recover what was pulled from the meter.
	breakdown := OpexBreakdown{
		EnergyCost:       result.TotalEnergyKWh / cfg.Calibration.ChargeEfficiency * cfg.Costs.EnergyTariffPerKWh,
		DepreciationCost: float64(totalCycles) * cfg.Costs.DepreciationPerCycle,
		LogisticsCost:    float64(len(cfg.Stations)) * float64(cfg.DurationDays) * cfg.Costs.StationOverheadPerDay,
	}
	breakdown.Total = breakdown.EnergyCost + breakdown.DepreciationCost + breakdown.LogisticsCost
	result.OpexBreakdown = breakdown
	result.EstimatedOpexCost = breakdown.Total

	return result
}

// accrueAvailability advances the idle-inventory time integral to t.
func (a *stationAccumulator) accrueAvailability(t float64) {
	if t > a.availPrev {
		a.availIntegral += float64(a.availCount) * (t - a.availPrev)
		a.availPrev = t
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
