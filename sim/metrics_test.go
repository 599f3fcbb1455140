package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsim/swapsim/sim/telemetry"
)

func TestNewDistribution(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))

	d := NewDistribution([]float64{5, 1, 3, 2, 4})
	assert.Equal(t, 3.0, d.Mean)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.Equal(t, 5, d.Count)
	assert.Equal(t, 5.0, d.P99)
	assert.LessOrEqual(t, d.P50, d.P95)
}

// TestAggregateKPIs_HandBuiltStream checks every derived metric against a
// small telemetry stream computed by hand: two completed swaps (waits 0 and
// 50s), one lost swap, two charge cycles on a single charger.
func TestAggregateKPIs_HandBuiltStream(t *testing.T) {
	cfg := &SimulationConfig{
		DurationDays: 1,
		RandomSeed:   1,
		Stations: []StationConfig{
			{ID: "s1", TotalBatteries: 2, ChargerCount: 1, ChargePowerKW: 60, SwapTimeSeconds: 90},
		},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	records := []telemetry.Record{
		{Time: 100, StationID: "s1", EntityID: "v1", Type: telemetry.EventVehicleArrival, Meta: telemetry.Meta{QueueLength: 0}},
		{Time: 100, StationID: "s1", EntityID: "v1", Type: telemetry.EventSwapStart, Meta: telemetry.Meta{WaitSeconds: 0}},
		{Time: 190, StationID: "s1", EntityID: "v1", Type: telemetry.EventSwapComplete, Meta: telemetry.Meta{DurationSeconds: 90}},
		{Time: 300, StationID: "s1", EntityID: "v2", Type: telemetry.EventVehicleArrival, Meta: telemetry.Meta{QueueLength: 2}},
		{Time: 350, StationID: "s1", EntityID: "v2", Type: telemetry.EventSwapStart, Meta: telemetry.Meta{WaitSeconds: 50}},
		{Time: 440, StationID: "s1", EntityID: "v2", Type: telemetry.EventSwapComplete, Meta: telemetry.Meta{DurationSeconds: 90}},
		{Time: 500, StationID: "s1", EntityID: "v3", Type: telemetry.EventLostSwap, Meta: telemetry.Meta{Reason: telemetry.ReasonStockout}},
		{Time: 610, StationID: "s1", EntityID: "b1", Type: telemetry.EventChargeComplete, Meta: telemetry.Meta{EnergyKWh: 3.95, DurationSeconds: 420}},
		{Time: 1030, StationID: "s1", EntityID: "b2", Type: telemetry.EventChargeComplete, Meta: telemetry.Meta{EnergyKWh: 3.95, DurationSeconds: 420}},
	}

	result := AggregateKPIs(cfg, records)

	assert.Equal(t, 2, result.CityTotalSwaps)
	assert.Equal(t, 1, result.CityLostSwaps)
	assert.InDelta(t, 25.0, result.CityAvgWaitTime, 1e-9)
	assert.InDelta(t, 2.0/24.0, result.CityThroughputPerHour, 1e-9)
	assert.InDelta(t, 7.9, result.TotalEnergyKWh, 1e-9)
	assert.InDelta(t, 840.0/86400.0, result.AvgChargerUtilization, 1e-9)

	require.Len(t, result.StationKpis, 1)
	kpi := result.StationKpis[0]
	assert.Equal(t, "s1", kpi.StationID)
	assert.Equal(t, 2, kpi.TotalSwaps)
	assert.Equal(t, 1, kpi.LostSwaps)
	assert.InDelta(t, 25.0, kpi.AvgWaitTimeSeconds, 1e-9)
	assert.InDelta(t, 50.0, kpi.MaxWaitTimeSeconds, 1e-9)
	assert.Equal(t, 2, kpi.PeakQueueLength)

	// Availability integral: 2 idle until 100, 1 until 350, 0 until 610,
	// 1 until 1030, 2 until the horizon.
	wantIntegral := 2*100.0 + 1*250.0 + 0 + 1*420.0 + 2*(86400.0-1030.0)
	assert.InDelta(t, wantIntegral/(2*86400.0)*100.0, kpi.IdleInventoryPct, 1e-9)

	// Opex: 7.9 kWh × 8 + 2 cycles × 25 + 1 station-day × 500.
	assert.InDelta(t, 63.2, result.OpexBreakdown.EnergyCost, 1e-9)
	assert.InDelta(t, 50.0, result.OpexBreakdown.DepreciationCost, 1e-9)
	assert.InDelta(t, 500.0, result.OpexBreakdown.LogisticsCost, 1e-9)
	assert.InDelta(t, 613.2, result.EstimatedOpexCost, 1e-9)

	assert.Equal(t, result.WaitTime.Count, 2)
	assert.Equal(t, "baseline", result.ScenarioName)
}

// TestAggregateKPIs_EnergyCostAtGridSide verifies the tariff bills the grid
// draw, not the battery-side delivered energy, when efficiency is below one.
func TestAggregateKPIs_EnergyCostAtGridSide(t *testing.T) {
	cfg := &SimulationConfig{
		DurationDays: 1,
		RandomSeed:   1,
		Stations: []StationConfig{
			{ID: "s1", TotalBatteries: 2, ChargerCount: 1, ChargePowerKW: 60, SwapTimeSeconds: 90},
		},
	}
	cfg.ApplyDefaults()
	cfg.Calibration.ChargeEfficiency = 0.9

	records := []telemetry.Record{
		{Time: 500, StationID: "s1", EntityID: "b1", Type: telemetry.EventChargeComplete, Meta: telemetry.Meta{EnergyKWh: 3.95, DurationSeconds: 420}},
	}
	result := AggregateKPIs(cfg, records)

	assert.InDelta(t, 3.95, result.TotalEnergyKWh, 1e-9, "KPI reports delivered energy")
	assert.InDelta(t, 3.95/0.9*8.0, result.OpexBreakdown.EnergyCost, 1e-9)
}

// TestAggregateKPIs_EmptyStream verifies a run with no events yields zeroed
// activity metrics but still charges the fixed logistics overhead.
func TestAggregateKPIs_EmptyStream(t *testing.T) {
	cfg := &SimulationConfig{
		DurationDays: 1,
		RandomSeed:   1,
		Stations: []StationConfig{
			{ID: "s1", TotalBatteries: 2, ChargerCount: 1, ChargePowerKW: 60, SwapTimeSeconds: 90},
		},
	}
	cfg.ApplyDefaults()

	result := AggregateKPIs(cfg, nil)

	assert.Equal(t, 0, result.CityTotalSwaps)
	assert.Equal(t, 0.0, result.CityAvgWaitTime)
	assert.Equal(t, 0.0, result.AvgChargerUtilization)
	assert.InDelta(t, 100.0, result.AvgIdleInventoryPct, 1e-9, "untouched inventory is idle the whole run")
	assert.InDelta(t, 500.0, result.EstimatedOpexCost, 1e-9)
}
