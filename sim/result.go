package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// StationKpi holds per-station metrics derived from one run's telemetry.
// Recomputed per run, never persisted by the kernel.
type StationKpi struct {
	StationID          string  `json:"station_id"`
	TotalSwaps         int     `json:"total_swaps"`
	LostSwaps          int     `json:"lost_swaps"`
	AvgWaitTimeSeconds float64 `json:"avg_wait_time_seconds"`
	MaxWaitTimeSeconds float64 `json:"max_wait_time_seconds"`
	ChargerUtilization float64 `json:"charger_utilization"`
	IdleInventoryPct   float64 `json:"idle_inventory_pct"`
	TotalEnergyKWh     float64 `json:"total_energy_kwh"`
	PeakQueueLength    int     `json:"peak_queue_length"`
}

// OpexBreakdown decomposes the estimated operating cost.
type OpexBreakdown struct {
	EnergyCost       float64 `json:"energy_cost"`
	DepreciationCost float64 `json:"depreciation_cost"`
	LogisticsCost    float64 `json:"logistics_cost"`
	Total            float64 `json:"total"`
}

// BaselineComparison holds scenario-vs-baseline deltas: percentage deltas for
// wait time, throughput, and utilization; absolute deltas for lost swaps and
// opex.
type BaselineComparison struct {
	WaitTimeDeltaPct    float64 `json:"wait_time_delta_pct"`
	ThroughputDeltaPct  float64 `json:"throughput_delta_pct"`
	UtilizationDeltaPct float64 `json:"utilization_delta_pct"`
	LostSwapsDelta      int     `json:"lost_swaps_delta"`
	OpexDelta           float64 `json:"opex_delta"`
}

// SimulationResult is the derived aggregate for one run.
type SimulationResult struct {
	RunID        uuid.UUID `json:"run_id"`
	ScenarioName string    `json:"scenario_name"`
	DurationDays int       `json:"duration_days"`

	CityTotalSwaps        int     `json:"city_total_swaps"`
	CityLostSwaps         int     `json:"city_lost_swaps"`
	CityAvgWaitTime       float64 `json:"city_avg_wait_time"`
	CityThroughputPerHour float64 `json:"city_throughput_per_hour"`

	TotalEnergyKWh        float64       `json:"total_energy_kwh"`
	EstimatedOpexCost     float64       `json:"estimated_opex_cost"`
	AvgChargerUtilization float64       `json:"avg_charger_utilization"`
	AvgIdleInventoryPct   float64       `json:"avg_idle_inventory_pct"`
	OpexBreakdown         OpexBreakdown `json:"opex_breakdown"`

	// WaitTime summarizes successful-swap waits city-wide.
	WaitTime Distribution `json:"wait_time_seconds"`

	StationKpis        []StationKpi        `json:"station_kpis"`
	BaselineComparison *BaselineComparison `json:"baseline_comparison,omitempty"`

	ComputeTimeMs int64 `json:"compute_time_ms"`
}

// Print displays a run summary at the end of the simulation.
func (r *SimulationResult) Print() {
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Run ID               : %s\n", r.RunID)
	fmt.Printf("Scenario             : %s\n", r.ScenarioName)
	fmt.Printf("Total swaps          : %d\n", r.CityTotalSwaps)
	fmt.Printf("Lost swaps           : %d\n", r.CityLostSwaps)
	fmt.Printf("Avg wait             : %.1fs (p95 %.1fs)\n", r.CityAvgWaitTime, r.WaitTime.P95)
	fmt.Printf("Throughput           : %.2f swaps/hour\n", r.CityThroughputPerHour)
	fmt.Printf("Charger utilization  : %.1f%%\n", r.AvgChargerUtilization*100)
	fmt.Printf("Idle inventory       : %.1f%%\n", r.AvgIdleInventoryPct)
	fmt.Printf("Energy delivered     : %.1f kWh\n", r.TotalEnergyKWh)
	fmt.Printf("Estimated opex       : %.2f (energy %.2f, depreciation %.2f, logistics %.2f)\n",
		r.EstimatedOpexCost, r.OpexBreakdown.EnergyCost, r.OpexBreakdown.DepreciationCost, r.OpexBreakdown.LogisticsCost)
	if r.BaselineComparison != nil {
		c := r.BaselineComparison
		fmt.Println("--- vs baseline ---")
		fmt.Printf("Wait time            : %+.2f%%\n", c.WaitTimeDeltaPct)
		fmt.Printf("Throughput           : %+.2f%%\n", c.ThroughputDeltaPct)
		fmt.Printf("Utilization          : %+.2f%%\n", c.UtilizationDeltaPct)
		fmt.Printf("Lost swaps           : %+d\n", c.LostSwapsDelta)
		fmt.Printf("Opex                 : %+.2f\n", c.OpexDelta)
	}
}
