// Package telemetry provides append-only event recording for simulation runs.
// This package has no dependencies on sim/ — it stores pure data types.
package telemetry

// EventType identifies the kind of telemetry record.
type EventType string

const (
	EventVehicleArrival EventType = "VEHICLE_ARRIVAL"
	EventSwapStart      EventType = "SWAP_START"
	EventSwapComplete   EventType = "SWAP_COMPLETE"
	EventLostSwap       EventType = "LOST_SWAP"
	EventChargeStart    EventType = "CHARGE_START"
	EventChargeComplete EventType = "CHARGE_COMPLETE"
	EventGridLimitHit   EventType = "GRID_LIMIT_HIT"
)

// Balk reasons recorded in Meta.Reason on LOST_SWAP events.
const (
	ReasonStockout  = "stockout"
	ReasonQueueFull = "queue_full"
)

// Meta carries event-specific measurements. Fields are typed rather than a
// generic map so that two runs with the same seed produce identical streams.
type Meta struct {
	WaitSeconds      float64
	DurationSeconds  float64
	SoC              float64
	EnergyKWh        float64
	EffectivePowerKW float64
	QueueLength      int
	Reason           string
}

// Record is a single telemetry event. Records are never mutated after being
// appended; every KPI is derived from the ordered stream of them.
type Record struct {
	Time      float64
	StationID string
	EntityID  string
	Type      EventType
	Meta      Meta
}
