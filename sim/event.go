package sim

// Event represents a scheduled simulation event. Each event has a timestamp
// (simulated seconds), an insertion sequence assigned by the scheduler, and an
// Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Seq() uint64
	Execute(sim *Simulator)

	assignSeq(seq uint64)
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	timestamp float64
	seq       uint64
}

func newBaseEvent(timestamp float64) BaseEvent {
	return BaseEvent{timestamp: timestamp}
}

func (e *BaseEvent) Timestamp() float64 {
	return e.timestamp
}

// Seq returns the insertion sequence number, the deterministic tie-break for
// events sharing a timestamp.
func (e *BaseEvent) Seq() uint64 {
	return e.seq
}

func (e *BaseEvent) assignSeq(seq uint64) {
	e.seq = seq
}

// ArrivalEvent represents a vehicle arriving at a station for a swap.
type ArrivalEvent struct {
	BaseEvent
	StationID string
	VehicleID string
}

func NewArrivalEvent(timestamp float64, stationID, vehicleID string) *ArrivalEvent {
	return &ArrivalEvent{
		BaseEvent: newBaseEvent(timestamp),
		StationID: stationID,
		VehicleID: vehicleID,
	}
}

func (e *ArrivalEvent) Execute(sim *Simulator) {
	sim.handleArrival(e)
}

// SwapCompleteEvent represents a swap bay finishing service for a vehicle.
type SwapCompleteEvent struct {
	BaseEvent
	StationID string
	VehicleID string
	BatteryID string
}

func NewSwapCompleteEvent(timestamp float64, stationID, vehicleID, batteryID string) *SwapCompleteEvent {
	return &SwapCompleteEvent{
		BaseEvent: newBaseEvent(timestamp),
		StationID: stationID,
		VehicleID: vehicleID,
		BatteryID: batteryID,
	}
}

func (e *SwapCompleteEvent) Execute(sim *Simulator) {
	sim.handleSwapComplete(e)
}

// ChargePhaseCompleteEvent represents a battery finishing its analytically
// computed CC/CV charge. A single event covers cooldown plus both phases.
type ChargePhaseCompleteEvent struct {
	BaseEvent
	StationID string
	ChargerID string
	BatteryID string
	Plan      ChargePlan
}

func NewChargePhaseCompleteEvent(timestamp float64, stationID, chargerID, batteryID string, plan ChargePlan) *ChargePhaseCompleteEvent {
	return &ChargePhaseCompleteEvent{
		BaseEvent: newBaseEvent(timestamp),
		StationID: stationID,
		ChargerID: chargerID,
		BatteryID: batteryID,
		Plan:      plan,
	}
}

func (e *ChargePhaseCompleteEvent) Execute(sim *Simulator) {
	sim.handleChargeComplete(e)
}
