package sim

// BatteryState is the lifecycle state of a battery unit. Exactly one state
// holds at any simulated instant.
type BatteryState string

const (
	BatteryAvailable BatteryState = "AVAILABLE"
	BatteryInUse     BatteryState = "IN_USE"
	BatteryDepleted  BatteryState = "DEPLETED"
	BatteryCharging  BatteryState = "CHARGING"
)

// Battery is a unit of charge-holding inventory. A battery is owned
// exclusively by one station for the simulation's lifetime.
type Battery struct {
	ID        string
	StationID string
	State     BatteryState
	SoC       float64 // state of charge, 0-100
	// CycleCount increments once per full AVAILABLE→DEPLETED→AVAILABLE
	// traversal, i.e. on each charge completion.
	CycleCount int
}

// better reports whether a should be selected over b for a swap:
// highest SoC, then lowest cycle count, then lowest id.
func better(a, b *Battery) bool {
	if a.SoC != b.SoC {
		return a.SoC > b.SoC
	}
	if a.CycleCount != b.CycleCount {
		return a.CycleCount < b.CycleCount
	}
	return a.ID < b.ID
}
