package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/swapsim/swapsim/sim/telemetry"
)

// ChargerStatus is the state of a charging bay.
type ChargerStatus string

const (
	ChargerIdle     ChargerStatus = "IDLE"
	ChargerCooldown ChargerStatus = "COOLDOWN"
	ChargerCharging ChargerStatus = "CHARGING"
)

// Charger charges at most one battery at a time. A charger is busy whenever
// a battery is attached; the cooldown/charging split within one busy interval
// is derived from the charge plan rather than flipped by a separate event.
type Charger struct {
	ID        string
	StationID string
	BatteryID string
	// GrantKW is the grid power allocated to this charger while busy.
	GrantKW float64

	cooldownUntil float64
}

// StatusAt reports the charger's phase at simulated time now.
func (c *Charger) StatusAt(now float64) ChargerStatus {
	switch {
	case c.BatteryID == "":
		return ChargerIdle
	case now < c.cooldownUntil:
		return ChargerCooldown
	default:
		return ChargerCharging
	}
}

type waitingVehicle struct {
	id        string
	arrivedAt float64
}

// Station owns a battery pool, a set of chargers, and the swap-bay resource.
// All mutation happens on the scheduler's single execution path; no locking
// is required inside one run.
type Station struct {
	cfg StationConfig

	batteries []*Battery
	chargers  []*Charger

	queue       []waitingVehicle // vehicles waiting for a bay (FIFO)
	chargeQueue []*Battery       // depleted batteries awaiting a charger (FIFO)

	busyBays    int
	allocatedKW float64

	capacityKWh float64
	efficiency  float64

	demand *DemandGenerator
}

func newStation(cfg StationConfig, capacityKWh, efficiency float64) *Station {
	st := &Station{
		cfg:         cfg,
		capacityKWh: capacityKWh,
		efficiency:  efficiency,
	}
	for i := 0; i < cfg.TotalBatteries; i++ {
		st.batteries = append(st.batteries, &Battery{
			ID:        fmt.Sprintf("%s_batt_%03d", cfg.ID, i),
			StationID: cfg.ID,
			State:     BatteryAvailable,
			SoC:       100.0,
		})
	}
	for i := 0; i < cfg.ChargerCount; i++ {
		st.chargers = append(st.chargers, &Charger{
			ID:        fmt.Sprintf("%s_chg_%02d", cfg.ID, i),
			StationID: cfg.ID,
		})
	}
	return st
}

// ID returns the station identifier.
func (st *Station) ID() string {
	return st.cfg.ID
}

// availableCount returns the number of swappable batteries in the pool.
func (st *Station) availableCount() int {
	n := 0
	for _, b := range st.batteries {
		if b.State == BatteryAvailable {
			n++
		}
	}
	return n
}

// pickAvailable selects the AVAILABLE battery with the highest state of
// charge (tie-break: lowest cycle count, then lowest id). Returns nil when
// the pool is stocked out.
func (st *Station) pickAvailable() *Battery {
	var best *Battery
	for _, b := range st.batteries {
		if b.State != BatteryAvailable {
			continue
		}
		if best == nil || better(b, best) {
			best = b
		}
	}
	return best
}

func (st *Station) battery(id string) *Battery {
	for _, b := range st.batteries {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (st *Station) charger(id string) *Charger {
	for _, c := range st.chargers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// idleCharger returns the lowest-id idle charger, or nil.
func (st *Station) idleCharger() *Charger {
	for _, c := range st.chargers {
		if c.BatteryID == "" {
			return c
		}
	}
	return nil
}

// handleArrival processes a vehicle arrival:
//  1. bay free and battery available → admit immediately
//  2. no AVAILABLE battery → lost swap, regardless of bay state
//  3. bays busy → enqueue, unless the queue is at capacity
func (st *Station) handleArrival(sim *Simulator, now float64, vehicleID string) {
	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  vehicleID,
		Type:      telemetry.EventVehicleArrival,
		Meta:      telemetry.Meta{QueueLength: len(st.queue)},
	})

	if st.availableCount() == 0 {
		// Stockout takes precedence over bay contention: waiting for a bay
		// cannot produce a battery.
		st.recordLost(sim, now, vehicleID, telemetry.ReasonStockout, 0)
		return
	}
	if st.busyBays < st.cfg.Bays() {
		st.beginSwap(sim, now, vehicleID, now)
		return
	}
	if st.cfg.QueueCapacity > 0 && len(st.queue) >= st.cfg.QueueCapacity {
		st.recordLost(sim, now, vehicleID, telemetry.ReasonQueueFull, 0)
		return
	}
	st.queue = append(st.queue, waitingVehicle{id: vehicleID, arrivedAt: now})
}

func (st *Station) recordLost(sim *Simulator, now float64, vehicleID, reason string, waited float64) {
	logrus.Debugf("[%9.1fs] %s: lost swap for %s (%s)", now, st.cfg.ID, vehicleID, reason)
	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  vehicleID,
		Type:      telemetry.EventLostSwap,
		Meta: telemetry.Meta{
			Reason:      reason,
			WaitSeconds: waited,
			QueueLength: len(st.queue),
		},
	})
}

// beginSwap admits a vehicle into a bay with the best available battery.
// Caller guarantees a free bay and a non-empty available pool.
func (st *Station) beginSwap(sim *Simulator, now float64, vehicleID string, arrivedAt float64) {
	b := st.pickAvailable()
	b.State = BatteryInUse
	st.busyBays++

	wait := now - arrivedAt
	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  vehicleID,
		Type:      telemetry.EventSwapStart,
		Meta: telemetry.Meta{
			WaitSeconds: wait,
			SoC:         b.SoC,
		},
	})
	sim.Schedule(NewSwapCompleteEvent(now+st.cfg.SwapTimeSeconds, st.cfg.ID, vehicleID, b.ID))
}

// handleSwapComplete returns the depleted battery, frees the bay, retries the
// queue head, and feeds the charge queue.
func (st *Station) handleSwapComplete(sim *Simulator, now float64, vehicleID, batteryID string) {
	b := st.battery(batteryID)
	b.State = BatteryDepleted
	b.SoC = depletedSoC
	st.busyBays--

	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  vehicleID,
		Type:      telemetry.EventSwapComplete,
		Meta: telemetry.Meta{
			DurationSeconds: st.cfg.SwapTimeSeconds,
			SoC:             b.SoC,
		},
	})

	st.chargeQueue = append(st.chargeQueue, b)
	st.dispatchChargers(sim, now)
	st.serviceQueue(sim, now)
}

// serviceQueue admits queued vehicles while a bay is free. A head facing a
// stocked-out pool balks with its accumulated wait; the freed bay then moves
// on to the next head.
func (st *Station) serviceQueue(sim *Simulator, now float64) {
	for len(st.queue) > 0 && st.busyBays < st.cfg.Bays() {
		head := st.queue[0]
		st.queue = st.queue[1:]
		if st.availableCount() == 0 {
			st.recordLost(sim, now, head.id, telemetry.ReasonStockout, now-head.arrivedAt)
			continue
		}
		st.beginSwap(sim, now, head.id, head.arrivedAt)
	}
}

// dispatchChargers pairs idle chargers with queued depleted batteries while
// grid headroom remains. With no headroom left the queue simply waits; a
// completing charge releases its allocation and re-runs dispatch.
func (st *Station) dispatchChargers(sim *Simulator, now float64) {
	for len(st.chargeQueue) > 0 {
		ch := st.idleCharger()
		if ch == nil {
			return
		}
		if st.cfg.GridLimit()-st.allocatedKW <= 0 {
			return
		}
		b := st.chargeQueue[0]
		st.chargeQueue = st.chargeQueue[1:]
		if !st.startCharge(sim, now, ch, b) {
			return
		}
	}
}

// startCharge allocates grid power, computes the analytic CC/CV plan, and
// schedules the single completion event. Caller guarantees positive grid
// headroom. Returns false when the run aborted on a numeric domain violation.
func (st *Station) startCharge(sim *Simulator, now float64, ch *Charger, b *Battery) bool {
	grant := st.cfg.ChargePowerKW
	remaining := st.cfg.GridLimit() - st.allocatedKW
	derated := false
	if grant > remaining {
		// Power-derate instead of blocking, so the charger still counts as
		// busy and utilization stays meaningful.
		grant = remaining
		derated = true
		sim.record(telemetry.Record{
			Time:      now,
			StationID: st.cfg.ID,
			EntityID:  ch.ID,
			Type:      telemetry.EventGridLimitHit,
			Meta:      telemetry.Meta{EffectivePowerKW: grant},
		})
	}

	effective := grant * st.efficiency
	plan, err := planCharge(st.cfg.ID, b.ID, b.SoC, st.capacityKWh, effective, st.cfg.Cooldown())
	if err != nil {
		sim.fail(err)
		return false
	}
	plan.Derated = derated

	st.allocatedKW += grant
	ch.BatteryID = b.ID
	ch.GrantKW = grant
	ch.cooldownUntil = now + plan.CooldownSeconds
	b.State = BatteryCharging

	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  b.ID,
		Type:      telemetry.EventChargeStart,
		Meta: telemetry.Meta{
			SoC:              b.SoC,
			EffectivePowerKW: effective,
		},
	})
	sim.Schedule(NewChargePhaseCompleteEvent(now+plan.TotalSeconds(), st.cfg.ID, ch.ID, b.ID, plan))
	return true
}

// handleChargeComplete declares the battery AVAILABLE, releases the charger
// and its grid allocation, and services the next queued depleted battery.
func (st *Station) handleChargeComplete(sim *Simulator, now float64, ev *ChargePhaseCompleteEvent) {
	b := st.battery(ev.BatteryID)
	ch := st.charger(ev.ChargerID)

	b.SoC = completionSoC
	b.State = BatteryAvailable
	b.CycleCount++

	st.allocatedKW -= ch.GrantKW
	ch.BatteryID = ""
	ch.GrantKW = 0
	ch.cooldownUntil = 0

	sim.record(telemetry.Record{
		Time:      now,
		StationID: st.cfg.ID,
		EntityID:  b.ID,
		Type:      telemetry.EventChargeComplete,
		Meta: telemetry.Meta{
			SoC:             b.SoC,
			EnergyKWh:       ev.Plan.EnergyKWh,
			DurationSeconds: ev.Plan.TotalSeconds(),
		},
	})

	st.dispatchChargers(sim, now)
}

// stateCounts returns the battery pool broken down by state. The four counts
// always sum to total_batteries.
func (st *Station) stateCounts() map[BatteryState]int {
	counts := make(map[BatteryState]int, 4)
	for _, b := range st.batteries {
		counts[b.State]++
	}
	return counts
}
