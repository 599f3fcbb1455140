package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/swapsim/swapsim/sim/telemetry"
)

// Simulator is the core object that holds simulated time, station state, and
// the event loop. It is the explicit context passed to every component; no
// process-wide state persists between runs.
//
// Execution is single-threaded and cooperative: the event loop is the sole
// driver of time advancement. Two Simulators own disjoint state graphs and
// may run in parallel goroutines without synchronization.
type Simulator struct {
	Clock   float64
	Horizon float64

	cfg      *SimulationConfig
	events   *EventHeap
	rng      *RandomStream
	recorder *telemetry.Recorder

	stations     []*Station
	stationsByID map[string]*Station

	vehicleSeq int
	err        error
}

// NewSimulator validates the configuration, builds stations and demand
// generators, and schedules the first arrival per station. cfg is treated as
// immutable from here on.
func NewSimulator(cfg *SimulationConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sim := &Simulator{
		Horizon:      cfg.Horizon(),
		cfg:          cfg,
		events:       NewEventHeap(),
		rng:          NewRandomStream(cfg.RandomSeed),
		recorder:     telemetry.NewRecorder(),
		stationsByID: make(map[string]*Station, len(cfg.Stations)),
	}

	for i := range cfg.Stations {
		sc := cfg.Stations[i]
		st := newStation(sc, cfg.BatteryCapacityKWh, cfg.Calibration.ChargeEfficiency)
		st.demand = NewDemandGenerator(cfg, &sc, sim.rng)
		sim.stations = append(sim.stations, st)
		sim.stationsByID[sc.ID] = st
	}

	// Seed the event queue with the first arrival per station, in config
	// order so the draw sequence is fixed.
	for _, st := range sim.stations {
		sim.scheduleNextArrival(st)
	}

	logrus.Infof("simulator initialized: %d stations, horizon=%.0fs, seed=%d",
		len(sim.stations), sim.Horizon, cfg.RandomSeed)
	return sim, nil
}

// Schedule pushes an event into the simulator's event queue.
func (sim *Simulator) Schedule(ev Event) {
	sim.events.Schedule(ev)
}

// record appends a telemetry record to the run's stream.
func (sim *Simulator) record(rec telemetry.Record) {
	sim.recorder.Append(rec)
}

// fail aborts the run with the given error. The drain loop stops before the
// next event.
func (sim *Simulator) fail(err error) {
	if sim.err == nil {
		sim.err = err
	}
}

// Records returns the telemetry stream collected so far.
func (sim *Simulator) Records() []telemetry.Record {
	return sim.recorder.Records()
}

// scheduleNextArrival draws the station's next arrival timestamp and
// schedules it, assigning the vehicle id eagerly.
func (sim *Simulator) scheduleNextArrival(st *Station) {
	t, ok := st.demand.Next()
	if !ok {
		return
	}
	sim.vehicleSeq++
	vehicleID := fmt.Sprintf("veh_%06d", sim.vehicleSeq)
	sim.Schedule(NewArrivalEvent(t, st.ID(), vehicleID))
}

func (sim *Simulator) handleArrival(ev *ArrivalEvent) {
	st := sim.stationsByID[ev.StationID]
	// Draw the follow-up arrival first so demand consumption of the random
	// stream is independent of station state transitions.
	sim.scheduleNextArrival(st)
	st.handleArrival(sim, ev.Timestamp(), ev.VehicleID)
}

func (sim *Simulator) handleSwapComplete(ev *SwapCompleteEvent) {
	st := sim.stationsByID[ev.StationID]
	st.handleSwapComplete(sim, ev.Timestamp(), ev.VehicleID, ev.BatteryID)
}

func (sim *Simulator) handleChargeComplete(ev *ChargePhaseCompleteEvent) {
	st := sim.stationsByID[ev.StationID]
	st.handleChargeComplete(sim, ev.Timestamp(), ev)
}

// Run drains the event queue until it is empty or simulated time exceeds the
// horizon, then aggregates telemetry into a SimulationResult.
func (sim *Simulator) Run() (*SimulationResult, error) {
	start := time.Now()

	for sim.events.Len() > 0 {
		ev := sim.events.PopNext()
		if ev.Timestamp() > sim.Horizon {
			break
		}
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[%9.1fs] executing %T", sim.Clock, ev)
		ev.Execute(sim)
		if sim.err != nil {
			logrus.Errorf("simulation aborted at %.1fs: %v", sim.Clock, sim.err)
			return nil, sim.err
		}
	}

	result := AggregateKPIs(sim.cfg, sim.recorder.Records())
	result.RunID = uuid.New()
	result.ComputeTimeMs = time.Since(start).Milliseconds()

	logrus.Infof("simulation complete: %d events, %d swaps, %d lost",
		sim.recorder.Len(), result.CityTotalSwaps, result.CityLostSwaps)
	return result, nil
}
