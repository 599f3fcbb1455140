// Package sim provides the discrete-event simulation kernel for a city-wide
// battery-swap station network.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - station.go: the per-station queueing model (bays, battery pool, chargers)
//   - event.go: the event types that drive the simulation (Arrival, SwapComplete, ChargePhaseComplete)
//   - simulator.go: the event loop, clock, and horizon handling
//
// # Architecture
//
// A Simulator wires one DemandGenerator per station into a single event heap
// ordered by (timestamp, insertion sequence). Draining the heap mutates
// station and battery state and appends to the telemetry stream
// (sim/telemetry). After the horizon elapses, AggregateKPIs reduces the
// stream into a SimulationResult. RunScenario applies interventions to a
// deep-copied config and runs baseline and scenario under the identical seed
// to produce comparison deltas.
//
// Execution is single-threaded and cooperative: "concurrency" (several
// chargers busy at once) is expressed through pending events, not goroutines.
// Distinct runs own disjoint state and may execute in parallel.
package sim
