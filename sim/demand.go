package sim

import "math"

// DemandGenerator produces arrival timestamps for one station as a
// non-homogeneous Poisson process approximated by piecewise-constant-rate
// sampling per hour. When a drawn gap crosses an hour boundary, the remaining
// time is re-drawn at the new hour's rate (thinning by boundary, valid by
// memorylessness of the exponential). Restartable only by constructing a
// fresh generator with the same stream state.
type DemandGenerator struct {
	stationID  string
	curve      DemandCurve
	multiplier float64 // global × station demand multiplier
	jitterFrac float64
	horizon    float64
	rng        *RandomStream

	clock float64 // timestamp of the last produced arrival
	done  bool
}

// NewDemandGenerator builds a generator for one station. All draws come from
// the shared per-run stream, so draw order follows event processing order.
func NewDemandGenerator(cfg *SimulationConfig, station *StationConfig, rng *RandomStream) *DemandGenerator {
	return &DemandGenerator{
		stationID:  station.ID,
		curve:      cfg.DemandCurve,
		multiplier: cfg.DemandMultiplier * station.StationDemand(),
		jitterFrac: cfg.Calibration.ArrivalJitterFrac,
		horizon:    cfg.Horizon(),
		rng:        rng,
	}
}

// Next returns the next arrival timestamp, or false once the horizon is
// exhausted.
func (g *DemandGenerator) Next() (float64, bool) {
	if g.done {
		return 0, false
	}
	t := g.clock
	for t < g.horizon {
		hour := int(t/3600.0) % 24
		rate := g.curve.Rate(hour) * g.multiplier // arrivals per hour
		boundary := (math.Floor(t/3600.0) + 1.0) * 3600.0

		if rate <= 0 {
			// No arrivals this hour; skip to the next one.
			t = boundary
			continue
		}

		gap := g.rng.Exponential(rate / 3600.0) // per-second rate
		if g.jitterFrac > 0 {
			gap *= g.rng.Jitter(g.jitterFrac)
		}

		if t+gap >= boundary {
			// Gap crosses the hour boundary: re-draw under the new rate.
			t = boundary
			continue
		}

		t += gap
		if t >= g.horizon {
			break
		}
		g.clock = t
		return t, true
	}
	g.done = true
	return 0, false
}
