package sim

import "math"

// CC/CV model constants. The battery charges linearly (constant current) up
// to the transition threshold, then the rate decays exponentially (constant
// voltage) towards 100%. A battery is declared AVAILABLE once SoC crosses the
// completion threshold, not at the unreachable asymptote.
const (
	ccTransitionSoC = 80.0
	completionSoC   = 99.0
	depletedSoC     = 20.0
)

// ChargePlan is the analytically computed schedule for one charge: cooldown,
// CC phase, CV phase, and the energy delivered. It is computed once at charge
// start; a single ChargePhaseCompleteEvent fires when it finishes.
type ChargePlan struct {
	StartSoC         float64
	EffectivePowerKW float64
	CooldownSeconds  float64
	CCSeconds        float64
	CVSeconds        float64
	TauSeconds       float64
	EnergyKWh        float64
	Derated          bool
}

// TotalSeconds is the full charger occupancy time, cooldown included.
func (p ChargePlan) TotalSeconds() float64 {
	return p.CooldownSeconds + p.CCSeconds + p.CVSeconds
}

// SoCAt returns the state of charge t seconds after the plan starts
// (cooldown included). Non-decreasing in t.
func (p ChargePlan) SoCAt(t float64) float64 {
	t -= p.CooldownSeconds
	if t <= 0 {
		return p.StartSoC
	}
	if t < p.CCSeconds {
		frac := t / p.CCSeconds
		return p.StartSoC + (ccTransitionSoC-p.StartSoC)*frac
	}
	cvStart := math.Max(p.StartSoC, ccTransitionSoC)
	tv := t - p.CCSeconds
	soc := 100.0 - (100.0-cvStart)*math.Exp(-tv/p.TauSeconds)
	return math.Min(soc, completionSoC)
}

// planCharge computes the CC/CV schedule for charging a battery from soc0 at
// the given effective power. Dispatch never hands over zero headroom, so a
// non-positive or non-finite effective power here is an invariant violation
// and returns NumericDomainError, as does a non-finite phase duration.
func planCharge(stationID, batteryID string, soc0, capacityKWh, effectivePowerKW, cooldownSeconds float64) (ChargePlan, error) {
	if !(effectivePowerKW > 0) || math.IsInf(effectivePowerKW, 0) {
		return ChargePlan{}, &NumericDomainError{
			StationID: stationID,
			BatteryID: batteryID,
			Quantity:  "effective_power_kw",
			Value:     effectivePowerKW,
		}
	}

	plan := ChargePlan{
		StartSoC:         soc0,
		EffectivePowerKW: effectivePowerKW,
		CooldownSeconds:  cooldownSeconds,
	}

	// CC phase: SoC rises linearly until the transition threshold.
	// Time to cross = ΔSoC × capacity / power, converted to seconds.
	if soc0 < ccTransitionSoC {
		ccEnergy := (ccTransitionSoC - soc0) / 100.0 * capacityKWh
		plan.CCSeconds = ccEnergy / effectivePowerKW * 3600.0
	}

	// CV phase: rate decays exponentially with time constant τ chosen so the
	// charge rate is continuous at the CC/CV knee.
	ccRatePctPerSec := 100.0 * effectivePowerKW / (capacityKWh * 3600.0)
	plan.TauSeconds = (100.0 - ccTransitionSoC) / ccRatePctPerSec

	cvStart := math.Max(soc0, ccTransitionSoC)
	if cvStart < completionSoC {
		plan.CVSeconds = plan.TauSeconds * math.Log((100.0-cvStart)/(100.0-completionSoC))
	}

	plan.EnergyKWh = (completionSoC - soc0) / 100.0 * capacityKWh
	if plan.EnergyKWh < 0 {
		plan.EnergyKWh = 0
	}

	total := plan.TotalSeconds()
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return ChargePlan{}, &NumericDomainError{
			StationID: stationID,
			BatteryID: batteryID,
			Quantity:  "charge_duration_seconds",
			Value:     total,
		}
	}
	return plan, nil
}
