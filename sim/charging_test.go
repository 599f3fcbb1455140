package sim

import (
	"errors"
	"math"
	"testing"
)

// Reference charge: 5 kWh battery at 60 kW from the depleted floor.
// CC 20→80 takes 180s, tau is 60s, CV 80→99 takes 60·ln(20) ≈ 179.7s.
func TestPlanCharge_Durations(t *testing.T) {
	plan, err := planCharge("s1", "b1", 20, 5, 60, 60)
	if err != nil {
		t.Fatalf("planCharge: %v", err)
	}

	if math.Abs(plan.CCSeconds-180) > 1e-9 {
		t.Errorf("CCSeconds = %v, want 180", plan.CCSeconds)
	}
	if math.Abs(plan.TauSeconds-60) > 1e-9 {
		t.Errorf("TauSeconds = %v, want 60", plan.TauSeconds)
	}
	wantCV := 60 * math.Log(20)
	if math.Abs(plan.CVSeconds-wantCV) > 1e-9 {
		t.Errorf("CVSeconds = %v, want %v", plan.CVSeconds, wantCV)
	}
	if math.Abs(plan.EnergyKWh-3.95) > 1e-9 {
		t.Errorf("EnergyKWh = %v, want 3.95", plan.EnergyKWh)
	}
	if math.Abs(plan.TotalSeconds()-(60+180+wantCV)) > 1e-9 {
		t.Errorf("TotalSeconds = %v", plan.TotalSeconds())
	}
}

// TestPlanCharge_StartAboveKnee verifies a battery already past the CC
// transition goes straight to the CV phase.
func TestPlanCharge_StartAboveKnee(t *testing.T) {
	plan, err := planCharge("s1", "b1", 90, 5, 60, 0)
	if err != nil {
		t.Fatalf("planCharge: %v", err)
	}
	if plan.CCSeconds != 0 {
		t.Errorf("CCSeconds = %v, want 0", plan.CCSeconds)
	}
	wantCV := 60 * math.Log(10)
	if math.Abs(plan.CVSeconds-wantCV) > 1e-9 {
		t.Errorf("CVSeconds = %v, want %v", plan.CVSeconds, wantCV)
	}
	if math.Abs(plan.EnergyKWh-0.45) > 1e-9 {
		t.Errorf("EnergyKWh = %v, want 0.45", plan.EnergyKWh)
	}
}

// TestChargePlan_SoCAt verifies the trajectory: flat during cooldown, linear
// through CC, exponential through CV, capped at the completion threshold, and
// rate-continuous at the knee.
func TestChargePlan_SoCAt(t *testing.T) {
	plan, err := planCharge("s1", "b1", 20, 5, 60, 60)
	if err != nil {
		t.Fatalf("planCharge: %v", err)
	}

	if got := plan.SoCAt(0); got != 20 {
		t.Errorf("SoCAt(0) = %v, want 20", got)
	}
	if got := plan.SoCAt(60); got != 20 {
		t.Errorf("SoCAt(60) = %v, want 20 (still in cooldown)", got)
	}
	// Halfway through CC: 60 + 90 seconds in.
	if got := plan.SoCAt(150); math.Abs(got-50) > 1e-9 {
		t.Errorf("SoCAt(150) = %v, want 50", got)
	}
	// At the knee.
	if got := plan.SoCAt(60 + 180); math.Abs(got-80) > 1e-9 {
		t.Errorf("SoCAt(knee) = %v, want 80", got)
	}
	// Rate continuity: slope just before and after the knee agree.
	before := (plan.SoCAt(239.5) - plan.SoCAt(238.5))
	after := (plan.SoCAt(241.5) - plan.SoCAt(240.5))
	if math.Abs(before-after) > 0.01 {
		t.Errorf("rate discontinuity at knee: %v vs %v pct/s", before, after)
	}
	// Far past completion: capped.
	if got := plan.SoCAt(1e6); got != completionSoC {
		t.Errorf("SoCAt(inf) = %v, want %v", got, completionSoC)
	}

	// Monotone non-decreasing across the whole trajectory.
	prev := plan.SoCAt(0)
	for ts := 1.0; ts <= plan.TotalSeconds()+100; ts += 1.0 {
		cur := plan.SoCAt(ts)
		if cur < prev {
			t.Fatalf("SoC decreased at t=%v: %v -> %v", ts, prev, cur)
		}
		prev = cur
	}
}

// TestPlanCharge_NumericDomainError verifies non-positive effective power
// aborts instead of clamping.
func TestPlanCharge_NumericDomainError(t *testing.T) {
	for _, power := range []float64{0, -5, math.Inf(1), math.NaN()} {
		_, err := planCharge("s1", "b1", 20, 5, power, 60)
		var domErr *NumericDomainError
		if !errors.As(err, &domErr) {
			t.Errorf("power=%v: expected NumericDomainError, got %v", power, err)
			continue
		}
		if domErr.StationID != "s1" || domErr.BatteryID != "b1" {
			t.Errorf("power=%v: error names %s/%s", power, domErr.StationID, domErr.BatteryID)
		}
	}
}
