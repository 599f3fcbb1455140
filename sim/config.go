package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values applied by ApplyDefaults when a field is omitted.
const (
	DefaultBatteryCapacityKWh = 5.0
	DefaultCooldownSeconds    = 60.0
	DefaultArrivalJitterFrac  = 0.1
	DefaultChargeEfficiency   = 1.0

	DefaultEnergyTariffPerKWh    = 8.0
	DefaultDepreciationPerCycle  = 25.0
	DefaultStationOverheadPerDay = 500.0
)

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// StationConfig defines the physical and operational parameters of a single
// swap station.
type StationConfig struct {
	ID               string   `yaml:"id" json:"id"`
	Name             string   `yaml:"name,omitempty" json:"name"`
	Location         Location `yaml:"location" json:"location"`
	TotalBatteries   int      `yaml:"total_batteries" json:"total_batteries"`
	ChargerCount     int      `yaml:"charger_count" json:"charger_count"`
	ChargePowerKW    float64  `yaml:"charge_power_kw" json:"charge_power_kw"`
	SwapTimeSeconds  float64  `yaml:"swap_time_seconds" json:"swap_time_seconds"`
	// BayCount is the swap service capacity. 0 means "same as charger_count",
	// which is the common footprint where bays and chargers share the station.
	BayCount int `yaml:"bay_count,omitempty" json:"bay_count,omitempty"`
	// GridPowerLimitKW caps total simultaneous charging draw.
	// 0 means unconstrained (charger_count × charge_power_kw).
	GridPowerLimitKW float64 `yaml:"grid_power_limit_kw,omitempty" json:"grid_power_limit_kw,omitempty"`
	// CooldownSeconds is the thermal settling interval before charging starts.
	// nil defaults to 60s; an explicit 0 disables cooldown.
	CooldownSeconds *float64 `yaml:"cooldown_seconds,omitempty" json:"cooldown_seconds,omitempty"`
	// QueueCapacity bounds the vehicle admission queue. 0 means unbounded.
	QueueCapacity int `yaml:"queue_capacity,omitempty" json:"queue_capacity,omitempty"`
	// DemandMultiplier scales this station's arrival rate. 0 defaults to 1.0.
	DemandMultiplier float64 `yaml:"demand_multiplier,omitempty" json:"demand_multiplier,omitempty"`
}

// Bays returns the effective swap service capacity.
func (s *StationConfig) Bays() int {
	if s.BayCount > 0 {
		return s.BayCount
	}
	return s.ChargerCount
}

// GridLimit returns the effective grid power cap in kW.
func (s *StationConfig) GridLimit() float64 {
	if s.GridPowerLimitKW > 0 {
		return s.GridPowerLimitKW
	}
	return float64(s.ChargerCount) * s.ChargePowerKW
}

// Cooldown returns the effective cooldown interval in seconds.
func (s *StationConfig) Cooldown() float64 {
	if s.CooldownSeconds == nil {
		return DefaultCooldownSeconds
	}
	return *s.CooldownSeconds
}

// StationDemand returns the per-station demand multiplier.
func (s *StationConfig) StationDemand() float64 {
	if s.DemandMultiplier > 0 {
		return s.DemandMultiplier
	}
	return 1.0
}

// DemandCurve is the hourly arrival-rate profile shared by all stations.
type DemandCurve struct {
	// BaseArrivalsPerHour holds 24 non-negative rates, one per hour of day.
	BaseArrivalsPerHour []float64 `yaml:"base_arrivals_per_hour" json:"base_arrivals_per_hour"`
	// HourMultipliers are optional per-hour overrides (e.g. festival peaks).
	HourMultipliers map[int]float64 `yaml:"hour_multipliers,omitempty" json:"hour_multipliers,omitempty"`
}

// Rate returns the base arrival rate (arrivals/hour) for an hour of day.
func (c *DemandCurve) Rate(hour int) float64 {
	base := c.BaseArrivalsPerHour[hour%24]
	if m, ok := c.HourMultipliers[hour%24]; ok {
		return base * m
	}
	return base
}

// CalibrationParams tune the stochastic model to match observed behavior.
type CalibrationParams struct {
	// ArrivalJitterFrac is the ± fraction applied to each inter-arrival gap.
	ArrivalJitterFrac float64 `yaml:"arrival_jitter_frac" json:"arrival_jitter_frac"`
	// ChargeEfficiency scales delivered charging power (thermal losses).
	ChargeEfficiency float64 `yaml:"charge_efficiency" json:"charge_efficiency"`
}

// CostModel holds the opex unit costs.
type CostModel struct {
	EnergyTariffPerKWh    float64 `yaml:"energy_tariff_per_kwh" json:"energy_tariff_per_kwh"`
	DepreciationPerCycle  float64 `yaml:"depreciation_per_cycle" json:"depreciation_per_cycle"`
	StationOverheadPerDay float64 `yaml:"station_overhead_per_day" json:"station_overhead_per_day"`
}

// InterventionType tags the Intervention variant.
type InterventionType string

const (
	InterventionDemandMultiplier InterventionType = "DEMAND_MULTIPLIER"
	InterventionModifyChargers   InterventionType = "MODIFY_CHARGERS"
	InterventionModifyInventory  InterventionType = "MODIFY_INVENTORY"
	InterventionAddStation       InterventionType = "ADD_STATION"
	InterventionRemoveStation    InterventionType = "REMOVE_STATION"
)

// Intervention is a declarative change applied to a baseline configuration to
// construct a scenario. Which fields are meaningful depends on Type:
//
//	DEMAND_MULTIPLIER: Multiplier, optional TargetStationID (empty = global)
//	MODIFY_CHARGERS:   TargetStationID, NewCount
//	MODIFY_INVENTORY:  TargetStationID, Delta
//	ADD_STATION:       Station
//	REMOVE_STATION:    TargetStationID
type Intervention struct {
	Type            InterventionType `yaml:"type" json:"type"`
	TargetStationID string           `yaml:"target_station_id,omitempty" json:"target_station_id,omitempty"`
	Multiplier      float64          `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	NewCount        int              `yaml:"new_count,omitempty" json:"new_count,omitempty"`
	Delta           int              `yaml:"delta,omitempty" json:"delta,omitempty"`
	Station         *StationConfig   `yaml:"station,omitempty" json:"station,omitempty"`
}

// ScenarioConfig describes a what-if experiment on top of the baseline.
type ScenarioConfig struct {
	Name          string          `yaml:"name" json:"name"`
	Description   string          `yaml:"description,omitempty" json:"description,omitempty"`
	Interventions []Intervention  `yaml:"interventions" json:"interventions"`
	// DemandAdjustments multiply specific hours' rates in the scenario run.
	DemandAdjustments map[int]float64 `yaml:"demand_adjustments,omitempty" json:"demand_adjustments,omitempty"`
}

// SimulationConfig is the immutable per-run input.
type SimulationConfig struct {
	DurationDays       int               `yaml:"duration_days" json:"duration_days"`
	RandomSeed         int64             `yaml:"random_seed" json:"random_seed"`
	DemandMultiplier   float64           `yaml:"demand_multiplier" json:"demand_multiplier"`
	BatteryCapacityKWh float64           `yaml:"battery_capacity_kwh" json:"battery_capacity_kwh"`
	Costs              CostModel         `yaml:"costs" json:"costs"`
	Calibration        CalibrationParams `yaml:"calibration" json:"calibration"`
	Stations           []StationConfig   `yaml:"stations" json:"stations"`
	DemandCurve        DemandCurve       `yaml:"demand_curve" json:"demand_curve"`
	Scenario           *ScenarioConfig   `yaml:"scenario,omitempty" json:"scenario,omitempty"`
}

// Horizon returns the simulated horizon in seconds.
func (c *SimulationConfig) Horizon() float64 {
	return float64(c.DurationDays) * 86400.0
}

// ApplyDefaults fills omitted fields with their documented defaults.
// Idempotent — calling on an already-defaulted config is safe.
func (c *SimulationConfig) ApplyDefaults() {
	if c.DurationDays == 0 {
		c.DurationDays = 1
	}
	if c.DemandMultiplier == 0 {
		c.DemandMultiplier = 1.0
	}
	if c.BatteryCapacityKWh == 0 {
		c.BatteryCapacityKWh = DefaultBatteryCapacityKWh
	}
	if c.Costs.EnergyTariffPerKWh == 0 {
		c.Costs.EnergyTariffPerKWh = DefaultEnergyTariffPerKWh
	}
	if c.Costs.DepreciationPerCycle == 0 {
		c.Costs.DepreciationPerCycle = DefaultDepreciationPerCycle
	}
	if c.Costs.StationOverheadPerDay == 0 {
		c.Costs.StationOverheadPerDay = DefaultStationOverheadPerDay
	}
	if c.Calibration.ArrivalJitterFrac == 0 {
		c.Calibration.ArrivalJitterFrac = DefaultArrivalJitterFrac
	}
	if c.Calibration.ChargeEfficiency == 0 {
		c.Calibration.ChargeEfficiency = DefaultChargeEfficiency
	}
	if len(c.DemandCurve.BaseArrivalsPerHour) == 0 {
		c.DemandCurve.BaseArrivalsPerHour = make([]float64, 24)
		for i := range c.DemandCurve.BaseArrivalsPerHour {
			c.DemandCurve.BaseArrivalsPerHour[i] = 10.0
		}
	}
	for i := range c.Stations {
		if c.Stations[i].Name == "" {
			c.Stations[i].Name = "Station " + c.Stations[i].ID
		}
	}
}

// Validate checks the configuration tree once, before construction. The
// kernel never re-validates mid-run.
func (c *SimulationConfig) Validate() error {
	if c.DurationDays <= 0 {
		return configErrorf("duration_days must be positive, got %d", c.DurationDays)
	}
	if c.DemandMultiplier <= 0 {
		return configErrorf("demand_multiplier must be positive, got %g", c.DemandMultiplier)
	}
	if c.BatteryCapacityKWh <= 0 {
		return configErrorf("battery_capacity_kwh must be positive, got %g", c.BatteryCapacityKWh)
	}
	if c.Calibration.ArrivalJitterFrac < 0 || c.Calibration.ArrivalJitterFrac > 0.5 {
		return configErrorf("arrival_jitter_frac must be in [0, 0.5], got %g", c.Calibration.ArrivalJitterFrac)
	}
	if c.Calibration.ChargeEfficiency <= 0 || c.Calibration.ChargeEfficiency > 1 {
		return configErrorf("charge_efficiency must be in (0, 1], got %g", c.Calibration.ChargeEfficiency)
	}
	if c.Costs.EnergyTariffPerKWh < 0 || c.Costs.DepreciationPerCycle < 0 || c.Costs.StationOverheadPerDay < 0 {
		return configErrorf("cost model values must be non-negative")
	}

	if len(c.Stations) == 0 {
		return configErrorf("station list must not be empty")
	}
	seen := make(map[string]bool, len(c.Stations))
	for i := range c.Stations {
		st := &c.Stations[i]
		if err := validateStation(st); err != nil {
			return err
		}
		if seen[st.ID] {
			return configErrorf("duplicate station id %q", st.ID)
		}
		seen[st.ID] = true
	}

	if len(c.DemandCurve.BaseArrivalsPerHour) != 24 {
		return configErrorf("demand curve must have 24 hourly rates, got %d", len(c.DemandCurve.BaseArrivalsPerHour))
	}
	for h, rate := range c.DemandCurve.BaseArrivalsPerHour {
		if rate < 0 {
			return configErrorf("demand curve hour %d has negative rate %g", h, rate)
		}
	}
	for h, m := range c.DemandCurve.HourMultipliers {
		if h < 0 || h > 23 {
			return configErrorf("demand curve multiplier hour %d out of range", h)
		}
		if m < 0 {
			return configErrorf("demand curve multiplier for hour %d is negative", h)
		}
	}

	if c.Scenario != nil {
		for i, iv := range c.Scenario.Interventions {
			if err := validateIntervention(i, iv); err != nil {
				return err
			}
		}
		for h, m := range c.Scenario.DemandAdjustments {
			if h < 0 || h > 23 {
				return configErrorf("scenario demand adjustment hour %d out of range", h)
			}
			if m < 0 {
				return configErrorf("scenario demand adjustment for hour %d is negative", h)
			}
		}
	}
	return nil
}

func validateStation(st *StationConfig) error {
	if st.ID == "" {
		return configErrorf("station id must not be empty")
	}
	if st.TotalBatteries < 1 {
		return configErrorf("station %s: total_batteries must be >= 1, got %d", st.ID, st.TotalBatteries)
	}
	if st.ChargerCount < 1 {
		return configErrorf("station %s: charger_count must be >= 1, got %d", st.ID, st.ChargerCount)
	}
	if st.ChargePowerKW <= 0 {
		return configErrorf("station %s: charge_power_kw must be positive, got %g", st.ID, st.ChargePowerKW)
	}
	if st.SwapTimeSeconds <= 0 {
		return configErrorf("station %s: swap_time_seconds must be positive, got %g", st.ID, st.SwapTimeSeconds)
	}
	if st.BayCount < 0 {
		return configErrorf("station %s: bay_count must not be negative", st.ID)
	}
	if st.GridPowerLimitKW < 0 {
		return configErrorf("station %s: grid_power_limit_kw must not be negative", st.ID)
	}
	if st.CooldownSeconds != nil && *st.CooldownSeconds < 0 {
		return configErrorf("station %s: cooldown_seconds must not be negative", st.ID)
	}
	if st.QueueCapacity < 0 {
		return configErrorf("station %s: queue_capacity must not be negative", st.ID)
	}
	if st.DemandMultiplier < 0 {
		return configErrorf("station %s: demand_multiplier must not be negative", st.ID)
	}
	return nil
}

func validateIntervention(idx int, iv Intervention) error {
	switch iv.Type {
	case InterventionDemandMultiplier:
		if iv.Multiplier <= 0 {
			return configErrorf("intervention %d: DEMAND_MULTIPLIER requires a positive multiplier", idx)
		}
	case InterventionModifyChargers:
		if iv.TargetStationID == "" {
			return configErrorf("intervention %d: MODIFY_CHARGERS requires target_station_id", idx)
		}
		if iv.NewCount < 1 {
			return configErrorf("intervention %d: MODIFY_CHARGERS requires new_count >= 1", idx)
		}
	case InterventionModifyInventory:
		if iv.TargetStationID == "" {
			return configErrorf("intervention %d: MODIFY_INVENTORY requires target_station_id", idx)
		}
		if iv.Delta == 0 {
			return configErrorf("intervention %d: MODIFY_INVENTORY requires a non-zero delta", idx)
		}
	case InterventionAddStation:
		if iv.Station == nil {
			return configErrorf("intervention %d: ADD_STATION requires a station definition", idx)
		}
		if err := validateStation(iv.Station); err != nil {
			return err
		}
	case InterventionRemoveStation:
		if iv.TargetStationID == "" {
			return configErrorf("intervention %d: REMOVE_STATION requires target_station_id", idx)
		}
	default:
		return configErrorf("intervention %d: unknown type %q", idx, iv.Type)
	}
	return nil
}

// Clone deep-copies the configuration. Interventions are applied to clones
// only; the baseline config object is never mutated.
func (c *SimulationConfig) Clone() *SimulationConfig {
	cp := *c
	cp.Stations = make([]StationConfig, len(c.Stations))
	copy(cp.Stations, c.Stations)
	for i := range cp.Stations {
		if c.Stations[i].CooldownSeconds != nil {
			v := *c.Stations[i].CooldownSeconds
			cp.Stations[i].CooldownSeconds = &v
		}
	}
	cp.DemandCurve.BaseArrivalsPerHour = append([]float64(nil), c.DemandCurve.BaseArrivalsPerHour...)
	if c.DemandCurve.HourMultipliers != nil {
		cp.DemandCurve.HourMultipliers = make(map[int]float64, len(c.DemandCurve.HourMultipliers))
		for k, v := range c.DemandCurve.HourMultipliers {
			cp.DemandCurve.HourMultipliers[k] = v
		}
	}
	if c.Scenario != nil {
		sc := *c.Scenario
		sc.Interventions = make([]Intervention, len(c.Scenario.Interventions))
		copy(sc.Interventions, c.Scenario.Interventions)
		for i := range sc.Interventions {
			if c.Scenario.Interventions[i].Station != nil {
				stCopy := *c.Scenario.Interventions[i].Station
				sc.Interventions[i].Station = &stCopy
			}
		}
		if c.Scenario.DemandAdjustments != nil {
			sc.DemandAdjustments = make(map[int]float64, len(c.Scenario.DemandAdjustments))
			for k, v := range c.Scenario.DemandAdjustments {
				sc.DemandAdjustments[k] = v
			}
		}
		cp.Scenario = &sc
	}
	return &cp
}

// LoadConfig reads a SimulationConfig from a YAML file, applies defaults, and
// validates it.
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
