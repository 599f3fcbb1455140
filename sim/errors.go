package sim

import "fmt"

// ConfigError reports structurally invalid input: an empty station list,
// non-positive durations or capacities, a malformed demand curve, or an
// intervention referencing an unknown station. It is always surfaced before
// any event is scheduled; a run never partially executes on bad config.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// NumericDomainError reports a charging or demand computation producing a
// non-finite or out-of-range value. It is a programming-level invariant
// violation: the run aborts and names the offending station/battery rather
// than silently clamping.
type NumericDomainError struct {
	StationID string
	BatteryID string
	Quantity  string
	Value     float64
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("numeric domain violation at station %s (battery %s): %s = %g",
		e.StationID, e.BatteryID, e.Quantity, e.Value)
}
