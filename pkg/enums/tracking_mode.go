package enums

import "fmt"

// TrackingMode describes whether equipment is counted in bulk or unit by unit.
type TrackingMode string

const (
	TrackingModeSerialized TrackingMode = "SERIALIZED"
	TrackingModeQuantity   TrackingMode = "QUANTITY"
)

var validTrackingModes = []TrackingMode{
	TrackingModeSerialized,
	TrackingModeQuantity,
}

// String implements fmt.Stringer.
func (m TrackingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known TrackingMode.
func (m TrackingMode) IsValid() bool {
	for _, candidate := range validTrackingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseTrackingMode converts raw input into a TrackingMode.
func ParseTrackingMode(value string) (TrackingMode, error) {
	for _, candidate := range validTrackingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking mode %q", value)
}
