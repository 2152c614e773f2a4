package enums

import "fmt"

// UnitStatus maps to the equipment_unit_status enum in Postgres.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusRented      UnitStatus = "RENTED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusDamaged     UnitStatus = "DAMAGED"
	UnitStatusRetired     UnitStatus = "RETIRED"
)

var validUnitStatuses = []UnitStatus{
	UnitStatusAvailable,
	UnitStatusRented,
	UnitStatusMaintenance,
	UnitStatusDamaged,
	UnitStatusRetired,
}

// String implements fmt.Stringer.
func (s UnitStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UnitStatus.
func (s UnitStatus) IsValid() bool {
	for _, candidate := range validUnitStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUnitStatus converts raw input into a UnitStatus.
func ParseUnitStatus(value string) (UnitStatus, error) {
	for _, candidate := range validUnitStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit status %q", value)
}
