package enums

import "fmt"

// MovementType maps to the stock_movement_type enum in Postgres.
type MovementType string

const (
	MovementTypePurchase       MovementType = "PURCHASE"
	MovementTypeRentalOut      MovementType = "RENTAL_OUT"
	MovementTypeRentalReturn   MovementType = "RENTAL_RETURN"
	MovementTypeAdjustment     MovementType = "ADJUSTMENT"
	MovementTypeDamage         MovementType = "DAMAGE"
	MovementTypeLoss           MovementType = "LOSS"
	MovementTypeMaintenanceOut MovementType = "MAINTENANCE_OUT"
	MovementTypeMaintenanceIn  MovementType = "MAINTENANCE_IN"
)

var validMovementTypes = []MovementType{
	MovementTypePurchase,
	MovementTypeRentalOut,
	MovementTypeRentalReturn,
	MovementTypeAdjustment,
	MovementTypeDamage,
	MovementTypeLoss,
	MovementTypeMaintenanceOut,
	MovementTypeMaintenanceIn,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is one of the eight ledger movement kinds.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Signed reports whether the movement carries a signed quantity.
func (m MovementType) Signed() bool {
	return m == MovementTypeAdjustment
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
