package stock

import (
	"fmt"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// ValidateQuantity checks the quantity carried by a movement. Only ADJUSTMENT is
// signed; every other kind needs a positive quantity.
func ValidateQuantity(kind enums.MovementType, qty int) error {
	if kind.Signed() {
		if qty == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment quantity must be non-zero")
		}
		return nil
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": qty})
	}
	return nil
}

// MovementDelta resolves the bucket delta for a movement against the current buckets.
// DAMAGE draws from available when it can and falls back to reserved.
func MovementDelta(kind enums.MovementType, qty int, current Buckets) (Delta, error) {
	if err := ValidateQuantity(kind, qty); err != nil {
		return Delta{}, err
	}
	switch kind {
	case enums.MovementTypePurchase:
		return Delta{Total: qty, Available: qty}, nil
	case enums.MovementTypeRentalOut:
		return Delta{Available: -qty, Reserved: qty}, nil
	case enums.MovementTypeRentalReturn:
		return Delta{Reserved: -qty, Available: qty}, nil
	case enums.MovementTypeAdjustment:
		return Delta{Total: qty, Available: qty}, nil
	case enums.MovementTypeDamage:
		if current.Available >= qty {
			return Delta{Available: -qty, Damaged: qty}, nil
		}
		if current.Reserved >= qty {
			return Delta{Reserved: -qty, Damaged: qty}, nil
		}
		return Delta{}, InsufficientStock(BucketAvailable, qty, current.Available)
	case enums.MovementTypeLoss:
		return Delta{Available: -qty, Total: -qty}, nil
	case enums.MovementTypeMaintenanceOut:
		return Delta{Available: -qty, Maintenance: qty}, nil
	case enums.MovementTypeMaintenanceIn:
		return Delta{Maintenance: -qty, Available: qty}, nil
	}
	return Delta{}, pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("unknown movement type %q", kind))
}

// ApplyMovement validates and applies a movement in one step.
func ApplyMovement(current Buckets, kind enums.MovementType, qty int) (Buckets, Delta, error) {
	delta, err := MovementDelta(kind, qty, current)
	if err != nil {
		return current, Delta{}, err
	}
	next, err := current.Apply(delta)
	if err != nil {
		return current, Delta{}, err
	}
	return next, delta, nil
}

// BucketForStatus maps a unit status to the bucket that counts it. RETIRED units
// are not counted anywhere.
func BucketForStatus(status enums.UnitStatus) (Bucket, bool) {
	switch status {
	case enums.UnitStatusAvailable:
		return BucketAvailable, true
	case enums.UnitStatusRented:
		return BucketReserved, true
	case enums.UnitStatusMaintenance:
		return BucketMaintenance, true
	case enums.UnitStatusDamaged:
		return BucketDamaged, true
	}
	return "", false
}

// UnitDelta is the contribution of qty units sitting in status.
func UnitDelta(status enums.UnitStatus, qty int) Delta {
	bucket, counted := BucketForStatus(status)
	if !counted {
		return Delta{}
	}
	d := Delta{Total: qty}
	switch bucket {
	case BucketAvailable:
		d.Available = qty
	case BucketReserved:
		d.Reserved = qty
	case BucketMaintenance:
		d.Maintenance = qty
	case BucketDamaged:
		d.Damaged = qty
	}
	return d
}

// BucketDelta is the net change for moving qty units from oldStatus to newStatus.
// Moving into RETIRED releases the old bucket and the total together.
func BucketDelta(oldStatus, newStatus enums.UnitStatus, qty int) Delta {
	if oldStatus == newStatus {
		return Delta{}
	}
	return UnitDelta(newStatus, qty).Add(UnitDelta(oldStatus, qty).Negate())
}
