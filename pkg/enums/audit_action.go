package enums

// AuditAction names the mutation recorded in an audit entry.
type AuditAction string

const (
	AuditActionStockMovement     AuditAction = "stock.movement"
	AuditActionStockAdjustment   AuditAction = "stock.adjustment"
	AuditActionEquipmentCreate   AuditAction = "equipment.create"
	AuditActionEquipmentUpdate   AuditAction = "equipment.update"
	AuditActionEquipmentDelete   AuditAction = "equipment.delete"
	AuditActionUnitCreate        AuditAction = "unit.create"
	AuditActionUnitUpdate        AuditAction = "unit.update"
	AuditActionUnitDelete        AuditAction = "unit.delete"
	AuditActionUnitAssign        AuditAction = "unit.assign"
	AuditActionUnitReturn        AuditAction = "unit.return"
	AuditActionBookingReschedule AuditAction = "booking.reschedule"
)
