package enums

// AlertType identifies a derived stock alert.
type AlertType string

const (
	AlertTypeOutOfStock  AlertType = "OUT_OF_STOCK"
	AlertTypeLowStock    AlertType = "LOW_STOCK"
	AlertTypeDamaged     AlertType = "DAMAGED"
	AlertTypeMaintenance AlertType = "MAINTENANCE"
)

// AlertSeverity orders alerts for display.
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityInfo     AlertSeverity = "info"
)

// Rank returns the sort position of the severity; lower ranks sort first.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityCritical:
		return 0
	case AlertSeverityWarning:
		return 1
	case AlertSeverityInfo:
		return 2
	default:
		return 3
	}
}
