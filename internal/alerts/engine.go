package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// EquipmentRef names the equipment an alert is about.
type EquipmentRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Alert is one derived stock condition on one equipment. ID is stable across
// recomputations: "<type>:<equipmentId>".
type Alert struct {
	ID        string              `json:"id"`
	Type      enums.AlertType     `json:"type"`
	Severity  enums.AlertSeverity `json:"severity"`
	Equipment EquipmentRef        `json:"equipment"`
	Message   string              `json:"message"`
	Details   map[string]any      `json:"details"`
}

func newAlert(eq *models.Equipment, alertType enums.AlertType, severity enums.AlertSeverity, message string, details map[string]any) Alert {
	return Alert{
		ID:        fmt.Sprintf("%s:%s", alertType, eq.ID),
		Type:      alertType,
		Severity:  severity,
		Equipment: EquipmentRef{ID: eq.ID, Name: eq.Name},
		Message:   message,
		Details:   details,
	}
}

// Summary counts alerts per type and per severity.
type Summary struct {
	Total      int                         `json:"total"`
	ByType     map[enums.AlertType]int     `json:"byType"`
	BySeverity map[enums.AlertSeverity]int `json:"bySeverity"`
}

// Report is the cached alert payload of a tenant.
type Report struct {
	Alerts      []Alert   `json:"alerts"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Derive builds the alert report from the aggregates. INACTIVE equipment is
// skipped. Alerts sort critical, warning, info, then by equipment name.
func Derive(equipment []models.Equipment, now time.Time) Report {
	alerts := make([]Alert, 0)
	for i := range equipment {
		eq := &equipment[i]
		if eq.Status == enums.EquipmentStatusInactive {
			continue
		}

		switch {
		case eq.AvailableStock == 0:
			alerts = append(alerts, newAlert(eq, enums.AlertTypeOutOfStock, enums.AlertSeverityCritical,
				fmt.Sprintf("%s is out of stock", eq.Name),
				map[string]any{"availableStock": 0, "totalStock": eq.TotalStock, "minStockLevel": eq.MinStockLevel}))
		case eq.AvailableStock <= eq.MinStockLevel:
			alerts = append(alerts, newAlert(eq, enums.AlertTypeLowStock, enums.AlertSeverityWarning,
				fmt.Sprintf("%s has %d available, at or below the minimum of %d", eq.Name, eq.AvailableStock, eq.MinStockLevel),
				map[string]any{"availableStock": eq.AvailableStock, "totalStock": eq.TotalStock, "minStockLevel": eq.MinStockLevel}))
		}
		if eq.DamagedStock > 0 {
			alerts = append(alerts, newAlert(eq, enums.AlertTypeDamaged, enums.AlertSeverityWarning,
				fmt.Sprintf("%s has %d damaged", eq.Name, eq.DamagedStock),
				map[string]any{"damagedStock": eq.DamagedStock}))
		}
		if eq.MaintenanceStock > 0 {
			alerts = append(alerts, newAlert(eq, enums.AlertTypeMaintenance, enums.AlertSeverityInfo,
				fmt.Sprintf("%s has %d in maintenance", eq.Name, eq.MaintenanceStock),
				map[string]any{"maintenanceStock": eq.MaintenanceStock}))
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].Equipment.Name < alerts[j].Equipment.Name
	})

	summary := Summary{
		Total:      len(alerts),
		ByType:     map[enums.AlertType]int{},
		BySeverity: map[enums.AlertSeverity]int{},
	}
	for _, a := range alerts {
		summary.ByType[a.Type]++
		summary.BySeverity[a.Severity]++
	}
	return Report{Alerts: alerts, Summary: summary, GeneratedAt: now.UTC()}
}
