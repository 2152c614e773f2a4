package alerts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

func eq(name string, status enums.EquipmentStatus, available, maintenance, damaged, min int) models.Equipment {
	return models.Equipment{
		Name:             name,
		Status:           status,
		AvailableStock:   available,
		MaintenanceStock: maintenance,
		DamagedStock:     damaged,
		TotalStock:       available + maintenance + damaged,
		MinStockLevel:    min,
	}
}

func TestDeriveOrdersBySeverityThenName(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	report := Derive([]models.Equipment{
		eq("Wheelbarrow", enums.EquipmentStatusActive, 2, 1, 0, 5),
		eq("Auger", enums.EquipmentStatusActive, 0, 0, 1, 0),
		eq("Boom lift", enums.EquipmentStatusActive, 0, 0, 0, 0),
		eq("Compactor", enums.EquipmentStatusInactive, 0, 3, 3, 10),
		eq("Drill", enums.EquipmentStatusActive, 8, 0, 0, 2),
	}, now)

	got := make([][2]string, 0, len(report.Alerts))
	for _, a := range report.Alerts {
		got = append(got, [2]string{string(a.Type), a.Equipment.Name})
	}
	assert.Equal(t, [][2]string{
		{"OUT_OF_STOCK", "Auger"},
		{"OUT_OF_STOCK", "Boom lift"},
		{"DAMAGED", "Auger"},
		{"LOW_STOCK", "Wheelbarrow"},
		{"MAINTENANCE", "Wheelbarrow"},
	}, got)

	assert.Equal(t, 5, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.ByType[enums.AlertTypeOutOfStock])
	assert.Equal(t, 2, report.Summary.BySeverity[enums.AlertSeverityWarning])
	assert.Equal(t, 1, report.Summary.BySeverity[enums.AlertSeverityInfo])
	assert.Equal(t, now, report.GeneratedAt)
}

func TestDeriveLowStockBoundary(t *testing.T) {
	report := Derive([]models.Equipment{
		eq("At minimum", enums.EquipmentStatusActive, 3, 0, 0, 3),
		eq("Above minimum", enums.EquipmentStatusActive, 4, 0, 0, 3),
	}, time.Now())

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, enums.AlertTypeLowStock, report.Alerts[0].Type)
	assert.Equal(t, "At minimum", report.Alerts[0].Equipment.Name)
	assert.Equal(t, 3, report.Alerts[0].Details["availableStock"])
	assert.Equal(t, 3, report.Alerts[0].Details["minStockLevel"])
}

func TestDeriveAlertShape(t *testing.T) {
	item := eq("Scaffold", enums.EquipmentStatusActive, 0, 2, 1, 1)
	item.ID = uuid.New()
	report := Derive([]models.Equipment{item}, time.Now())

	require.Len(t, report.Alerts, 3)
	byType := map[enums.AlertType]Alert{}
	for _, a := range report.Alerts {
		assert.Equal(t, EquipmentRef{ID: item.ID, Name: "Scaffold"}, a.Equipment)
		byType[a.Type] = a
	}
	out := byType[enums.AlertTypeOutOfStock]
	assert.Equal(t, "OUT_OF_STOCK:"+item.ID.String(), out.ID)
	assert.Equal(t, map[string]any{"availableStock": 0, "totalStock": 3, "minStockLevel": 1}, out.Details)
	assert.Equal(t, map[string]any{"damagedStock": 1}, byType[enums.AlertTypeDamaged].Details)
	assert.Equal(t, map[string]any{"maintenanceStock": 2}, byType[enums.AlertTypeMaintenance].Details)

	again := Derive([]models.Equipment{item}, time.Now())
	assert.Equal(t, report.Alerts[0].ID, again.Alerts[0].ID)

	payload, err := json.Marshal(out)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(payload, &wire))
	for _, key := range []string{"id", "type", "severity", "equipment", "message", "details"} {
		assert.Contains(t, wire, key)
	}
	assert.Equal(t, item.ID.String(), wire["equipment"].(map[string]any)["id"])
}

func TestDeriveEmpty(t *testing.T) {
	report := Derive(nil, time.Now())
	assert.NotNil(t, report.Alerts)
	assert.Zero(t, report.Summary.Total)
}
