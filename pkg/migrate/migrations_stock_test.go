package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/rentflow-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEquipmentMigrationContainsBucketConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_equipment"), []string{
		"CREATE TABLE IF NOT EXISTS equipment",
		"CHECK (available_stock >= 0)",
		"CHECK (reserved_stock >= 0)",
		"CHECK (maintenance_stock >= 0)",
		"CHECK (damaged_stock >= 0)",
		"total_stock = available_stock + reserved_stock + maintenance_stock + damaged_stock",
		"DROP TABLE IF EXISTS equipment",
	})
}

func TestStockMovementsMigrationCascadesAndDedupes(t *testing.T) {
	assertContains(t, readMigration(t, "create_stock_movements"), []string{
		"REFERENCES equipment(id) ON DELETE CASCADE",
		"ON stock_movements (tenant_id, idempotency_key)",
		"WHERE idempotency_key IS NOT NULL",
		"CHECK (type = 'ADJUSTMENT' OR quantity > 0)",
	})
}

func TestUnitMigrationEnforcesSerialAndSingleOpenRental(t *testing.T) {
	assertContains(t, readMigration(t, "create_equipment_units"), []string{
		"idx_equipment_units_tenant_serial",
		"ON equipment_units (tenant_id, serial_number)",
		"WHERE returned_at IS NULL",
		"REFERENCES equipment_units(id) ON DELETE CASCADE",
	})
}

func TestBookingMigrationOrdersDates(t *testing.T) {
	assertContains(t, readMigration(t, "create_bookings"), []string{
		"CHECK (start_date <= end_date)",
		"CHECK (quantity > 0)",
		"WHERE status IN ('PENDING', 'CONFIRMED')",
	})
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"bad-name.sql":                    "-- +goose Up\n-- +goose Down\n",
		"20260101000000_missing_down.sql": "-- +goose Up\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	err := migrate.ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"bad-name.sql", "missing \"-- +goose Down\""} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
