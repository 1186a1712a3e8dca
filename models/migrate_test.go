package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestColumnDriftBeforeMigration(t *testing.T) {
	report, err := ColumnDrift(openMemory(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != len(All()) {
		t.Fatalf("tables = %d, want %d", len(report), len(All()))
	}
	for _, table := range report {
		if !table.Missing {
			t.Errorf("%s: Missing = false before migration", table.Table)
		}
	}
}

func TestColumnDriftFindsUnmappedColumns(t *testing.T) {
	db := openMemory(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("ALTER TABLE orders ADD COLUMN legacy_ref text").Error; err != nil {
		t.Fatal(err)
	}

	report, err := ColumnDrift(db)
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range report {
		if table.Missing {
			t.Errorf("%s: Missing after migration", table.Table)
		}
		switch table.Table {
		case "orders":
			if len(table.Unmapped) != 1 || table.Unmapped[0] != "legacy_ref" {
				t.Errorf("orders unmapped = %v, want [legacy_ref]", table.Unmapped)
			}
		default:
			if len(table.Unmapped) != 0 {
				t.Errorf("%s unmapped = %v, want none", table.Table, table.Unmapped)
			}
		}
	}
	if err := LogColumnDrift(db); err != nil {
		t.Fatal(err)
	}
}
