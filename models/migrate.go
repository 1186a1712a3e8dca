package models

import (
	"fmt"
	stdlog "log"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// All returns every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&SocialLink{},
		&ProfileView{},
		&ProfileVisitor{},
		&Order{},
	}
}

// AutoMigrate creates or updates every table, index and foreign key.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

// GenerateModels migrates the schema with verbose SQL logging, writes typed
// query helpers to ./generated and logs any column drift afterwards.
func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	verbose := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{LogLevel: logger.Info, Colorful: true},
	)
	db = db.Session(&gorm.Session{Logger: verbose, SkipDefaultTransaction: true})

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	log.Info().Msg("migrating models")
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	g.Execute()
	log.Info().Str("out", "./generated").Msg("query helpers generated")

	return LogColumnDrift(db)
}

// TableDrift lists the columns of one table that no model field maps.
// Missing is set when the table has not been created yet.
type TableDrift struct {
	Table    string
	Missing  bool
	Unmapped []string
}

// ColumnDrift compares the live schema with the models.
func ColumnDrift(db *gorm.DB) ([]TableDrift, error) {
	migrator := db.Migrator()
	report := make([]TableDrift, 0, len(All()))

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		drift := TableDrift{Table: stmt.Schema.Table}

		if !migrator.HasTable(model) {
			drift.Missing = true
			report = append(report, drift)
			continue
		}

		columns, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", drift.Table, err)
		}
		for _, col := range columns {
			if _, ok := stmt.Schema.FieldsByDBName[col.Name()]; !ok {
				drift.Unmapped = append(drift.Unmapped, col.Name())
			}
		}
		report = append(report, drift)
	}
	return report, nil
}

// LogColumnDrift writes the ColumnDrift report to the log.
func LogColumnDrift(db *gorm.DB) error {
	report, err := ColumnDrift(db)
	if err != nil {
		return err
	}

	total := 0
	for _, t := range report {
		switch {
		case t.Missing:
			log.Warn().Str("table", t.Table).Msg("table does not exist yet")
		case len(t.Unmapped) > 0:
			log.Warn().Str("table", t.Table).Strs("columns", t.Unmapped).Msg("columns not mapped by the model")
		default:
			log.Info().Str("table", t.Table).Msg("all columns mapped")
		}
		total += len(t.Unmapped)
	}
	log.Info().Int("unmapped", total).Msg("column drift report complete")
	return nil
}
