package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/linkme-io/linkme-backend/config"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

// ConnConfig holds everything needed to open the primary store.
type ConnConfig struct {
	Type            string // postgres, supa or sqlite
	DSN             string
	ReplicaDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// ConnConfigFromEnv builds a ConnConfig from the environment map.
func ConnConfigFromEnv(c map[string]string) (ConnConfig, error) {
	cc := ConnConfig{
		Type:            strings.ToLower(config.GetString(c, "DB_TYPE", "postgres")),
		ReplicaDSN:      config.GetString(c, "DB_REPLICA_URL", ""),
		MaxOpenConns:    config.GetInt(c, "DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    config.GetInt(c, "DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: time.Duration(config.GetInt(c, "DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		LogLevel:        logger.Warn,
	}

	switch cc.Type {
	case "postgres":
		cc.DSN = config.GetString(c, "DATABASE_URL", "")
		if cc.DSN == "" {
			cc.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
				config.GetString(c, "DB_HOST", "localhost"),
				config.GetString(c, "DB_USER", "postgres"),
				config.GetString(c, "DB_PASSWORD", ""),
				config.GetString(c, "DB_NAME", "linkme"),
				config.GetString(c, "DB_PORT", "5432"),
				config.GetString(c, "DB_SSLMODE", "disable"),
			)
		}
	case "supa":
		cc.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
	case "sqlite":
		cc.DSN = config.GetString(c, "SQLITE_PATH", "file:linkme.db?_foreign_keys=on")
	default:
		return cc, errs.NewConfigError("DB_TYPE", fmt.Errorf("unsupported DB_TYPE %q", cc.Type))
	}
	return cc, nil
}

// Open connects to the configured store, applies pool settings and, when a
// replica is configured, routes event-table reads to it.
func Open(cc ConnConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  cc.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormCfg := &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cc.Type {
	case "sqlite":
		dialector = sqlite.Open(cc.DSN)
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  cc.DSN,
			PreferSimpleProtocol: true,
		})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cc.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cc.Type == "sqlite" {
		// one writer at a time, otherwise concurrent transactions fail with SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cc.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cc.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cc.ConnMaxLifetime)
	}

	if cc.ReplicaDSN != "" && cc.Type != "sqlite" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{DSN: cc.ReplicaDSN, PreferSimpleProtocol: true})},
			Policy:   dbresolver.RandomPolicy{},
		}, &models.ProfileView{}, &models.ProfileVisitor{}).
			SetMaxOpenConns(cc.MaxOpenConns).
			SetConnMaxLifetime(cc.ConnMaxLifetime)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
