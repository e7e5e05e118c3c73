package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lojf/enrollments/internal/config"
	"github.com/lojf/enrollments/internal/models"
)

// DSN builds the sqlite connection string: WAL journal, busy timeout in ms.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

// Open connects to the sqlite file. gorm's own logging goes through l.
func Open(cfg config.DatabaseConfig, l *zap.Logger) (*gorm.DB, error) {
	gormLog := logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	conn, err := gorm.Open(sqlite.Open(DSN(cfg)), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return conn, nil
}

// ErrIncompatibleSchema means the existing table was created for another
// variant and has required columns this variant never writes.
var ErrIncompatibleSchema = errors.New("incompatible enrollments table")

// Migrate creates or updates the enrollments table for the given variant.
func Migrate(conn *gorm.DB, rec models.Record) error {
	if err := checkCompatible(conn, rec); err != nil {
		return err
	}
	if err := conn.AutoMigrate(rec); err != nil {
		return fmt.Errorf("auto-migrate %s: %w", rec.TableName(), err)
	}
	return nil
}

type tableColumn struct {
	Name      string
	Notnull   int
	DfltValue *string
	Pk        int
}

// checkCompatible fails when the table already holds NOT NULL columns without
// a default that rec does not map; every insert would be rejected otherwise.
func checkCompatible(conn *gorm.DB, rec models.Record) error {
	if !conn.Migrator().HasTable(rec) {
		return nil
	}

	stmt := &gorm.Statement{DB: conn}
	if err := stmt.Parse(rec); err != nil {
		return fmt.Errorf("parse %s: %w", rec.TableName(), err)
	}

	var cols []tableColumn
	if err := conn.Raw(fmt.Sprintf("PRAGMA table_info(%q)", rec.TableName())).Scan(&cols).Error; err != nil {
		return fmt.Errorf("inspect %s: %w", rec.TableName(), err)
	}

	var orphans []string
	for _, c := range cols {
		if c.Notnull == 0 || c.DfltValue != nil || c.Pk > 0 {
			continue
		}
		if stmt.Schema.LookUpField(c.Name) == nil {
			orphans = append(orphans, c.Name)
		}
	}
	if len(orphans) > 0 {
		return fmt.Errorf("%w: %s has required columns %s not captured by this variant",
			ErrIncompatibleSchema, rec.TableName(), strings.Join(orphans, ", "))
	}
	return nil
}
