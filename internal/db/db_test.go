package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lojf/enrollments/internal/config"
	"github.com/lojf/enrollments/internal/db"
	"github.com/lojf/enrollments/internal/models"
)

func openTestDB(t *testing.T, rec models.Record) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5 * time.Second,
	}
	conn, err := db.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn, rec))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func countRows(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Table("enrollments").Count(&n).Error)
	return n
}

func sampleEnrollment(address string) *models.Enrollment {
	day := models.NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	return &models.Enrollment{
		StudentID:        1,
		StudentName:      "Jane Doe",
		DateOfBirth:      models.NewDate(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)),
		Gender:           "Female",
		Address:          address,
		Email:            "jane@example.com",
		PhoneNumber:      "555-1234",
		CourseID:         10,
		EnrollmentDate:   day,
		RegistrationDate: day,
	}
}

func TestDSN(t *testing.T) {
	dsn := db.DSN(config.DatabaseConfig{Path: "x.db", BusyTimeout: 2 * time.Second})
	assert.Equal(t, "x.db?_journal_mode=WAL&_busy_timeout=2000&_foreign_keys=on", dsn)
}

// WAL is the key SQLite setting for concurrent reads + single-writer throughput.
func TestOpenUsesWAL(t *testing.T) {
	conn := openTestDB(t, &models.BasicEnrollment{})

	var mode string
	require.NoError(t, conn.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}

func TestMigrateAddsAddressCheck(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})

	var ddl string
	require.NoError(t, conn.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'enrollments'").Scan(&ddl).Error)
	assert.Contains(t, strings.ToLower(ddl), "length(address) <= 255")
}

func TestSessionInsertCommit(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})
	store := db.NewStore(conn)

	var ids []uint
	for i := 0; i < 3; i++ {
		sess, err := store.Open(context.Background())
		require.NoError(t, err)
		id, err := sess.Insert(sampleEnrollment("1 Main St"))
		require.NoError(t, err)
		require.NoError(t, sess.Commit())
		require.NoError(t, sess.Close())
		ids = append(ids, id)
	}

	assert.Equal(t, int64(3), countRows(t, conn))
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	var got models.Enrollment
	require.NoError(t, conn.First(&got, ids[0]).Error)
	assert.Equal(t, "Jane Doe", got.StudentName)
	assert.True(t, got.EnrollmentDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestSessionCloseRollsBack(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})
	store := db.NewStore(conn)

	sess, err := store.Open(context.Background())
	require.NoError(t, err)
	_, err = sess.Insert(sampleEnrollment("1 Main St"))
	require.NoError(t, err)
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	assert.Equal(t, int64(0), countRows(t, conn))

	_, err = sess.Insert(sampleEnrollment("1 Main St"))
	assert.ErrorIs(t, err, db.ErrSessionClosed)
	assert.ErrorIs(t, sess.Commit(), db.ErrSessionClosed)
}

func TestInsertRejectsLongAddress(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})
	store := db.NewStore(conn)

	sess, err := store.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Insert(sampleEnrollment(strings.Repeat("a", 256)))
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "constraint")
	require.NoError(t, sess.Close())
	assert.Equal(t, int64(0), countRows(t, conn))

	sess, err = store.Open(context.Background())
	require.NoError(t, err)
	_, err = sess.Insert(sampleEnrollment(strings.Repeat("a", 255)))
	require.NoError(t, err)
	require.NoError(t, sess.Commit())
	assert.Equal(t, int64(1), countRows(t, conn))
}

func TestOpenFailsOnUnreachablePath(t *testing.T) {
	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "missing", "dir", "test.db"),
		BusyTimeout: time.Second,
	}
	conn, err := db.Open(cfg, zap.NewNop())
	if err == nil {
		// go-sqlite3 opens lazily; the first real statement fails instead.
		var sqlDB *sql.DB
		sqlDB, err = conn.DB()
		require.NoError(t, err)
		err = sqlDB.Ping()
	}
	assert.Error(t, err)
}

func TestMigrateRejectsReducedOnFullTable(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})

	err := db.Migrate(conn, &models.BasicEnrollment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrIncompatibleSchema)
	assert.Contains(t, err.Error(), "student_name")
	assert.Contains(t, err.Error(), "address")
}

func TestMigrateRejectsFullOnReducedTableWithRows(t *testing.T) {
	conn := openTestDB(t, &models.BasicEnrollment{})
	store := db.NewStore(conn)

	sess, err := store.Open(context.Background())
	require.NoError(t, err)
	_, err = sess.Insert(&models.BasicEnrollment{StudentID: 2, CourseID: 5,
		EnrollmentDate: models.NewDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	require.NoError(t, sess.Commit())

	assert.Error(t, db.Migrate(conn, &models.Enrollment{}))
}

func TestMigrateIsRepeatable(t *testing.T) {
	conn := openTestDB(t, &models.Enrollment{})
	require.NoError(t, db.Migrate(conn, &models.Enrollment{}))

	reduced := openTestDB(t, &models.BasicEnrollment{})
	require.NoError(t, db.Migrate(reduced, &models.BasicEnrollment{}))
}
