package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lojf/enrollments/internal/models"
)

var ErrSessionClosed = errors.New("session already committed or closed")

// Store hands out per-request sessions.
type Store interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a unit of work. Close must be called on every path; it rolls
// back anything not committed and is a no-op after Commit.
type Session interface {
	Insert(rec models.Record) (uint, error)
	Commit() error
	Close() error
}

type GormStore struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *GormStore {
	return &GormStore{conn: conn}
}

func (s *GormStore) Open(ctx context.Context) (Session, error) {
	tx := s.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin: %w", tx.Error)
	}
	return &gormSession{tx: tx}, nil
}

type gormSession struct {
	tx   *gorm.DB
	done bool
}

// Insert writes rec and returns the id sqlite assigned to it.
func (s *gormSession) Insert(rec models.Record) (uint, error) {
	if s.done {
		return 0, ErrSessionClosed
	}
	if err := s.tx.Create(rec).Error; err != nil {
		return 0, fmt.Errorf("insert %s: %w", rec.TableName(), err)
	}
	return rec.PrimaryKey(), nil
}

func (s *gormSession) Commit() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	if err := s.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *gormSession) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.tx.Rollback().Error
}
