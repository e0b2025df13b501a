package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/storage"
)

// Storage is a SQLite implementation of the storage interface built on gorm.
// Updates are conditional on the stored version, so concurrent writers see
// model.ErrVersionConflict rather than overwriting each other.
type Storage struct {
	db *gorm.DB
}

// New opens (or creates) the database at path and runs migrations
func New(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; serialise access through one connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !session.IsFinished {
			taken, err := codeInUse(tx, session.JoinCode, "")
			if err != nil {
				return err
			}
			if taken {
				return model.ErrJoinCodeTaken
			}
		}
		return tx.Create(recordFromModel(session)).Error
	})
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) GetSessionByJoinCode(ctx context.Context, code model.JoinCode) (*model.Session, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).
		Where("join_code = ? AND is_finished = ?", string(code), false).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) JoinCodeInUse(ctx context.Context, code model.JoinCode) (bool, error) {
	return codeInUse(s.db.WithContext(ctx), code, "")
}

func (s *Storage) UpdateSession(ctx context.Context, session *model.Session) error {
	rec := recordFromModel(session)
	rec.Version = session.Version + 1

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !session.IsFinished {
			taken, err := codeInUse(tx, session.JoinCode, session.ID)
			if err != nil {
				return err
			}
			if taken {
				return model.ErrJoinCodeTaken
			}
		}

		result := tx.Model(&sessionRecord{}).
			Where("id = ? AND version = ?", rec.ID, session.Version).
			Select("*").
			Updates(rec)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}

		var count int64
		if err := tx.Model(&sessionRecord{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrSessionNotFound
		}
		return model.ErrVersionConflict
	})
	if err != nil {
		return err
	}

	session.Version = rec.Version
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	result := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&sessionRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

// codeInUse reports whether an active session other than except holds the code
func codeInUse(db *gorm.DB, code model.JoinCode, except model.SessionID) (bool, error) {
	query := db.Model(&sessionRecord{}).Where("join_code = ? AND is_finished = ?", string(code), false)
	if except != "" {
		query = query.Where("id <> ?", string(except))
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
