package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteConfig holds configuration for the SQLite-backed store.
type SQLiteConfig struct {
	// Path is the database file. ":memory:" gives a throwaway database.
	Path string
	// MaxEntries caps the number of rows; the oldest rows are pruned on write.
	// Zero disables the cap.
	MaxEntries int
}

// storedEntry is the row layout of the cache table.
type storedEntry struct {
	CacheKey  string    `gorm:"primaryKey;column:cache_key"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"index"`
}

func (storedEntry) TableName() string { return "cache_entries" }

// SQLiteStore is a durable Store kept in a single local SQLite file.
type SQLiteStore struct {
	db         *gorm.DB
	maxEntries int
	logger     zerolog.Logger

	// pruneMu serialises the count-then-delete sequence.
	pruneMu sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the SQLite database at cfg.Path.
func NewSQLiteStore(cfg *SQLiteConfig, logger zerolog.Logger) (*SQLiteStore, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and matches
	// SQLite's single-writer model.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&storedEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate cache table: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Int("max_entries", cfg.MaxEntries).Msg("SQLiteStore initialized.")

	return &SQLiteStore{
		db:         db,
		maxEntries: cfg.MaxEntries,
		logger:     logger.With().Str("component", "SQLiteStore").Logger(),
	}, nil
}

// Get retrieves the raw value under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row storedEntry
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite get for %s: %w", key, err)
	}
	return row.Value, nil
}

// Set upserts value under key and prunes the oldest rows if over capacity.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	row := storedEntry{CacheKey: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlite set for %s: %w", key, err)
	}
	if s.maxEntries > 0 {
		if err := s.prune(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to prune cache table.")
		}
	}
	return nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&storedEntry{}).Error; err != nil {
		return fmt.Errorf("sqlite delete for %s: %w", key, err)
	}
	return nil
}

// prune deletes the oldest rows beyond maxEntries.
func (s *SQLiteStore) prune(ctx context.Context) error {
	s.pruneMu.Lock()
	defer s.pruneMu.Unlock()

	var count int64
	if err := s.db.WithContext(ctx).Model(&storedEntry{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - s.maxEntries
	if excess <= 0 {
		return nil
	}
	oldest := s.db.Model(&storedEntry{}).Select("cache_key").Order("updated_at ASC").Limit(excess)
	if err := s.db.WithContext(ctx).Where("cache_key IN (?)", oldest).Delete(&storedEntry{}).Error; err != nil {
		return err
	}
	s.logger.Debug().Int("pruned", excess).Msg("Pruned oldest cache rows.")
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
