package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carmarket/internal/config"
	"carmarket/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KVEntry is one stored document.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (KVEntry) TableName() string { return "kv_entries" }

// gormLogger routes gorm logging through slog and ignores ErrRecordNotFound.
type gormLogger struct {
	logger *slog.Logger
	config logger.Config
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.config.LogLevel = level
	return &next
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.config.SlowThreshold && l.config.SlowThreshold != 0 && l.config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// OpenDB opens a gorm connection for the sqlite or postgres driver.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: &gormLogger{
			logger: observability.Logger,
			config: logger.Config{
				SlowThreshold: 200 * time.Millisecond,
				LogLevel:      logger.Warn,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if driver == config.DriverSQLite {
			// One connection keeps ":memory:" databases shared and serialises writers.
			sqlDB.SetMaxOpenConns(1)
		} else {
			sqlDB.SetMaxOpenConns(25)
			sqlDB.SetMaxIdleConns(5)
			sqlDB.SetConnMaxLifetime(5 * time.Minute)
		}
	}

	observability.Logger.Info("Database connected successfully", slog.String("driver", driver))
	return db, nil
}

// SQLStore keeps one kv_entries row per document.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps db. Single-statement writes need no wrapping transaction.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db.Session(&gorm.Session{SkipDefaultTransaction: true})}
}

// Migrate creates the kv_entries table when missing.
func (s *SQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where(keyIs(key)).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(keyIs(key)).Delete(&KVEntry{}).Error
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
