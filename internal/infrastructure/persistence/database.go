package persistence

import (
	"fmt"
	"time"

	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates a new PostgreSQL connection with the given configuration.
// SQL is logged through zap at the level derived from logLevel.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(zapLogger, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// NewSQLiteDatabase opens a SQLite database and migrates the storefront
// schema. It backs local runs without PostgreSQL and the repository tests;
// use ":memory:" for a throwaway database.
func NewSQLiteDatabase(dsn string, zapLogger *zap.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(zapLogger, gormlogger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// a :memory: database lives only as long as its connection
	if dsn == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return &Database{DB: db}, nil
}

func gormConfig(zapLogger *zap.Logger, level gormlogger.LogLevel) *gorm.Config {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
