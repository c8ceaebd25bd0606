package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haugen-io/outbind/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 15 * time.Second
	backoffFactor  = 2.0
	pingTimeout    = 10 * time.Second
	defaultRetries = 5
)

// NewDatabase connects to the Azure SQL database with retry. A serverless
// Azure SQL instance paused for inactivity can take up to a minute to
// resume, so the first connection attempts are expected to fail with a
// "database is not currently available" error.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.DSN()

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = defaultRetries
	}

	var db *gorm.DB
	var err error
	backoff := initialBackoff

	for attempt := 1; attempt <= retries; attempt++ {
		db, err = open(dsn, cfg)
		if err == nil {
			if attempt > 1 {
				log.Info("Database connection established after retry",
					zap.Int("attempts", attempt),
				)
			}
			return db, nil
		}

		log.Warn("Database connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retries),
			zap.Error(err),
		)

		if attempt < retries {
			time.Sleep(backoff)
			backoff = min(time.Duration(float64(backoff)*backoffFactor), maxBackoff)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, err)
}

func open(dsn string, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// HealthCheckWithStats pings the database and returns connection pool stats
func HealthCheckWithStats(db *gorm.DB) (sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return sql.DBStats{}, err
	}

	return sqlDB.Stats(), nil
}
