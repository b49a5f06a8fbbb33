package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sanable/backend/internal/infrastructure/config"
)

// Database wraps the gorm handle together with pool management.
type Database struct {
	DB *gorm.DB
}

// Connect opens the PostgreSQL pool described by cfg, applies the pool
// limits, and verifies the connection with a ping before returning.
func Connect(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db}
	pool, err := d.sqlDB()
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

func (d *Database) sqlDB() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return pool, nil
}

// Close releases the connection pool.
func (d *Database) Close() error {
	pool, err := d.sqlDB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping reports whether the database is reachable.
func (d *Database) Ping() error {
	pool, err := d.sqlDB()
	if err != nil {
		return err
	}
	return pool.Ping()
}

// PoolStats is the connection pool snapshot reported by the health
// endpoint.
type PoolStats struct {
	MaxOpen      int           `json:"max_open"`
	Open         int           `json:"open"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// Stats snapshots the pool counters.
func (d *Database) Stats() (PoolStats, error) {
	pool, err := d.sqlDB()
	if err != nil {
		return PoolStats{}, err
	}
	s := pool.Stats()
	return PoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}, nil
}
