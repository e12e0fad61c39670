// Package db manages the optional results database and its repositories.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // embedded sqlite driver

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence/sqlstore"
)

// Manager owns the database handle and repository set. A disabled config
// yields a manager whose Repository() returns nil; callers treat that as
// "no persistence".
type Manager struct {
	db    *sqlx.DB
	cfg   config.DatabaseConfig
	repos *persistence.Repository
}

// NewManager opens the configured database, applies the schema, and builds
// the repositories.
func NewManager(ctx context.Context, cfg config.DatabaseConfig) (*Manager, error) {
	if !cfg.Enabled {
		return &Manager{cfg: cfg}, nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required when enabled")
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := sqlstore.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:    db,
		cfg:   cfg,
		repos: sqlstore.NewRepository(db, cfg.QueryTimeout),
	}, nil
}

// Repository returns the repository set, or nil when persistence is off.
func (m *Manager) Repository() *persistence.Repository {
	return m.repos
}

// Healthy pings the database; a disabled manager reports false.
func (m *Manager) Healthy(ctx context.Context) bool {
	if m.db == nil {
		return false
	}
	return m.db.PingContext(ctx) == nil
}

// Close releases the database handle.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
