// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/glimpse/pkg/lifecycle"
)

// ErrNotReady indicates the database could not be reached.
var ErrNotReady = errors.New("database not ready")

// System manages database connections and lifecycle coordination.
type System interface {
	lifecycle.ReadinessChecker
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Ping verifies the connection, returning ErrNotReady on failure.
	Ping(ctx context.Context) error
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New creates a database system with the given configuration.
// It calls sql.Open to validate the DSN and configure pool parameters,
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "url", cfg.Redacted()),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		d.ready.Store(false)
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	d.ready.Store(true)
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup(func() {
		if err := d.Ping(lc.Context()); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}

		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		d.ready.Store(false)
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}
