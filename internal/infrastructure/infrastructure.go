// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, metrics, result store, blob storage,
// event publishing) that domain systems require.
package infrastructure

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/events"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/pkg/database"
	"github.com/JaimeStill/glimpse/pkg/lifecycle"
	"github.com/JaimeStill/glimpse/pkg/metrics"
	"github.com/JaimeStill/glimpse/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless the postgres result backend is selected.
// Storage and Events are nil when their credentials are not configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Metrics   *metrics.Manager
	Database  database.System
	Results   results.Store
	Storage   storage.System
	Events    events.Publisher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-provided logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Metrics:   metrics.NewManager(),
	}

	if cfg.Results.Backend == results.BackendPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	store, err := newResultStore(&cfg.Results, infra.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("results init failed: %w", err)
	}
	infra.Results = store

	blobs, err := storage.New(&cfg.Storage, logger)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info("blob storage not configured, image ingest disabled")
	case err != nil:
		return nil, fmt.Errorf("storage init failed: %w", err)
	default:
		infra.Storage = blobs
	}

	publisher, err := events.NewPublisher(&cfg.Events, logger, nil)
	switch {
	case errors.Is(err, events.ErrNotConfigured):
		logger.Info("event grid topic not configured, upload notifications disabled")
	case err != nil:
		return nil, fmt.Errorf("events init failed: %w", err)
	default:
		infra.Events = publisher
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		i.Lifecycle.Watch("database", i.Database)
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}

func newResultStore(cfg *results.Config, db database.System, logger *slog.Logger) (results.Store, error) {
	switch cfg.Backend {
	case results.BackendCosmos:
		return results.NewCosmos(&cfg.Cosmos, logger)
	case results.BackendPostgres:
		return results.NewPostgres(db.Connection(), logger), nil
	default:
		logger.Warn("using in-memory result store, entries are lost on exit")
		return results.NewMemory(), nil
	}
}
