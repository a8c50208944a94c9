package api

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/events"
	"github.com/JaimeStill/glimpse/internal/images"
	"github.com/JaimeStill/glimpse/internal/inference"
	"github.com/JaimeStill/glimpse/internal/infrastructure"
	"github.com/JaimeStill/glimpse/internal/labels"
	"github.com/JaimeStill/glimpse/internal/scoring"
	"github.com/JaimeStill/glimpse/pkg/formatting"
)

// Domain holds all domain systems that comprise the API.
// Images and Webhook are nil when their storage or topic is not configured.
type Domain struct {
	Engine    *scoring.Engine
	Labels    *labels.Table
	Inference *inference.Orchestrator
	Images    *images.System
	Webhook   *events.Webhook
}

// NewDomain loads the model and label table and assembles the domain systems.
// The returned Domain owns the model session; call Close when done.
func NewDomain(cfg *config.Config, infra *infrastructure.Infrastructure) (*Domain, error) {
	model, err := scoring.LoadONNX(&cfg.Scoring)
	if err != nil {
		return nil, err
	}

	return newDomain(cfg, infra, model)
}

func newDomain(cfg *config.Config, infra *infrastructure.Infrastructure, model scoring.Model) (*Domain, error) {
	table, err := labels.Load(cfg.Scoring.LabelsPath)
	if err != nil {
		model.Close()
		return nil, err
	}

	deriver, err := cfg.Fingerprint.Deriver()
	if err != nil {
		model.Close()
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	if table.Len() != cfg.Scoring.Classes {
		infra.Logger.Warn(
			"label table size differs from model classes",
			"labels", table.Len(),
			"classes", cfg.Scoring.Classes,
		)
	}

	engine := scoring.New(&cfg.Scoring, model, infra.Logger)

	orch := inference.New(
		cfg.Inference,
		infra.Results,
		engine,
		table,
		infra.Logger,
		inference.WithDeriver(deriver),
		inference.WithRecorder(infra.Metrics),
	)

	d := &Domain{
		Engine:    engine,
		Labels:    table,
		Inference: orch,
	}

	if infra.Storage != nil {
		d.Webhook = events.NewWebhook(infra.Storage, orch, infra.Logger, cfg.API.MaxUploadSizeBytes())
		if infra.Events != nil {
			d.Images = images.New(infra.Storage, infra.Events, infra.Logger)
		}
	}

	logDomain(infra.Logger, cfg, d)
	return d, nil
}

// Close releases the model session.
func (d *Domain) Close() error {
	if err := d.Engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}

func logDomain(logger *slog.Logger, cfg *config.Config, d *Domain) {
	logger.Info(
		"domain initialized",
		"model", cfg.Scoring.ModelPath,
		"labels", d.Labels.Len(),
		"results", cfg.Results.Backend,
		"fingerprint", cfg.Fingerprint.Algorithm,
		"images", d.Images != nil,
		"webhook", d.Webhook != nil,
		"max_upload", formatting.FormatBytes(cfg.API.MaxUploadSizeBytes(), 0),
	)
}
