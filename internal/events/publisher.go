package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

const (
	moduleName    = "glimpse/events"
	moduleVersion = "v0.1.0"
	apiVersion    = "2018-01-01"
	keyHeader     = "aeg-sas-key"
)

// ErrNotConfigured indicates no topic endpoint or key was configured.
var ErrNotConfigured = errors.New("event grid topic not configured")

// Publisher sends events to an Event Grid topic.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type topic struct {
	pipeline runtime.Pipeline
	endpoint string
	logger   *slog.Logger
}

// NewPublisher creates a Publisher for the topic in cfg using shared key auth.
// opts may be nil; tests use it to inject a transport.
func NewPublisher(cfg *Config, logger *slog.Logger, opts *policy.ClientOptions) (Publisher, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	cred := azcore.NewKeyCredential(cfg.TopicKey)
	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{runtime.NewKeyCredentialPolicy(cred, keyHeader, nil)},
	}, opts)

	return &topic{
		pipeline: pl,
		endpoint: cfg.EndpointURL(),
		logger:   logger.With("system", "events"),
	}, nil
}

func (t *topic) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	req, err := runtime.NewRequest(ctx, http.MethodPost, t.endpoint)
	if err != nil {
		return fmt.Errorf("create publish request: %w", err)
	}

	q := req.Raw().URL.Query()
	q.Set("api-version", apiVersion)
	req.Raw().URL.RawQuery = q.Encode()

	if err := runtime.MarshalAsJSON(req, events); err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	resp, err := t.pipeline.Do(req)
	if err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	defer resp.Body.Close()

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return fmt.Errorf("publish events: %w", runtime.NewResponseError(resp))
	}

	t.logger.Info("events published", "count", len(events), "endpoint", t.endpoint)
	return nil
}
