package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/inference"
	"github.com/JaimeStill/glimpse/pkg/handlers"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
	"github.com/JaimeStill/glimpse/pkg/storage"
)

// Classifier produces a cached classification for raw image bytes.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*inference.Response, error)
}

// Reply is the JSON body returned for a handled event.
type Reply struct {
	ValidationResponse string `json:"validationResponse,omitempty"`
	Container          string `json:"container,omitempty"`
	Blob               string `json:"blob,omitempty"`
	Fingerprint        string `json:"fingerprint,omitempty"`
	Result             string `json:"result,omitempty"`
	Cached             bool   `json:"cached,omitempty"`
}

// Webhook processes Event Grid deliveries. A BlobCreated event downloads
// the referenced blob and runs it through the classifier.
type Webhook struct {
	blobs      storage.System
	classifier Classifier
	logger     *slog.Logger
	maxSize    int64
}

// NewWebhook creates a Webhook reading blobs from the given storage system.
// Blobs larger than maxSize bytes are rejected before classification.
func NewWebhook(blobs storage.System, classifier Classifier, logger *slog.Logger, maxSize int64) *Webhook {
	return &Webhook{
		blobs:      blobs,
		classifier: classifier,
		logger:     logger.With("handler", "events"),
		maxSize:    maxSize,
	}
}

// Routes returns the route group definition for the Event Grid endpoint.
func (wh *Webhook) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/events",
		Tag:         "Events",
		Description: "Event Grid webhook for blob-created notifications",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: wh.Receive, OpenAPI: receiveOp},
		},
	}
}

var receiveOp = &openapi.Operation{
	Summary:     "Receive an Event Grid delivery",
	Description: "Answers the subscription validation handshake and classifies the blob named by a BlobCreated event.",
	Tags:        []string{"Events"},
	RequestBody: &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Event")}},
		},
	},
	Responses: openapi.Errors(
		map[int]*openapi.Response{200: openapi.ResponseJSON("Event handled", "Reply")},
		openapi.BadRequest, openapi.NotFound, openapi.PayloadTooLarge, openapi.UnsupportedMediaType,
		openapi.ServerError, openapi.ServiceUnavailable,
	),
}

// Receive parses a delivery from the request body and responds with its Reply.
func (wh *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	reply, err := wh.Process(r.Context(), r.Body)
	if err != nil {
		handlers.RespondError(w, wh.logger, statusFor(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reply)
}

// Process parses a delivery from body and handles its event.
func (wh *Webhook) Process(ctx context.Context, body io.Reader) (*Reply, error) {
	ev, err := Parse(body)
	if err != nil {
		return nil, err
	}
	return wh.Handle(ctx, ev)
}

// Handle dispatches a single event.
func (wh *Webhook) Handle(ctx context.Context, ev Event) (*Reply, error) {
	switch ev.Kind() {
	case Validation:
		code, err := ev.ValidationCode()
		if err != nil {
			return nil, err
		}
		wh.logger.Info("subscription validated", "event_id", ev.ID)
		return &Reply{ValidationResponse: code}, nil

	case BlobCreated:
		data, err := ev.Blob()
		if err != nil {
			return nil, err
		}
		return wh.classifyBlob(ctx, data)

	default:
		wh.logger.Warn("unhandled event", "event_id", ev.ID, "event_type", ev.EventType)
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.EventType)
	}
}

func (wh *Webhook) classifyBlob(ctx context.Context, data BlobData) (*Reply, error) {
	rc, err := wh.blobs.In(data.Container).Download(ctx, data.Blob)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", data.Container, data.Blob, err)
	}
	defer rc.Close()

	image, err := io.ReadAll(io.LimitReader(rc, wh.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", data.Container, data.Blob, err)
	}
	if int64(len(image)) > wh.maxSize {
		return nil, fmt.Errorf("%w: %s/%s", ErrBlobTooLarge, data.Container, data.Blob)
	}

	resp, err := wh.classifier.Classify(ctx, image)
	if err != nil {
		return nil, err
	}

	wh.logger.Info(
		"blob classified",
		"container", data.Container,
		"blob", data.Blob,
		"fingerprint", resp.Fingerprint,
		"cached", resp.Cached,
	)

	return &Reply{
		Container:   data.Container,
		Blob:        data.Blob,
		Fingerprint: resp.Fingerprint.String(),
		Result:      resp.Value,
		Cached:      resp.Cached,
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrEmptyKey),
		errors.Is(err, storage.ErrInvalidKey):
		return storage.MapHTTPStatus(err)
	case failure.KindOf(err) != failure.Unknown:
		return failure.MapHTTPStatus(err)
	default:
		return MapHTTPStatus(err)
	}
}
