package inference

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/pkg/handlers"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

// Cache outcome values reported in the X-Cache response header.
const (
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheWriteFailed = "write-failed"
)

// ErrPayloadTooLarge indicates the request body exceeded the upload limit.
var ErrPayloadTooLarge = errors.New("image exceeds maximum upload size")

// Handler exposes the orchestrator over HTTP.
type Handler struct {
	orch          *Orchestrator
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler that accepts images up to maxUploadSize bytes.
func NewHandler(orch *Orchestrator, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		orch:          orch,
		logger:        logger.With("handler", "classify"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/classify",
		Tag:         "Classify",
		Description: "Cache-first image classification",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Classify, OpenAPI: classifyOp},
		},
	}
}

var classifyOp = &openapi.Operation{
	Summary:     "Classify an image",
	Description: "Returns the cached classification for the image bytes, computing and storing it on a miss. X-Cache reports hit, miss, or write-failed.",
	Tags:        []string{"Classify"},
	RequestBody: openapi.RequestBodyBinary("Raw image bytes in any supported format"),
	Responses: openapi.Errors(
		map[int]*openapi.Response{200: openapi.ResponseText("Classification result line")},
		openapi.BadRequest, openapi.PayloadTooLarge, openapi.UnsupportedMediaType,
		openapi.ServerError, openapi.ServiceUnavailable,
	),
}

// Classify reads the raw image from the request body and writes the result line.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := h.orch.Classify(r.Context(), data)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	outcome := CacheMiss
	switch {
	case resp.Cached:
		outcome = CacheHit
	case resp.WriteErr != nil:
		outcome = CacheWriteFailed
	}

	w.Header().Set("X-Cache", outcome)
	w.Header().Set("X-Fingerprint", resp.Fingerprint.String())
	handlers.RespondText(w, http.StatusOK, resp.Value)
}
