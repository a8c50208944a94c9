package results

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/pkg/handlers"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

// ErrNotFound indicates no cache entry exists for the requested fingerprint.
var ErrNotFound = errors.New("cache entry not found")

// Handler provides read access to cache entries over HTTP.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a Handler over store.
func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "results"),
	}
}

// Routes returns the route group definition for result endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/results",
		Tag:         "Results",
		Description: "Direct lookups in the shared result store",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{fingerprint}", Handler: h.Find, OpenAPI: findOp},
		},
	}
}

var findOp = &openapi.Operation{
	Summary: "Get a cache entry",
	Tags:    []string{"Results"},
	Parameters: []*openapi.Parameter{
		openapi.PathParam("fingerprint", "Hex fingerprint of the image bytes", "^[0-9A-Fa-f]{64}$"),
	},
	Responses: openapi.Errors(
		map[int]*openapi.Response{200: openapi.ResponseJSON("Cache entry", "Entry")},
		openapi.BadRequest, openapi.NotFound, openapi.ServerError, openapi.ServiceUnavailable,
	),
}

// Find returns the cache entry for the fingerprint path parameter.
// Lowercase hex is accepted and normalized.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	key := fingerprint.Fingerprint(strings.ToUpper(r.PathValue("fingerprint")))
	if err := key.Validate(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	value, found, err := h.store.Lookup(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}
	if !found {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Entry{ID: string(key), Value: value})
}
