package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/JaimeStill/glimpse/pkg/handlers"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
	"github.com/JaimeStill/glimpse/pkg/storage"
)

// ErrPayloadTooLarge indicates the request body exceeded the upload limit.
var ErrPayloadTooLarge = errors.New("image exceeds maximum upload size")

// Handler exposes image uploads over HTTP.
type Handler struct {
	sys           *System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler accepting bodies up to maxUploadSize bytes.
func NewHandler(sys *System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "images"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for image endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/images",
		Tag:         "Images",
		Description: "Image upload and download against blob storage",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{key...}", Handler: h.Upload, OpenAPI: uploadOp},
			{Method: "GET", Pattern: "/{key...}", Handler: h.Download, OpenAPI: downloadOp},
		},
	}
}

var (
	keyParam       = openapi.PathParam("key", "Blob key, may contain slashes", "")
	containerParam = openapi.QueryParam("container", "string", "Container override", false)
)

var uploadOp = &openapi.Operation{
	Summary:     "Upload an image",
	Description: "Stores the image and publishes a BlobCreated event to the configured topic.",
	Tags:        []string{"Images"},
	Parameters:  []*openapi.Parameter{keyParam, containerParam},
	RequestBody: openapi.RequestBodyBinary("Raw image bytes"),
	Responses: openapi.Errors(
		map[int]*openapi.Response{201: openapi.ResponseJSON("Image stored", "Upload")},
		openapi.BadRequest, openapi.PayloadTooLarge, openapi.ServerError, openapi.BadGateway,
	),
}

var downloadOp = &openapi.Operation{
	Summary:    "Download an image",
	Tags:       []string{"Images"},
	Parameters: []*openapi.Parameter{keyParam, containerParam},
	Responses: openapi.Errors(
		map[int]*openapi.Response{200: openapi.ResponseBinary("Stored image bytes")},
		openapi.BadRequest, openapi.NotFound, openapi.ServerError,
	),
}

// Upload stores the request body under the path key, or the blob query
// parameter when no path key is present. The optional container query
// parameter overrides the default container.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		key = r.URL.Query().Get("blob")
	}

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

	up, err := h.sys.Upload(r.Context(), r.URL.Query().Get("container"), key, data)
	if err != nil {
		handlers.RespondError(w, h.logger, mapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, up)
}

func mapHTTPStatus(err error) int {
	if errors.Is(err, ErrPublish) {
		return http.StatusBadGateway
	}
	return storage.MapHTTPStatus(err)
}

// Download streams a stored image back to the caller.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.sys.Open(r.Context(), r.URL.Query().Get("container"), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
