package openapi

import (
	"maps"
	"net/http"
)

// Shared error response names registered by NewComponents.
const (
	BadRequest           = "BadRequest"
	NotFound             = "NotFound"
	PayloadTooLarge      = "PayloadTooLarge"
	UnsupportedMediaType = "UnsupportedMediaType"
	ServerError          = "ServerError"
	BadGateway           = "BadGateway"
	ServiceUnavailable   = "ServiceUnavailable"
)

var errorResponses = map[string]string{
	BadRequest:           "Invalid request",
	NotFound:             "Resource not found",
	PayloadTooLarge:      "Request body exceeds the upload limit",
	UnsupportedMediaType: "Body is not a decodable image",
	ServerError:          "Model, label, or stored record failure",
	BadGateway:           "Upstream notification failed",
	ServiceUnavailable:   "Backing store unavailable",
}

// ErrorStatus maps the shared error response names to status codes.
var ErrorStatus = map[string]int{
	BadRequest:           http.StatusBadRequest,
	NotFound:             http.StatusNotFound,
	PayloadTooLarge:      http.StatusRequestEntityTooLarge,
	UnsupportedMediaType: http.StatusUnsupportedMediaType,
	ServerError:          http.StatusInternalServerError,
	BadGateway:           http.StatusBadGateway,
	ServiceUnavailable:   http.StatusServiceUnavailable,
}

// NewComponents creates Components with the Error schema and shared error responses.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
				Required: []string{"error"},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}

	for name, desc := range errorResponses {
		c.Responses[name] = ResponseJSON(desc, "Error")
	}

	return c
}

// Errors returns response entries referencing the named shared error responses,
// keyed by status code, merged over responses.
func Errors(responses map[int]*Response, names ...string) map[int]*Response {
	out := make(map[int]*Response, len(responses)+len(names))
	for _, name := range names {
		out[ErrorStatus[name]] = ResponseRef(name)
	}
	maps.Copy(out, responses)
	return out
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
