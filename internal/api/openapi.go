package api

import (
	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

var schemas = map[string]*openapi.Schema{
	"Entry": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":    {Type: "string", Description: "Fingerprint of the image bytes"},
			"value": {Type: "string", Example: "The image represents a tabby cat, with 87% accuracy"},
		},
		Required: []string{"id", "value"},
	},
	"Upload": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"container": {Type: "string"},
			"blob":      {Type: "string"},
			"event_id":  {Type: "string", Format: "uuid"},
			"size":      {Type: "integer", Description: "Stored size in bytes"},
		},
	},
	"Event": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":          {Type: "string"},
			"eventType":   {Type: "string"},
			"subject":     {Type: "string"},
			"eventTime":   {Type: "string", Format: "date-time"},
			"data":        {Type: "object"},
			"dataVersion": {Type: "string"},
		},
		Required: []string{"id", "eventType"},
	},
	"Reply": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"validationResponse": {Type: "string", Description: "Echoed validation code"},
			"container":          {Type: "string"},
			"blob":               {Type: "string"},
			"fingerprint":        {Type: "string"},
			"result":             {Type: "string"},
			"cached":             {Type: "boolean"},
		},
	},
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	if cfg.API.OpenAPI.ServerURL != "" {
		spec.AddServer(cfg.API.OpenAPI.ServerURL)
	} else {
		spec.AddServer(cfg.API.BasePath)
	}
	spec.Components.AddSchemas(schemas)

	routes.Document(spec, groups...)

	return openapi.MarshalJSON(spec)
}
