package api

import (
	"net/http"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/images"
	"github.com/JaimeStill/glimpse/internal/inference"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/pkg/openapi"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	cfg *config.Config,
	domain *Domain,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		inference.NewHandler(domain.Inference, runtime.Logger, runtime.MaxUploadSize).Routes(),
		results.NewHandler(runtime.Results, runtime.Logger).Routes(),
	}

	if domain.Images != nil {
		groups = append(groups, images.NewHandler(domain.Images, runtime.Logger, runtime.MaxUploadSize).Routes())
	}
	if domain.Webhook != nil {
		groups = append(groups, domain.Webhook.Routes())
	}

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	groups = append(groups, routes.Group{
		Routes: []routes.Route{{Method: "GET", Pattern: "/openapi.json", Handler: openapi.ServeSpec(spec)}},
	})

	routes.Register(mux, groups...)
	runtime.Logger.Debug("routes registered", "patterns", routes.Patterns(groups...))
	return nil
}
