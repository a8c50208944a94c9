// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/infrastructure"
	"github.com/JaimeStill/glimpse/pkg/middleware"
	"github.com/JaimeStill/glimpse/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, domain *Domain) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, cfg, domain, runtime); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))

	return m, nil
}
