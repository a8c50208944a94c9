package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/api"
	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/infrastructure"
	"github.com/JaimeStill/glimpse/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config, domain *api.Domain) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra, domain)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "not ready",
				"pending": infra.Lifecycle.Pending(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	metrics := infra.Metrics.Handler()
	router.HandleNative("GET /metrics", metrics.ServeHTTP)

	return router
}

func writeStatus(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
