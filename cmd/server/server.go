package main

import (
	"time"

	"github.com/JaimeStill/glimpse/internal/api"
	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/infrastructure"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	domain  *api.Domain
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	domain, err := api.NewDomain(cfg, infra)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg, domain)
	if err != nil {
		domain.Close()
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"modules", router.Prefixes(),
	)

	return &Server{
		infra:   infra,
		domain:  domain,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	// The model session is released only after in-flight classifications drain.
	s.http.AfterDrain(func() {
		if err := s.domain.Close(); err != nil {
			s.infra.Logger.Error("domain close failed", "error", err)
		}
	})

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
