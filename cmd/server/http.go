package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/pkg/lifecycle"
)

type httpServer struct {
	http     *http.Server
	timeouts config.Timeouts
	logger   *slog.Logger
	addr     net.Addr
	drained  []func()
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	logger = logger.With("system", "http")
	t := cfg.Timeouts()

	return &httpServer{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       t.Read,
			ReadHeaderTimeout: t.ReadHeader,
			WriteTimeout:      t.Write,
			IdleTimeout:       t.Idle,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		timeouts: t,
		logger:   logger,
	}
}

// AfterDrain registers fn to run once in-flight requests have finished
// during shutdown. Hooks run in registration order.
func (s *httpServer) AfterDrain(fn func()) {
	s.drained = append(s.drained, fn)
}

// Start binds the listener before returning so address errors fail startup,
// then serves in the background until the coordinator shuts down.
func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.addr = ln.Addr()

	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("draining connections", "timeout", s.timeouts.Shutdown)

		ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Shutdown)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		} else {
			s.logger.Info("server shutdown complete")
		}

		for _, fn := range s.drained {
			fn()
		}
	})

	return nil
}
