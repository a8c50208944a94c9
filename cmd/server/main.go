package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/glimpse/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed:", err)
	}

	srv.infra.Logger.Info(
		"glimpse starting",
		"version", cfg.Version,
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
	)

	if err := srv.Start(); err != nil {
		log.Fatal("server start failed:", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.infra.Logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}

	srv.infra.Logger.Info("glimpse stopped")
}
