// Command upload is a CGI program that stores the request body as a blob
// named by the container and blob query parameters, then publishes a
// BlobCreated event for it.
package main

import (
	"log"
	"net/http"
	"net/http/cgi"
	"time"

	"github.com/spf13/pflag"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/images"
	"github.com/JaimeStill/glimpse/internal/infrastructure"
)

func main() {
	configPath := pflag.StringP("config", "c", config.BaseConfigFile, "path to the TOML config file")
	pflag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed:", err)
	}
	if infra.Storage == nil || infra.Events == nil {
		log.Fatal("upload requires storage and events configuration")
	}

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed:", err)
	}
	infra.Lifecycle.WaitForStartup()
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	sys := images.New(infra.Storage, infra.Events, infra.Logger)
	h := images.NewHandler(sys, infra.Logger, cfg.API.MaxUploadSizeBytes())

	start := time.Now()
	if err := cgi.Serve(http.HandlerFunc(h.Upload)); err != nil {
		infra.Logger.Error("cgi serve failed", "error", err)
		return
	}
	infra.Logger.Info("upload handled", "duration", time.Since(start))
}
