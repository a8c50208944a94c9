// Command webhook is a CGI program that receives Event Grid deliveries.
// It answers subscription validation handshakes and classifies the blob
// referenced by each BlobCreated event.
package main

import (
	"log"
	"net/http"
	"net/http/cgi"

	"github.com/spf13/pflag"

	"github.com/JaimeStill/glimpse/internal/api"
	"github.com/JaimeStill/glimpse/internal/config"
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

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed:", err)
	}
	infra.Lifecycle.WaitForStartup()
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	domain, err := api.NewDomain(cfg, infra)
	if err != nil {
		log.Fatal("domain init failed:", err)
	}
	defer domain.Close()

	if domain.Webhook == nil {
		log.Fatal("webhook requires storage configuration")
	}

	if err := cgi.Serve(http.HandlerFunc(domain.Webhook.Receive)); err != nil {
		infra.Logger.Error("cgi serve failed", "error", err)
	}
}
