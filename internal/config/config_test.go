package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/glimpse/internal/config"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/internal/scoring"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadFile("missing.toml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.Results.Backend != results.BackendMemory {
		t.Errorf("Results.Backend = %s, want memory", cfg.Results.Backend)
	}
	if cfg.Fingerprint.Algorithm != "sha256" {
		t.Errorf("Fingerprint.Algorithm = %s, want sha256", cfg.Fingerprint.Algorithm)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("API.BasePath = %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("MaxUploadSizeBytes() = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Scoring.Layout != scoring.NHWC {
		t.Errorf("Scoring.Layout = %s, want nhwc", cfg.Scoring.Layout)
	}
	if cfg.Storage.Configured() || cfg.Events.Configured() {
		t.Error("storage and events should be unconfigured by default")
	}
}

func TestLoadFileTOML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	base := writeFile(t, dir, "glimpse.toml", `
shutdown_timeout = "10s"

[api]
max_upload_size = "2MB"

[results]
backend = "cosmos"

[results.cosmos]
account = "glimpse-dev"

[scoring]
model_path = "models/mobilenet.onnx"
classes = 1000
layout = "nchw"

[inference]
single_flight = true

[fingerprint]
algorithm = "blake3"
`)

	cfg, err := config.LoadFile(base)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
	if cfg.API.MaxUploadSizeBytes() != 2*1024*1024 {
		t.Errorf("MaxUploadSizeBytes() = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Results.Backend != results.BackendCosmos || cfg.Results.Cosmos.Container != "results" {
		t.Errorf("Results = %+v", cfg.Results)
	}
	if cfg.Scoring.ModelPath != "models/mobilenet.onnx" || cfg.Scoring.Classes != 1000 || cfg.Scoring.Layout != scoring.NCHW {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.Scoring.InputWidth != 224 {
		t.Errorf("Scoring.InputWidth = %d, want default 224", cfg.Scoring.InputWidth)
	}
	if !cfg.Inference.Coalesce() {
		t.Error("Inference.Coalesce() = false, want true")
	}

	input := []byte("x")
	blake, _ := fingerprint.New(fingerprint.BLAKE3)
	deriver, err := cfg.Fingerprint.Deriver()
	if err != nil {
		t.Fatalf("Deriver() error = %v", err)
	}
	if deriver.Of(input) != blake.Of(input) {
		t.Error("Deriver() is not blake3")
	}
}

func TestLoadFileOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	base := writeFile(t, dir, "config.toml", `
[results]
backend = "memory"

[scoring]
model_path = "base.onnx"
labels_path = "base.txt"

[inference]
single_flight = true
fixed_precision = true
precision = 2
`)
	writeFile(t, dir, "config.test.toml", `
[scoring]
model_path = "overlay.onnx"
`)
	t.Setenv(config.EnvGlimpseEnv, "test")

	cfg, err := config.LoadFile(base)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Env() != "test" {
		t.Errorf("Env() = %s, want test", cfg.Env())
	}
	if cfg.Scoring.ModelPath != "overlay.onnx" {
		t.Errorf("ModelPath = %s, want overlay.onnx", cfg.Scoring.ModelPath)
	}
	if cfg.Scoring.LabelsPath != "base.txt" {
		t.Errorf("LabelsPath = %s, want base.txt", cfg.Scoring.LabelsPath)
	}
	if !cfg.Inference.Coalesce() || cfg.Inference.Decimals() != 2 {
		t.Errorf("Inference = %+v, want base settings kept by overlay without [inference]", cfg.Inference)
	}
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("GLIMPSE_RESULTS_BACKEND", "postgres")
	t.Setenv("GLIMPSE_DB_HOST", "db.internal")
	t.Setenv("GLIMPSE_MODEL_PATH", "/srv/model.onnx")
	t.Setenv("GLIMPSE_MODEL_CLASSES", "10")
	t.Setenv("GLIMPSE_INFERENCE_FIXED_PRECISION", "true")
	t.Setenv("GLIMPSE_INFERENCE_PRECISION", "2")
	t.Setenv("GLIMPSE_EVENTS_TOPIC_HOST", "glimpse.eastus-1.eventgrid.azure.net")
	t.Setenv("GLIMPSE_EVENTS_TOPIC_KEY", "key")
	t.Setenv(config.EnvFingerprintAlgorithm, "BLAKE3")
	t.Setenv(config.EnvGlimpseShutdownTimeout, "5s")

	cfg, err := config.LoadFile("missing.toml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Results.Backend != results.BackendPostgres {
		t.Errorf("Results.Backend = %s", cfg.Results.Backend)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %s", cfg.Database.Host)
	}
	if cfg.Scoring.ModelPath != "/srv/model.onnx" || cfg.Scoring.Classes != 10 {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if got := cfg.Inference.Decimals(); got != 2 {
		t.Errorf("Inference.Decimals() = %d, want 2", got)
	}
	if !cfg.Events.Configured() {
		t.Error("Events.Configured() = false")
	}
	if cfg.Fingerprint.Algorithm != "blake3" {
		t.Errorf("Fingerprint.Algorithm = %s", cfg.Fingerprint.Algorithm)
	}
	if cfg.ShutdownTimeoutDuration() != 5*time.Second {
		t.Errorf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad toml", content: "[results\nbackend ="},
		{name: "bad shutdown timeout", content: `shutdown_timeout = "soon"`},
		{name: "unknown backend", content: "[results]\nbackend = \"redis\""},
		{name: "unknown algorithm", content: "[fingerprint]\nalgorithm = \"md5\""},
		{name: "bad upload size", content: "[api]\nmax_upload_size = \"lots\""},
		{name: "bad layout", content: "[scoring]\nlayout = \"hwcn\""},
		{name: "insecure topic", content: "[events]\ntopic_endpoint = \"http://localhost/api/events\""},
		{name: "bad server port", content: "[server]\nport = 70000"},
		{name: "zero idle timeout", content: "[server]\nidle_timeout = \"0s\""},
		{name: "bad read header timeout", content: "[server]\nread_header_timeout = \"fast\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			base := writeFile(t, dir, "config.toml", tt.content)

			if _, err := config.LoadFile(base); err == nil {
				t.Error("LoadFile() error = nil, want error")
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	t.Setenv(config.EnvServerIdleTimeout, "90s")

	cfg := config.ServerConfig{Host: "::1", Port: 9000}
	cfg.Merge(&config.ServerConfig{WriteTimeout: "2m"})
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if got := cfg.Addr(); got != "[::1]:9000" {
		t.Errorf("Addr() = %s, want [::1]:9000", got)
	}

	want := config.Timeouts{
		Read:       30 * time.Second,
		ReadHeader: 5 * time.Second,
		Write:      2 * time.Minute,
		Idle:       90 * time.Second,
		Shutdown:   30 * time.Second,
	}
	if got := cfg.Timeouts(); got != want {
		t.Errorf("Timeouts() = %+v, want %+v", got, want)
	}
}

func TestFingerprintDeriverUnknown(t *testing.T) {
	cfg := config.FingerprintConfig{Algorithm: "md5"}

	d, err := cfg.Deriver()
	if err == nil {
		t.Fatal("Deriver() error = nil, want error for unknown algorithm")
	}
	if d != nil {
		t.Errorf("Deriver() = %v, want nil", d)
	}
}
