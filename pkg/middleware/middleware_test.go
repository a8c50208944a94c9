package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/glimpse/pkg/middleware"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORSDisabled(t *testing.T) {
	cfg := &middleware.CORSConfig{Enabled: false}
	handler := middleware.CORS(cfg)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers should not be set when disabled")
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Cache", "X-Fingerprint"},
		MaxAge:         3600,
	}

	handler := middleware.CORS(cfg)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classify", nil)
	req.Header.Set("Origin", "http://example.com")
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("allow-origin: got %s, want http://example.com", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("allow-methods: got %s", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "X-Cache, X-Fingerprint" {
		t.Errorf("expose-headers: got %s", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("max-age: got %s, want 3600", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://allowed.com"},
	}

	handler := middleware.CORS(cfg)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://denied.com")
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("should not set allow-origin for disallowed origin")
	}
}

func TestCORSAnyOrigin(t *testing.T) {
	cfg := middleware.CORSConfig{Enabled: true, Origins: []string{middleware.AnyOrigin}}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	handler := middleware.CORS(&cfg)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/results/ABC", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://anywhere.example" {
		t.Errorf("allow-origin: got %s", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("vary: got %s, want Origin", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("request without Origin should not receive CORS headers")
	}
}

func TestCORSConfigCredentialsWithAnyOrigin(t *testing.T) {
	cfg := middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{middleware.AnyOrigin},
		AllowCredentials: true,
	}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for credentials with wildcard origin")
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
	}

	var handlerCalled bool
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status: got %d, want 204", rec.Code)
	}
	if handlerCalled {
		t.Error("handler should not be called for preflight")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://evil.com")
	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("preflight from a disallowed origin should reach the handler")
	}
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	sys := middleware.New()
	sys.Use(tag("outer"))
	sys.Use(tag("inner"))
	if sys.Len() != 2 {
		t.Fatalf("len: got %d, want 2", sys.Len())
	}

	sys.Apply(http.HandlerFunc(okHandler)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order: got %v", order)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("tensor shape mismatch")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/classify", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if !strings.Contains(buf.String(), "tensor shape mismatch") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestRecoverAbortHandler(t *testing.T) {
	handler := middleware.Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}),
	)

	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", v)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantCode  int
		wantAttrs []string
	}{
		{
			name: "explicit status with cache header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Cache", "hit")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("done"))
			},
			wantCode:  http.StatusOK,
			wantAttrs: []string{"status=200", "bytes=4", "cache=hit", "method=POST"},
		},
		{
			name: "implicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			},
			wantCode:  http.StatusOK,
			wantAttrs: []string{"status=200", "bytes=2"},
		},
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnsupportedMediaType)
			},
			wantCode:  http.StatusUnsupportedMediaType,
			wantAttrs: []string{"status=415", "bytes=0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			handler := middleware.Logger(logger)(tt.handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("POST", "/classify", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}

			out := buf.String()
			for _, attr := range tt.wantAttrs {
				if !strings.Contains(out, attr) {
					t.Errorf("log output missing %q: %s", attr, out)
				}
			}
		})
	}
}

func TestCORSConfigFinalizeDefaults(t *testing.T) {
	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if len(cfg.AllowedMethods) != 3 {
		t.Errorf("allowed_methods: got %d, want 3", len(cfg.AllowedMethods))
	}
	if len(cfg.AllowedHeaders) != 2 {
		t.Errorf("allowed_headers: got %d, want 2", len(cfg.AllowedHeaders))
	}
	if len(cfg.ExposedHeaders) != 2 {
		t.Errorf("exposed_headers: got %d, want 2", len(cfg.ExposedHeaders))
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("TEST_CORS_EXPOSED", "X-Cache,,")

	env := &middleware.CORSEnv{
		Enabled:        "TEST_CORS_ENABLED",
		Origins:        "TEST_CORS_ORIGINS",
		ExposedHeaders: "TEST_CORS_EXPOSED",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "http://a.com" || cfg.Origins[1] != "http://b.com" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if len(cfg.ExposedHeaders) != 1 || cfg.ExposedHeaders[0] != "X-Cache" {
		t.Errorf("exposed_headers: got %v", cfg.ExposedHeaders)
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{"http://base.com"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         3600,
	}

	overlay := middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://overlay.com"},
		ExposedHeaders: []string{"X-Fingerprint"},
		MaxAge:         7200,
	}

	base.Merge(&overlay)

	if !base.Enabled {
		t.Error("enabled should be true after merge")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://overlay.com" {
		t.Errorf("origins: got %v", base.Origins)
	}
	if len(base.ExposedHeaders) != 1 || base.ExposedHeaders[0] != "X-Fingerprint" {
		t.Errorf("exposed_headers: got %v", base.ExposedHeaders)
	}
	if base.MaxAge != 7200 {
		t.Errorf("max_age: got %d, want 7200", base.MaxAge)
	}
}
