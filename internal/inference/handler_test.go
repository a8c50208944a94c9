package inference_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/internal/inference"
	"github.com/JaimeStill/glimpse/internal/scoring"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

func newHandlerMux(orch *inference.Orchestrator, maxUpload int64) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, inference.NewHandler(orch, discard(), maxUpload).Routes())
	return mux
}

func post(mux *http.ServeMux, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCacheHeaders(t *testing.T) {
	store := newStore()
	orch := newOrchestrator(store, &fakeClassifier{result: scoring.Result{Class: 2, Confidence: 0.64}})
	mux := newHandlerMux(orch, 1024)

	body := []byte("image bytes")
	want := "The image represents a dog, with 64% accuracy"

	for _, outcome := range []string{inference.CacheMiss, inference.CacheHit} {
		rec := post(mux, body)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body: %s", outcome, rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Cache"); got != outcome {
			t.Errorf("X-Cache = %s, want %s", got, outcome)
		}
		if got := rec.Header().Get("X-Fingerprint"); got != fingerprint.Of(body).String() {
			t.Errorf("X-Fingerprint = %s", got)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %q, want %q", got, want)
		}
	}
}

func TestHandlerWriteFailed(t *testing.T) {
	store := newStore()
	store.insertErr = errors.New("throttled")
	orch := newOrchestrator(store, &fakeClassifier{result: scoring.Result{Class: 1, Confidence: 1}})
	mux := newHandlerMux(orch, 1024)

	rec := post(mux, []byte("image"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Cache"); got != inference.CacheWriteFailed {
		t.Errorf("X-Cache = %s, want %s", got, inference.CacheWriteFailed)
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		store      func() *countingStore
		classifier *fakeClassifier
		body       []byte
		wantStatus int
	}{
		{
			name:       "too large",
			store:      newStore,
			classifier: &fakeClassifier{result: scoring.Result{Class: 1, Confidence: 1}},
			body:       bytes.Repeat([]byte{0xff}, 2048),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "undecodable",
			store:      newStore,
			classifier: &fakeClassifier{err: failure.New(failure.Decode, "decode image", errors.New("unknown format"))},
			body:       []byte{0x00, 0x01, 0x02},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name: "store unavailable",
			store: func() *countingStore {
				s := newStore()
				s.lookupErr = failure.New(failure.StoreUnavailable, "lookup", context.DeadlineExceeded)
				return s
			},
			classifier: &fakeClassifier{result: scoring.Result{Class: 1, Confidence: 1}},
			body:       []byte("image"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "label lookup",
			store:      newStore,
			classifier: &fakeClassifier{result: scoring.Result{Class: 9, Confidence: 1}},
			body:       []byte("image"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := newOrchestrator(tt.store(), tt.classifier)
			rec := post(newHandlerMux(orch, 1024), tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Header().Get("X-Cache") != "" {
				t.Error("X-Cache set on a failed request")
			}
		})
	}
}
