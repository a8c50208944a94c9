package results_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/pkg/routes"
)

type brokenStore struct{}

func (brokenStore) Lookup(context.Context, fingerprint.Fingerprint) (string, bool, error) {
	return "", false, failure.New(failure.StoreUnavailable, "lookup", errors.New("connection reset"))
}

func (brokenStore) Insert(context.Context, fingerprint.Fingerprint, string) error {
	return nil
}

func newMux(store results.Store) *http.ServeMux {
	mux := http.NewServeMux()
	h := results.NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	routes.Register(mux, h.Routes())
	return mux
}

func TestHandlerFind(t *testing.T) {
	store := results.NewMemory()
	if err := store.Insert(context.Background(), key, "The image represents a dog, with 64% accuracy"); err != nil {
		t.Fatal(err)
	}
	mux := newMux(store)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"hit", "/results/" + key.String(), http.StatusOK},
		{"lowercase hit", "/results/" + strings.ToLower(key.String()), http.StatusOK},
		{"miss", "/results/" + fingerprint.Of([]byte("other")).String(), http.StatusNotFound},
		{"invalid", "/results/xyz", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var entry results.Entry
			if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if entry.ID != key.String() || entry.Value != "The image represents a dog, with 64% accuracy" {
				t.Errorf("entry = %+v", entry)
			}
		})
	}
}

func TestHandlerStoreUnavailable(t *testing.T) {
	mux := newMux(brokenStore{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/"+key.String(), nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
