// Package module mounts self-contained HTTP sub-applications under a
// single-level path prefix, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/glimpse/pkg/middleware"
)

// Module serves an inner router beneath a path prefix.
// Middleware must be added with Use before the first request is served;
// the wrapped handler is built once and reused.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix (e.g. "/api").
// It panics if prefix is empty, lacks a leading slash, or has more than one segment.
func New(prefix string, router http.Handler) *Module {
	if err := ValidatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware stack.
func (m *Module) Use(mw middleware.Middleware) {
	m.middleware.Use(mw)
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// ServeHTTP strips the module prefix and dispatches to the wrapped router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

// Serve is ServeHTTP.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.ServeHTTP(w, req)
}

// ValidatePrefix reports whether prefix is a single-level sub-path.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case prefix == "/" || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}
