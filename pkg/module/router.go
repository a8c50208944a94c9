package module

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Router dispatches requests to mounted modules by their first path segment.
// Requests that match no module fall through to a native ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers m under its prefix. Mounting two modules with the same
// prefix panics.
func (r *Router) Mount(m *Module) {
	if _, exists := r.modules[m.prefix]; exists {
		panic(fmt.Sprintf("module already mounted at %s", m.prefix))
	}
	r.modules[m.prefix] = m
}

// Prefixes returns the mounted module prefixes in sorted order.
func (r *Router) Prefixes() []string {
	prefixes := make([]string, 0, len(r.modules))
	for p := range r.modules {
		prefixes = append(prefixes, p)
	}
	slices.Sort(prefixes)
	return prefixes
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := trimTrailingSlash(req)

	if m, ok := r.modules[firstSegment(path)]; ok {
		m.ServeHTTP(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return path
	}
	seg, _, _ := strings.Cut(rest, "/")
	return "/" + seg
}

func trimTrailingSlash(req *http.Request) string {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		req.URL.Path = path
	}
	return path
}
