// Package middleware provides composable HTTP middleware: an ordered stack,
// CORS, panic recovery, and request logging.
package middleware

import "net/http"

// Middleware wraps a handler.
type Middleware = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
// The first middleware added is the outermost at request time.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack []Middleware

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Middleware) {
	*s = append(*s, mw)
}

func (s *stack) Len() int {
	return len(*s)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, *s...)
}

// Chain wraps handler so that mws[0] runs first.
func Chain(handler http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
