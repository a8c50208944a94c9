package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover returns middleware that converts a handler panic into a 500
// response and logs the panic value with its stack.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"panic", v,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
