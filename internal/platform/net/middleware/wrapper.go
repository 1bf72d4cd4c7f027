// Package middleware holds the HTTP middleware of the mock API server
package middleware

import (
	"net/http"
	"strings"
	"time"

	pnet "mimaas/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// HeaderClientRequestID is the per-call id the client library sends
const HeaderClientRequestID = "X-Client-Request-Id"

// ClientRequestID uses the caller's X-Client-Request-Id as the request id and
// echoes it back, so client and server logs share one id.
// Requests without the header get a chi generated id
func ClientRequestID(next http.Handler) http.Handler {
	generated := chimw.RequestID(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderClientRequestID))
		if id == "" {
			generated.ServeHTTP(w, r)
			return
		}
		w.Header().Set(HeaderClientRequestID, id)
		next.ServeHTTP(w, r.WithContext(pnet.WithRequestID(r.Context(), id)))
	})
}

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// CORSOptions is the subset of go-chi/cors the mock exposes
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS lets browser tooling call the mock; unset lists take the API's verbs and headers
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: orDefault(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		AllowedHeaders: orDefault(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", HeaderClientRequestID}),
		ExposedHeaders: []string{HeaderClientRequestID, "Content-Disposition"},
		MaxAge:         o.MaxAge,
	})
}

// Defaults is the chain every API route runs behind
func Defaults() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{ClientRequestID, RecoverJSON}
}

func orDefault[T any](v, def []T) []T {
	if len(v) == 0 {
		return def
	}
	return v
}
