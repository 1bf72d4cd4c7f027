package middleware

import (
	"net/http"

	pnet "mimaas/internal/platform/net"
	phttp "mimaas/internal/platform/net/http"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the username behind the request or an error
	Parse(r *http.Request) (user string, err error)
}

// Auth rejects requests the port cannot resolve and stores the user on the context
// A nil port lets every request through
func Auth(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := p.Parse(r)
			if err != nil {
				phttp.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), user)))
		})
	}
}
