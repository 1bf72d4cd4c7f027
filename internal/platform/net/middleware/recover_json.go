package middleware

import (
	"net/http"
	"runtime/debug"

	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	pnet "mimaas/internal/platform/net"
	phttp "mimaas/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into a 500 message document
// http.ErrAbortHandler is re-raised so net/http can abort the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("request_id", pnet.RequestID(r.Context())).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			phttp.Error(w, perr.Internalf("Internal server error"))
		}()
		next.ServeHTTP(w, r)
	})
}
