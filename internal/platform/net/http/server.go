package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"mimaas/internal/platform/logger"
)

// Server is a thin wrapper over stdlib http.Server with context-driven shutdown
type Server struct {
	srv *stdhttp.Server
}

// NewServer serves h on addr
func NewServer(addr string, h stdhttp.Handler) *Server {
	return &Server{
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the listening address
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("http shutting down")
		return s.srv.Shutdown(shutdownCtx)
	}
}
