// Command mimaas-mock serves an in-memory MIMaaS API for local development
// and end-to-end tests of the client
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mimaas/internal/fakeserver"
	"mimaas/internal/platform/config"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/metrics"
	phttp "mimaas/internal/platform/net/http"
	"mimaas/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	// mock-scoped config (MIMAAS_MOCK_*)
	cfg := config.Env().Prefix("MOCK_")
	l := logger.Named("mimaas-mock")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fs := fakeserver.New(fakeserver.Options{
		FailMessage: cfg.MayString("FAIL_MESSAGE", ""),
		Metrics:     metrics.NewServer(reg),
		Slow:        cfg.MaySeconds("SLOW", 2*time.Second),
	})

	// a ready-made account so the CLI can log in straight away
	if user := cfg.MayString("USER", "demo"); user != "" {
		tok := fs.AddUser(user, cfg.MayString("PASSWORD", "demo"), cfg.MayString("PLAN", "free"), -1)
		l.Info().Str("user", user).Str("api_token", tok).Msg("seeded account")
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: splitList(cfg.MayString("CORS_ORIGINS", "*"))}))
	r.Use(middleware.Heartbeat("/healthz"))
	r.Use(middleware.Timeout(cfg.MaySeconds("REQUEST_TIMEOUT", 60*time.Second)))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/", fs.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8080"), r)
	if err := srv.Run(ctx); err != nil && err != http.ErrServerClosed {
		l.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
