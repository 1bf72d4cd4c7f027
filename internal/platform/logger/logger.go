// Package logger provides a zerolog wrapper with opinionated defaults and
// call-scoped logging support
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mimaas/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the logger
type Options struct {
	Level        string
	Format       string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	StaticFields map[string]string
}

// FromEnv builds Options using the logging-free raw config view (no cycles)
// A library should stay quiet by default, so the level defaults to warn
func FromEnv() Options {
	rc := raw.New().Prefix("MIMAAS_LOG_")
	return Options{
		Level:      strings.ToLower(rc.Get("LEVEL", "warn")),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Component:  rc.Get("COMPONENT", ""),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Get returns the process-wide root logger as a pointer
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Init configures zerolog and builds the root logger, safe to call once
// Output goes to stderr unless Writer is set so stdout stays clean for CLI output
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			ctx = ctx.Str("go_version", bi.GoVersion)
		}
		if opt.Component != "" {
			ctx = ctx.Str("component", opt.Component)
		}
		for k, v := range opt.StaticFields {
			ctx = ctx.Str(k, v)
		}

		log := ctx.Logger()
		if opt.WithCaller {
			log = log.With().Caller().Logger()
		}

		root.Store(&log)
		inited.Store(true)
	})
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

type ctxKey struct{ name string }

var (
	keyCallID = ctxKey{"call_id"}
	keyOp     = ctxKey{"op"}
)

// WithCall annotates ctx with the client call id and operation name
func WithCall(ctx context.Context, callID, op string) context.Context {
	if callID != "" {
		ctx = context.WithValue(ctx, keyCallID, callID)
	}
	if op != "" {
		ctx = context.WithValue(ctx, keyOp, op)
	}
	return ctx
}

// CallID returns the call id stored by WithCall, if any
func CallID(ctx context.Context) string {
	s, _ := ctx.Value(keyCallID).(string)
	return s
}

// C returns a child logger enriched from ctx (call_id, op)
func C(ctx context.Context) *Logger {
	builder := Get().With()
	if s, ok := ctx.Value(keyCallID).(string); ok && s != "" {
		builder = builder.Str("call_id", s)
	}
	if s, ok := ctx.Value(keyOp).(string); ok && s != "" {
		builder = builder.Str("op", s)
	}
	ll := builder.Logger()
	return &ll
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

// Nop returns a disabled logger, handy as a default for injected loggers
func Nop() *Logger {
	l := zerolog.Nop()
	return &l
}
