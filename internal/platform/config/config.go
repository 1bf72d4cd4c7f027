// Package config handles client configuration: an env view, the YAML config
// file and the ordered resolution of client settings
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"mimaas/internal/platform/logger"
)

// EnvPrefix namespaces every environment variable the client reads
const EnvPrefix = "MIMAAS_"

// Conf is a namespaced view over environment variables (e.g., "MIMAAS_")
// Use New() for global access, or Prefix("MIMAAS_") for scoped reads.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Env returns the Conf scoped to EnvPrefix
func Env() Conf { return New().Prefix(EnvPrefix) }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified env var name
func (c Conf) key(k string) string { return c.prefix + k }

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	if v == "" {
		return def
	}
	return v
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MaySeconds reads a timeout given either as whole seconds ("120") or as a
// Go duration ("2m"); returns def if missing, invalid or not positive
func (c Conf) MaySeconds(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	if d, ok := parseSeconds(s); ok {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid timeout; using default")
	return def
}

func parseSeconds(s string) (time.Duration, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Second, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
