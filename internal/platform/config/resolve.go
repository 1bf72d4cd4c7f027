package config

import (
	"strconv"
	"strings"
	"time"

	"mimaas/internal/platform/config/raw"
)

// Defaults
const (
	DefaultAPIURL     = "http://10.203.184.13:80"
	DefaultTokenFile  = "~/.mimaas/token"
	DefaultConfigFile = "~/.mimaas/config.yaml"
	DefaultTimeout    = 120 * time.Second
)

// Source names reported in Settings.Sources
const (
	SourceExplicit  = "explicit"
	SourceEnv       = "env"
	SourceTokenFile = "token_file"
	SourceFile      = "config_file"
	SourceDefault   = "default"
)

// Provider yields one candidate value; an empty string means "no opinion"
type Provider struct {
	Name  string
	Value func() string
}

// First queries providers in order and returns the first non-empty value and its provider name
// Providers after the winner are never called
func First(ps ...Provider) (value, from string) {
	for _, p := range ps {
		if p.Value == nil {
			continue
		}
		if v := strings.TrimSpace(p.Value()); v != "" {
			return v, p.Name
		}
	}
	return "", ""
}

// Fixed is a Provider returning v
func Fixed(name, v string) Provider {
	return Provider{Name: name, Value: func() string { return v }}
}

// Explicit holds caller-supplied settings; zero values mean unset
type Explicit struct {
	APIURL     string
	APIToken   string
	TokenFile  string
	ConfigFile string
	Timeout    time.Duration
	VerifySSL  *bool
}

// Settings is the resolved client configuration
type Settings struct {
	APIURL     string
	APIToken   string
	TokenFile  string
	ConfigFile string
	Timeout    time.Duration
	VerifySSL  bool

	// Sources maps each setting name to the provider that supplied it
	Sources map[string]string
}

// TokenLoader reads the persisted credential; ("", nil) when there is none
type TokenLoader func(path string) (string, error)

// Resolve applies explicit > env > file > default for every setting.
// The token additionally consults the token file (through load) between the env and the config file.
// A load error is returned as-is so insecure credentials fail loudly
func Resolve(in Explicit, load TokenLoader) (Settings, error) {
	env := Env()
	s := Settings{Sources: map[string]string{}}

	s.TokenFile = raw.ExpandHome(firstNonEmpty(in.TokenFile, env.MayString("TOKEN_FILE", ""), DefaultTokenFile))
	s.ConfigFile = raw.ExpandHome(firstNonEmpty(in.ConfigFile, env.MayString("CONFIG_FILE", ""), DefaultConfigFile))

	var (
		file   File
		loaded bool
	)
	fromFile := func() File {
		if !loaded {
			file = ReadFile(s.ConfigFile)
			loaded = true
		}
		return file
	}

	var from string
	s.APIURL, from = First(
		Fixed(SourceExplicit, in.APIURL),
		Provider{Name: SourceEnv, Value: func() string { return trimSlash(env.MayString("API_URL", "")) }},
		Provider{Name: SourceFile, Value: func() string { return trimSlash(fromFile().APIURL) }},
		Fixed(SourceDefault, DefaultAPIURL),
	)
	s.Sources["api_url"] = from

	var loadErr error
	s.APIToken, from = First(
		Fixed(SourceExplicit, in.APIToken),
		Provider{Name: SourceEnv, Value: func() string { return env.MayString("API_TOKEN", "") }},
		Provider{Name: SourceTokenFile, Value: func() string {
			if load == nil {
				return ""
			}
			tok, err := load(s.TokenFile)
			if err != nil {
				loadErr = err
				return ""
			}
			return tok
		}},
		Provider{Name: SourceFile, Value: func() string { return fromFile().APIToken }},
	)
	if loadErr != nil {
		return Settings{}, loadErr
	}
	if from != "" {
		s.Sources["api_token"] = from
	}

	timeout, from := First(
		Provider{Name: SourceExplicit, Value: func() string { return durationString(in.Timeout) }},
		Provider{Name: SourceEnv, Value: func() string { return durationString(env.MaySeconds("TIMEOUT", 0)) }},
		Provider{Name: SourceFile, Value: func() string {
			return durationString(time.Duration(fromFile().Timeout) * time.Second)
		}},
		Fixed(SourceDefault, durationString(DefaultTimeout)),
	)
	s.Timeout, _ = time.ParseDuration(timeout)
	s.Sources["timeout"] = from

	verify, from := First(
		Provider{Name: SourceExplicit, Value: func() string { return boolString(in.VerifySSL) }},
		Provider{Name: SourceEnv, Value: func() string {
			if env.MayString("VERIFY_SSL", "") == "" {
				return ""
			}
			return strconv.FormatBool(env.MayBool("VERIFY_SSL", true))
		}},
		Provider{Name: SourceFile, Value: func() string { return boolString(fromFile().VerifySSL) }},
		Fixed(SourceDefault, "true"),
	)
	s.VerifySSL = verify == "true"
	s.Sources["verify_ssl"] = from

	return s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func trimSlash(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

func durationString(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.String()
}

func boolString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
