package config

import (
	"os"
	"path/filepath"

	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML config (~/.mimaas/config.yaml)
// Unknown keys are preserved by SaveFile
type File struct {
	APIURL    string `yaml:"api_url,omitempty"`
	APIToken  string `yaml:"api_token,omitempty"`
	Timeout   int    `yaml:"timeout,omitempty"`
	VerifySSL *bool  `yaml:"verify_ssl,omitempty"`
}

// ReadFile loads the YAML config at path
// A missing, unreadable or malformed file yields the zero File; the problem is logged, never returned
func ReadFile(path string) File {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Named("config").Warn().Err(err).Str("path", path).Msg("config file unreadable; ignoring")
		}
		return f
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		logger.Named("config").Warn().Err(err).Str("path", path).Msg("config file malformed; ignoring")
		return File{}
	}
	return f
}

// SaveFile merges updates into the YAML document at path and writes it back with mode 0600
func SaveFile(path string, updates map[string]any) error {
	doc := map[string]any{}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &doc); err != nil || doc == nil {
			doc = map[string]any{}
		}
	}
	for k, v := range updates {
		doc[k] = v
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "create config directory %s", filepath.Dir(path))
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeConfig, "encode config")
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "write config %s", path)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "restrict config permissions; run: chmod 600 %s", path)
	}
	return nil
}
