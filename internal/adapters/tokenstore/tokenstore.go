// Package tokenstore keeps the API token in an owner-only file
package tokenstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mimaas/internal/platform/config/raw"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/validate"
)

const (
	fileMode fs.FileMode = 0o600
	dirMode  fs.FileMode = 0o700
	// looseBits are the group/other read and write bits that make a token file insecure
	looseBits fs.FileMode = 0o066
)

// seams for tests
var (
	chmod     = os.Chmod
	writeFile = os.WriteFile
)

// File is a token store backed by a single file
type File struct {
	path string
	log  *logger.Logger
}

// New returns a File store at path; "~" is expanded
func New(path string) *File {
	return &File{path: raw.ExpandHome(path), log: logger.Named("tokenstore")}
}

// Path returns the resolved file path
func (f *File) Path() string { return f.path }

// Save writes token with owner-only permissions, creating the directory
func (f *File) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), dirMode); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "Failed to save token: create %s", filepath.Dir(f.path))
	}
	if err := writeFile(f.path, []byte(token), fileMode); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "Failed to save token")
	}
	// WriteFile keeps the mode of an existing file
	if err := chmod(f.path, fileMode); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "Failed to save token: chmod 600 %s", f.path)
	}
	f.log.Debug().Str("path", f.path).Msg("token saved")
	return nil
}

// Load returns the stored token, or "" when none is stored
//
// A file readable or writable by group or others is tightened to 0600 first;
// when that fails the token is not used and a Config error says how to fix it
func (f *File) Load() (string, error) {
	fi, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeConfig, "Failed to read token")
	}

	if mode := fi.Mode().Perm(); mode&looseBits != 0 {
		if err := chmod(f.path, fileMode); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeConfig,
				"Token file %s has insecure permissions (%#o). Please run: chmod 600 %s", f.path, mode, f.path)
		}
		f.log.Warn().Str("path", f.path).Str("was", mode.String()).Msg("tightened token file permissions")
	}

	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeConfig, "Failed to read token")
	}
	tok := strings.TrimSpace(string(b))
	if tok != "" && !validate.IsAPIToken(tok) {
		f.log.Warn().Str("path", f.path).Int("len", len(tok)).Msg("stored token is not a 64 character hex string")
	}
	return tok, nil
}

// Delete removes the token file; false means nothing was removed
func (f *File) Delete() bool {
	if err := os.Remove(f.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn().Err(err).Str("path", f.path).Msg("remove token file failed")
		}
		return false
	}
	return true
}
