package tokenstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "mimaas/internal/platform/errors"
	kit "mimaas/internal/platform/testkit"
)

var token = strings.Repeat("0f", 32)

func mode(t *testing.T, p string) fs.FileMode {
	t.Helper()
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return fi.Mode().Perm()
}

func TestSaveLoadDelete(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", ".mimaas", "token")
	s := New(p)

	if err := s.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m := mode(t, p); m != 0o600 {
		t.Fatalf("file mode = %#o", m)
	}
	if m := mode(t, filepath.Dir(p)); m != 0o700 {
		t.Fatalf("dir mode = %#o", m)
	}

	got, err := s.Load()
	if err != nil || got != token {
		t.Fatalf("Load = %q, %v", got, err)
	}

	if !s.Delete() {
		t.Fatalf("Delete should report removal")
	}
	if s.Delete() {
		t.Fatalf("second Delete should be false")
	}
	if got, err := s.Load(); got != "" || err != nil {
		t.Fatalf("Load after delete = %q, %v", got, err)
	}
}

func TestSaveReassertsModeOnExistingFile(t *testing.T) {
	dir := t.TempDir()
	p := kit.WriteFile(t, dir, "token", []byte("old"), 0o644)

	if err := New(p).Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m := mode(t, p); m != 0o600 {
		t.Fatalf("mode = %#o", m)
	}
}

func TestLoadMissingAndBlank(t *testing.T) {
	dir := t.TempDir()
	if got, err := New(filepath.Join(dir, "absent")).Load(); got != "" || err != nil {
		t.Fatalf("missing = %q, %v", got, err)
	}
	p := kit.WriteFile(t, dir, "blank", []byte("  \n"), 0o600)
	if got, err := New(p).Load(); got != "" || err != nil {
		t.Fatalf("blank = %q, %v", got, err)
	}
}

func TestLoadTrimsAndToleratesOtherFormats(t *testing.T) {
	p := kit.WriteFile(t, t.TempDir(), "token", []byte("custom-deployment-token\n"), 0o600)
	got, err := New(p).Load()
	if err != nil || got != "custom-deployment-token" {
		t.Fatalf("Load = %q, %v", got, err)
	}
}

func TestLoadTightensLoosePermissions(t *testing.T) {
	p := kit.WriteFile(t, t.TempDir(), "token", []byte(token), 0o644)
	if err := os.Chmod(p, 0o644); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	got, err := New(p).Load()
	if err != nil || got != token {
		t.Fatalf("Load = %q, %v", got, err)
	}
	if m := mode(t, p); m != 0o600 {
		t.Fatalf("mode after load = %#o", m)
	}
}

func TestLoadFailsLoudlyWhenTighteningFails(t *testing.T) {
	p := kit.WriteFile(t, t.TempDir(), "token", []byte(token), 0o644)
	if err := os.Chmod(p, 0o664); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	kit.Swap(t, &chmod, func(string, fs.FileMode) error { return fs.ErrPermission })

	got, err := New(p).Load()
	if got != "" {
		t.Fatalf("insecure token returned")
	}
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("err = %v", err)
	}
	kit.MustContain(t, err.Error(), "chmod 600 "+p)
	kit.MustContain(t, err.Error(), "0664")
}

func TestSaveFailuresAreConfigErrors(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token")

	kit.Swap(t, &writeFile, func(string, []byte, fs.FileMode) error { return errors.New("disk full") })
	err := New(p).Save(token)
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("write err = %v", err)
	}
	kit.MustContain(t, err.Error(), "disk full")
}

func TestSaveChmodFailure(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token")
	kit.Swap(t, &chmod, func(string, fs.FileMode) error { return fs.ErrPermission })
	if err := New(p).Save(token); !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewExpandsHome(t *testing.T) {
	home := kit.TempHome(t)
	if got := New("~/.mimaas/token").Path(); got != filepath.Join(home, ".mimaas", "token") {
		t.Fatalf("Path = %q", got)
	}
}
