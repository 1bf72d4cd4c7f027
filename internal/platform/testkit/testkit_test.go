package testkit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustContain(t *testing.T) {
	t.Parallel()

	MustContain(t, "alpha beta gamma", "beta")
}

var seamFn = func() string { return "real" }

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &seamFn, func() string { return "fake" })
		if got := seamFn(); got != "fake" {
			t.Fatalf("swap did not take effect, got %q", got)
		}
	})
	if got := seamFn(); got != "real" {
		t.Fatalf("swap did not restore original, got %q", got)
	}
}

func TestTempHome(t *testing.T) {
	t.Setenv("MIMAAS_API_TOKEN", "leaked")
	home := TempHome(t)
	if os.Getenv("HOME") != home {
		t.Fatalf("HOME not set to temp dir")
	}
	if os.Getenv("MIMAAS_API_TOKEN") != "" {
		t.Fatalf("MIMAAS_API_TOKEN should be cleared")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := WriteFile(t, dir, "a/b/token", []byte("x"), 0o644)
	if p != filepath.Join(dir, "a", "b", "token") {
		t.Fatalf("path = %q", p)
	}
	st, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %v", st.Mode().Perm())
	}
}
