package lifecycle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mimaas/internal/core/coretest"
	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
)

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + i/7)
	}
	return b
}

func TestDownloadStreamsByteIdentical(t *testing.T) {
	body := payload(5*chunkSize + 123)
	l, tr, _ := newTestLifecycle(coretest.Reply{Status: 200, Body: body})

	dest := filepath.Join(t.TempDir(), "runs", "42", "samples.csv")
	n, err := l.DownloadArtifact(context.Background(), 42, domain.ArtifactPowerSamples, dest, DownloadOptions{})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != int64(len(body)) {
		t.Fatalf("n = %d, want %d", n, len(body))
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("content differs")
	}
	if p := tr.Last().Path; p != "/api/requests/42/artifacts/power_samples" {
		t.Fatalf("path = %q", p)
	}
	assertNoPartials(t, filepath.Dir(dest))
}

func TestDownloadIntoDirectoryUsesKindFileName(t *testing.T) {
	dir := t.TempDir()
	l, _, _ := newTestLifecycle(coretest.Text(200, `{"total": 1}`))

	if _, err := l.DownloadArtifact(context.Background(), 1, domain.ArtifactRAMReport, dir, DownloadOptions{}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ram.json")); err != nil {
		t.Fatalf("ram.json missing: %v", err)
	}
}

func TestDownloadUsesServerFolder(t *testing.T) {
	dir := t.TempDir()
	l, tr, _ := newTestLifecycle(
		coretest.JSON(200, reqDoc(9, "done", map[string]any{"folder_name": "req_9_abc"})),
		coretest.Text(200, "rom"),
	)

	dest := filepath.Join(dir, "rom.json")
	if _, err := l.DownloadArtifact(context.Background(), 9, domain.ArtifactROMReport, dest, DownloadOptions{UseServerFolder: true}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "req_9_abc", "rom.json")); err != nil {
		t.Fatalf("file not under server folder: %v", err)
	}
	if calls := tr.Calls(); len(calls) != 2 || calls[0].Op != "fetch" {
		t.Fatalf("calls = %d", len(calls))
	}
}

func TestDownloadRejectsEscapingServerFolder(t *testing.T) {
	l, tr, _ := newTestLifecycle(coretest.JSON(200, reqDoc(9, "done", map[string]any{"folder_name": "../../etc"})))
	_, err := l.DownloadArtifact(context.Background(), 9, domain.ArtifactModel, filepath.Join(t.TempDir(), "m.tflite"), DownloadOptions{UseServerFolder: true})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if len(tr.Calls()) != 1 {
		t.Fatalf("artifact fetched despite unsafe folder")
	}
}

func TestDownloadFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	l, _, _ := newTestLifecycle(coretest.JSON(404, map[string]string{"message": "Artifact not available"}))

	dest := filepath.Join(dir, "out", "all.zip")
	_, err := l.DownloadArtifact(context.Background(), 3, domain.ArtifactAll, dest, DownloadOptions{})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatalf("destination exists after failure")
	}
}

func TestDownloadValidatesInput(t *testing.T) {
	l, tr, _ := newTestLifecycle()
	if _, err := l.DownloadArtifact(context.Background(), 1, "heap_dump", t.TempDir(), DownloadOptions{}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("kind err = %v", err)
	}
	if _, err := l.DownloadArtifact(context.Background(), 1, domain.ArtifactModel, " ", DownloadOptions{}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("dest err = %v", err)
	}
	if len(tr.Calls()) != 0 {
		t.Fatalf("network used for invalid input")
	}
}

type failingReader struct{ after int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, perr.Networkf("connection reset")
	}
	n := min(len(p), f.after)
	f.after -= n
	return n, nil
}

func TestWriteAtomicRemovesPartialOnReadError(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "samples.csv")

	_, err := writeAtomic(dest, &failingReader{after: 3 * chunkSize})
	if !perr.IsCode(err, perr.ErrorCodeNetwork) {
		t.Fatalf("err = %v", err)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatalf("partial file promoted")
	}
	assertNoPartials(t, dir)
}

func assertNoPartials(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".part-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}
