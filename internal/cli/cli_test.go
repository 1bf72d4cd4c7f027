package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mimaas/internal/fakeserver"
	kit "mimaas/internal/platform/testkit"
)

var model = append([]byte{0x1c, 0, 0, 0}, append([]byte("TFL3"), make([]byte, 32)...)...)

type fixture struct {
	fs   *fakeserver.Server
	url  string
	home string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := kit.TempHome(t)
	fs := fakeserver.New(fakeserver.Options{})
	srv := httptest.NewServer(fs.Handler())
	t.Cleanup(srv.Close)
	return &fixture{fs: fs, url: srv.URL, home: home}
}

// run executes the CLI against the fixture and returns exit code, stdout and stderr
func (f *fixture) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--api-url", f.url}, args...)
	code := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := newFixture(t)
	f.fs.AddUser("alice", "pw", "pro", -1)

	code, out, stderr := f.run(t, "pw\n", "login", "alice")
	if code != 0 {
		t.Fatalf("login exit %d: %s", code, stderr)
	}
	kit.MustContain(t, out, "Logged in as alice")
	kit.MustContain(t, stderr, "Password:")

	code, out, _ = f.run(t, "", "--json", "whoami")
	var u map[string]any
	if err := json.Unmarshal([]byte(out), &u); code != 0 || err != nil || u["username"] != "alice" {
		t.Fatalf("whoami = %d %q", code, out)
	}

	if code, out, _ = f.run(t, "", "logout"); code != 0 || !strings.Contains(out, "Logged out") {
		t.Fatalf("logout = %d %q", code, out)
	}
	if code, _, stderr = f.run(t, "", "whoami"); code != 4 {
		t.Fatalf("whoami after logout exit = %d (%s)", code, stderr)
	}
	kit.MustContain(t, stderr, "No API token found")
}

func TestSubmitWaitDownload(t *testing.T) {
	f := newFixture(t)
	tok := f.fs.AddUser("alice", "pw", "pro", -1)
	path := kit.WriteFile(t, f.home, "kws.tflite", model, 0o644)

	code, out, stderr := f.run(t, "", "--token", tok, "submit", path, "--board", "nrf5340dk", "--wait", "--poll-interval", "1ms")
	if code != 0 {
		t.Fatalf("submit --wait exit %d: %s", code, stderr)
	}
	kit.MustContain(t, out, "Inference Time: 18.34 ms")
	kit.MustContain(t, stderr, "request #1: done")

	dir := filepath.Join(t.TempDir(), "out")
	code, out, stderr = f.run(t, "", "--token", tok, "download", "1", "-k", "ram_report", "-k", "power_summary", "-k", "model", "-o", dir)
	if code != 0 {
		t.Fatalf("download exit %d: %s", code, stderr)
	}
	for _, name := range []string{"ram.json", "ppk2_summary.csv", "model.tflite"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not downloaded: %v", name, err)
		}
	}
	if strings.Count(out, "Downloaded") != 3 {
		t.Fatalf("download output = %q", out)
	}

	code, out, _ = f.run(t, "", "--token", tok, "list", "--status", "done")
	if code != 0 || !strings.Contains(out, "nrf5340dk") {
		t.Fatalf("list = %d %q", code, out)
	}
	if code, out, _ = f.run(t, "", "--token", tok, "status", "1"); code != 0 || !strings.HasPrefix(out, "Request #1: done") {
		t.Fatalf("status = %d %q", code, out)
	}
	if code, _, _ = f.run(t, "", "--token", tok, "delete", "1"); code != 0 {
		t.Fatalf("delete exit = %d", code)
	}
	if code, _, _ = f.run(t, "", "--token", tok, "delete", "1"); code != 7 {
		t.Fatalf("second delete exit = %d", code)
	}
}

func TestExitCodes(t *testing.T) {
	f := newFixture(t)
	tok := f.fs.AddUser("alice", "pw", "free", 0)
	path := kit.WriteFile(t, f.home, "kws.tflite", model, 0o644)

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"quota", []string{"--token", tok, "submit", path, "-b", "nrf5340dk"}, 5},
		{"missing model", []string{"--token", tok, "submit", filepath.Join(f.home, "nope.tflite"), "-b", "nrf5340dk"}, 7},
		{"bad id", []string{"--token", tok, "status", "abc"}, 6},
		{"bad kind", []string{"--token", tok, "download", "1", "-k", "flash_dump"}, 6},
		{"bad status filter", []string{"--token", tok, "list", "--status", "queued"}, 6},
		{"unknown board", []string{"board", "ghost"}, 7},
		{"bad api url", []string{"--api-url", "ftp://x", "boards"}, 10},
		{"usage", []string{"status"}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, _, stderr := f.run(t, "", c.args...)
			if code != c.want {
				t.Fatalf("exit = %d, want %d (%s)", code, c.want, stderr)
			}
		})
	}
}

func TestCatalogCommands(t *testing.T) {
	f := newFixture(t)

	code, out, _ := f.run(t, "", "boards")
	if code != 0 || !strings.Contains(out, "stm32h747i_disco") || !strings.HasPrefix(out, "NAME") {
		t.Fatalf("boards = %d %q", code, out)
	}
	if code, out, _ = f.run(t, "", "board", "nrf5340dk"); code != 0 || !strings.Contains(out, "RAM: 512 KB") {
		t.Fatalf("board = %d %q", code, out)
	}
	if code, out, _ = f.run(t, "", "board-status", "nrf5340dk"); code != 0 || !strings.Contains(out, "total: 2") {
		t.Fatalf("board-status = %d %q", code, out)
	}
	if code, out, _ = f.run(t, "", "plans"); code != 0 || !strings.Contains(out, "Pro Plan: 200 runs - $19.99 USD") {
		t.Fatalf("plans = %d %q", code, out)
	}
	if code, out, _ = f.run(t, "", "version"); code != 0 || !strings.HasPrefix(out, "mimaas-go") {
		t.Fatalf("version = %d %q", code, out)
	}
}

func TestValidateAndRegister(t *testing.T) {
	f := newFixture(t)
	path := kit.WriteFile(t, f.home, "kws.tflite", model, 0o644)

	code, _, stderr := f.run(t, "", "register", "neo", "--email", "neo@example.com", "--first-name", "Thomas", "--surname", "Anderson", "-p", "red")
	if code != 0 {
		t.Fatalf("register exit %d: %s", code, stderr)
	}

	code, out, _ := f.run(t, "", "validate", path, "-b", "nrf5340dk")
	if code != 0 || !strings.Contains(out, "Model is valid") {
		t.Fatalf("validate = %d %q", code, out)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	f := newFixture(t)

	if code, _, stderr := f.run(t, "", "config", "set", "timeout", "30"); code != 0 {
		t.Fatalf("config set exit %d: %s", code, stderr)
	}
	if code, _, _ := f.run(t, "", "config", "set", "colour", "blue"); code != 6 {
		t.Fatalf("unknown key exit = %d", code)
	}
	raw, err := os.ReadFile(filepath.Join(f.home, ".mimaas", "config.yaml"))
	if err != nil {
		t.Fatalf("config file: %v", err)
	}
	kit.MustContain(t, string(raw), "timeout: 30")

	code, out, _ := f.run(t, "", "config", "show")
	if code != 0 {
		t.Fatalf("config show exit %d", code)
	}
	kit.MustContain(t, out, "timeout: 30s (config_file)")
	kit.MustContain(t, out, "api_url: "+f.url+" (explicit)")
}
