package version

import (
	"testing"

	kit "mimaas/internal/platform/testkit"
)

func TestUserAgent(t *testing.T) {
	kit.Swap(t, &version, "1.2.3")
	if got := UserAgent(); got != "mimaas-go/1.2.3" {
		t.Fatalf("UserAgent = %q", got)
	}
}

func TestInfoString(t *testing.T) {
	kit.Swap(t, &commit, "abc123")
	kit.MustContain(t, Info().String(), "commit abc123")
}
