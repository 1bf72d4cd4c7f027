package domain

import (
	"strings"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusDone, true},
		{StatusPending, StatusError, true},
		{StatusProcessing, StatusDone, true},
		{StatusProcessing, StatusError, true},
		{StatusProcessing, StatusPending, false},
		{StatusDone, StatusError, false},
		{StatusError, StatusDone, false},
		{StatusDone, StatusPending, false},
		{StatusDone, StatusDone, true},
		{StatusPending, Status("queued"), false},
		{Status("queued"), StatusDone, false},
	}
	for _, c := range cases {
		if got := c.from.CanAdvance(c.to); got != c.want {
			t.Fatalf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range Statuses {
		if !s.Known() {
			t.Fatalf("%s should be known", s)
		}
	}
	if !StatusDone.Terminal() || !StatusError.Terminal() || StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Fatalf("Terminal mismatch")
	}
	if Status("x").Rank() != -1 || Status("x").Known() {
		t.Fatalf("unknown status handling")
	}
}

func TestArtifactKinds(t *testing.T) {
	for _, k := range ArtifactKinds {
		if !k.Valid() || k.FileName() == "" {
			t.Fatalf("%s should be valid with a file name", k)
		}
	}
	if k, ok := ParseArtifactKind(" Power_Samples "); !ok || k != ArtifactPowerSamples {
		t.Fatalf("ParseArtifactKind = %q, %v", k, ok)
	}
	if _, ok := ParseArtifactKind("flash_dump"); ok {
		t.Fatalf("unknown kind accepted")
	}
	if ArtifactPowerSummary.FileName() != "ppk2_summary.csv" {
		t.Fatalf("file name = %q", ArtifactPowerSummary.FileName())
	}
}

func TestResultsDerived(t *testing.T) {
	r := Results{RAMUsageBytes: 2048, ROMUsageBytes: 10240, DurationAvgS: 0.0125, AvgPowerUW: 1500.5, AvgEnergyUJ: 18.75}
	if r.InferenceTimeMs() != 12.5 || r.RAMUsageKB() != 2 || r.ROMUsageKB() != 10 {
		t.Fatalf("derived values wrong: %v %v %v", r.InferenceTimeMs(), r.RAMUsageKB(), r.ROMUsageKB())
	}
	s := r.String()
	for _, want := range []string{"Inference Time: 12.50 ms", "RAM: 2.0 KB", "Flash: 10.0 KB", "Energy: 18.75"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() missing %q:\n%s", want, s)
		}
	}
}

func TestRequestString(t *testing.T) {
	failed := Request{ID: 7, Status: StatusError, ErrorMessage: "flash failed"}
	if got := failed.String(); got != "Request #7: error\n  Error: flash failed" {
		t.Fatalf("String() = %q", got)
	}
	done := Request{ID: 8, Status: StatusDone, Results: &Results{}}
	if !strings.HasPrefix(done.String(), "Request #8: done\n  Results:") {
		t.Fatalf("String() = %q", done.String())
	}
	if got := (Request{ID: 9, Status: StatusPending}).String(); got != "Request #9: pending" {
		t.Fatalf("String() = %q", got)
	}
}

func TestPlanAndBoardString(t *testing.T) {
	free := Plan{Name: "free", AvailableRuns: 10, Currency: "USD"}
	if got := free.String(); got != "Free Plan: 10 runs - Free" {
		t.Fatalf("free plan = %q", got)
	}
	pro := Plan{Name: "pro tier", AvailableRuns: 500, Price: 49, Currency: "EUR"}
	if got := pro.String(); got != "Pro Tier Plan: 500 runs - $49.00 EUR" {
		t.Fatalf("pro plan = %q", got)
	}

	b := Board{Name: "nrf5340dk", FlashSizeKB: 1024, RAMSizeKB: 512, AvailableCount: 2}
	if b.FlashSizeBytes() != 1<<20 || b.RAMSizeBytes() != 512*1024 {
		t.Fatalf("byte helpers wrong")
	}
	if !strings.Contains(b.String(), "Available: 2 board(s)") {
		t.Fatalf("board String() = %q", b.String())
	}
}
