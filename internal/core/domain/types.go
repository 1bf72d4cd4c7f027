// Package domain holds the client's data model and the capabilities the
// core consumes
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the remote lifecycle state of a work item
type Status string

// Status values reported by the service
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Statuses lists every known status in lifecycle order
var Statuses = []Status{StatusPending, StatusProcessing, StatusDone, StatusError}

// Known reports whether s is one of the four service states
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDone, StatusError:
		return true
	}
	return false
}

// Terminal reports whether no further transitions can occur
func (s Status) Terminal() bool { return s == StatusDone || s == StatusError }

// Rank orders statuses along the lifecycle; unknown statuses rank -1
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusDone, StatusError:
		return 2
	}
	return -1
}

// CanAdvance reports whether moving from s to next is a valid observation:
// staying put, Pending->Processing, or a non-terminal state to Done/Error
func (s Status) CanAdvance(next Status) bool {
	if s == next {
		return true
	}
	if s.Terminal() || !next.Known() || !s.Known() {
		return false
	}
	return next.Rank() > s.Rank()
}

// Results is the evaluation summary attached to a finished request
type Results struct {
	RAMUsageBytes int64   `json:"ram_usage"`
	ROMUsageBytes int64   `json:"rom_usage"`
	DurationAvgS  float64 `json:"duration_avg_s"`
	AvgPowerUW    float64 `json:"avg_power_uW"`
	AvgEnergyUJ   float64 `json:"avg_energy_uJ"`
}

// InferenceTimeMs is the average inference time in milliseconds
func (r Results) InferenceTimeMs() float64 { return r.DurationAvgS * 1000 }

// RAMUsageKB is RAM usage in KiB
func (r Results) RAMUsageKB() float64 { return float64(r.RAMUsageBytes) / 1024 }

// ROMUsageKB is flash usage in KiB
func (r Results) ROMUsageKB() float64 { return float64(r.ROMUsageBytes) / 1024 }

func (r Results) String() string {
	return fmt.Sprintf("Results:\n"+
		"  Inference Time: %.2f ms\n"+
		"  Energy: %.2f µJ\n"+
		"  Power: %.2f µW\n"+
		"  RAM: %.1f KB\n"+
		"  Flash: %.1f KB",
		r.InferenceTimeMs(), r.AvgEnergyUJ, r.AvgPowerUW, r.RAMUsageKB(), r.ROMUsageKB())
}

// Request is one submitted evaluation job (a work item)
// Results is nil until the service attaches a well-formed summary
type Request struct {
	ID           int64    `json:"id"`
	Status       Status   `json:"status"`
	Board        string   `json:"board"`
	Quantize     bool     `json:"quantize"`
	Network      string   `json:"network,omitempty"`
	FolderName   string   `json:"folder_name,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      *Results `json:"result,omitempty"`
}

func (r Request) String() string {
	s := fmt.Sprintf("Request #%d: %s", r.ID, r.Status)
	switch {
	case r.Status == StatusError && r.ErrorMessage != "":
		s += "\n  Error: " + r.ErrorMessage
	case r.Status == StatusDone && r.Results != nil:
		s += "\n  " + r.Results.String()
	}
	return s
}

// ArtifactKind names one downloadable result stream
type ArtifactKind string

// Artifact kinds served under /api/requests/{id}/artifacts/{kind}
const (
	ArtifactRAMReport    ArtifactKind = "ram_report"
	ArtifactROMReport    ArtifactKind = "rom_report"
	ArtifactPowerSummary ArtifactKind = "power_summary"
	ArtifactPowerSamples ArtifactKind = "power_samples"
	ArtifactModel        ArtifactKind = "model"
	ArtifactAll          ArtifactKind = "all"
)

// ArtifactKinds lists every kind
var ArtifactKinds = []ArtifactKind{
	ArtifactRAMReport, ArtifactROMReport, ArtifactPowerSummary,
	ArtifactPowerSamples, ArtifactModel, ArtifactAll,
}

var artifactFiles = map[ArtifactKind]string{
	ArtifactRAMReport:    "ram.json",
	ArtifactROMReport:    "rom.json",
	ArtifactPowerSummary: "ppk2_summary.csv",
	ArtifactPowerSamples: "ppk2_samples.csv",
	ArtifactModel:        "model.tflite",
	ArtifactAll:          "artifacts.zip",
}

// Valid reports whether k is a known kind
func (k ArtifactKind) Valid() bool {
	_, ok := artifactFiles[k]
	return ok
}

// FileName is the conventional local file name for k
func (k ArtifactKind) FileName() string { return artifactFiles[k] }

// ParseArtifactKind accepts a kind name, case-insensitively
func ParseArtifactKind(s string) (ArtifactKind, bool) {
	k := ArtifactKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// ValidationReport is the outcome of a dry-run model check
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ListFilter narrows a request listing; empty fields are not sent
type ListFilter struct {
	Status Status `json:"status" validate:"omitempty,oneof=pending processing done error"`
	Board  string `json:"board"`
}

// User is the authenticated account profile
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	Surname       string `json:"surname"`
	AvailableRuns int    `json:"available_runs"`
	Plan          string `json:"plan"`
}

// Registration is the payload for creating an account
type Registration struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Plan      string `json:"plan"`
}

// Board describes a board type (not an individual device)
type Board struct {
	Name             string `json:"name"`
	Variant          string `json:"variant"`
	BoardType        string `json:"board_type"`
	FlashSizeKB      int    `json:"flash_size_kb"`
	RAMSizeKB        int    `json:"ram_size_kb"`
	MaxTensorArenaKB int    `json:"max_tensor_arena_kb"`
	VoltageMV        int    `json:"voltage_mv"`
	AvailableCount   int    `json:"available_count"`
}

// FlashSizeBytes is the flash size in bytes
func (b Board) FlashSizeBytes() int { return b.FlashSizeKB * 1024 }

// RAMSizeBytes is the RAM size in bytes
func (b Board) RAMSizeBytes() int { return b.RAMSizeKB * 1024 }

func (b Board) String() string {
	return fmt.Sprintf("Board Type: %s\n"+
		"  Variant: %s\n"+
		"  Flash: %d KB\n"+
		"  RAM: %d KB\n"+
		"  Max Tensor Arena: %d KB\n"+
		"  Voltage: %d mV\n"+
		"  Available: %d board(s)",
		b.Name, b.Variant, b.FlashSizeKB, b.RAMSizeKB, b.MaxTensorArenaKB, b.VoltageMV, b.AvailableCount)
}

// BoardStatus is the free-form availability document for a board
type BoardStatus map[string]any

// Plan is a subscription plan
type Plan struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AvailableRuns int     `json:"available_runs"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
}

func (p Plan) String() string {
	price := "Free"
	if p.Price != 0 {
		price = fmt.Sprintf("$%.2f %s", p.Price, p.Currency)
	}
	return fmt.Sprintf("%s Plan: %d runs - %s", cases.Title(language.English).String(p.Name), p.AvailableRuns, price)
}
