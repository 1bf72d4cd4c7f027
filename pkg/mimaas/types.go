package mimaas

import (
	"mimaas/internal/core/domain"
	"mimaas/internal/core/lifecycle"
	"mimaas/internal/platform/clock"
)

// Data model
type (
	Request          = domain.Request
	Results          = domain.Results
	Status           = domain.Status
	ArtifactKind     = domain.ArtifactKind
	Board            = domain.Board
	BoardStatus      = domain.BoardStatus
	Plan             = domain.Plan
	User             = domain.User
	Registration     = domain.Registration
	ListFilter       = domain.ListFilter
	ValidationReport = domain.ValidationReport
)

// Operation options
type (
	WaitOptions     = lifecycle.WaitOptions
	WaitTimeout     = lifecycle.WaitTimeout
	DownloadOptions = lifecycle.DownloadOptions
	Clock           = clock.Clock
)

// Request statuses
const (
	StatusPending    = domain.StatusPending
	StatusProcessing = domain.StatusProcessing
	StatusDone       = domain.StatusDone
	StatusError      = domain.StatusError
)

// Artifact kinds
const (
	ArtifactRAMReport    = domain.ArtifactRAMReport
	ArtifactROMReport    = domain.ArtifactROMReport
	ArtifactPowerSummary = domain.ArtifactPowerSummary
	ArtifactPowerSamples = domain.ArtifactPowerSamples
	ArtifactModel        = domain.ArtifactModel
	ArtifactAll          = domain.ArtifactAll
)

// Wait defaults
const (
	DefaultWaitTimeout  = lifecycle.DefaultWaitTimeout
	DefaultPollInterval = lifecycle.DefaultPollInterval
)

// ParseArtifactKind accepts a kind name, case-insensitively
func ParseArtifactKind(s string) (ArtifactKind, bool) { return domain.ParseArtifactKind(s) }
