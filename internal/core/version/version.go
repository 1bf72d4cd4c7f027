// Package version provides information about the build version of the client.
package version

// BuildInfo holds version information about the client build.
type BuildInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'mimaas/internal/core/version.version=v0.1.0'
	// -X 'mimaas/internal/core/version.commit=abcd' -X 'mimaas/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Name:    "mimaas-go",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// UserAgent is the User-Agent header sent with every API call
func UserAgent() string {
	i := Info()
	return i.Name + "/" + i.Version
}

func (b BuildInfo) String() string {
	return b.Name + " " + b.Version + " (commit " + b.Commit + ", built " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
