package types

import "time"

// Mode selects what a run does
type Mode string

const (
	ModePatch   Mode = "patch"
	ModeExtract Mode = "extract"
	ModeRestore Mode = "restore"
	ModeBackup  Mode = "backup"
	ModeStatus  Mode = "status"
)

// Warning is a recoverable problem reported during a run
type Warning struct {
	Path     string `json:"path"`
	Original string `json:"original,omitempty"`
	Message  string `json:"message"`
}

// PackageReport summarizes what happened to one package during a run
type PackageReport struct {
	Package     PackageID `json:"package"`
	StagedFiles int       `json:"stagedFiles"`
	BackedUp    bool      `json:"backedUp"`
	Restored    bool      `json:"restored"`
	Patched     bool      `json:"patched"`
	Extracted   bool      `json:"extracted"`
	HasBackup   bool      `json:"hasBackup"`
	// ChecksumOK is nil when the checksum was not checked
	ChecksumOK *bool `json:"checksumOK,omitempty"`
}

// RunReport is the outcome of one run, used for display
type RunReport struct {
	Mode     Mode            `json:"mode"`
	Title    string          `json:"title"`
	Region   string          `json:"region"`
	Packages []PackageReport `json:"packages"`
	Warnings []Warning       `json:"warnings,omitempty"`
	// StagingDir is set when the staging tree was kept on disk
	StagingDir string        `json:"stagingDir,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Package returns the report entry for id, adding one if needed
func (r *RunReport) Package(id PackageID) *PackageReport {
	for i := range r.Packages {
		if r.Packages[i].Package == id {
			return &r.Packages[i]
		}
	}
	r.Packages = append(r.Packages, PackageReport{Package: id})
	return &r.Packages[len(r.Packages)-1]
}
