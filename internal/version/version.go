// Package version holds build information injected at link time.
package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/khbuild/internal/version.Version=<tag>
	Commit  = "unknown" // -X github.com/arthur-debert/khbuild/internal/version.Commit=<sha>
	Date    = "unknown" // -X github.com/arthur-debert/khbuild/internal/version.Date=<date>
)
