// Package version holds build metadata injected at link time via
// -ldflags "-X github.com/Sumatoshi-tech/replicat/pkg/version.Version=...".
package version

// Build metadata. Defaults cover plain `go build` with no ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
