// Package buildinfo exposes the version stamped into the aurorus binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/aurorus/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/aurorus/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/aurorus/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"     // release tag, "dev" for local builds
	Commit  = "none"    // short git SHA
	Date    = "unknown" // UTC build time
)

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent is the HTTP User-Agent sent to the AUR.
func UserAgent() string {
	return "aurorus/" + Version + " (+https://github.com/matzehuels/aurorus)"
}
