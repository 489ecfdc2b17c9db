// Package buildinfo holds the version stamped into stackflow binaries.
//
// The linker sets the variables at release time:
//
//	go build -ldflags "-X github.com/matzehuels/stackflow/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/stackflow/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/stackflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Stamped at link time. Development builds keep the placeholders.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a one-line summary, e.g. "v0.3.0 (abc1234, 2025-06-01T12:00:00Z)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

// Template returns the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt:  %s\n", Version, Commit, Date)
}
