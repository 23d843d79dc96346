// Package buildinfo holds the version stamped into the ordiview binary.
//
// The variables are overwritten at link time:
//
//	go build -ldflags "-X github.com/matzehuels/ordiview/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/ordiview/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/ordiview/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Banner is the one-line form written into generated pages.
func Banner() string {
	return fmt.Sprintf("ordiview %s (%s)", Version, Commit)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
