// Package buildinfo carries the version stamped into pydigger binaries.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pydigger/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/pydigger/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/pydigger/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/pydigger
package buildinfo

import "fmt"

// Project is the program name reported to users and remote services.
const Project = "pydigger"

// Homepage is linked from the User-Agent so index operators can reach us.
const Homepage = "https://github.com/matzehuels/pydigger"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", Project, Version, Commit, Date)
}

// UserAgent returns the User-Agent sent with every request to the package
// index, e.g. "pydigger/v0.3.0 (+https://github.com/matzehuels/pydigger)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+%s)", Project, Version, Homepage)
}
