package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateIncludesBuildInfo(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if !strings.HasPrefix(Template(), "pydigger v1.2.3\n") {
		t.Errorf("Template() = %q, want version line", Template())
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q, want commit", String())
	}
}

func TestUserAgent(t *testing.T) {
	old := Version
	Version = "v0.3.0"
	defer func() { Version = old }()

	if got, want := UserAgent(), "pydigger/v0.3.0 (+https://github.com/matzehuels/pydigger)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
