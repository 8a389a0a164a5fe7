// Package vcs classifies repository URLs by hosting provider and probes
// GitHub and GitLab repositories for CI and dependency-automation
// configuration.
//
// Probing is a three-step affair: a cheap reference listing verifies the
// remote answers, a depth-1 clone into a temporary directory fetches the
// tree, and a handful of well-known paths are inspected. The temporary
// directory never outlives the probe.
package vcs

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind is the hosting provider of a repository.
type Kind int

const (
	// Unclassifiable URLs lack a host or an owner/repo path.
	Unclassifiable Kind = iota
	GitHub
	GitLab
	Other
)

func (k Kind) String() string {
	switch k {
	case GitHub:
		return "github"
	case GitLab:
		return "gitlab"
	case Other:
		return "other"
	default:
		return "unclassifiable"
	}
}

// Host is a classified repository URL.
type Host struct {
	Kind     Kind
	Hostname string // lowercase, without port
	Owner    string // first path segment (user, organization or top group)
	Repo     string // last path segment, without .git
	Path     string // owner/.../repo
	CloneURL string // https URL suitable for anonymous clone and ls-remote
}

var scpLikeRE = regexp.MustCompile(`^(?:[A-Za-z0-9._-]+@)?([A-Za-z0-9.-]+):(.+)$`)

// Classify parses raw and identifies its hosting provider.
//
// Accepted forms are http(s)://host/owner/repo[/...], the same prefixed with
// "git+", git://host/owner/repo, ssh://[user@]host/owner/repo and the
// scp-like user@host:owner/repo. Anything else is Unclassifiable.
func Classify(raw string) Host {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	if s == "" {
		return Host{}
	}

	var hostname, path string
	if !strings.Contains(s, "://") {
		m := scpLikeRE.FindStringSubmatch(s)
		if m == nil || !strings.Contains(m[1], ".") {
			return Host{}
		}
		hostname, path = m[1], m[2]
	} else {
		u, err := url.Parse(s)
		if err != nil {
			return Host{}
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "git", "ssh":
		default:
			return Host{}
		}
		hostname, path = u.Hostname(), u.Path
	}

	hostname = strings.TrimPrefix(strings.ToLower(hostname), "www.")
	if hostname == "" {
		return Host{}
	}

	kind := Other
	switch hostname {
	case "github.com":
		kind = GitHub
	case "gitlab.com":
		kind = GitLab
	}

	segments := repoSegments(kind, path)
	if len(segments) < 2 {
		return Host{}
	}
	segments[len(segments)-1] = strings.TrimSuffix(segments[len(segments)-1], ".git")
	if segments[len(segments)-1] == "" {
		return Host{}
	}

	repoPath := strings.Join(segments, "/")
	return Host{
		Kind:     kind,
		Hostname: hostname,
		Owner:    segments[0],
		Repo:     segments[len(segments)-1],
		Path:     repoPath,
		CloneURL: "https://" + hostname + "/" + repoPath + ".git",
	}
}

// repoSegments returns the path segments naming the repository itself.
// GitHub and unknown hosts use owner/repo. GitLab allows nested groups and
// separates the project path from sub-pages with a "-" segment.
func repoSegments(kind Kind, path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if kind != GitLab {
		if len(segments) > 2 {
			segments = segments[:2]
		}
		return segments
	}
	for i, seg := range segments {
		if seg == "-" {
			return segments[:i]
		}
	}
	return segments
}
