package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/record"
)

// DefaultDepth is the clone depth used when none is configured.
const DefaultDepth = 1

// Result describes what a probe did. Err is the failure that stopped the
// probe early, if any; it has already been logged.
type Result struct {
	Host      Host
	Verified  bool
	Inspected bool
	Duration  time.Duration
	Err       error
}

// Prober detects CI and dependency-automation configuration of a record's
// repository and records it in the record's tri-state flags.
type Prober struct {
	git    Git
	logger *log.Logger
	tmpDir string
	depth  int
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithTempDir sets the parent directory for checkouts (os.TempDir by default).
func WithTempDir(dir string) ProberOption {
	return func(p *Prober) { p.tmpDir = dir }
}

// WithDepth sets the clone depth.
func WithDepth(depth int) ProberOption {
	return func(p *Prober) {
		if depth > 0 {
			p.depth = depth
		}
	}
}

// NewProber returns a prober using g for transport. A nil logger means
// log.Default().
func NewProber(g Git, logger *log.Logger, opts ...ProberOption) *Prober {
	if g == nil {
		g = GoGit{}
	}
	if logger == nil {
		logger = log.Default()
	}
	p := &Prober{git: g, logger: logger, depth: DefaultDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe classifies r's repository and, for GitHub and GitLab, checks it for
// CI and Dependabot configuration.
//
// Flags for the identified host are set to false as soon as the host is
// known and flipped to true only by a successful inspection. A record
// without a repository is left untouched. Failures are logged and returned
// in Result.Err; they never abort the caller.
func (p *Prober) Probe(ctx context.Context, r *record.Record) Result {
	start := time.Now()
	res := p.probe(ctx, r)
	res.Duration = time.Since(start)
	return res
}

func (p *Prober) probe(ctx context.Context, r *record.Record) Result {
	repo := r.Repository
	if repo == "" {
		return Result{}
	}

	host := Classify(repo)
	res := Result{Host: host}
	switch host.Kind {
	case GitHub:
		p.logger.Info("project uses GitHub", "name", r.Name)
		r.HasGitHubActions = record.False
		r.HasDependabot = record.False
	case GitLab:
		p.logger.Info("project uses GitLab", "name", r.Name)
		r.HasGitLabPipeline = record.False
	case Other:
		p.logger.Info("repository on unsupported host", "name", r.Name, "host", host.Hostname)
		return res
	default:
		p.logger.Warn("unrecognized repository url", "name", r.Name, "url", repo)
		return res
	}

	if err := p.git.Verify(ctx, host.CloneURL); err != nil {
		p.logger.Error("repository does not respond", "name", r.Name, "url", host.CloneURL, "err", err)
		res.Err = err
		return res
	}
	res.Verified = true
	p.logger.Debug("verified repository", "name", r.Name, "url", host.CloneURL)

	dir, err := os.MkdirTemp(p.tmpDir, "pydigger-probe-*")
	if err != nil {
		res.Err = errors.Wrap(errors.ErrCodeProbe, err, "create checkout dir")
		p.logger.Error("cannot create checkout dir", "name", r.Name, "err", err)
		return res
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("cannot remove checkout", "dir", dir, "err", err)
		}
	}()

	if err := p.git.Clone(ctx, host.CloneURL, dir, p.depth); err != nil {
		p.logger.Error("checkout failed", "name", r.Name, "url", host.CloneURL, "err", err)
		res.Err = err
		return res
	}

	switch host.Kind {
	case GitHub:
		actions, dependabot, err := InspectGitHub(dir)
		if err != nil {
			p.logger.Error("inspection failed", "name", r.Name, "err", err)
			res.Err = err
			return res
		}
		r.HasGitHubActions = record.Known(actions)
		r.HasDependabot = record.Known(dependabot)
		p.logger.Info("inspected GitHub repository", "name", r.Name, "actions", actions, "dependabot", dependabot)
	case GitLab:
		pipeline, err := InspectGitLab(dir)
		if err != nil {
			p.logger.Error("inspection failed", "name", r.Name, "err", err)
			res.Err = err
			return res
		}
		r.HasGitLabPipeline = record.Known(pipeline)
		p.logger.Info("inspected GitLab repository", "name", r.Name, "pipeline", pipeline)
	}
	res.Inspected = true
	return res
}

// InspectGitHub reports whether the checkout at root has at least one
// workflow file under .github/workflows and a Dependabot configuration.
func InspectGitHub(root string) (actions, dependabot bool, err error) {
	entries, err := os.ReadDir(filepath.Join(root, ".github", "workflows"))
	if err != nil && !os.IsNotExist(err) {
		return false, false, errors.Wrap(errors.ErrCodeProbe, err, "read workflows")
	}
	for _, e := range entries {
		if !e.IsDir() && isYAML(e.Name()) {
			actions = true
			break
		}
	}
	dependabot, err = anyFile(filepath.Join(root, ".github"), "dependabot.yml", "dependabot.yaml")
	return actions, dependabot, err
}

// InspectGitLab reports whether the checkout at root has a root-level
// GitLab CI configuration.
func InspectGitLab(root string) (bool, error) {
	return anyFile(root, ".gitlab-ci.yml", ".gitlab-ci.yaml")
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}

func anyFile(dir string, names ...string) (bool, error) {
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.Mode().IsRegular() {
			return true, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return false, errors.Wrap(errors.ErrCodeProbe, err, "stat %s", name)
		}
	}
	return false, nil
}
