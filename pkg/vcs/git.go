package vcs

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/matzehuels/pydigger/pkg/errors"
)

// Git is the transport the prober needs: a reachability check and a
// shallow clone.
type Git interface {
	// Verify lists the remote's references without fetching objects.
	Verify(ctx context.Context, url string) error

	// Clone checks out the default branch of url into dir with the given
	// history depth.
	Clone(ctx context.Context, url, dir string, depth int) error
}

// GoGit implements Git with go-git, so no git binary is required.
type GoGit struct{}

// Verify implements Git.
func (GoGit) Verify(ctx context.Context, url string) error {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return errors.Wrap(errors.ErrCodeProbe, err, "ls-remote %s", url)
	}
	if len(refs) == 0 {
		return errors.New(errors.ErrCodeProbe, "ls-remote %s: no references", url)
	}
	return nil
}

// Clone implements Git.
func (GoGit) Clone(ctx context.Context, url, dir string, depth int) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeProbe, err, "clone %s", url)
	}
	return nil
}

var _ Git = GoGit{}
