package report

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydigger/pkg/record"
	"github.com/matzehuels/pydigger/pkg/resolve"
	"github.com/matzehuels/pydigger/pkg/vcs"
)

// VCSSummary buckets records by the host of their source repository.
//
// no_vcs_count + bad_vcs_count + github_count + gitlab_count + hosts["other"]
// always equals the report total.
type VCSSummary struct {
	Hosts map[string]int `json:"hosts"`

	NoVCSCount     int               `json:"no_vcs_count"`
	NoVCS          []record.Exemplar `json:"no_vcs"`
	BadVCSCount    int               `json:"bad_vcs_count"`
	BadVCS         []record.Exemplar `json:"bad_vcs"`
	GitHubCount    int               `json:"github_count"`
	GitHubProjects []record.Exemplar `json:"github_projects"`
	GitLabCount    int               `json:"gitlab_count"`
	GitLabProjects []record.Exemplar `json:"gitlab_projects"`

	NoGitHubActionsCount  int               `json:"no_github_actions_count"`
	NoGitHubActions       []record.Exemplar `json:"no_github_actions"`
	HasGitHubActionsCount int               `json:"has_github_actions_count"`
	HasGitHubActions      []record.Exemplar `json:"has_github_actions"`
	NoDependabotCount     int               `json:"no_dependabot_count"`
	NoDependabot          []record.Exemplar `json:"no_dependabot"`
	HasDependabotCount    int               `json:"has_dependabot_count"`
	HasDependabot         []record.Exemplar `json:"has_dependabot"`

	HasGitLabPipelineCount int               `json:"has_gitlab_pipeline_count"`
	HasGitLabPipeline      []record.Exemplar `json:"has_gitlab_pipeline"`
	NoGitLabPipelineCount  int               `json:"no_gitlab_pipeline_count"`
	NoGitLabPipeline       []record.Exemplar `json:"no_gitlab_pipeline"`
}

func newVCSSummary() *VCSSummary {
	return &VCSSummary{
		Hosts: map[string]int{
			vcs.GitHub.String(): 0,
			vcs.GitLab.String(): 0,
			vcs.Other.String():  0,
		},
		NoVCS:             emptyList(),
		BadVCS:            emptyList(),
		GitHubProjects:    emptyList(),
		GitLabProjects:    emptyList(),
		NoGitHubActions:   emptyList(),
		HasGitHubActions:  emptyList(),
		NoDependabot:      emptyList(),
		HasDependabot:     emptyList(),
		HasGitLabPipeline: emptyList(),
		NoGitLabPipeline:  emptyList(),
	}
}

func (s *VCSSummary) add(r *record.Record, logger *log.Logger) {
	url := resolve.RepositoryURL(r)
	if url == "" {
		bucket(&s.NoVCSCount, &s.NoVCS, r)
		return
	}

	host := vcs.Classify(url)
	switch host.Kind {
	case vcs.GitHub:
		s.Hosts[host.Kind.String()]++
		bucket(&s.GitHubCount, &s.GitHubProjects, r)
		switch r.HasGitHubActions {
		case record.True:
			bucket(&s.HasGitHubActionsCount, &s.HasGitHubActions, r)
		case record.False:
			bucket(&s.NoGitHubActionsCount, &s.NoGitHubActions, r)
		}
		switch r.HasDependabot {
		case record.True:
			bucket(&s.HasDependabotCount, &s.HasDependabot, r)
		case record.False:
			bucket(&s.NoDependabotCount, &s.NoDependabot, r)
		}
	case vcs.GitLab:
		s.Hosts[host.Kind.String()]++
		bucket(&s.GitLabCount, &s.GitLabProjects, r)
		switch r.HasGitLabPipeline {
		case record.True:
			bucket(&s.HasGitLabPipelineCount, &s.HasGitLabPipeline, r)
		case record.False:
			bucket(&s.NoGitLabPipelineCount, &s.NoGitLabPipeline, r)
		}
	case vcs.Other:
		s.Hosts[host.Kind.String()]++
	default:
		logger.Info("unrecognized VCS", "url", url, "name", r.Name)
		bucket(&s.BadVCSCount, &s.BadVCS, r)
	}
}
