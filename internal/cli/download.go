package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/ingest"
	"github.com/matzehuels/pydigger/pkg/integrations/pypi"
	"github.com/matzehuels/pydigger/pkg/observability"
	"github.com/matzehuels/pydigger/pkg/vcs"
)

type downloadOptions struct {
	limit       int
	refresh     bool
	noCache     bool
	noProbe     bool
	metricsFile string
}

// downloadCommand creates the download command, one ingestion run over the
// update feed.
func (c *CLI) downloadCommand() *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch metadata of recently updated PyPI projects",
		Long: `Read the PyPI update feed and store the metadata of every release that is
newer than the stored record. Repositories on GitHub and GitLab are probed
for CI configuration unless --no-probe is given.

Run statistics are written to <data-dir>/pypi.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDownload(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "visit at most n feed entries (0 = all)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached metadata")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&opts.noProbe, "no-probe", false, "do not probe source repositories")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

func (c *CLI) runDownload(ctx context.Context, opts downloadOptions) error {
	prog := newProgress(c.Logger)
	cfg := c.Config

	backend, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	metrics := observability.NewPrometheusHooks()
	meta := pypi.NewClient(backend, cfg.Cache.TTL.Duration).WithBaseURL(cfg.Feed.IndexURL)
	meta.SetHooks(metrics, metrics)
	feed := pypi.NewFeedClient(meta.Client, cfg.Feed.URL)

	runOpts := []ingest.Option{
		ingest.WithLogger(c.Logger),
		ingest.WithHooks(metrics),
		ingest.WithLimit(opts.limit),
		ingest.WithRefresh(opts.refresh),
	}
	if cfg.Probe.Enabled && !opts.noProbe {
		prober := vcs.NewProber(vcs.GoGit{}, c.Logger,
			vcs.WithDepth(cfg.Probe.Depth),
			vcs.WithTempDir(cfg.Probe.TempDir),
		)
		runOpts = append(runOpts, ingest.WithProber(prober))
	}

	runner := ingest.NewRunner(feed, meta, c.store(), runOpts...)
	stats, runErr := runner.Run(ctx)
	if err := ingest.SaveStats(cfg.StatsPath(), stats); err != nil {
		c.Logger.Error("cannot save run statistics", "err", err)
	}
	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			c.Logger.Error("cannot write metrics", "path", opts.metricsFile, "err", err)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	prog.done("Download finished")
	renderStats(os.Stdout, stats)
	printFile(cfg.StatsPath())
	if runErr != nil {
		printWarning("feed could not be read: %s", errors.UserMessage(runErr))
	}
	if stats.ErrorProjects() > 0 || stats.Count(ingest.Failed) > 0 {
		printWarning("%d entries could not be processed, see the log", stats.ErrorProjects()+stats.Count(ingest.Failed))
	}
	return nil
}
