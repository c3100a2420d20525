package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/chessopenings/video-indexer/internal/catalog"
	"github.com/chessopenings/video-indexer/internal/metrics"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/orchestrator"
	"github.com/chessopenings/video-indexer/internal/quotaledger"
	"github.com/chessopenings/video-indexer/internal/ratelimit"
	"github.com/chessopenings/video-indexer/internal/rss"
	"github.com/chessopenings/video-indexer/internal/xerrors"
	"github.com/chessopenings/video-indexer/internal/youtube"
	"github.com/chessopenings/video-indexer/pkg/logger"
)

func newRunCommand() *cobra.Command {
	var (
		ecoFilter    string
		forceRebuild bool
		resume       bool
		openingsFile string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build or refresh the channel index and match openings to videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntime()
			if err != nil {
				return exitErr(err, exitConfigError)
			}
			defer logger.Sync()

			channels, err := openings.LoadTrustedChannels(cfg.Paths.ChannelConfig)
			if err != nil {
				return exitErr(err, exitConfigError)
			}

			cat, err := catalog.Load(openingsFile, cfg.Paths.VideosDir)
			if err != nil {
				return exitErr(err, exitConfigError)
			}

			ctx := cmd.Context()

			reg := metrics.New()
			if metricsAddr != "" {
				go func() {
					_ = reg.Serve(ctx, metricsAddr)
				}()
			}

			ledger := quotaledger.New(cfg.Quota.Limit)
			limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Enabled)

			client, err := youtube.New(ctx, cfg.YouTube.APIKey, ledger, limiter, reg)
			if err != nil {
				return exitErr(err, exitConfigError)
			}

			orch := &orchestrator.Orchestrator{
				Client:  client,
				Catalog: cat,
				Fetcher: &rss.HTTPFetcher{Client: http.DefaultClient},
				Logger:  logger.Log,
				Metrics: reg,
				Paths: orchestrator.Paths{
					ChannelConfig:     cfg.Paths.ChannelConfig,
					IndexSnapshot:     cfg.Paths.IndexSnapshot,
					Cache:             cfg.Paths.Cache,
					VideosDir:         cfg.Paths.VideosDir,
					Checkpoint:        cfg.Paths.Checkpoint,
					Summary:           cfg.Paths.Summary,
					ConsolidatedIndex: cfg.Paths.ConsolidatedIndex,
				},
			}

			summary, err := orch.Run(ctx, orchestrator.Options{
				ECOFilter:         ecoFilter,
				ForceRebuild:      forceRebuild,
				Resume:            resume,
				BatchSize:         cfg.Batch.Size,
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				RateLimitEnabled:  cfg.RateLimit.Enabled,
				MaxResults:        cfg.Batch.MaxResults,
			}, channels)

			if err != nil {
				if xerrors.IsQuotaExceeded(err) {
					return exitErr(err, exitQuotaExceeded)
				}
				return exitErr(err, exitGeneralFailure)
			}

			fmt.Printf("processed=%d skipped=%d videosAdded=%d errors=%d\n",
				summary.Processed, summary.Skipped, summary.VideosAdded, len(summary.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&ecoFilter, "eco", "", "restrict to openings whose ECO code starts with this letter/prefix")
	cmd.Flags().BoolVar(&forceRebuild, "force-rebuild", false, "bypass a recent index snapshot and rebuild from upstream")
	cmd.Flags().BoolVar(&resume, "resume", false, "honor a previously written matches checkpoint")
	cmd.Flags().StringVar(&openingsFile, "openings-file", "data/openings.json", "path to the catalog openings JSON file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional address to serve debug metrics on (e.g. :9090)")

	return cmd
}

// exitCode carries a process exit code alongside an error, interpreted by
// main via cobra's SilenceErrors/SilenceUsage or a custom Execute wrapper.
type exitCode struct {
	err  error
	code int
}

func (e *exitCode) Error() string { return e.err.Error() }

// Unwrap exposes the underlying error so errors.Is/errors.As still see
// through the exit-code wrapper.
func (e *exitCode) Unwrap() error { return e.err }

func exitErr(err error, code int) error {
	return &exitCode{err: err, code: code}
}
