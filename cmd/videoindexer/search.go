package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chessopenings/video-indexer/internal/metrics"
	"github.com/chessopenings/video-indexer/internal/quotaledger"
	"github.com/chessopenings/video-indexer/internal/ratelimit"
	"github.com/chessopenings/video-indexer/internal/youtube"
	"github.com/chessopenings/video-indexer/pkg/logger"
)

// newSearchCommand exposes the rare searchVideos fallback (spec §4.1;
// SPEC_FULL.md SUPPLEMENTED FEATURES), gated behind an explicit subcommand
// given its 100-unit quota cost per call. searchChannels is not exposed.
func newSearchCommand() *cobra.Command {
	var channelID string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for videos directly (expensive: 100 quota units per call)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntime()
			if err != nil {
				return exitErr(err, exitConfigError)
			}
			defer logger.Sync()

			ctx := cmd.Context()
			reg := metrics.New()
			ledger := quotaledger.New(cfg.Quota.Limit)
			limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Enabled)

			client, err := youtube.New(ctx, cfg.YouTube.APIKey, ledger, limiter, reg)
			if err != nil {
				return exitErr(err, exitConfigError)
			}

			videos, err := client.SearchVideos(ctx, args[0], channelID)
			if err != nil {
				return exitErr(err, exitGeneralFailure)
			}

			for _, v := range videos {
				fmt.Printf("%s\t%s\t%s\n", v.ID, v.ChannelTitle, v.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel-id", "", "restrict the search to a single channel")
	return cmd
}
