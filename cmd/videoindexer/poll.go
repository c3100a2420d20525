package main

import (
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chessopenings/video-indexer/internal/indexer"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/rss"
	"github.com/chessopenings/video-indexer/pkg/logger"
)

// newPollCommand runs the RSS delta poller on a cron schedule without
// re-running the full channel index build (SPEC_FULL.md SUPPLEMENTED
// FEATURES: scheduled polling).
func newPollCommand() *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll trusted channels' RSS feeds on a schedule for new uploads",
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
			channelIDs := make([]string, len(channels))
			for i, c := range channels {
				channelIDs[i] = c.ChannelID
			}

			fetcher := &rss.HTTPFetcher{Client: http.DefaultClient}

			idx, enriched, _, err := indexer.LoadIndex(cfg.Paths.IndexSnapshot)
			if err != nil {
				return exitErr(err, exitGeneralFailure)
			}

			ctx := cmd.Context()
			poll := func() {
				result := indexer.UpdateFromRSS(ctx, idx, fetcher, channelIDs, logger.Log)
				if logger.Log != nil {
					logger.Log.Info("rss poll tick", zap.Int("new_videos", result.NewVideos), zap.Int("errors", len(result.Errors)))
				}
				if err := indexer.SaveIndex(idx, enriched, cfg.Paths.IndexSnapshot, time.Now()); err != nil && logger.Log != nil {
					logger.Log.Warn("save index snapshot after poll", zap.Error(err))
				}
			}

			poll()

			c := cron.New()
			if _, err := c.AddFunc(cronSpec, poll); err != nil {
				return exitErr(err, exitConfigError)
			}
			c.Start()
			defer c.Stop()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "interval", "@every 5m", "cron spec controlling poll frequency")
	return cmd
}
