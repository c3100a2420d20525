// Command videoindexer runs the chess-opening video indexing pipeline
// (spec §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chessopenings/video-indexer/internal/config"
	"github.com/chessopenings/video-indexer/pkg/logger"
)

const (
	exitSuccess       = 0
	exitGeneralFailure = 1
	exitQuotaExceeded  = 2
	exitConfigError    = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:   "videoindexer",
		Short: "Index chess opening instructional videos from trusted YouTube channels",
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newPollCommand())
	root.AddCommand(newSearchCommand())
	root.SilenceUsage = true
	root.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		var ec *exitCode
		if errors.As(err, &ec) {
			fmt.Fprintln(os.Stderr, ec.Error())
			return ec.code
		}
		fmt.Fprintln(os.Stderr, err)
		return exitGeneralFailure
	}
	return exitSuccess
}

func loadRuntime() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
