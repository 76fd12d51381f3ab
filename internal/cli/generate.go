package cli // import "github.com/jemtv/storyfeed/internal/cli"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/feed"
	"github.com/jemtv/storyfeed/internal/fetcher"
	"github.com/jemtv/storyfeed/internal/logging"
	"github.com/jemtv/storyfeed/internal/metric"
)

// runGenerate is the default command: fetch the archive, assemble the feed
// and write it out.
func runGenerate() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer cancel()

	log := logging.FromContext(ctx)
	start := time.Now()

	stories, err := fetcher.NewArchiveClient().FetchAll(ctx)
	if err != nil {
		if len(stories) == 0 {
			return fmt.Errorf("cli: fetch archive: %w", err)
		}
		// A feed from partial results beats no feed at all.
		log.Error("Archive fetch incomplete, building feed anyway",
			slog.Int("stories", len(stories)), slog.Any("error", err))
	}

	doc := feed.NewBuilder(config.Opts.Channel).Build(ctx, stories)
	metric.FeedItems.Set(float64(len(doc.Channel.Items)))

	size, written, err := feed.NewWriter(config.Opts.OutputFile()).
		WithForce(flagForceWrite).
		Write(ctx, doc)
	if err != nil {
		return fmt.Errorf("cli: write feed: %w", err)
	}
	metric.FeedBytes.Set(float64(size))
	metric.BuildDuration.Set(time.Since(start).Seconds())

	if config.Opts.HasMetricsFile() {
		if err := metric.WriteTextfile(config.Opts.MetricsFile()); err != nil {
			return fmt.Errorf("cli: %w", err)
		}
	}

	log.Info("Run completed",
		slog.Int("stories", len(stories)),
		slog.Int("feed_bytes", size),
		slog.Bool("written", written),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
