package feed // import "github.com/jemtv/storyfeed/internal/feed"

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/logging"
	"github.com/jemtv/storyfeed/internal/model"
	"github.com/jemtv/storyfeed/internal/sanitizer"
)

const maxDescriptionLen = 300

// Builder assembles the feed document from fetched stories.
type Builder struct {
	channel config.ChannelOptions
	workers int
	now     func() time.Time
}

func NewBuilder(channel config.ChannelOptions) *Builder {
	return &Builder{
		channel: channel,
		workers: config.Opts.WorkerPoolSize(),
		now:     time.Now,
	}
}

// Build transforms stories into feed items on a bounded worker pool.
// Sanitizing is pure per story, so workers share nothing; each one writes
// its own index, which keeps item order equal to story order no matter how
// the pool schedules.
func (self *Builder) Build(ctx context.Context, stories []*model.Story,
) *RSS {
	log := logging.FromContext(ctx)
	start := time.Now()

	items := make([]*Item, len(stories))
	var g errgroup.Group
	g.SetLimit(self.workers)
	for i, story := range stories {
		g.Go(func() error {
			items[i] = buildItem(story)
			return nil
		})
	}
	_ = g.Wait()

	rss := &RSS{
		Version:   "2.0",
		AtomNS:    atomNS,
		ContentNS: contentNS,
		Channel: Channel{
			Title:         self.channel.Title,
			Link:          self.channel.Link,
			Description:   self.channel.Description,
			Language:      self.channel.Language,
			LastBuildDate: self.now().UTC().Format(rfc822GMT),
			Items:         items,
		},
	}
	if self.channel.SelfURL != "" {
		rss.Channel.AtomLink = &AtomLink{
			Href: self.channel.SelfURL,
			Rel:  "self",
			Type: "application/rss+xml",
		}
	}

	log.Info("Feed assembled",
		slog.Int("items", len(items)),
		slog.Duration("elapsed", time.Since(start)))
	return rss
}

func buildItem(story *model.Story) *Item {
	item := &Item{
		Title:    story.Title(),
		Category: story.Category(),
		Content:  sanitizer.Sanitize(story.Content),
		Description: sanitizer.TruncateText(
			sanitizer.ExtractText(story.Summary()), maxDescriptionLen),
	}

	guid, isPermaLink := story.GUID()
	item.GUID = GUID{
		Value:       guid,
		IsPermaLink: strconv.FormatBool(isPermaLink),
	}
	if isPermaLink {
		item.Link = story.Link
	}

	if u := story.EnclosureURL(); u != "" {
		item.Enclosure = &Enclosure{URL: u, Type: enclosureType, Length: "0"}
	}
	return item
}
