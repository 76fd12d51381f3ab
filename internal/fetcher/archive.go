package fetcher // import "github.com/jemtv/storyfeed/internal/fetcher"

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/logging"
	"github.com/jemtv/storyfeed/internal/metric"
	"github.com/jemtv/storyfeed/internal/model"
)

// ArchiveClient walks the paginated story listing of the archive API.
type ArchiveClient struct {
	baseURL        string
	language       string
	resultsPerPage int
	maxPages       int
	limiter        *rate.Limiter
}

func NewArchiveClient() *ArchiveClient {
	// A zero rate means no pacing, not "never refill".
	limit := rate.Inf
	if rps := config.Opts.FetchRateLimit(); rps > 0 {
		limit = rate.Limit(rps)
	}

	return &ArchiveClient{
		baseURL:        config.Opts.ArchiveURL(),
		language:       config.Opts.ArchiveLanguage(),
		resultsPerPage: config.Opts.ResultsPerPage(),
		maxPages:       config.Opts.MaxPages(),
		limiter:        rate.NewLimiter(limit, 1),
	}
}

// FetchAll retrieves every story page in listing order. A page failure ends
// the walk early and returns the stories fetched so far together with the
// error, so a partial run still produces a feed.
func (self *ArchiveClient) FetchAll(ctx context.Context,
) ([]*model.Story, error) {
	ctx = logging.With(ctx, slog.String("archive", self.baseURL))
	log := logging.FromContext(ctx)

	var stories []*model.Story
	for page := 1; ; page++ {
		if self.maxPages > 0 && page > self.maxPages {
			log.Info("Stopping at configured page limit",
				slog.Int("max_pages", self.maxPages))
			break
		}

		if err := self.limiter.Wait(ctx); err != nil {
			return stories, fmt.Errorf("fetcher: wait before page %d: %w",
				page, err)
		}

		fetched, err := self.fetchPage(ctx, page)
		if err != nil {
			metric.FetchErrors.Inc()
			return stories, fmt.Errorf("fetcher: page %d: %w", page, err)
		}

		if len(fetched.Data) == 0 {
			break
		}
		stories = append(stories, fetched.Data...)
		metric.PagesFetched.Inc()
		metric.StoriesFetched.Add(float64(len(fetched.Data)))

		log.Info("Fetched archive page",
			slog.Int("page", page),
			slog.Int("stories", len(fetched.Data)),
			slog.Int("total_pages", fetched.Meta.TotalPages))

		if page >= fetched.Meta.TotalPages {
			break
		}
	}

	log.Info("Archive fetch completed", slog.Int("stories", len(stories)))
	return stories, nil
}

func (self *ArchiveClient) fetchPage(ctx context.Context, page int,
) (*model.Page, error) {
	requestURL, err := self.pageURL(page)
	if err != nil {
		return nil, err
	}

	resp := NewRequestBuilder().
		WithContext(ctx).
		WithUserAgent(config.Opts.HTTPClientUserAgent()).
		Request(requestURL)
	if err := resp.Err(); err != nil {
		return nil, err
	}
	defer resp.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetcher: unexpected status %q", resp.Status())
	}

	b, err := resp.ReadBody()
	if err != nil {
		return nil, err
	}

	var p model.Page
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("fetcher: decode archive page: %w", err)
	}
	return &p, nil
}

func (self *ArchiveClient) pageURL(page int) (string, error) {
	u, err := url.Parse(self.baseURL)
	if err != nil {
		return "", fmt.Errorf("fetcher: invalid archive URL %q: %w",
			self.baseURL, err)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("results_per_page", strconv.Itoa(self.resultsPerPage))
	q.Set("language", self.language)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
