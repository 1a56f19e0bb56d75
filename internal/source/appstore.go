package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/appscope/internal/cache"
	"github.com/ppiankov/appscope/internal/logging"
	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/telemetry"
	"github.com/ppiankov/appscope/internal/util"
	"github.com/ppiankov/appscope/internal/worker"
)

// AppStoreOptions wires an AppStore client. Only HTTP and Source are
// required; every other field has a working zero value.
type AppStoreOptions struct {
	HTTP   model.HTTPConfig
	Source model.SourceConfig

	Client   *http.Client    // built from HTTP when nil
	Limiter  *worker.Limiter // shared across batch workers; nil disables pacing
	Cache    cache.Cache     // nil disables caching
	Metrics  *telemetry.Metrics
	Logger   logging.Logger
	Progress ProgressFunc
}

// AppStore reads the public customer review feed and the lookup API
type AppStore struct {
	fetcher  *fetcher
	source   model.SourceConfig
	limiter  *worker.Limiter
	robots   *util.RobotsChecker
	cache    cache.Cache
	metrics  *telemetry.Metrics
	logger   logging.Logger
	progress ProgressFunc
}

// NewAppStore creates a feed client
func NewAppStore(opts AppStoreOptions) *AppStore {
	client := opts.Client
	if client == nil {
		client = util.NewHTTPClient(opts.HTTP)
	}
	maxBytes := opts.HTTP.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	c := opts.Cache
	if c == nil {
		c = cache.Nop{}
	}

	a := &AppStore{
		fetcher: &fetcher{
			client:    client,
			userAgent: opts.HTTP.UserAgent,
			maxBytes:  maxBytes,
			onRetry:   opts.Metrics.Retried,
		},
		source:   opts.Source,
		limiter:  opts.Limiter,
		cache:    c,
		metrics:  opts.Metrics,
		logger:   logger,
		progress: opts.Progress,
	}
	if opts.HTTP.RespectRobots {
		a.robots = util.NewRobotsChecker(client, opts.HTTP.UserAgent)
	}
	return a
}

// Fetch walks the feed from page 1 until an empty page, pageLimit, or
// MaxFeedPages. A failure on the first page is an error; a later failure
// ends the walk and keeps the reviews gathered so far.
func (a *AppStore) Fetch(ctx context.Context, appID string, pageLimit int) ([]model.Review, error) {
	if pageLimit <= 0 {
		pageLimit = a.source.MaxPages
	}
	if pageLimit <= 0 || pageLimit > MaxFeedPages {
		pageLimit = MaxFeedPages
	}

	start := time.Now()
	defer func() { a.metrics.ObserveFetch(time.Since(start)) }()

	reviews := []model.Review{}
	for page := 1; page <= pageLimit; page++ {
		a.report(page, pageLimit, fmt.Sprintf("Fetching page %d/%d...", page, pageLimit))

		batch, err := a.page(ctx, appID, page)
		if err != nil {
			if page == 1 || ctx.Err() != nil {
				return nil, fmt.Errorf("fetch page %d: %w", page, err)
			}
			a.report(page, pageLimit, fmt.Sprintf("Error at page %d: %v", page, err))
			a.logger.Warn("feed walk stopped early",
				logging.String("app_id", appID),
				logging.Int("page", page),
				logging.Int("reviews", len(reviews)),
				logging.Err(err),
			)
			break
		}
		if len(batch) == 0 {
			a.logger.Debug("feed exhausted", logging.String("app_id", appID), logging.Int("page", page))
			break
		}

		reviews = append(reviews, batch...)
	}

	a.logger.Info("reviews fetched",
		logging.String("app_id", appID),
		logging.Int("reviews", len(reviews)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return reviews, nil
}

// page returns the reviews on one feed page, from cache when possible
func (a *AppStore) page(ctx context.Context, appID string, page int) ([]model.Review, error) {
	key := cache.Key("feed", a.country(), appID, a.sortBy(), strconv.Itoa(page))

	if data, ok := a.cache.Get(key); ok {
		a.metrics.CacheLookup(true)
		if reviews, err := parseFeed(data); err == nil {
			a.metrics.PageFetched(telemetry.PageCache)
			return reviews, nil
		}
		_ = a.cache.Delete(key)
	} else {
		a.metrics.CacheLookup(false)
	}

	data, err := a.get(ctx, a.pageURL(appID, page))
	if err != nil {
		a.metrics.PageFetched(telemetry.PageError)
		return nil, err
	}

	reviews, err := parseFeed(data)
	if err != nil {
		a.metrics.PageFetched(telemetry.PageError)
		return nil, err
	}

	if len(reviews) == 0 {
		a.metrics.PageFetched(telemetry.PageEmpty)
		return reviews, nil
	}
	a.metrics.PageFetched(telemetry.PageOK)

	if err := a.cache.Set(key, data, 0); err != nil {
		a.logger.Debug("cache write failed", logging.String("key", key), logging.Err(err))
	}
	return reviews, nil
}

// get paces and checks a request, then performs it with retries
func (a *AppStore) get(ctx context.Context, rawURL string) ([]byte, error) {
	var delay time.Duration
	if a.robots != nil {
		allowed, crawlDelay, err := a.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		delay = crawlDelay
	}

	if a.limiter != nil {
		if err := a.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
			return nil, err
		}
	}

	return a.fetcher.FetchWithRetry(ctx, rawURL)
}

func (a *AppStore) pageURL(appID string, page int) string {
	return fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortBy=%s/json",
		strings.TrimRight(a.feedBase(), "/"), a.country(), page, url.PathEscape(appID), a.sortBy())
}

func (a *AppStore) report(page, total int, status string) {
	if a.progress != nil {
		a.progress(page, total, status)
	}
}

func (a *AppStore) country() string {
	if a.source.Country == "" {
		return "us"
	}
	return strings.ToLower(a.source.Country)
}

func (a *AppStore) sortBy() string {
	if a.source.SortBy == "" {
		return "mostRecent"
	}
	return a.source.SortBy
}

func (a *AppStore) feedBase() string {
	if a.source.FeedURL == "" {
		return "https://itunes.apple.com"
	}
	return a.source.FeedURL
}

var (
	_ Source         = (*AppStore)(nil)
	_ MetadataSource = (*AppStore)(nil)
)

