// Package newsfeed drives the paginated fetch-and-deduplicate pipeline: it
// walks cursor pages, pads thin result sets with related articles, detects the
// API tier, and produces one deduplicated, tier-sanitized article list.
package newsfeed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/adapters/newsapi"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Searcher is the article source provider the pipeline drives.
type Searcher interface {
	SearchPage(ctx context.Context, req newsapi.SearchRequest, cursor string) (*newsapi.Page, error)
	RelatedArticles(ctx context.Context, articleID string, limit int) ([]models.Article, error)
}

// FetchRequest describes one topic window to retrieve.
type FetchRequest struct {
	Topic    string
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD
	Language string
	Country  string
}

// Result is the deduplicated, sanitized article set for one request.
type Result struct {
	Articles []models.Article
	Tier     models.Tier
}

// Service is the pagination and deduplication pipeline.
type Service struct {
	client   Searcher
	cache    *cache.Cache
	cfg      *config.NewsAPIConfig
	shortTTL time.Duration
	longTTL  time.Duration
}

// NewService creates the pipeline.
func NewService(client Searcher, store *cache.Cache, cfg *config.NewsAPIConfig, cacheCfg *config.CacheConfig) *Service {
	return &Service{
		client:   client,
		cache:    store,
		cfg:      cfg,
		shortTTL: cacheCfg.ShortTTL,
		longTTL:  cacheCfg.LongTTL,
	}
}

// FetchArticles retrieves the complete article set for the request across
// cursor pages and returns it deduplicated and tier-sanitized. Page failures
// propagate after the HTTP layer's own retries; the pipeline adds no second
// retry tier.
func (s *Service) FetchArticles(ctx context.Context, req FetchRequest) (*Result, error) {
	// Normalize exactly once, before any cache lookup, so quote-style
	// variants of the same query share one entry.
	topic := cache.NormalizeTopic(req.Topic)

	key := cache.NewsKey(topic, req.From, req.To, req.Language, req.Country)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("news cache hit", zap.String("key", key))
		return cached.(*Result), nil
	}

	searchReq := newsapi.SearchRequest{
		Query:    topic,
		From:     req.From,
		To:       req.To,
		Language: req.Language,
		Country:  req.Country,
		PageSize: s.cfg.PageSize,
	}

	var (
		all   []models.Article
		tier  = models.TierUnknown
		first = true
	)

	cursor := ""
	for page := 0; ; page++ {
		if page >= s.cfg.MaxPages {
			// Pathological pagination that never terminates is truncated
			// silently rather than failed.
			logger.Warn("pagination cap reached, truncating",
				zap.String("topic", topic),
				zap.Int("pages", page),
				zap.Int("articles", len(all)),
			)
			break
		}

		resp, err := s.client.SearchPage(ctx, searchReq, cursor)
		if err != nil {
			return nil, fmt.Errorf("page %d fetch failed: %w", page+1, err)
		}

		all = append(all, resp.Articles...)

		// Tier is assumed constant for the whole query; only the first
		// page's metadata is consulted.
		if first {
			tier = detectTier(resp.Headers, resp.Articles)
			first = false
		}

		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	if len(all) > 0 && len(all) < s.cfg.MinArticles {
		all = s.padWithRelated(ctx, all)
	}

	deduped := Deduplicate(all)

	if tier == models.TierFree {
		for i := range deduped {
			deduped[i] = sanitizeArticle(deduped[i])
		}
	}

	result := &Result{Articles: deduped, Tier: tier}
	s.cache.Set(key, result, s.ttlFor(req.To))

	logger.Info("fetched article set",
		zap.String("topic", topic),
		zap.Int("fetched", len(all)),
		zap.Int("deduped", len(deduped)),
		zap.String("tier", string(tier)),
	)

	return result, nil
}

// padWithRelated supplements a thin result set with related-article lookups
// for the first few articles. Individual lookup failures are tolerated.
func (s *Service) padWithRelated(ctx context.Context, articles []models.Article) []models.Article {
	lookups := s.cfg.RelatedLookups
	if lookups > len(articles) {
		lookups = len(articles)
	}

	padded := articles
	for i := 0; i < lookups; i++ {
		id := articles[i].ID
		key := cache.RelatedKey(id, s.cfg.RelatedPageSize)

		if cached, ok := s.cache.Get(key); ok {
			padded = append(padded, cached.([]models.Article)...)
			continue
		}

		related, err := s.client.RelatedArticles(ctx, id, s.cfg.RelatedPageSize)
		if err != nil {
			logger.Warn("related articles lookup failed",
				zap.String("article_id", id),
				zap.Error(err),
			)
			continue
		}

		s.cache.Set(key, related, s.shortTTL)
		padded = append(padded, related...)
	}

	return padded
}

// ttlFor picks the TTL class: windows ending today stay fresh only briefly,
// historical windows are stable.
func (s *Service) ttlFor(endDate string) time.Duration {
	if endDate == time.Now().UTC().Format("2006-01-02") {
		return s.shortTTL
	}
	return s.longTTL
}
