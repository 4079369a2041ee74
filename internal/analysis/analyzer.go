// Package analysis composes the fetch pipeline, the aggregation engine and
// the entity-extraction collaborator into one cached analysis per
// (topic, date range, language).
package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/analytics"
	"github.com/selivandex/newspulse/internal/newsfeed"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Pipeline fetches the deduplicated article set for a topic window.
type Pipeline interface {
	FetchArticles(ctx context.Context, req newsfeed.FetchRequest) (*newsfeed.Result, error)
}

// EntitySource extracts entity lists; it degrades internally and never fails.
type EntitySource interface {
	Extract(ctx context.Context, topic, from, to, lang string, articles []models.Article) models.Entities
}

// Archive persists article sets. Optional; failures are logged, not fatal.
type Archive interface {
	SaveArticles(ctx context.Context, topic string, articles []models.Article) error
}

// Analyzer is the topic analysis orchestrator.
type Analyzer struct {
	pipeline Pipeline
	entities EntitySource
	archive  Archive // nil when the archive is disabled
	cache    *cache.Cache
	shortTTL time.Duration
	longTTL  time.Duration
}

// NewAnalyzer creates the orchestrator. archive may be nil.
func NewAnalyzer(pipeline Pipeline, entities EntitySource, archive Archive, store *cache.Cache, cacheCfg *config.CacheConfig) *Analyzer {
	return &Analyzer{
		pipeline: pipeline,
		entities: entities,
		archive:  archive,
		cache:    store,
		shortTTL: cacheCfg.ShortTTL,
		longTTL:  cacheCfg.LongTTL,
	}
}

// AnalyzeTopicCoverage returns the analysis record for one topic window.
// A cache hit returns immediately with zero network activity. On a miss the
// record is computed, cached, and returned; if the underlying fetch fails
// nothing is cached and the failure propagates.
func (a *Analyzer) AnalyzeTopicCoverage(ctx context.Context, topic, from, to, lang string) (*models.AnalysisRecord, error) {
	topic = cache.NormalizeTopic(topic)

	key := cache.ProcessedKey(topic, from, to, lang)
	if cached, ok := a.cache.Get(key); ok {
		logger.Debug("analysis cache hit", zap.String("key", key))
		return cached.(*models.AnalysisRecord), nil
	}

	res, err := a.pipeline.FetchArticles(ctx, newsfeed.FetchRequest{
		Topic:    topic,
		From:     from,
		To:       to,
		Language: lang,
	})
	if err != nil {
		return nil, fmt.Errorf("topic coverage fetch failed: %w", err)
	}

	ttl := a.ttlFor(to)

	// The raw deduplicated list is cached separately so a later per-country
	// request can filter it instead of re-fetching.
	a.cache.Set(cache.ArticlesKey(topic, from, to, lang), res.Articles, ttl)

	if a.archive != nil {
		if err := a.archive.SaveArticles(ctx, topic, res.Articles); err != nil {
			logger.Warn("article archive write failed",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}

	record := a.buildRecord(ctx, topic, from, to, lang, res)
	a.cache.Set(key, record, ttl)

	logger.Info("topic coverage analyzed",
		zap.String("topic", topic),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("mentions", record.TotalMentions),
		zap.String("tier", string(record.Tier)),
	)

	return record, nil
}

// Articles returns the deduplicated article list for a topic window,
// optionally filtered by source country. It reuses the cached list when the
// window was analyzed before.
func (a *Analyzer) Articles(ctx context.Context, topic, from, to, lang, country string) ([]models.Article, error) {
	topic = cache.NormalizeTopic(topic)

	var articles []models.Article
	if cached, ok := a.cache.Get(cache.ArticlesKey(topic, from, to, lang)); ok {
		articles = cached.([]models.Article)
	} else {
		res, err := a.pipeline.FetchArticles(ctx, newsfeed.FetchRequest{
			Topic:    topic,
			From:     from,
			To:       to,
			Language: lang,
		})
		if err != nil {
			return nil, err
		}
		articles = res.Articles
		a.cache.Set(cache.ArticlesKey(topic, from, to, lang), articles, a.ttlFor(to))
	}

	if country == "" {
		return articles, nil
	}

	filtered := make([]models.Article, 0, len(articles))
	for _, art := range articles {
		if art.Source.Country == country {
			filtered = append(filtered, art)
		}
	}
	return filtered, nil
}

func (a *Analyzer) buildRecord(ctx context.Context, topic, from, to, lang string, res *newsfeed.Result) *models.AnalysisRecord {
	articles := res.Articles

	return &models.AnalysisRecord{
		Topic:          topic,
		StartDate:      from,
		EndDate:        to,
		Language:       lang,
		TotalMentions:  len(articles),
		MentionsByDay:  analytics.MentionsByDay(articles),
		Sentiment:      analytics.AverageSentiment(articles),
		Leanings:       analytics.LeaningDistribution(articles),
		TopKeywords:    analytics.TopKeywords(articles, analytics.DefaultKeywordLimit),
		TopSources:     analytics.TopSources(articles),
		Geography:      analytics.GeoDistribution(articles),
		Entities:       a.entities.Extract(ctx, topic, from, to, lang, articles),
		RecentArticles: analytics.RepresentativeArticles(articles),
		Tier:           res.Tier,
	}
}

// ttlFor selects the TTL class: a window ending today gets the short TTL,
// historical windows the long one.
func (a *Analyzer) ttlFor(endDate string) time.Duration {
	if endDate == time.Now().UTC().Format("2006-01-02") {
		return a.shortTTL
	}
	return a.longTTL
}
