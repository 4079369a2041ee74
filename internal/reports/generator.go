// Package reports turns analysis records into narrative text via the LLM
// report collaborator.
package reports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/ai"
	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Completer produces one text completion for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// Generator builds narrative coverage reports from analysis records.
type Generator struct {
	completer Completer
	cache     *cache.Cache
	shortTTL  time.Duration
	longTTL   time.Duration
}

// NewGenerator creates a report generator.
func NewGenerator(completer Completer, store *cache.Cache, cacheCfg *config.CacheConfig) *Generator {
	return &Generator{
		completer: completer,
		cache:     store,
		shortTTL:  cacheCfg.ShortTTL,
		longTTL:   cacheCfg.LongTTL,
	}
}

// GenerateNarrative produces the narrative report for an analysis record.
// Report generation is load-bearing: completion failures propagate rather
// than degrade.
func (g *Generator) GenerateNarrative(ctx context.Context, record *models.AnalysisRecord) (string, error) {
	key := cache.ReportKey(record.Topic, record.StartDate, record.EndDate, record.Language)
	if cached, ok := g.cache.Get(key); ok {
		logger.Debug("report cache hit", zap.String("key", key))
		return cached.(string), nil
	}

	messages := buildReportMessages(record)

	report, err := g.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("report generation failed: %w", err)
	}

	ttl := g.longTTL
	if record.EndDate == time.Now().UTC().Format("2006-01-02") {
		ttl = g.shortTTL
	}
	g.cache.Set(key, report, ttl)

	logger.Info("narrative report generated",
		zap.String("topic", record.Topic),
		zap.Int("chars", len(report)),
	)

	return report, nil
}
