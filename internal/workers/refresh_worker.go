// Package workers contains background jobs that keep tracked topics fresh.
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// TopicAnalyzer produces the analysis record for a topic window.
type TopicAnalyzer interface {
	AnalyzeTopicCoverage(ctx context.Context, topic, from, to, lang string) (*models.AnalysisRecord, error)
}

// ReportGenerator turns an analysis record into a narrative report.
type ReportGenerator interface {
	GenerateNarrative(ctx context.Context, record *models.AnalysisRecord) (string, error)
}

// ReportSink delivers generated reports. Optional; nil disables delivery.
type ReportSink interface {
	SendReport(record *models.AnalysisRecord, report string) error
	SendRefreshFailure(topic string, err error) error
}

// RefreshWorker periodically re-analyzes tracked topics so that their cache
// entries stay warm and subscribers get fresh reports.
type RefreshWorker struct {
	analyzer   TopicAnalyzer
	reports    ReportGenerator
	sink       ReportSink
	topics     []string
	language   string
	windowDays int
}

// NewRefreshWorker creates a refresh worker for the configured topics.
func NewRefreshWorker(analyzer TopicAnalyzer, reports ReportGenerator, sink ReportSink, cfg *config.WorkersConfig) *RefreshWorker {
	return &RefreshWorker{
		analyzer:   analyzer,
		reports:    reports,
		sink:       sink,
		topics:     cfg.TrackedTopics,
		language:   cfg.Language,
		windowDays: cfg.WindowDays,
	}
}

// Name implements worker.Worker.
func (w *RefreshWorker) Name() string {
	return "topic_refresh"
}

// Run refreshes every tracked topic once. A failing topic is reported and
// skipped; the remaining topics still refresh.
func (w *RefreshWorker) Run(ctx context.Context) error {
	if len(w.topics) == 0 {
		logger.Debug("no tracked topics configured, skipping refresh")
		return nil
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -w.windowDays).Format("2006-01-02")
	to := now.Format("2006-01-02")

	for _, topic := range w.topics {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.refreshTopic(ctx, topic, from, to)
	}

	return nil
}

func (w *RefreshWorker) refreshTopic(ctx context.Context, topic, from, to string) {
	record, err := w.analyzer.AnalyzeTopicCoverage(ctx, topic, from, to, w.language)
	if err != nil {
		logger.Error("topic refresh failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		w.notifyFailure(topic, err)
		return
	}

	report, err := w.reports.GenerateNarrative(ctx, record)
	if err != nil {
		logger.Error("report generation failed during refresh",
			zap.String("topic", topic),
			zap.Error(err),
		)
		w.notifyFailure(topic, err)
		return
	}

	logger.Info("topic refreshed",
		zap.String("topic", topic),
		zap.Int("mentions", record.TotalMentions),
	)

	if w.sink == nil {
		return
	}
	if err := w.sink.SendReport(record, report); err != nil {
		logger.Warn("report delivery failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

func (w *RefreshWorker) notifyFailure(topic string, err error) {
	if w.sink == nil {
		return
	}
	if sendErr := w.sink.SendRefreshFailure(topic, err); sendErr != nil {
		logger.Warn("failure notification delivery failed",
			zap.String("topic", topic),
			zap.Error(sendErr),
		)
	}
}
