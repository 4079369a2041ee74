package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

func TestMain(m *testing.M) {
	logger.InitDefault()
	m.Run()
}

type fakeAnalyzer struct {
	records map[string]*models.AnalysisRecord
	failOn  string
	calls   []string
}

func (f *fakeAnalyzer) AnalyzeTopicCoverage(_ context.Context, topic, from, to, lang string) (*models.AnalysisRecord, error) {
	f.calls = append(f.calls, topic)
	if topic == f.failOn {
		return nil, errors.New("upstream unavailable")
	}
	if rec, ok := f.records[topic]; ok {
		return rec, nil
	}
	return &models.AnalysisRecord{Topic: topic, StartDate: from, EndDate: to, Language: lang}, nil
}

type fakeReports struct {
	err   error
	calls int
}

func (f *fakeReports) GenerateNarrative(_ context.Context, record *models.AnalysisRecord) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "report for " + record.Topic, nil
}

type fakeSink struct {
	reports  []string
	failures []string
}

func (f *fakeSink) SendReport(record *models.AnalysisRecord, report string) error {
	f.reports = append(f.reports, record.Topic)
	return nil
}

func (f *fakeSink) SendRefreshFailure(topic string, err error) error {
	f.failures = append(f.failures, topic)
	return nil
}

func workerConfig(topics ...string) *config.WorkersConfig {
	return &config.WorkersConfig{
		TrackedTopics: topics,
		Language:      "en",
		WindowDays:    7,
	}
}

func TestRunRefreshesAllTopics(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	reports := &fakeReports{}
	sink := &fakeSink{}
	w := NewRefreshWorker(analyzer, reports, sink, workerConfig("rates", "elections"))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(analyzer.calls) != 2 {
		t.Fatalf("analyzer calls = %v, want both topics", analyzer.calls)
	}
	if len(sink.reports) != 2 {
		t.Fatalf("delivered reports = %v, want both topics", sink.reports)
	}
}

func TestRunSkipsFailingTopic(t *testing.T) {
	analyzer := &fakeAnalyzer{failOn: "rates"}
	reports := &fakeReports{}
	sink := &fakeSink{}
	w := NewRefreshWorker(analyzer, reports, sink, workerConfig("rates", "elections"))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run should not fail on a single bad topic: %v", err)
	}
	if len(sink.failures) != 1 || sink.failures[0] != "rates" {
		t.Fatalf("failure notifications = %v, want [rates]", sink.failures)
	}
	if len(sink.reports) != 1 || sink.reports[0] != "elections" {
		t.Fatalf("delivered reports = %v, want [elections]", sink.reports)
	}
}

func TestRunReportFailureNotified(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	reports := &fakeReports{err: errors.New("model overloaded")}
	sink := &fakeSink{}
	w := NewRefreshWorker(analyzer, reports, sink, workerConfig("rates"))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.failures) != 1 {
		t.Fatalf("failure notifications = %v, want one for rates", sink.failures)
	}
	if len(sink.reports) != 0 {
		t.Fatalf("delivered reports = %v, want none", sink.reports)
	}
}

func TestRunNoTopics(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	w := NewRefreshWorker(analyzer, &fakeReports{}, nil, workerConfig())

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run with no topics: %v", err)
	}
	if len(analyzer.calls) != 0 {
		t.Fatalf("analyzer calls = %v, want none", analyzer.calls)
	}
}

func TestRunNilSink(t *testing.T) {
	analyzer := &fakeAnalyzer{failOn: "rates"}
	w := NewRefreshWorker(analyzer, &fakeReports{}, nil, workerConfig("rates", "elections"))

	// Must not panic without a delivery sink.
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := &fakeAnalyzer{}
	w := NewRefreshWorker(analyzer, &fakeReports{}, nil, workerConfig("rates"))

	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on cancelled ctx = %v, want context.Canceled", err)
	}
}
