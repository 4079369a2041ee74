package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/ai"
	"github.com/selivandex/newspulse/internal/adapters/archive"
	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/adapters/database"
	"github.com/selivandex/newspulse/internal/adapters/httpx"
	"github.com/selivandex/newspulse/internal/adapters/newsapi"
	"github.com/selivandex/newspulse/internal/adapters/telegram"
	"github.com/selivandex/newspulse/internal/analysis"
	"github.com/selivandex/newspulse/internal/newsfeed"
	"github.com/selivandex/newspulse/internal/reports"
	"github.com/selivandex/newspulse/internal/workers"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/retry"
	"github.com/selivandex/newspulse/pkg/worker"
)

func main() {
	topic := flag.String("topic", "", "analyze a single topic and exit")
	from := flag.String("from", "", "window start date (YYYY-MM-DD), defaults to 7 days ago")
	to := flag.String("to", "", "window end date (YYYY-MM-DD), defaults to today")
	lang := flag.String("lang", "en", "article language")
	narrative := flag.Bool("narrative", false, "also generate the narrative report")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, *topic, *from, *to, *lang, *narrative); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, topic, from, to, lang string, narrative bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("newspulse starting")

	store := cache.New()

	fetcher := httpx.NewClient(retry.DefaultPolicy())
	apiClient := newsapi.NewClient(&cfg.NewsAPI, fetcher)
	pipeline := newsfeed.NewService(apiClient, store, &cfg.NewsAPI, &cfg.Cache)

	extractor := ai.NewEntityExtractor(&cfg.AI, store, cfg.Cache.LongTTL)
	completer := ai.NewReportClient(&cfg.AI, retry.DefaultPolicy())

	repo, closeDB, err := initArchive(cfg)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	analyzer := analysis.NewAnalyzer(pipeline, extractor, repo, store, &cfg.Cache)
	generator := reports.NewGenerator(completer, store, &cfg.Cache)

	if topic != "" {
		return analyzeOnce(ctx, analyzer, generator, topic, from, to, lang, narrative)
	}

	return runDaemon(ctx, cfg, analyzer, generator)
}

// initArchive opens the optional archive database. A disabled archive
// returns a nil repository, which the analyzer treats as "no persistence".
func initArchive(cfg *config.Config) (analysis.Archive, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("article archive disabled")
		return nil, nil, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init archive database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return archive.NewRepository(db), func() { db.Close() }, nil
}

// analyzeOnce runs a single topic analysis and prints the record as JSON.
func analyzeOnce(ctx context.Context, analyzer *analysis.Analyzer, generator *reports.Generator, topic, from, to, lang string, narrative bool) error {
	now := time.Now().UTC()
	if to == "" {
		to = now.Format("2006-01-02")
	}
	if from == "" {
		from = now.AddDate(0, 0, -7).Format("2006-01-02")
	}

	record, err := analyzer.AnalyzeTopicCoverage(ctx, topic, from, to, lang)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if narrative {
		report, err := generator.GenerateNarrative(ctx, record)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}
		fmt.Println()
		fmt.Println(report)
	}

	return nil
}

// runDaemon starts the periodic refresh worker and blocks until shutdown.
func runDaemon(ctx context.Context, cfg *config.Config, analyzer *analysis.Analyzer, generator *reports.Generator) error {
	if !cfg.Workers.RefreshEnabled {
		return fmt.Errorf("no -topic given and refresh worker disabled, nothing to do")
	}

	var sink workers.ReportSink
	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewNotifier(&cfg.Telegram)
		if err != nil {
			return fmt.Errorf("failed to init telegram notifier: %w", err)
		}
		sink = notifier
	}

	refresh := workers.NewRefreshWorker(analyzer, generator, sink, &cfg.Workers)
	pw := worker.RunBackground(ctx, refresh, cfg.Workers.RefreshInterval)

	logger.Info("refresh daemon running",
		zap.Strings("topics", cfg.Workers.TrackedTopics),
		zap.Duration("interval", cfg.Workers.RefreshInterval),
	)

	<-ctx.Done()
	pw.Stop(10 * time.Second)
	return nil
}
