package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"CitationWatch/internal/citations"
	"CitationWatch/internal/config"
	"CitationWatch/internal/infrastructure/gemini"
	"CitationWatch/internal/infrastructure/impact"
	"CitationWatch/internal/infrastructure/mailer"
	"CitationWatch/internal/infrastructure/opencitations"
	"CitationWatch/internal/infrastructure/pubmed"
	"CitationWatch/internal/infrastructure/scheduler"
	"CitationWatch/internal/infrastructure/storage"
	"CitationWatch/internal/infrastructure/telegram"
	"CitationWatch/internal/logging"
	"CitationWatch/internal/ports"
	"CitationWatch/internal/search"
	"CitationWatch/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	store    *storage.SQLiteRepository
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance. Configuration without a single
// usable topic query is rejected before the alert store is opened.
func New(cfg config.Config, baseLogger *slog.Logger, dryRun bool) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	topics := make([]config.TopicConfig, 0, len(cfg.Topics))
	for _, topic := range cfg.Topics {
		if strings.TrimSpace(topic.Query) == "" {
			baseLogger.Warn("topic has no query, skipping", "topic", topic.Name)
			continue
		}
		topics = append(topics, topic)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("no usable topic queries configured")
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open alert store: %w", err)
	}

	registry := search.NewRegistry()
	registry.Register(pubmed.NewClient(cfg.PubMed, nil))

	source := pubmed.NewTopicSource(registry, topics, baseLogger.With("component", "source"))
	feed := opencitations.NewClient(cfg.OpenCitations, baseLogger.With("component", "feed"))
	calculator := citations.NewCalculator(feed, baseLogger.With("component", "citations"))

	var summarizer ports.Summarizer
	if cfg.Gemini.APIKey != "" {
		summarizer = gemini.NewSummarizer(cfg.Gemini)
	} else {
		baseLogger.Warn("no summarizer configured, alerts go out without summaries")
	}

	var announcer ports.Announcer
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		announcer = telegram.NewAnnouncer(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: store,
		Calculator: calculator,
		Summarizer: summarizer,
		Dispatcher: mailer.New(cfg.Mail),
		Announcer:  announcer,
		Impact:     impact.NewTable(cfg.Impact.Factors),
		Threshold:  cfg.Alerts.Threshold,
		DryRun:     dryRun,
		Now: func() time.Time {
			return time.Now().In(cfg.Scheduler.Location())
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, store: store, pipeline: pipeline, logger: baseLogger}, nil
}

// Run executes the pipeline once, or keeps it on a schedule when enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.TickInterval())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	_ = runner.Stop(context.Background())
	return nil
}

// Close releases the alert store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
