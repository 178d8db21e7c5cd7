package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"CitationWatch/internal/citations"
	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
)

// missingAbstractSummary is stored when a pending alert has no abstract to
// summarize, so reruns do not retry a summary that can never be produced.
const missingAbstractSummary = "(no abstract available; automatic summary skipped)"

// previewLimit caps summary text in dry-run preview log lines.
const previewLimit = 100

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.WorkSource
	Repository ports.AlertRepository
	Calculator CitationCalculator
	Summarizer ports.Summarizer
	Dispatcher ports.Dispatcher
	Announcer  ports.Announcer
	Impact     ports.ImpactSource
	Threshold  int
	DryRun     bool
	Now        func() time.Time
	Logger     *slog.Logger
}

// Pipeline implements the monthly citation-spike workflow: discover works,
// evaluate citation increases, record alerts, then notify about everything
// still pending for the detected month.
type Pipeline struct {
	source     ports.WorkSource
	repository ports.AlertRepository
	evaluator  *Evaluator
	summarizer ports.Summarizer
	dispatcher ports.Dispatcher
	announcer  ports.Announcer
	impact     ports.ImpactSource
	dryRun     bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		evaluator:  NewEvaluator(deps.Calculator, deps.Threshold, deps.Logger),
		summarizer: deps.Summarizer,
		dispatcher: deps.Dispatcher,
		announcer:  deps.Announcer,
		impact:     deps.Impact,
		dryRun:     deps.DryRun,
		now:        now,
		logger:     deps.Logger,
	}
}

// Run executes one full detection and notification cycle. Detection finishes
// for every work before any notification starts, so a notify failure never
// loses detected spikes: they stay pending and the next run picks them up.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("work source is not configured")
	}
	if p.repository == nil {
		return fmt.Errorf("alert repository is not configured")
	}

	bounds := citations.MonthBoundaries(p.now())
	month := bounds.DetectedMonth()
	p.info("run started",
		"detected_month", month,
		"end_of_last_month", bounds.EndOfLastMonth.Format("2006-01-02"),
		"end_of_previous_month", bounds.EndOfPreviousMonth.Format("2006-01-02"),
		"dry_run", p.dryRun,
	)

	works, err := p.source.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover works: %w", err)
	}

	stats, candidates := p.evaluator.Run(ctx, works, bounds)

	inserted := 0
	deduplicated := 0
	for _, candidate := range candidates {
		outcome, err := p.repository.Insert(ctx, candidate)
		if err != nil {
			return fmt.Errorf("insert alert for %s: %w", candidate.WorkID, err)
		}
		switch outcome {
		case domain.AlertInserted:
			inserted++
			p.debug("alert recorded", "work", candidate.WorkID, "detected_month", candidate.DetectedMonth)
		case domain.AlertDeduplicated:
			deduplicated++
			p.debug("alert already recorded", "work", candidate.WorkID, "detected_month", candidate.DetectedMonth)
		}
	}

	p.logStats(stats, inserted, deduplicated)

	return p.notify(ctx, works, month)
}

// notify summarizes and dispatches every alert still pending for the month.
// In dry-run mode everything up to dispatch happens for real, including
// persisting summaries; only dispatch and the notified flag are skipped.
func (p *Pipeline) notify(ctx context.Context, works []domain.Work, month string) error {
	pending, err := p.repository.ListPending(ctx, month)
	if err != nil {
		return fmt.Errorf("list pending alerts: %w", err)
	}

	if len(pending) == 0 {
		p.info("no pending alerts", "detected_month", month)
		return nil
	}

	workByID := make(map[string]domain.Work, len(works))
	for _, work := range works {
		workByID[work.ID] = work
	}

	for i, record := range pending {
		if record.Summary != "" {
			continue
		}

		summary := p.summarize(ctx, workByID, record)
		if summary == "" {
			continue
		}

		if err := p.repository.AttachSummary(ctx, record.ID, summary); err != nil {
			return fmt.Errorf("attach summary for %s: %w", record.WorkID, err)
		}
		pending[i].Summary = summary
	}

	digest := p.composeDigest(month, pending)

	if p.dryRun {
		p.previewDigest(pending)
		return nil
	}

	if p.dispatcher == nil {
		return fmt.Errorf("dispatcher is not configured")
	}
	if err := p.dispatcher.Dispatch(ctx, digest); err != nil {
		return fmt.Errorf("dispatch digest: %w", err)
	}

	ids := make([]string, len(pending))
	for i, record := range pending {
		ids[i] = record.ID
	}
	if err := p.repository.MarkNotified(ctx, ids); err != nil {
		return fmt.Errorf("mark alerts notified: %w", err)
	}

	p.info("digest dispatched", "detected_month", month, "alerts", len(pending))

	if p.announcer != nil {
		if err := p.announcer.Announce(ctx, digest.Body); err != nil {
			p.warn("announcement failed", "error", err)
		}
	}

	return nil
}

// summarize produces the stored summary for one pending alert. Summarizer
// failures degrade to an empty summary so notification still goes out.
func (p *Pipeline) summarize(ctx context.Context, workByID map[string]domain.Work, record domain.AlertRecord) string {
	work, ok := workByID[record.WorkID]
	if !ok || strings.TrimSpace(work.Abstract) == "" {
		return missingAbstractSummary
	}

	if p.summarizer == nil {
		return ""
	}

	summary, err := p.summarizer.Summarize(ctx, work.Abstract)
	if err != nil {
		p.warn("summarize failed", "work", record.WorkID, "error", err)
		return ""
	}
	return summary
}

func (p *Pipeline) composeDigest(month string, records []domain.AlertRecord) domain.Digest {
	var body strings.Builder
	fmt.Fprintf(&body, "Citation spikes detected for %s\n\n", month)

	for _, record := range records {
		fmt.Fprintf(&body, "- %s\n", record.Title)

		journal := valueOr(record.Journal, "unknown journal")
		if p.impact != nil {
			if factor, ok := p.impact.Lookup(record.Journal); ok {
				journal += fmt.Sprintf(" (IF %s)", factor)
			}
		}
		fmt.Fprintf(&body, "  %s, published %s\n", journal, valueOr(record.PublishedDate, "n/a"))
		fmt.Fprintf(&body, "  Citations last month: %+d\n", record.Increase)
		if record.Summary != "" {
			fmt.Fprintf(&body, "  %s\n", record.Summary)
		}
		fmt.Fprintf(&body, "  https://doi.org/%s\n\n", record.DocID)
	}

	return domain.Digest{
		Subject: fmt.Sprintf("Citation spike alert %s: %d works", month, len(records)),
		Body:    strings.TrimSpace(body.String()) + "\n",
	}
}

func (p *Pipeline) previewDigest(records []domain.AlertRecord) {
	p.info("dry run, digest not dispatched", "alerts", len(records))
	for _, record := range records {
		p.info("pending alert",
			"title", record.Title,
			"increase", record.Increase,
			"summary", truncate(record.Summary, previewLimit),
		)
	}
}

func (p *Pipeline) logStats(stats domain.RunStats, inserted, deduplicated int) {
	args := []interface{}{
		"works", stats.Total,
		"missing_doc_id", stats.MissingDocID,
		"feed_failures", stats.FeedFailures,
		"zero_increase", stats.ZeroIncrease,
		"positive_increase", stats.PositiveIncrease,
		"spikes", stats.Spikes,
		"inserted", inserted,
		"deduplicated", deduplicated,
	}
	if peak, ok := stats.MaxIncrease(); ok {
		args = append(args, "max_increase", peak, "top_increases", stats.TopIncreases(5))
	}
	p.info("detection finished", args...)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.Debug(msg, args...)
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.Info(msg, args...)
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(msg, args...)
}
