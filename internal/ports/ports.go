package ports

import (
	"context"
	"time"

	"CitationWatch/internal/domain"
)

// WorkSource discovers candidate works across all configured topics.
type WorkSource interface {
	Discover(ctx context.Context) ([]domain.Work, error)
}

// CitationFeed returns every citation event recorded for a document.
// An error means the count is unavailable, which is never the same as zero.
type CitationFeed interface {
	Events(ctx context.Context, docID string) ([]domain.CitationEvent, error)
}

// AlertRepository persists citation-spike alerts and their delivery state.
type AlertRepository interface {
	Insert(ctx context.Context, candidate domain.AlertCandidate) (domain.InsertOutcome, error)
	ListPending(ctx context.Context, detectedMonth string) ([]domain.AlertRecord, error)
	AttachSummary(ctx context.Context, id, summary string) error
	MarkNotified(ctx context.Context, ids []string) error
}

// Summarizer condenses an abstract into a short digest summary.
type Summarizer interface {
	Summarize(ctx context.Context, abstract string) (string, error)
}

// Dispatcher delivers a composed digest; any error fails the whole batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, digest domain.Digest) error
}

// Announcer mirrors the digest to a side channel on a best-effort basis.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// ImpactSource resolves journal impact factors at digest-composition time.
type ImpactSource interface {
	Lookup(journal string) (string, bool)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
