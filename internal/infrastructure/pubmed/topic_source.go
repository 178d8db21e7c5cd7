package pubmed

import (
	"context"
	"fmt"
	"log/slog"

	"CitationWatch/internal/config"
	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
	"CitationWatch/internal/search"
)

// TopicSource discovers works by running every configured topic query
// against its search index and merging the results into one ordered set.
type TopicSource struct {
	registry *search.Registry
	topics   []config.TopicConfig
	logger   *slog.Logger
}

var _ ports.WorkSource = (*TopicSource)(nil)

func NewTopicSource(registry *search.Registry, topics []config.TopicConfig, logger *slog.Logger) *TopicSource {
	return &TopicSource{
		registry: registry,
		topics:   topics,
		logger:   logger,
	}
}

// Discover runs all topic searches, removes duplicate identifiers while
// keeping first-seen order, and fetches metadata for the merged id set.
// A work that matches several topics is attributed to the first topic
// that returned it.
func (s *TopicSource) Discover(ctx context.Context) ([]domain.Work, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("search registry is not configured")
	}
	if len(s.topics) == 0 {
		return nil, fmt.Errorf("no topics configured")
	}

	type indexBatch struct {
		index search.Index
		ids   []string
	}

	batchFor := make(map[string]*indexBatch)
	batches := make([]*indexBatch, 0, 1)
	seen := make(map[string]struct{})
	topicOf := make(map[string]string)

	for _, topic := range s.topics {
		sourceName := topic.Source
		if sourceName == "" {
			sourceName = "pubmed"
		}

		index, err := s.registry.Resolve(sourceName)
		if err != nil {
			return nil, fmt.Errorf("topic %s: %w", topic.Name, err)
		}

		ids, err := index.SearchIDs(ctx, search.Query{Topic: topic.Name, Expression: topic.Query})
		if err != nil {
			return nil, fmt.Errorf("search topic %s: %w", topic.Name, err)
		}

		s.debug("topic searched", "topic", topic.Name, "source", sourceName, "ids", len(ids))

		batch, ok := batchFor[sourceName]
		if !ok {
			batch = &indexBatch{index: index}
			batchFor[sourceName] = batch
			batches = append(batches, batch)
		}

		before := len(batch.ids)
		batch.ids = appendMissing(batch.ids, seen, ids)
		for _, id := range batch.ids[before:] {
			topicOf[id] = topic.Name
		}
	}

	var works []domain.Work
	for _, batch := range batches {
		fetched, err := batch.index.FetchWorks(ctx, batch.ids)
		if err != nil {
			return nil, fmt.Errorf("fetch works from %s: %w", batch.index.Name(), err)
		}
		for i := range fetched {
			fetched[i].Topic = topicOf[fetched[i].ID]
		}
		works = append(works, fetched...)
	}

	s.debug("discovery done", "topics", len(s.topics), "works", len(works))
	return works, nil
}

// appendMissing adds each id to out exactly once, preserving first-seen order.
func appendMissing(out []string, seen map[string]struct{}, ids []string) []string {
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *TopicSource) debug(msg string, args ...interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, args...)
}
