package search

import (
	"context"
	"fmt"

	"CitationWatch/internal/domain"
)

// Query carries one topic's search expression to an article index.
type Query struct {
	Topic      string
	Expression string
}

// Index captures a single article-index backend (PubMed, etc.).
type Index interface {
	Name() string
	SearchIDs(ctx context.Context, query Query) ([]string, error)
	FetchWorks(ctx context.Context, ids []string) ([]domain.Work, error)
}

// Registry keeps a mapping from index names to their implementations.
type Registry struct {
	indexes map[string]Index
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{indexes: map[string]Index{}}
}

// Register adds or replaces an index implementation.
func (r *Registry) Register(index Index) {
	if r.indexes == nil {
		r.indexes = map[string]Index{}
	}
	r.indexes[index.Name()] = index
}

// Resolve returns an index by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Index, error) {
	if index, ok := r.indexes[name]; ok {
		return index, nil
	}
	return nil, fmt.Errorf("index %s is not registered", name)
}
