package pipeline

import (
	"context"

	"github.com/alexf37/ingest-demo/internal/errors"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

// MemoryStore is the knowledge-store surface the pipeline depends on.
// Implemented by *supermemory.Client.
type MemoryStore interface {
	Search(ctx context.Context, req *supermemory.SearchRequest) (*supermemory.SearchResponse, error)
	AddMemory(ctx context.Context, req *supermemory.AddMemoryRequest) (*supermemory.Memory, error)
}

// UserTag returns the container tag scoping knowledge-store reads and
// writes to one user.
func UserTag(userID string) string {
	return "user-" + userID
}

// Retriever issues contextual searches against the knowledge store.
type Retriever struct {
	store MemoryStore
}

// NewRetriever creates a Retriever.
func NewRetriever(store MemoryStore) *Retriever {
	return &Retriever{store: store}
}

// Retrieve runs one reranked, query-rewritten search scoped to the
// user. A nil or empty filter attaches no constraint. Zero results is
// a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query, userID string, filter *TemporalFilter) ([]supermemory.Result, error) {
	resp, err := r.store.Search(ctx, &supermemory.SearchRequest{
		Query:           query,
		ContainerTags:   []string{UserTag(userID)},
		IncludeFullDocs: true,
		IncludeSummary:  true,
		Rerank:          true,
		RewriteQuery:    true,
		Filters:         filter.Clauses(),
	})
	if err != nil {
		return nil, errors.Retrieval("context search failed", err)
	}
	// Result ordering is the reranker's relevance order; no resort here.
	return resp.Results, nil
}
