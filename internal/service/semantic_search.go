package service

import (
	"context"
	"sort"
	"strings"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/openai"
	"github.com/fermentlab/insightd/internal/telemetry"
)

// DefaultSemanticLimit caps semantic search results when the caller passes none.
const DefaultSemanticLimit = 20

// Embedder defines the interface for query embedding. The boolean reports
// whether an embedding is available; absence is an ordinary condition, not
// an error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// SemanticSearchRepository defines the repository interface for semantic search
type SemanticSearchRepository interface {
	ListEmbedded(ctx context.Context, scope domain.Scope) ([]*domain.Insight, error)
}

// SemanticResult is an insight annotated with its cosine similarity to the query.
type SemanticResult struct {
	Insight    *domain.Insight
	Similarity float64
}

// SemanticSearchService ranks stored insights by embedding similarity to a
// free-text query. Comparison is a linear scan over the fetched candidate
// set; at personal-library scale that beats maintaining an index.
type SemanticSearchService struct {
	repo     SemanticSearchRepository
	embedder Embedder
}

// NewSemanticSearchService creates a new SemanticSearchService instance
func NewSemanticSearchService(repo SemanticSearchRepository, embedder Embedder) *SemanticSearchService {
	return &SemanticSearchService{repo: repo, embedder: embedder}
}

// Search embeds the query and ranks every embedded, eligible insight in
// scope by cosine similarity, descending. When the query cannot be
// embedded (no service, empty text, call failure) it returns an empty
// result; callers keep a non-semantic fallback. The sort is stable, so
// equal similarities preserve store order.
func (s *SemanticSearchService) Search(ctx context.Context, query string, scope domain.Scope, limit int) ([]*SemanticResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SemanticSearchService.Search", telemetry.SpanAttributes{
		Operation: "semantic_search",
		OwnerID:   scope.OwnerID,
	})
	defer span.End()

	if limit <= 0 {
		limit = DefaultSemanticLimit
	}

	query = strings.TrimSpace(query)
	if query == "" || s.embedder == nil {
		return []*SemanticResult{}, nil
	}

	queryEmbedding, ok := s.embedder.Embed(ctx, query)
	if !ok {
		return []*SemanticResult{}, nil
	}

	insights, err := s.repo.ListEmbedded(ctx, scope)
	if err != nil {
		return nil, err
	}

	results := make([]*SemanticResult, 0, len(insights))
	for _, insight := range insights {
		if len(insight.Embedding) == 0 {
			continue
		}
		results = append(results, &SemanticResult{
			Insight:    insight,
			Similarity: openai.CosineSimilarity(queryEmbedding, insight.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
