package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSemanticSearchRepository is a mock implementation of SemanticSearchRepository
type MockSemanticSearchRepository struct {
	mock.Mock
}

func (m *MockSemanticSearchRepository) ListEmbedded(ctx context.Context, scope domain.Scope) ([]*domain.Insight, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Insight), args.Error(1)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, bool) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]float32), args.Bool(1)
}

func embeddedInsight(id string, embedding []float32) *domain.Insight {
	insight := domain.NewInsight(id, "content "+id, domain.CategoryArticle, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	insight.Embedding = embedding
	return insight
}

func TestSemanticSearchService_Search(t *testing.T) {
	ctx := context.Background()
	scope := domain.Scope{OwnerID: "owner-1"}

	t.Run("ranks by cosine similarity descending", func(t *testing.T) {
		near := embeddedInsight("near", []float32{1, 0, 0})
		far := embeddedInsight("far", []float32{0, 1, 0})
		mid := embeddedInsight("mid", []float32{1, 1, 0})

		repo := new(MockSemanticSearchRepository)
		repo.On("ListEmbedded", ctx, scope).Return([]*domain.Insight{far, mid, near}, nil)

		embedder := new(MockEmbedder)
		embedder.On("Embed", ctx, "pricing strategy").Return([]float32{1, 0, 0}, true)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "pricing strategy", scope, 10)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "near", results[0].Insight.ID)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
		assert.Equal(t, "mid", results[1].Insight.ID)
		assert.Equal(t, "far", results[2].Insight.ID)
		assert.InDelta(t, 0.0, results[2].Similarity, 1e-9)
	})

	t.Run("identical vectors tie and keep store order", func(t *testing.T) {
		first := embeddedInsight("first", []float32{1, 0})
		second := embeddedInsight("second", []float32{1, 0})

		repo := new(MockSemanticSearchRepository)
		repo.On("ListEmbedded", ctx, scope).Return([]*domain.Insight{first, second}, nil)

		embedder := new(MockEmbedder)
		embedder.On("Embed", ctx, "pricing strategy").Return([]float32{1, 0}, true)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "pricing strategy", scope, 10)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Insight.ID)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
		assert.Equal(t, "second", results[1].Insight.ID)
		assert.InDelta(t, 1.0, results[1].Similarity, 1e-9)
	})

	t.Run("absent query embedding yields empty result", func(t *testing.T) {
		repo := new(MockSemanticSearchRepository)

		embedder := new(MockEmbedder)
		embedder.On("Embed", ctx, "anything").Return(nil, false)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "anything", scope, 10)

		require.NoError(t, err)
		assert.Empty(t, results)
		repo.AssertNotCalled(t, "ListEmbedded", mock.Anything, mock.Anything)
	})

	t.Run("nil embedder yields empty result", func(t *testing.T) {
		repo := new(MockSemanticSearchRepository)

		svc := NewSemanticSearchService(repo, nil)
		results, err := svc.Search(ctx, "anything", scope, 10)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query yields empty result", func(t *testing.T) {
		repo := new(MockSemanticSearchRepository)
		embedder := new(MockEmbedder)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "  ", scope, 10)

		require.NoError(t, err)
		assert.Empty(t, results)
		embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		insights := make([]*domain.Insight, 0, 5)
		for i := 0; i < 5; i++ {
			insights = append(insights, embeddedInsight(string(rune('a'+i)), []float32{1, 0}))
		}

		repo := new(MockSemanticSearchRepository)
		repo.On("ListEmbedded", ctx, scope).Return(insights, nil)

		embedder := new(MockEmbedder)
		embedder.On("Embed", ctx, "query").Return([]float32{1, 0}, true)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "query", scope, 3)

		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("store error propagates", func(t *testing.T) {
		repo := new(MockSemanticSearchRepository)
		repo.On("ListEmbedded", ctx, scope).Return(nil, errors.New("connection refused"))

		embedder := new(MockEmbedder)
		embedder.On("Embed", ctx, "query").Return([]float32{1, 0}, true)

		svc := NewSemanticSearchService(repo, embedder)
		results, err := svc.Search(ctx, "query", scope, 10)

		assert.Error(t, err)
		assert.Nil(t, results)
	})
}
