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

// MockTopicSearchRepository is a mock implementation of TopicSearchRepository
type MockTopicSearchRepository struct {
	mock.Mock
}

func (m *MockTopicSearchRepository) ListEligible(ctx context.Context) ([]*domain.Insight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Insight), args.Error(1)
}

func TestTopicSearchService_Search(t *testing.T) {
	ctx := context.Background()
	savedAt := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("ranks by relevance times quality with diversity", func(t *testing.T) {
		// A and B share tags and category; C offers a different category.
		a := domain.NewInsight("a", "thoughts on startups", domain.CategoryArticle, savedAt)
		a.Tags = []string{"startups"}
		a.QualityScore = 9
		a.SourceURL = "https://a.example.com/1"

		b := domain.NewInsight("b", "more on startups", domain.CategoryArticle, savedAt)
		b.Tags = []string{"startups"}
		b.QualityScore = 3
		b.SourceURL = "https://b.example.com/1"

		c := domain.NewInsight("c", "notes on writing about startups", domain.CategoryNote, savedAt)
		c.Tags = []string{"writing"}
		c.QualityScore = 5
		c.SourceURL = ""

		repo := new(MockTopicSearchRepository)
		repo.On("ListEligible", ctx).Return([]*domain.Insight{b, c, a}, nil)

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "startups", 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Insight.ID)
		assert.Equal(t, "c", results[1].Insight.ID)
		repo.AssertExpectations(t)
	})

	t.Run("excludes zero scores", func(t *testing.T) {
		unrelated := domain.NewInsight("u", "gardening tips", domain.CategoryArticle, savedAt)
		unrelated.QualityScore = 0

		repo := new(MockTopicSearchRepository)
		repo.On("ListEligible", ctx).Return([]*domain.Insight{unrelated}, nil)

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "kubernetes", 10)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty topic returns empty without a store read", func(t *testing.T) {
		repo := new(MockTopicSearchRepository)

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "   ", 10)

		require.NoError(t, err)
		assert.Empty(t, results)
		repo.AssertNotCalled(t, "ListEligible", mock.Anything)
	})

	t.Run("equal ranking keys keep store order", func(t *testing.T) {
		first := domain.NewInsight("first", "alpha raft", domain.CategoryArticle, savedAt)
		first.QualityScore = 4
		second := domain.NewInsight("second", "beta raft", domain.CategoryArticle, savedAt)
		second.QualityScore = 4

		repo := new(MockTopicSearchRepository)
		repo.On("ListEligible", ctx).Return([]*domain.Insight{first, second}, nil)

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "raft", 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Insight.ID)
		assert.Equal(t, "second", results[1].Insight.ID)
	})

	t.Run("defaults the limit", func(t *testing.T) {
		insights := make([]*domain.Insight, 0, 15)
		for i := 0; i < 15; i++ {
			insight := domain.NewInsight(string(rune('a'+i)), "raft consensus", domain.CategoryArticle, savedAt)
			insights = append(insights, insight)
		}

		repo := new(MockTopicSearchRepository)
		repo.On("ListEligible", ctx).Return(insights, nil)

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "raft", 0)

		require.NoError(t, err)
		assert.Len(t, results, DefaultTopicLimit)
	})

	t.Run("store error propagates", func(t *testing.T) {
		repo := new(MockTopicSearchRepository)
		repo.On("ListEligible", ctx).Return(nil, errors.New("connection refused"))

		svc := NewTopicSearchService(repo)
		results, err := svc.Search(ctx, "raft", 10)

		assert.Error(t, err)
		assert.Nil(t, results)
	})
}
