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

// MockDailyRepository is a mock implementation of DailyRepository
type MockDailyRepository struct {
	mock.Mock
}

func (m *MockDailyRepository) GetSession(ctx context.Context, sessionDate string) (*domain.DailySession, error) {
	args := m.Called(ctx, sessionDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailySession), args.Error(1)
}

func (m *MockDailyRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Insight, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Insight), args.Error(1)
}

func (m *MockDailyRepository) ListDailyCandidates(ctx context.Context, sessionDate string, limit int) ([]*domain.Insight, error) {
	args := m.Called(ctx, sessionDate, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Insight), args.Error(1)
}

func (m *MockDailyRepository) SaveSelection(ctx context.Context, session *domain.DailySession) (*domain.DailySession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailySession), args.Error(1)
}

func dailyInsight(id string, quality int, category domain.Category) *domain.Insight {
	insight := domain.NewInsight(id, "content "+id, category, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	insight.QualityScore = quality
	return insight
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDailyService_ForDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	newService := func(repo *MockDailyRepository) *DailyService {
		uuidGen := new(MockUUIDGenerator)
		uuidGen.On("NewString").Return("session-uuid").Maybe()
		return NewDailyServiceWithClock(repo, uuidGen, fixedClock(now))
	}

	t.Run("replays existing session in stored order", func(t *testing.T) {
		repo := new(MockDailyRepository)
		session := domain.NewDailySession("s1", "2026-03-14", []string{"b", "a"}, now)
		repo.On("GetSession", ctx, "2026-03-14").Return(session, nil)
		repo.On("GetByIDs", ctx, []string{"b", "a"}).Return([]*domain.Insight{
			dailyInsight("b", 7, domain.CategoryArticle),
			dailyInsight("a", 9, domain.CategoryNote),
		}, nil)

		svc := newService(repo)
		selection, err := svc.ForDay(ctx, "2026-03-14", 5)

		require.NoError(t, err)
		require.Len(t, selection.Insights, 2)
		assert.Equal(t, "b", selection.Insights[0].ID)
		assert.Equal(t, "a", selection.Insights[1].ID)
		repo.AssertNotCalled(t, "ListDailyCandidates", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "SaveSelection", mock.Anything, mock.Anything)
	})

	t.Run("selects diverse top quality and persists", func(t *testing.T) {
		candidates := []*domain.Insight{
			dailyInsight("a", 9, domain.CategoryArticle),
			dailyInsight("b", 8, domain.CategoryNote),
			dailyInsight("c", 7, domain.CategoryVideo),
			dailyInsight("d", 6, domain.CategoryArticle),
		}

		repo := new(MockDailyRepository)
		repo.On("GetSession", ctx, "2026-03-14").Return(nil, nil)
		repo.On("ListDailyCandidates", ctx, "2026-03-14", dailyCandidateLimit).Return(candidates, nil)

		var saved *domain.DailySession
		repo.On("SaveSelection", ctx, mock.AnythingOfType("*domain.DailySession")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.DailySession) }).
			Return(domain.NewDailySession("session-uuid", "2026-03-14", []string{"a", "b", "c"}, now), nil)

		svc := newService(repo)
		selection, err := svc.ForDay(ctx, "2026-03-14", 3)

		require.NoError(t, err)
		assert.Len(t, selection.Insights, 3)

		require.NotNil(t, saved)
		assert.Equal(t, "session-uuid", saved.ID)
		assert.Equal(t, "2026-03-14", saved.SessionDate)
		assert.Len(t, saved.InsightIDs, 3)
	})

	t.Run("selection is deterministic within a day", func(t *testing.T) {
		// every candidate shares the same quality so ordering is decided
		// entirely by the seeded tie shuffle
		build := func() []*domain.Insight {
			out := make([]*domain.Insight, 0, 10)
			for i := 0; i < 10; i++ {
				out = append(out, dailyInsight(string(rune('a'+i)), 5, domain.CategoryArticle))
			}
			return out
		}

		run := func() []string {
			repo := new(MockDailyRepository)
			repo.On("GetSession", ctx, "2026-03-14").Return(nil, nil)
			repo.On("ListDailyCandidates", ctx, "2026-03-14", dailyCandidateLimit).Return(build(), nil)
			repo.On("SaveSelection", ctx, mock.Anything).
				Return(domain.NewDailySession("session-uuid", "2026-03-14", nil, now), nil)

			svc := newService(repo)
			selection, err := svc.ForDay(ctx, "2026-03-14", 3)
			require.NoError(t, err)

			ids := make([]string, 0, len(selection.Insights))
			for _, insight := range selection.Insights {
				ids = append(ids, insight.ID)
			}
			return ids
		}

		assert.Equal(t, run(), run())
	})

	t.Run("different days can differ", func(t *testing.T) {
		assert.NotEqual(t, daySeed("2026-03-14"), daySeed("2026-03-15"))
	})

	t.Run("losing a concurrent save replays the winner", func(t *testing.T) {
		winner := domain.NewDailySession("other-uuid", "2026-03-14", []string{"z"}, now)

		repo := new(MockDailyRepository)
		repo.On("GetSession", ctx, "2026-03-14").Return(nil, nil)
		repo.On("ListDailyCandidates", ctx, "2026-03-14", dailyCandidateLimit).Return([]*domain.Insight{
			dailyInsight("a", 9, domain.CategoryArticle),
		}, nil)
		repo.On("SaveSelection", ctx, mock.Anything).Return(winner, nil)
		repo.On("GetByIDs", ctx, []string{"z"}).Return([]*domain.Insight{
			dailyInsight("z", 4, domain.CategoryNote),
		}, nil)

		svc := newService(repo)
		selection, err := svc.ForDay(ctx, "2026-03-14", 5)

		require.NoError(t, err)
		require.Len(t, selection.Insights, 1)
		assert.Equal(t, "z", selection.Insights[0].ID)
	})

	t.Run("empty library yields empty selection", func(t *testing.T) {
		repo := new(MockDailyRepository)
		repo.On("GetSession", ctx, "2026-03-14").Return(nil, nil)
		repo.On("ListDailyCandidates", ctx, "2026-03-14", dailyCandidateLimit).Return([]*domain.Insight{}, nil)

		svc := newService(repo)
		selection, err := svc.ForDay(ctx, "2026-03-14", 5)

		require.NoError(t, err)
		assert.Empty(t, selection.Insights)
		repo.AssertNotCalled(t, "SaveSelection", mock.Anything, mock.Anything)
	})

	t.Run("store error propagates", func(t *testing.T) {
		repo := new(MockDailyRepository)
		repo.On("GetSession", ctx, "2026-03-14").Return(nil, errors.New("connection refused"))

		svc := newService(repo)
		_, err := svc.ForDay(ctx, "2026-03-14", 5)

		assert.Error(t, err)
	})
}

func TestShuffleQualityTies(t *testing.T) {
	t.Run("quality order survives the shuffle", func(t *testing.T) {
		insights := []*domain.Insight{
			dailyInsight("a", 3, domain.CategoryArticle),
			dailyInsight("b", 9, domain.CategoryArticle),
			dailyInsight("c", 5, domain.CategoryArticle),
			dailyInsight("d", 9, domain.CategoryArticle),
		}

		shuffleQualityTies(insights, daySeed("2026-03-14"))

		qualities := make([]int, 0, len(insights))
		for _, insight := range insights {
			qualities = append(qualities, insight.QualityScore)
		}
		assert.Equal(t, []int{9, 9, 5, 3}, qualities)
	})

	t.Run("same seed gives same order", func(t *testing.T) {
		build := func() []*domain.Insight {
			return []*domain.Insight{
				dailyInsight("a", 5, domain.CategoryArticle),
				dailyInsight("b", 5, domain.CategoryArticle),
				dailyInsight("c", 5, domain.CategoryArticle),
				dailyInsight("d", 5, domain.CategoryArticle),
			}
		}

		first := build()
		second := build()
		shuffleQualityTies(first, 42)
		shuffleQualityTies(second, 42)

		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
		}
	})
}
