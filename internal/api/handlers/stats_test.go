package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Stats(ctx context.Context) (*service.LibraryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LibraryStats), args.Error(1)
}

func TestStatsHandler_Get(t *testing.T) {
	t.Run("returns library stats", func(t *testing.T) {
		provider := new(MockStatsProvider)
		provider.On("Stats", mock.Anything).Return(&service.LibraryStats{
			Total: 42,
			ByCategory: map[domain.Category]int{
				domain.CategoryArticle: 30,
				domain.CategoryNote:    12,
			},
			TopTags: []string{"go", "distributed-systems"},
		}, nil)

		handler := NewStatsHandler(provider)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		handler.Get(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data StatsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 42, resp.Data.Total)
		assert.Equal(t, 30, resp.Data.ByCategory["article"])
		assert.Equal(t, []string{"go", "distributed-systems"}, resp.Data.TopTags)
	})

	t.Run("nil top tags serialize as empty list", func(t *testing.T) {
		provider := new(MockStatsProvider)
		provider.On("Stats", mock.Anything).Return(&service.LibraryStats{Total: 0}, nil)

		handler := NewStatsHandler(provider)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		handler.Get(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"top_tags":[]`)
	})

	t.Run("provider error maps to internal error", func(t *testing.T) {
		provider := new(MockStatsProvider)
		provider.On("Stats", mock.Anything).Return(nil, errors.New("db unavailable"))

		handler := NewStatsHandler(provider)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		handler.Get(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
