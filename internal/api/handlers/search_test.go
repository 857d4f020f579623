package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fermentlab/insightd/internal/api/middleware"
	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSemanticSearcher struct {
	mock.Mock
}

func (m *MockSemanticSearcher) Search(ctx context.Context, query string, scope domain.Scope, limit int) ([]*service.SemanticResult, error) {
	args := m.Called(ctx, query, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SemanticResult), args.Error(1)
}

type MockTopicSearcher struct {
	mock.Mock
}

func (m *MockTopicSearcher) Search(ctx context.Context, topic string, limit int) ([]*service.TopicResult, error) {
	args := m.Called(ctx, topic, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.TopicResult), args.Error(1)
}

func TestSearchHandler_Semantic(t *testing.T) {
	t.Run("searches within the session scope", func(t *testing.T) {
		semantic := new(MockSemanticSearcher)
		semantic.On("Search", mock.Anything, "pricing", domain.Scope{SessionToken: "tok-1"}, 5).
			Return([]*service.SemanticResult{newTestScoredInsight("i1")}, nil)

		handler := NewSearchHandler(semantic, new(MockTopicSearcher))

		body, _ := json.Marshal(SemanticSearchRequest{Query: "pricing", Limit: 5})
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
		req.Header.Set("X-Session-Token", "tok-1")
		w := httptest.NewRecorder()

		middleware.Scope(http.HandlerFunc(handler.Semantic)).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data SemanticSearchResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "pricing", resp.Data.Query)
		require.Len(t, resp.Data.Results, 1)
		assert.Equal(t, "i1", resp.Data.Results[0].Insight.ID)
		semantic.AssertExpectations(t)
	})

	t.Run("empty result is a valid answer", func(t *testing.T) {
		semantic := new(MockSemanticSearcher)
		semantic.On("Search", mock.Anything, "pricing", domain.Scope{}, 0).
			Return([]*service.SemanticResult{}, nil)

		handler := NewSearchHandler(semantic, new(MockTopicSearcher))

		body, _ := json.Marshal(SemanticSearchRequest{Query: "pricing"})
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data SemanticSearchResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Results)
	})

	t.Run("missing query is rejected", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSemanticSearcher), new(MockTopicSearcher))

		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearchHandler_Topic(t *testing.T) {
	t.Run("returns scored results", func(t *testing.T) {
		insight := domain.NewInsight("i1", "startup notes", domain.CategoryNote, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

		topic := new(MockTopicSearcher)
		topic.On("Search", mock.Anything, "startups", 10).
			Return([]*service.TopicResult{{Insight: insight, RelevanceScore: 7.5}}, nil)

		handler := NewSearchHandler(new(MockSemanticSearcher), topic)

		req := httptest.NewRequest(http.MethodGet, "/search/topic?q=startups", nil)
		w := httptest.NewRecorder()

		handler.Topic(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data TopicSearchResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "startups", resp.Data.Topic)
		require.Len(t, resp.Data.Results, 1)
		assert.InDelta(t, 7.5, resp.Data.Results[0].RelevanceScore, 1e-9)
	})

	t.Run("missing topic is rejected", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSemanticSearcher), new(MockTopicSearcher))

		req := httptest.NewRequest(http.MethodGet, "/search/topic", nil)
		w := httptest.NewRecorder()

		handler.Topic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("limit parameter is honored", func(t *testing.T) {
		topic := new(MockTopicSearcher)
		topic.On("Search", mock.Anything, "startups", 3).
			Return([]*service.TopicResult{}, nil)

		handler := NewSearchHandler(new(MockSemanticSearcher), topic)

		req := httptest.NewRequest(http.MethodGet, "/search/topic?q=startups&limit=3", nil)
		w := httptest.NewRecorder()

		handler.Topic(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		topic.AssertExpectations(t)
	})
}
