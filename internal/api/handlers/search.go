package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/api/middleware"
	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/service"
)

type SemanticSearcher interface {
	Search(ctx context.Context, query string, scope domain.Scope, limit int) ([]*service.SemanticResult, error)
}

type TopicSearcher interface {
	Search(ctx context.Context, topic string, limit int) ([]*service.TopicResult, error)
}

type SearchHandler struct {
	semantic SemanticSearcher
	topic    TopicSearcher
}

func NewSearchHandler(semantic SemanticSearcher, topic TopicSearcher) *SearchHandler {
	return &SearchHandler{semantic: semantic, topic: topic}
}

type SemanticSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SemanticSearchResponse struct {
	Query   string                   `json:"query"`
	Results []*ScoredInsightResponse `json:"results"`
}

// Semantic handles POST /search
func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
	var req SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.semantic.Search(r.Context(), req.Query, middleware.GetScope(r.Context()), req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SemanticSearchResponse{
		Query:   req.Query,
		Results: scoredInsightsToResponse(results),
	})
}

type TopicResultResponse struct {
	Insight        *InsightResponse `json:"insight"`
	RelevanceScore float64          `json:"relevance_score"`
}

type TopicSearchResponse struct {
	Topic   string                 `json:"topic"`
	Results []*TopicResultResponse `json:"results"`
}

// Topic handles GET /search/topic?q=...&limit=...
func (h *SearchHandler) Topic(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("q")
	if topic == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := h.topic.Search(r.Context(), topic, parseLimit(r, service.DefaultTopicLimit))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*TopicResultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, &TopicResultResponse{
			Insight:        insightToResponse(result.Insight),
			RelevanceScore: result.RelevanceScore,
		})
	}

	api.Success(w, http.StatusOK, TopicSearchResponse{Topic: topic, Results: out})
}
