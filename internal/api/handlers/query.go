package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/api/middleware"
	"github.com/fermentlab/insightd/internal/service"
)

type QueryRouter interface {
	Route(ctx context.Context, input service.RouteInput) (*service.QueryResponse, error)
}

type QueryHandler struct {
	router QueryRouter
}

func NewQueryHandler(router QueryRouter) *QueryHandler {
	return &QueryHandler{router: router}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type ScoredInsightResponse struct {
	Insight    *InsightResponse `json:"insight"`
	Similarity float64          `json:"similarity"`
}

type QueryResult struct {
	Type        string                   `json:"type"`
	Query       string                   `json:"query"`
	Response    string                   `json:"response,omitempty"`
	Insights    []*ScoredInsightResponse `json:"insights"`
	SynthesisID string                   `json:"synthesis_id,omitempty"`
	Redirect    string                   `json:"redirect,omitempty"`
	Topic       string                   `json:"topic,omitempty"`
	Stats       *StatsResponse           `json:"stats,omitempty"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.router.Route(r.Context(), service.RouteInput{
		Query: req.Query,
		Scope: middleware.GetScope(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, queryToResult(result))
}

func queryToResult(result *service.QueryResponse) *QueryResult {
	out := &QueryResult{
		Type:        string(result.Type),
		Query:       result.Query,
		Response:    result.Response,
		Insights:    scoredInsightsToResponse(result.Insights),
		SynthesisID: result.SynthesisID,
		Redirect:    result.Redirect,
		Topic:       result.Topic,
	}
	if result.Stats != nil {
		out.Stats = statsToResponse(result.Stats)
	}
	return out
}

func scoredInsightsToResponse(results []*service.SemanticResult) []*ScoredInsightResponse {
	out := make([]*ScoredInsightResponse, 0, len(results))
	for _, r := range results {
		out = append(out, &ScoredInsightResponse{
			Insight:    insightToResponse(r.Insight),
			Similarity: r.Similarity,
		})
	}
	return out
}
