package handlers

import (
	"context"
	"net/http"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/service"
)

type StatsProvider interface {
	Stats(ctx context.Context) (*service.LibraryStats, error)
}

type StatsHandler struct {
	provider StatsProvider
}

func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

type StatsResponse struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	TopTags    []string       `json:"top_tags"`
}

func statsToResponse(stats *service.LibraryStats) *StatsResponse {
	byCategory := make(map[string]int, len(stats.ByCategory))
	for category, count := range stats.ByCategory {
		byCategory[string(category)] = count
	}
	topTags := stats.TopTags
	if topTags == nil {
		topTags = []string{}
	}
	return &StatsResponse{
		Total:      stats.Total,
		ByCategory: byCategory,
		TopTags:    topTags,
	}
}

// Get handles GET /stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.provider.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, statsToResponse(stats))
}
