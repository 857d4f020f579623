package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/service"
)

type DailySelector interface {
	Today(ctx context.Context, count int) (*service.DailySelection, error)
}

type DailyHandler struct {
	daily DailySelector
}

func NewDailyHandler(daily DailySelector) *DailyHandler {
	return &DailyHandler{daily: daily}
}

type DailyResponse struct {
	SessionDate string             `json:"session_date"`
	Insights    []*InsightResponse `json:"insights"`
}

// Get handles GET /daily?count=...
func (h *DailyHandler) Get(w http.ResponseWriter, r *http.Request) {
	count := service.DefaultDailyCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 50 {
			api.Error(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = parsed
	}

	selection, err := h.daily.Today(r.Context(), count)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DailyResponse{
		SessionDate: selection.SessionDate,
		Insights:    insightsToResponse(selection.Insights),
	})
}
