package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/pagination"
	"github.com/go-chi/chi/v5"
)

type InsightReader interface {
	GetByID(ctx context.Context, id string) (*domain.Insight, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Insight], error)
}

type InsightHandler struct {
	repo InsightReader
}

func NewInsightHandler(repo InsightReader) *InsightHandler {
	return &InsightHandler{repo: repo}
}

type InsightResponse struct {
	ID            string   `json:"id"`
	Content       string   `json:"content"`
	ExtractedText string   `json:"extracted_text,omitempty"`
	Note          string   `json:"note,omitempty"`
	SourceURL     string   `json:"source_url,omitempty"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	QualityScore  int      `json:"quality_score"`
	LastShown     string   `json:"last_shown,omitempty"`
	SavedAt       string   `json:"saved_at"`
}

func insightToResponse(i *domain.Insight) *InsightResponse {
	resp := &InsightResponse{
		ID:            i.ID,
		Content:       i.Content,
		ExtractedText: i.ExtractedText,
		Note:          i.Note,
		SourceURL:     i.SourceURL,
		Category:      string(i.Category),
		Tags:          i.Tags,
		QualityScore:  i.QualityScore,
		SavedAt:       i.SavedAt.Format("2006-01-02T15:04:05Z"),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if i.LastShown != nil {
		resp.LastShown = i.LastShown.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func insightsToResponse(insights []*domain.Insight) []*InsightResponse {
	out := make([]*InsightResponse, 0, len(insights))
	for _, insight := range insights {
		out = append(out, insightToResponse(insight))
	}
	return out
}

type InsightListResponse struct {
	Items   []*InsightResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.repo.ListWithCursor(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, InsightListResponse{
		Items:   insightsToResponse(page.Items),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	insight, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, insightToResponse(insight))
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
