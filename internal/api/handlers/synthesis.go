package handlers

import (
	"context"
	"net/http"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/pagination"
	"github.com/go-chi/chi/v5"
)

type SynthesisReader interface {
	GetByID(ctx context.Context, id string) (*domain.Synthesis, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Synthesis], error)
}

type SynthesisHandler struct {
	repo SynthesisReader
}

func NewSynthesisHandler(repo SynthesisReader) *SynthesisHandler {
	return &SynthesisHandler{repo: repo}
}

type SynthesisResponse struct {
	ID         string   `json:"id"`
	OwnerID    string   `json:"owner_id,omitempty"`
	Query      string   `json:"query"`
	Body       string   `json:"body"`
	SourceIDs  []string `json:"source_ids"`
	EditedBody string   `json:"edited_body,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

func synthesisToResponse(s *domain.Synthesis) *SynthesisResponse {
	resp := &SynthesisResponse{
		ID:         s.ID,
		OwnerID:    s.OwnerID,
		Query:      s.Query,
		Body:       s.Body,
		SourceIDs:  s.SourceIDs,
		EditedBody: s.EditedBody,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if resp.SourceIDs == nil {
		resp.SourceIDs = []string{}
	}
	return resp
}

type SynthesisListResponse struct {
	Items   []*SynthesisResponse `json:"items"`
	Cursor  string               `json:"cursor,omitempty"`
	HasMore bool                 `json:"has_more"`
}

func (h *SynthesisHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.repo.ListWithCursor(r.Context(), cursor, parseLimit(r, 20))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*SynthesisResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, synthesisToResponse(s))
	}

	api.Success(w, http.StatusOK, SynthesisListResponse{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func (h *SynthesisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	synthesis, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, synthesisToResponse(synthesis))
}
