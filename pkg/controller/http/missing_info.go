package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/samber/lo"
)

type missingInfoRequest struct {
	Dimension       string `json:"dimension"`
	InformationType string `json:"information_type"`
	Description     string `json:"description"`
	Status          string `json:"status"`
}

type missingInfoResponse struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Dimension       string    `json:"dimension"`
	InformationType string    `json:"information_type"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toMissingInfoResponse(m *model.MissingInfo) missingInfoResponse {
	return missingInfoResponse{
		ID:              m.ID.String(),
		ProjectID:       m.ProjectID.String(),
		Dimension:       m.Dimension.String(),
		InformationType: m.InformationType,
		Description:     m.Description,
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toMissingInfoResponses(items []*model.MissingInfo) []missingInfoResponse {
	return lo.Map(items, func(m *model.MissingInfo, _ int) missingInfoResponse {
		return toMissingInfoResponse(m)
	})
}

func (s *Server) listMissingInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := s.uc.MissingInfo.List(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toMissingInfoResponses(items))
}

func (s *Server) addMissingInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req missingInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := s.uc.MissingInfo.Add(ctx, projectIDParam(r), model.MissingInfoInput{
		Dimension:       req.Dimension,
		InformationType: req.InformationType,
		Description:     req.Description,
		Status:          req.Status,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toMissingInfoResponse(item))
}

func (s *Server) getMissingInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := model.MissingInfoID(chi.URLParam(r, "infoID"))
	item, err := s.uc.MissingInfo.Get(ctx, projectIDParam(r), id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toMissingInfoResponse(item))
}

func (s *Server) removeMissingInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := model.MissingInfoID(chi.URLParam(r, "infoID"))
	if err := s.uc.MissingInfo.Remove(ctx, projectIDParam(r), id); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, nil)
}
