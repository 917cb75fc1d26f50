package http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
)

type subDimensionResponse struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Comment  string  `json:"comment,omitempty"`
}

type dimensionResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Label         string                 `json:"label"`
	Score         float64                `json:"score"`
	MaxScore      float64                `json:"max_score"`
	Comment       string                 `json:"comment"`
	SubDimensions []subDimensionResponse `json:"sub_dimensions,omitempty"`
}

func toDimensionResponses(dims []model.Dimension) []dimensionResponse {
	return lo.Map(dims, func(d model.Dimension, _ int) dimensionResponse {
		def, _ := d.ID.Def()
		return dimensionResponse{
			ID:       d.ID.String(),
			Name:     def.Name,
			Label:    def.Label,
			Score:    d.Score,
			MaxScore: d.MaxScore,
			Comment:  d.Comment,
			SubDimensions: lo.Map(d.SubDimensions, func(s model.SubDimension, _ int) subDimensionResponse {
				return subDimensionResponse{Name: s.Name, Score: s.Score, MaxScore: s.MaxScore, Comment: s.Comment}
			}),
		}
	})
}

type sheetResponse struct {
	ProjectID     string              `json:"project_id"`
	Version       int64               `json:"version"`
	TotalScore    float64             `json:"total_score"`
	TotalPossible float64             `json:"total_possible"`
	Dimensions    []dimensionResponse `json:"dimensions"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

func toSheetResponse(sheet *model.ScoreSheet) *sheetResponse {
	if sheet == nil {
		return nil
	}
	resp := &sheetResponse{
		ProjectID:     sheet.ProjectID.String(),
		Version:       sheet.Version,
		TotalScore:    sheet.Total(),
		TotalPossible: types.TotalMaxScore,
		Dimensions:    toDimensionResponses(sheet.Dimensions),
	}
	if !sheet.UpdatedAt.IsZero() {
		resp.UpdatedAt = &sheet.UpdatedAt
	}
	return resp
}

type draftResponse struct {
	ProjectID string         `json:"project_id"`
	Actor     string         `json:"actor"`
	State     string         `json:"state"`
	StartedAt time.Time      `json:"started_at"`
	Draft     *sheetResponse `json:"draft"`
	Committed *sheetResponse `json:"committed"`
	Changed   []string       `json:"changed_dimensions"`
}

func toDraftResponse(v *usecase.DraftView) draftResponse {
	return draftResponse{
		ProjectID: v.ProjectID.String(),
		Actor:     v.Actor,
		State:     v.State.String(),
		StartedAt: v.StartedAt,
		Draft:     toSheetResponse(v.Draft),
		Committed: toSheetResponse(v.Committed),
		Changed: lo.Map(v.Changed, func(d types.DimensionID, _ int) string {
			return d.String()
		}),
	}
}

type historyResponse struct {
	ID         string              `json:"id"`
	TotalScore *float64            `json:"total_score"`
	Dimensions []dimensionResponse `json:"dimensions"`
	ModifiedBy string              `json:"modified_by"`
	Note       string              `json:"note,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toHistoryResponses(entries []*model.HistoryEntry) []historyResponse {
	return lo.Map(entries, func(e *model.HistoryEntry, _ int) historyResponse {
		return historyResponse{
			ID:         e.ID.String(),
			TotalScore: e.TotalScore,
			Dimensions: toDimensionResponses(e.Dimensions),
			ModifiedBy: e.ModifiedBy,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		}
	})
}

type commitResponse struct {
	Sheet   *sheetResponse  `json:"sheet"`
	Project projectResponse `json:"project"`
	History historyResponse `json:"history"`
}

func toCommitResponse(c *model.ScoreCommit) commitResponse {
	return commitResponse{
		Sheet:   toSheetResponse(c.Sheet),
		Project: toProjectResponse(c.Project),
		History: toHistoryResponses([]*model.HistoryEntry{c.History})[0],
	}
}

type dimensionSummaryResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
}

type summaryResponse struct {
	ProjectID         string                     `json:"project_id"`
	ProjectName       string                     `json:"project_name"`
	EnterpriseName    string                     `json:"enterprise_name"`
	TotalScore        *float64                   `json:"total_score"`
	TotalPossible     float64                    `json:"total_possible"`
	OverallPercentage float64                    `json:"overall_percentage"`
	Status            string                     `json:"status"`
	Recommendation    string                     `json:"recommendation"`
	Dimensions        []dimensionSummaryResponse `json:"dimensions"`
	LastUpdated       time.Time                  `json:"last_updated"`
}

func toSummaryResponse(s *model.ScoreSummary) summaryResponse {
	return summaryResponse{
		ProjectID:         s.ProjectID.String(),
		ProjectName:       s.ProjectName,
		EnterpriseName:    s.EnterpriseName,
		TotalScore:        s.TotalScore,
		TotalPossible:     s.TotalPossible,
		OverallPercentage: s.OverallPercentage,
		Status:            s.Status.String(),
		Recommendation:    s.Recommendation,
		Dimensions: lo.Map(s.Dimensions, func(d model.DimensionSummary, _ int) dimensionSummaryResponse {
			return dimensionSummaryResponse{
				ID:         d.ID.String(),
				Name:       d.Name,
				Score:      d.Score,
				MaxScore:   d.MaxScore,
				Percentage: d.Percentage,
			}
		}),
		LastUpdated: s.LastUpdated,
	}
}

type updateDimensionRequest struct {
	Score        *float64 `json:"score"`
	Comment      *string  `json:"comment"`
	SubDimension string   `json:"sub_dimension"`
}

type commitRequest struct {
	Note string `json:"note"`
}

type subDimensionInput struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type dimensionInput struct {
	Dimension     string              `json:"dimension"`
	Score         *float64            `json:"score"`
	Comment       *string             `json:"comment"`
	SubDimensions []subDimensionInput `json:"sub_dimensions"`
}

type replaceScoresRequest struct {
	Dimensions []dimensionInput `json:"dimensions"`
	Note       string           `json:"note"`
}

func (s *Server) getScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sheet, err := s.uc.Score.GetSheet(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toSheetResponse(sheet))
}

func (s *Server) replaceScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req replaceScoresRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := lo.Map(req.Dimensions, func(d dimensionInput, _ int) usecase.DimensionInput {
		return usecase.DimensionInput{
			Dimension: d.Dimension,
			Score:     d.Score,
			Comment:   d.Comment,
			SubDimensions: lo.Map(d.SubDimensions, func(s subDimensionInput, _ int) usecase.SubDimensionInput {
				return usecase.SubDimensionInput{Name: s.Name, Score: s.Score}
			}),
		}
	})

	c, err := s.uc.Score.ReplaceScores(ctx, projectIDParam(r), inputs, req.Note)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toCommitResponse(c))
}

func (s *Server) scoreSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := s.uc.Score.Summary(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) scoreHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.uc.Score.History(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toHistoryResponses(entries))
}

func (s *Server) beginEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := s.uc.Score.BeginEdit(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toDraftResponse(view))
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := s.uc.Score.GetDraft(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toDraftResponse(view))
}

func (s *Server) updateDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateDimensionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	// labels such as 财务情况 arrive percent-encoded when routed by RawPath
	dimension, err := url.PathUnescape(chi.URLParam(r, "dimension"))
	if err != nil {
		writeError(ctx, w, goerr.Wrap(model.ErrValidation, "malformed dimension", goerr.V(model.DimensionKey, chi.URLParam(r, "dimension"))))
		return
	}

	view, err := s.uc.Score.UpdateDimension(ctx, projectIDParam(r), usecase.DimensionUpdate{
		Dimension:    dimension,
		Score:        req.Score,
		Comment:      req.Comment,
		SubDimension: req.SubDimension,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toDraftResponse(view))
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req commitRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := s.uc.Score.Commit(ctx, projectIDParam(r), req.Note)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toCommitResponse(c))
}

func (s *Server) cancelEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.Score.Cancel(ctx, projectIDParam(r)); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, nil)
}
