package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
)

type projectRequest struct {
	EnterpriseName string `json:"enterprise_name"`
	ProjectName    string `json:"project_name"`
	Description    string `json:"description"`
	TeamMembers    string `json:"team_members"`
}

func (req projectRequest) input() model.ProjectInput {
	return model.ProjectInput{
		EnterpriseName: req.EnterpriseName,
		ProjectName:    req.ProjectName,
		Description:    req.Description,
		TeamMembers:    req.TeamMembers,
	}
}

type teamMembersRequest struct {
	TeamMembers string `json:"team_members"`
}

type projectResponse struct {
	ID             string    `json:"id"`
	EnterpriseName string    `json:"enterprise_name"`
	ProjectName    string    `json:"project_name"`
	Description    string    `json:"description"`
	TeamMembers    string    `json:"team_members"`
	Status         string    `json:"status"`
	TotalScore     *float64  `json:"total_score"`
	ReviewResult   string    `json:"review_result,omitempty"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{
		ID:             p.ID.String(),
		EnterpriseName: p.EnterpriseName,
		ProjectName:    p.ProjectName,
		Description:    p.Description,
		TeamMembers:    p.TeamMembers,
		Status:         p.Status.String(),
		TotalScore:     p.TotalScore,
		ReviewResult:   p.ReviewResult.String(),
		Recommendation: p.Classification().Recommendation,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProjectResponses(projects []*model.Project) []projectResponse {
	return lo.Map(projects, func(p *model.Project, _ int) projectResponse {
		return toProjectResponse(p)
	})
}

type projectPageResponse struct {
	Items    []projectResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"size"`
}

type statisticsResponse struct {
	Counts         map[string]int    `json:"counts"`
	Total          int               `json:"total"`
	RecentProjects []projectResponse `json:"recent_projects"`
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, goerr.Wrap(model.ErrValidation, "query parameter must be an integer",
			goerr.V(model.FieldKey, key), goerr.V("value", v))
	}
	return n, nil
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := s.uc.Project.List(ctx, usecase.ListProjectsInput{
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, projectPageResponse{
		Items:    toProjectResponses(result.Items),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	project, err := s.uc.Project.Create(ctx, req.input())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toProjectResponse(project))
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.Project.Statistics(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := statisticsResponse{
		Counts:         make(map[string]int, len(stats.Counts)),
		RecentProjects: toProjectResponses(stats.RecentProjects),
	}
	for status, n := range stats.Counts {
		resp.Counts[status.String()] = n
		resp.Total += n
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, err := s.uc.Project.Get(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toProjectResponse(project))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	project, err := s.uc.Project.Update(ctx, projectIDParam(r), req.input())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toProjectResponse(project))
}

func (s *Server) updateTeamMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req teamMembersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	project, err := s.uc.Project.UpdateTeamMembers(ctx, projectIDParam(r), req.TeamMembers)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toProjectResponse(project))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.Project.Delete(ctx, projectIDParam(r)); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, nil)
}
