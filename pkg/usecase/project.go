package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
)

// Pagination defaults of the project list
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ProjectUseCase struct {
	repo   interfaces.Repository
	states *projectStates
	now    func() time.Time
}

// ListProjectsInput is the query of the project list page
type ListProjectsInput struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ProjectPage is one page of the project list
type ProjectPage struct {
	Items    []*model.Project
	Total    int
	Page     int
	PageSize int
}

func (uc *ProjectUseCase) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	project, err := model.NewProject(in, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "invalid project")
	}

	if err := uc.repo.Project().Create(ctx, project); err != nil {
		return nil, goerr.Wrap(err, "failed to create project")
	}

	logging.From(ctx).Info("project created",
		"project_id", project.ID,
		"project_name", project.ProjectName)
	return project, nil
}

func (uc *ProjectUseCase) Get(ctx context.Context, id model.ProjectID) (*model.Project, error) {
	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}
	return project, nil
}

// List filters by status and by a case-insensitive search on enterprise and
// project name, then returns the requested page. Newest projects come first.
func (uc *ProjectUseCase) List(ctx context.Context, in ListProjectsInput) (*ProjectPage, error) {
	var filter interfaces.ListProjectFilter
	if in.Status != "" {
		status, err := types.ParseProjectStatus(in.Status)
		if err != nil {
			return nil, goerr.Wrap(model.ErrValidation, "invalid status filter", goerr.V("status", in.Status))
		}
		filter.Status = status
	}

	page, size := in.Page, in.PageSize
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 0 || size < 0 || size > MaxPageSize {
		return nil, goerr.Wrap(model.ErrValidation, "invalid pagination",
			goerr.V("page", in.Page), goerr.V("page_size", in.PageSize))
	}
	// the offset (page-1)*size must not overflow
	if page > math.MaxInt/size {
		return nil, goerr.Wrap(model.ErrValidation, "page is out of range",
			goerr.V("page", in.Page), goerr.V("page_size", in.PageSize))
	}

	projects, err := uc.repo.Project().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}

	if q := strings.ToLower(strings.TrimSpace(in.Search)); q != "" {
		projects = lo.Filter(projects, func(p *model.Project, _ int) bool {
			return strings.Contains(strings.ToLower(p.EnterpriseName), q) ||
				strings.Contains(strings.ToLower(p.ProjectName), q)
		})
	}

	result := &ProjectPage{
		Items:    []*model.Project{},
		Total:    len(projects),
		Page:     page,
		PageSize: size,
	}
	start := (page - 1) * size
	if start < len(projects) {
		result.Items = projects[start:min(start+size, len(projects))]
	}
	return result, nil
}

// Update replaces the descriptive fields of a project
func (uc *ProjectUseCase) Update(ctx context.Context, id model.ProjectID, in model.ProjectInput) (*model.Project, error) {
	return uc.mutate(ctx, id, func(p *model.Project) error {
		return p.Update(in, uc.now())
	})
}

// UpdateTeamMembers replaces the team members text. Score and status stay as they are.
func (uc *ProjectUseCase) UpdateTeamMembers(ctx context.Context, id model.ProjectID, text string) (*model.Project, error) {
	return uc.mutate(ctx, id, func(p *model.Project) error {
		return p.UpdateTeamMembers(text, uc.now())
	})
}

func (uc *ProjectUseCase) mutate(ctx context.Context, id model.ProjectID, fn func(p *model.Project) error) (*model.Project, error) {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.mu.Lock()
	defer st.mu.Unlock()

	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}

	if err := fn(project); err != nil {
		return nil, goerr.Wrap(err, "invalid project update", goerr.V(model.ProjectIDKey, id))
	}

	if err := uc.repo.Project().Update(ctx, project); err != nil {
		return nil, goerr.Wrap(err, "failed to update project", goerr.V(model.ProjectIDKey, id))
	}
	return project, nil
}

// Delete removes the project with its score sheet, history and missing info.
// An open edit session on the project is discarded.
func (uc *ProjectUseCase) Delete(ctx context.Context, id model.ProjectID) error {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := uc.repo.Project().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id))
	}

	st.session = nil

	logging.From(ctx).Info("project deleted", "project_id", id)
	return nil
}

// Statistics returns per-status counts and the most recently created projects
func (uc *ProjectUseCase) Statistics(ctx context.Context) (*model.Statistics, error) {
	projects, err := uc.repo.Project().List(ctx, interfaces.ListProjectFilter{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return model.NewStatistics(projects, recentProjectCount), nil
}
