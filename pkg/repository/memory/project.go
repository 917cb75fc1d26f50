package memory

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type projectRepository struct {
	store *store
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.projects[project.ID]; exists {
		return goerr.Wrap(model.ErrConflict, "project already exists", goerr.V(model.ProjectIDKey, project.ID))
	}

	r.store.projects[project.ID] = &projectRecord{project: project.Clone()}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id model.ProjectID) (*model.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.projects[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, id))
	}

	// Return a copy to prevent external modification
	return rec.project.Clone(), nil
}

func (r *projectRepository) List(ctx context.Context, filter interfaces.ListProjectFilter) ([]*model.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.store.projects))
	for _, rec := range r.store.projects {
		if filter.Status != "" && rec.project.Status != filter.Status {
			continue
		}
		projects = append(projects, rec.project.Clone())
	}

	model.SortProjectsByCreatedDesc(projects)
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, exists := r.store.projects[project.ID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, project.ID))
	}

	updated := rec.project.Clone()
	updated.EnterpriseName = project.EnterpriseName
	updated.ProjectName = project.ProjectName
	updated.Description = project.Description
	updated.TeamMembers = project.TeamMembers
	updated.UpdatedAt = project.UpdatedAt

	rec.project = updated
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id model.ProjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.projects[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, id))
	}

	delete(r.store.projects, id)
	return nil
}
