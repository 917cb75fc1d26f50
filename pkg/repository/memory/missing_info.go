package memory

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type missingInfoRepository struct {
	store *store
}

func (r *missingInfoRepository) List(ctx context.Context, projectID model.ProjectID) ([]*model.MissingInfo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.projects[projectID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
	}

	items := make([]*model.MissingInfo, len(rec.missingInfo))
	for i, item := range rec.missingInfo {
		items[i] = item.Clone()
	}
	return items, nil
}

func (r *missingInfoRepository) Get(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) (*model.MissingInfo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.projects[projectID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
	}

	for _, item := range rec.missingInfo {
		if item.ID == id {
			return item.Clone(), nil
		}
	}

	return nil, goerr.Wrap(model.ErrNotFound, "missing info not found",
		goerr.V(model.ProjectIDKey, projectID),
		goerr.V(model.MissingInfoIDKey, id))
}

func (r *missingInfoRepository) Add(ctx context.Context, item *model.MissingInfo) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, exists := r.store.projects[item.ProjectID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, item.ProjectID))
	}

	key := item.ContentKey()
	for _, existing := range rec.missingInfo {
		if existing.ContentKey() == key {
			return goerr.Wrap(model.ErrConflict, "duplicate missing info",
				goerr.V(model.ProjectIDKey, item.ProjectID),
				goerr.V(model.MissingInfoIDKey, existing.ID))
		}
	}

	rec.missingInfo = append(rec.missingInfo, item.Clone())
	return nil
}

func (r *missingInfoRepository) Remove(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, exists := r.store.projects[projectID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
	}

	for i, item := range rec.missingInfo {
		if item.ID == id {
			rec.missingInfo = append(rec.missingInfo[:i:i], rec.missingInfo[i+1:]...)
			return nil
		}
	}

	return goerr.Wrap(model.ErrNotFound, "missing info not found",
		goerr.V(model.ProjectIDKey, projectID),
		goerr.V(model.MissingInfoIDKey, id))
}
