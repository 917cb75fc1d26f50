package memory

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type scoreSheetRepository struct {
	store *store
}

func (r *scoreSheetRepository) Get(ctx context.Context, projectID model.ProjectID) (*model.ScoreSheet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.projects[projectID]
	if !exists || rec.sheet == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "score sheet not found", goerr.V(model.ProjectIDKey, projectID))
	}

	return rec.sheet.Clone(), nil
}

func (r *scoreSheetRepository) Commit(ctx context.Context, c *model.ScoreCommit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, exists := r.store.projects[c.ProjectID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, c.ProjectID))
	}

	var current int64
	if rec.sheet != nil {
		current = rec.sheet.Version
	}
	if current != c.ExpectedVersion {
		return goerr.Wrap(model.ErrConflict, "score sheet was committed concurrently",
			goerr.V(model.ProjectIDKey, c.ProjectID),
			goerr.V(model.VersionKey, current),
			goerr.V("expected_version", c.ExpectedVersion))
	}

	project := rec.project.Clone()
	project.TotalScore = c.Project.TotalScore
	project.Status = c.Project.Status
	project.ReviewResult = c.Project.ReviewResult
	project.UpdatedAt = c.Project.UpdatedAt

	rec.sheet = c.Sheet.Clone()
	rec.history = append(rec.history, c.History.Clone())
	rec.project = project
	return nil
}

func (r *scoreSheetRepository) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, exists := r.store.projects[entry.ProjectID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, entry.ProjectID))
	}

	rec.history = append(rec.history, entry.Clone())
	return nil
}

func (r *scoreSheetRepository) ListHistory(ctx context.Context, projectID model.ProjectID) ([]*model.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.projects[projectID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "project not found", goerr.V(model.ProjectIDKey, projectID))
	}

	entries := make([]*model.HistoryEntry, len(rec.history))
	for i, e := range rec.history {
		entries[i] = e.Clone()
	}
	return entries, nil
}
