package usecase

import (
	"context"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// MissingInfoUseCase manages the missing-info ledger of a project.
// Items are added and removed, never edited.
type MissingInfoUseCase struct {
	repo   interfaces.Repository
	states *projectStates
	now    func() time.Time
}

func (uc *MissingInfoUseCase) List(ctx context.Context, projectID model.ProjectID) ([]*model.MissingInfo, error) {
	items, err := uc.repo.MissingInfo().List(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list missing info", goerr.V(model.ProjectIDKey, projectID))
	}
	return items, nil
}

func (uc *MissingInfoUseCase) Get(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) (*model.MissingInfo, error) {
	item, err := uc.repo.MissingInfo().Get(ctx, projectID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get missing info",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}
	return item, nil
}

// Add appends an item. An item with the same dimension, information type and
// description as an existing one is rejected with model.ErrConflict.
func (uc *MissingInfoUseCase) Add(ctx context.Context, projectID model.ProjectID, in model.MissingInfoInput) (*model.MissingInfo, error) {
	item, err := model.NewMissingInfo(projectID, in, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "invalid missing info", goerr.V(model.ProjectIDKey, projectID))
	}

	st := uc.states.acquire(projectID)
	defer uc.states.release(projectID, st)
	st.missingMu.Lock()
	defer st.missingMu.Unlock()

	if err := uc.repo.MissingInfo().Add(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to add missing info", goerr.V(model.ProjectIDKey, projectID))
	}

	logging.From(ctx).Info("missing info added",
		"project_id", projectID,
		"missing_info_id", item.ID,
		"dimension", item.Dimension)
	return item, nil
}

// Remove deletes an item. Removing an absent item fails with model.ErrNotFound.
func (uc *MissingInfoUseCase) Remove(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) error {
	st := uc.states.acquire(projectID)
	defer uc.states.release(projectID, st)
	st.missingMu.Lock()
	defer st.missingMu.Unlock()

	if err := uc.repo.MissingInfo().Remove(ctx, projectID, id); err != nil {
		return goerr.Wrap(err, "failed to remove missing info",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.MissingInfoIDKey, id))
	}
	return nil
}
