package interfaces

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
)

type MissingInfoRepository interface {
	// List returns the items of a project in insertion order
	List(ctx context.Context, projectID model.ProjectID) ([]*model.MissingInfo, error)

	// Get returns one item. Returns model.ErrNotFound if the project or the
	// item does not exist.
	Get(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) (*model.MissingInfo, error)

	// Add appends an item. Returns model.ErrConflict if an item with the same
	// content key exists in the project and model.ErrNotFound if the project
	// does not exist.
	Add(ctx context.Context, item *model.MissingInfo) error

	// Remove deletes an item by id. Returns model.ErrNotFound if absent.
	Remove(ctx context.Context, projectID model.ProjectID, id model.MissingInfoID) error
}
