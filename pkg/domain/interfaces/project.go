package interfaces

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
)

// ListProjectFilter narrows ProjectRepository.List. Zero value lists everything.
type ListProjectFilter struct {
	Status types.ProjectStatus
}

type ProjectRepository interface {
	// Create stores a new project. Returns model.ErrConflict if the id already exists.
	Create(ctx context.Context, project *model.Project) error

	// Get retrieves a project by ID
	Get(ctx context.Context, id model.ProjectID) (*model.Project, error)

	// List retrieves projects ordered by creation time, newest first
	List(ctx context.Context, filter ListProjectFilter) ([]*model.Project, error)

	// Update replaces the profile fields (names, description, team members).
	// Score and status fields are owned by ScoreSheetRepository.Commit.
	Update(ctx context.Context, project *model.Project) error

	// Delete removes the project together with its score sheet, history and
	// missing info in one step.
	Delete(ctx context.Context, id model.ProjectID) error
}
