package interfaces

import (
	"context"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
)

type ScoreSheetRepository interface {
	// Get retrieves the committed sheet. Returns model.ErrNotFound if the
	// project has never been scored.
	Get(ctx context.Context, projectID model.ProjectID) (*model.ScoreSheet, error)

	// Commit atomically stores the new sheet, appends the history entry and
	// updates the score fields of the project. It fails with model.ErrConflict
	// if the stored sheet version is not c.ExpectedVersion, and with
	// model.ErrNotFound if the project is gone.
	Commit(ctx context.Context, c *model.ScoreCommit) error

	// AppendHistory appends an entry without touching the sheet
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error

	// ListHistory returns the history of a project, oldest first
	ListHistory(ctx context.Context, projectID model.ProjectID) ([]*model.HistoryEntry, error)
}
