package model

import (
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// EditState is the state of a ScoreDraft
type EditState int

const (
	EditStateViewing EditState = iota
	EditStateEditing
)

func (s EditState) String() string {
	if s == EditStateEditing {
		return "editing"
	}
	return "viewing"
}

const msgNotEditing = "score sheet is not being edited"

// ScoreDraft implements the Viewing -> Editing -> Viewing edit cycle of a
// score sheet. The committed sheet is never touched until Complete.
// ScoreDraft is not safe for concurrent use; the owner serializes access.
type ScoreDraft struct {
	committed *ScoreSheet
	draft     *ScoreSheet
	baseline  *ScoreSheet
	state     EditState
}

// ScoreCommit is everything that must be persisted atomically for a commit
type ScoreCommit struct {
	ProjectID       ProjectID
	ExpectedVersion int64
	Sheet           *ScoreSheet
	History         *HistoryEntry
	Project         *Project
}

// NewScoreDraft starts in Viewing over the committed sheet
func NewScoreDraft(committed *ScoreSheet) *ScoreDraft {
	return &ScoreDraft{
		committed: committed.Clone(),
		state:     EditStateViewing,
	}
}

// State returns the current edit state
func (d *ScoreDraft) State() EditState {
	return d.state
}

// Committed returns a copy of the committed sheet. Drafts are never visible here.
func (d *ScoreDraft) Committed() *ScoreSheet {
	return d.committed.Clone()
}

// Draft returns a copy of the working draft, or nil while Viewing
func (d *ScoreDraft) Draft() *ScoreSheet {
	if d.state != EditStateEditing {
		return nil
	}
	return d.draft.Clone()
}

// Baseline returns the snapshot taken by the most recent BeginEdit, or nil while Viewing
func (d *ScoreDraft) Baseline() *ScoreSheet {
	if d.state != EditStateEditing {
		return nil
	}
	return d.baseline.Clone()
}

// BeginEdit moves Viewing to Editing with a draft copied from the committed
// sheet. Calling it again while Editing keeps the draft and refreshes the
// baseline to the current draft.
func (d *ScoreDraft) BeginEdit() {
	if d.state == EditStateEditing {
		d.baseline = d.draft.Clone()
		return
	}
	d.draft = d.committed.Clone()
	d.baseline = d.committed.Clone()
	d.state = EditStateEditing
}

func (d *ScoreDraft) editable(id types.DimensionID) (*Dimension, error) {
	if d.state != EditStateEditing {
		return nil, goerr.Wrap(ErrConflict, msgNotEditing, goerr.V(DimensionKey, id))
	}
	return d.draft.Dimension(id)
}

// SetScore sets the draft score of a dimension, clamped to [0, max_score],
// and returns the stored value.
func (d *ScoreDraft) SetScore(id types.DimensionID, value float64) (float64, error) {
	dim, err := d.editable(id)
	if err != nil {
		return 0, err
	}
	dim.Score = clamp(value, dim.MaxScore)
	return dim.Score, nil
}

// SetSubScore sets a sub-dimension score, clamped to its max, and makes the
// parent score the sum of its sub-dimension scores.
func (d *ScoreDraft) SetSubScore(id types.DimensionID, subName string, value float64) (float64, error) {
	dim, err := d.editable(id)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range dim.SubDimensions {
		if dim.SubDimensions[i].Name == subName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, goerr.Wrap(ErrValidation, "unknown sub-dimension",
			goerr.V(DimensionKey, id), goerr.V("sub_dimension", subName))
	}

	sub := &dim.SubDimensions[idx]
	sub.Score = clamp(value, sub.MaxScore)

	var sum float64
	for _, s := range dim.SubDimensions {
		sum += s.Score
	}
	dim.Score = clamp(sum, dim.MaxScore)
	return sub.Score, nil
}

// SetComment replaces the draft comment of a dimension verbatim
func (d *ScoreDraft) SetComment(id types.DimensionID, text string) error {
	dim, err := d.editable(id)
	if err != nil {
		return err
	}
	dim.Comment = text
	return nil
}

// Cancel discards the draft and returns to Viewing. It never fails.
func (d *ScoreDraft) Cancel() {
	d.draft = nil
	d.baseline = nil
	d.state = EditStateViewing
}

// Commit prepares the commit of the draft without changing state. project is
// recomputed from the new sheet on a copy; the caller persists the result and
// then calls Complete. On persistence failure the draft stays in Editing.
func (d *ScoreDraft) Commit(project *Project, modifiedBy, note string, now time.Time) (*ScoreCommit, error) {
	if d.state != EditStateEditing {
		return nil, goerr.Wrap(ErrConflict, msgNotEditing, goerr.V(ProjectIDKey, d.committed.ProjectID))
	}
	if err := d.draft.Validate(); err != nil {
		return nil, goerr.Wrap(err, "draft failed commit-time validation", goerr.V(ProjectIDKey, d.committed.ProjectID))
	}

	next := d.draft.Clone()
	next.Version = d.committed.Version + 1
	next.UpdatedAt = now

	updated := project.Clone()
	updated.RecomputeStatus(next, now)

	return &ScoreCommit{
		ProjectID:       d.committed.ProjectID,
		ExpectedVersion: d.committed.Version,
		Sheet:           next,
		History:         NewHistoryEntry(d.committed, modifiedBy, note, now),
		Project:         updated,
	}, nil
}

// Complete installs a persisted commit as the committed sheet and returns to Viewing
func (d *ScoreDraft) Complete(c *ScoreCommit) {
	d.committed = c.Sheet.Clone()
	d.Cancel()
}

// ChangedDimensions lists the dimensions whose score or comment differ
// between the baseline and the draft.
func (d *ScoreDraft) ChangedDimensions() []types.DimensionID {
	if d.state != EditStateEditing {
		return nil
	}
	var changed []types.DimensionID
	for i, dim := range d.draft.Dimensions {
		base := d.baseline.Dimensions[i]
		if dim.Score != base.Score || dim.Comment != base.Comment {
			changed = append(changed, dim.ID)
		}
	}
	return changed
}
