package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ScoreUseCase runs score review sessions. Each project has at most one edit
// session, owned by the actor who began it.
type ScoreUseCase struct {
	repo   interfaces.Repository
	states *projectStates
	now    func() time.Time
}

// DraftView is what the owner of an edit session sees
type DraftView struct {
	ProjectID model.ProjectID
	Actor     string
	State     model.EditState
	Draft     *model.ScoreSheet
	Committed *model.ScoreSheet
	Changed   []types.DimensionID
	StartedAt time.Time
}

// DimensionUpdate is a partial edit of one draft dimension. With SubDimension
// set, Score applies to that sub-dimension.
type DimensionUpdate struct {
	Dimension    string
	Score        *float64
	Comment      *string
	SubDimension string
}

// SubDimensionInput sets one sub-dimension score
type SubDimensionInput struct {
	Name  string
	Score float64
}

// DimensionInput replaces the values of one dimension in ReplaceScores.
// Nil fields keep the committed value.
type DimensionInput struct {
	Dimension     string
	Score         *float64
	Comment       *string
	SubDimensions []SubDimensionInput
}

func newDraftView(id model.ProjectID, s *editSession) *DraftView {
	return &DraftView{
		ProjectID: id,
		Actor:     s.actor,
		State:     s.draft.State(),
		Draft:     s.draft.Draft(),
		Committed: s.draft.Committed(),
		Changed:   s.draft.ChangedDimensions(),
		StartedAt: s.startedAt,
	}
}

// loadSheet returns the committed sheet, or a fresh version 0 sheet if the
// project was never scored. The project must exist.
func (uc *ScoreUseCase) loadSheet(ctx context.Context, id model.ProjectID) (*model.ScoreSheet, error) {
	if _, err := uc.repo.Project().Get(ctx, id); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}

	sheet, err := uc.repo.ScoreSheet().Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewScoreSheet(id), nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get score sheet", goerr.V(model.ProjectIDKey, id))
	}
	return sheet, nil
}

// GetSheet returns the committed score sheet. Drafts are never visible here.
func (uc *ScoreUseCase) GetSheet(ctx context.Context, id model.ProjectID) (*model.ScoreSheet, error) {
	return uc.loadSheet(ctx, id)
}

// Summary returns the score summary of a project
func (uc *ScoreUseCase) Summary(ctx context.Context, id model.ProjectID) (*model.ScoreSummary, error) {
	sheet, err := uc.loadSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}
	return model.NewScoreSummary(project, sheet), nil
}

// History returns the commit history of a project, oldest first
func (uc *ScoreUseCase) History(ctx context.Context, id model.ProjectID) ([]*model.HistoryEntry, error) {
	entries, err := uc.repo.ScoreSheet().ListHistory(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list history", goerr.V(model.ProjectIDKey, id))
	}
	return entries, nil
}

// BeginEdit opens an edit session for the calling actor. If the actor already
// holds the session, the draft is kept and its rollback baseline refreshed.
func (uc *ScoreUseCase) BeginEdit(ctx context.Context, id model.ProjectID) (*DraftView, error) {
	actor := auth.ActorFromContext(ctx)
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()

	if st.session != nil && st.session.actor != actor {
		return nil, goerr.Wrap(model.ErrConflict, "score sheet is being edited by another reviewer",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.ActorKey, st.session.actor))
	}

	if st.session == nil {
		sheet, err := uc.loadSheet(ctx, id)
		if err != nil {
			return nil, err
		}
		st.session = &editSession{
			actor:     actor,
			draft:     model.NewScoreDraft(sheet),
			startedAt: uc.now(),
		}
		logging.From(ctx).Info("edit session started", "project_id", id, "actor", actor)
	}

	st.session.touchedAt = uc.now()
	st.session.draft.BeginEdit()
	return newDraftView(id, st.session), nil
}

// ownSession returns the session of the calling actor. Caller holds st.editMu.
func ownSession(ctx context.Context, id model.ProjectID, st *projectState) (*editSession, error) {
	actor := auth.ActorFromContext(ctx)
	if st.session == nil {
		return nil, goerr.Wrap(model.ErrConflict, "score sheet is not being edited",
			goerr.V(model.ProjectIDKey, id), goerr.V(model.ActorKey, actor))
	}
	if st.session.actor != actor {
		return nil, goerr.Wrap(model.ErrConflict, "score sheet is being edited by another reviewer",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.ActorKey, st.session.actor))
	}
	return st.session, nil
}

// GetDraft returns the calling actor's draft
func (uc *ScoreUseCase) GetDraft(ctx context.Context, id model.ProjectID) (*DraftView, error) {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()

	s, err := ownSession(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.touchedAt = uc.now()
	return newDraftView(id, s), nil
}

// UpdateDimension applies a partial edit to the draft. Scores are clamped.
func (uc *ScoreUseCase) UpdateDimension(ctx context.Context, id model.ProjectID, in DimensionUpdate) (*DraftView, error) {
	dim, err := parseScoredDimension(in.Dimension)
	if err != nil {
		return nil, err
	}
	if in.SubDimension != "" && in.Score == nil {
		return nil, goerr.Wrap(model.ErrValidation, "sub-dimension update needs a score",
			goerr.V(model.DimensionKey, dim))
	}

	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()

	s, err := ownSession(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.touchedAt = uc.now()

	if in.Score != nil {
		if in.SubDimension != "" {
			_, err = s.draft.SetSubScore(dim, in.SubDimension, *in.Score)
		} else {
			_, err = s.draft.SetScore(dim, *in.Score)
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set score", goerr.V(model.ProjectIDKey, id))
		}
	}
	if in.Comment != nil {
		if err := s.draft.SetComment(dim, *in.Comment); err != nil {
			return nil, goerr.Wrap(err, "failed to set comment", goerr.V(model.ProjectIDKey, id))
		}
	}

	return newDraftView(id, s), nil
}

// Cancel discards the calling actor's draft. Cancelling without a session is a no-op.
func (uc *ScoreUseCase) Cancel(ctx context.Context, id model.ProjectID) error {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()

	if st.session == nil {
		return nil
	}
	s, err := ownSession(ctx, id, st)
	if err != nil {
		return err
	}

	s.draft.Cancel()
	st.session = nil
	logging.From(ctx).Info("edit session cancelled", "project_id", id, "actor", s.actor)
	return nil
}

// ReleaseIdleSessions cancels every edit session whose owner has not used it
// for at least idle and returns the number of released sessions.
func (uc *ScoreUseCase) ReleaseIdleSessions(ctx context.Context, idle time.Duration) int {
	now := uc.now()
	var released int
	for _, id := range uc.states.ids() {
		if uc.releaseIfIdle(ctx, id, now, idle) {
			released++
		}
	}
	return released
}

func (uc *ScoreUseCase) releaseIfIdle(ctx context.Context, id model.ProjectID, now time.Time, idle time.Duration) bool {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	st.editMu.Lock()
	defer st.editMu.Unlock()

	s := st.session
	if s == nil || now.Sub(s.touchedAt) < idle {
		return false
	}
	s.draft.Cancel()
	st.session = nil
	logging.From(ctx).Info("idle edit session released",
		"project_id", id,
		"actor", s.actor,
		"idle", now.Sub(s.touchedAt))
	return true
}

// Commit persists the calling actor's draft and ends the session. A second
// commit while one is in flight fails with model.ErrConflict. If persistence
// fails the session stays open with the draft intact.
func (uc *ScoreUseCase) Commit(ctx context.Context, id model.ProjectID, note string) (*model.ScoreCommit, error) {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	if !st.commit.TryAcquire(1) {
		return nil, goerr.Wrap(model.ErrConflict, "another commit is in progress", goerr.V(model.ProjectIDKey, id))
	}
	defer st.commit.Release(1)

	st.editMu.Lock()
	defer st.editMu.Unlock()

	s, err := ownSession(ctx, id, st)
	if err != nil {
		return nil, err
	}

	c, err := uc.persist(ctx, id, st, s.draft, s.actor, note)
	if err != nil {
		return nil, err
	}

	st.session = nil
	return c, nil
}

// ReplaceScores begins, edits and commits in one call. It fails with
// model.ErrConflict while anyone holds an edit session on the project.
func (uc *ScoreUseCase) ReplaceScores(ctx context.Context, id model.ProjectID, inputs []DimensionInput, note string) (*model.ScoreCommit, error) {
	st := uc.states.acquire(id)
	defer uc.states.release(id, st)
	if !st.commit.TryAcquire(1) {
		return nil, goerr.Wrap(model.ErrConflict, "another commit is in progress", goerr.V(model.ProjectIDKey, id))
	}
	defer st.commit.Release(1)

	st.editMu.Lock()
	defer st.editMu.Unlock()

	if st.session != nil {
		return nil, goerr.Wrap(model.ErrConflict, "score sheet is being edited",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.ActorKey, st.session.actor))
	}

	sheet, err := uc.loadSheet(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := model.NewScoreDraft(sheet)
	draft.BeginEdit()
	for _, in := range inputs {
		if err := applyDimensionInput(draft, in); err != nil {
			return nil, goerr.Wrap(err, "invalid score input", goerr.V(model.ProjectIDKey, id))
		}
	}

	return uc.persist(ctx, id, st, draft, auth.ActorFromContext(ctx), note)
}

func applyDimensionInput(draft *model.ScoreDraft, in DimensionInput) error {
	dim, err := parseScoredDimension(in.Dimension)
	if err != nil {
		return err
	}

	for _, sub := range in.SubDimensions {
		if _, err := draft.SetSubScore(dim, sub.Name, sub.Score); err != nil {
			return err
		}
	}
	if in.Score != nil && len(in.SubDimensions) == 0 {
		if _, err := draft.SetScore(dim, *in.Score); err != nil {
			return err
		}
	}
	if in.Comment != nil {
		if err := draft.SetComment(dim, *in.Comment); err != nil {
			return err
		}
	}
	return nil
}

// persist commits the draft. Caller holds the commit semaphore and st.editMu.
func (uc *ScoreUseCase) persist(ctx context.Context, id model.ProjectID, st *projectState, draft *model.ScoreDraft, actor, note string) (*model.ScoreCommit, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}

	c, err := draft.Commit(project, actor, note, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare commit", goerr.V(model.ProjectIDKey, id))
	}

	if err := uc.repo.ScoreSheet().Commit(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to commit score sheet", goerr.V(model.ProjectIDKey, id))
	}
	draft.Complete(c)

	logging.From(ctx).Info("score sheet committed",
		"project_id", id,
		"actor", actor,
		"version", c.Sheet.Version,
		"total_score", c.Sheet.Total(),
		"status", c.Project.Status)
	return c, nil
}

func parseScoredDimension(s string) (types.DimensionID, error) {
	dim, err := types.ParseDimensionID(s)
	if err != nil || !dim.IsScored() {
		return "", goerr.Wrap(model.ErrValidation, "unknown scoring dimension", goerr.V(model.DimensionKey, s))
	}
	return dim, nil
}
