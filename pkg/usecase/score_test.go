package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/types"
	"github.com/incubo-lab/pitchreview/pkg/repository/memory"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func setScore(t *testing.T, uc *usecase.UseCases, ctx context.Context, id model.ProjectID, dim string, v float64) *usecase.DraftView {
	t.Helper()
	view, err := uc.Score.UpdateDimension(ctx, id, usecase.DimensionUpdate{Dimension: dim, Score: ptr(v)})
	gt.NoError(t, err).Required()
	return view
}

func TestScoreUseCase_ReviewScenario(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")

	p := createProject(t, uc, "AI research")

	view, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, view.State).Equal(model.EditStateEditing)
	gt.S(t, view.Actor).Equal("alice")
	gt.V(t, view.Committed.Version).Equal(int64(0))

	setScore(t, uc, ctx, p.ID, "team", 28)
	setScore(t, uc, ctx, p.ID, "product_technology", 18)
	setScore(t, uc, ctx, p.ID, "market", 18)
	setScore(t, uc, ctx, p.ID, "business_model", 18)
	view = setScore(t, uc, ctx, p.ID, "financial", 6)
	gt.V(t, view.Draft.Total()).Equal(88.0)
	gt.A(t, view.Changed).Length(5)

	// readers never see the draft
	sheet, err := uc.Score.GetSheet(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, sheet.Total()).Equal(0.0)

	c, err := uc.Score.Commit(ctx, p.ID, "first pass")
	gt.NoError(t, err).Required()
	gt.V(t, c.Sheet.Version).Equal(int64(1))

	got, err := uc.Project.Get(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, *got.TotalScore).Equal(88.0)
	gt.V(t, got.Status).Equal(types.ProjectStatusCompleted)
	gt.V(t, got.ReviewResult).Equal(types.ReviewResultPass)

	history, err := uc.Score.History(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.A(t, history).Length(1)
	gt.S(t, history[0].ModifiedBy).Equal("alice")
	gt.S(t, history[0].Note).Equal("first pass")

	_, err = uc.MissingInfo.Add(ctx, p.ID, model.MissingInfoInput{Dimension: "financial", Description: "2023 statements"})
	gt.NoError(t, err).Required()
	items, err := uc.MissingInfo.List(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.A(t, items).Length(1)

	summary, err := uc.Score.Summary(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, summary.OverallPercentage).Equal(88.0)
	gt.S(t, summary.Recommendation).Equal(types.RecommendationExcellent)

	// the session ended with the commit
	_, err = uc.Score.GetDraft(ctx, p.ID)
	gt.Error(t, err).Is(model.ErrConflict)

	gt.NoError(t, uc.Project.Delete(ctx, p.ID))
	_, err = uc.Project.Get(ctx, p.ID)
	gt.Error(t, err).Is(model.ErrNotFound)
	_, err = uc.Score.History(ctx, p.ID)
	gt.Error(t, err).Is(model.ErrNotFound)
	_, err = uc.MissingInfo.List(ctx, p.ID)
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestScoreUseCase_Clamp(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")
	p := createProject(t, uc, "clamp")

	_, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()

	view := setScore(t, uc, ctx, p.ID, "financial", 999)
	fin, err := view.Draft.Dimension(types.DimensionFinancial)
	gt.NoError(t, err).Required()
	gt.V(t, fin.Score).Equal(10.0)

	view = setScore(t, uc, ctx, p.ID, "财务情况", -5)
	fin, err = view.Draft.Dimension(types.DimensionFinancial)
	gt.NoError(t, err).Required()
	gt.V(t, fin.Score).Equal(0.0)

	_, err = uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{Dimension: "other", Score: ptr(1.0)})
	gt.Error(t, err).Is(model.ErrValidation)
	_, err = uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{Dimension: "legal", Score: ptr(1.0)})
	gt.Error(t, err).Is(model.ErrValidation)
}

func TestScoreUseCase_SubDimensionAndComment(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")
	p := createProject(t, uc, "subs")

	_, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()

	_, err = uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{
		Dimension: "team", SubDimension: "core team background", Score: ptr(9.0),
	})
	gt.NoError(t, err).Required()
	view, err := uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{
		Dimension: "team", SubDimension: "team execution", Score: ptr(8.0), Comment: ptr("strong founders"),
	})
	gt.NoError(t, err).Required()

	team, err := view.Draft.Dimension(types.DimensionTeam)
	gt.NoError(t, err).Required()
	gt.V(t, team.Score).Equal(17.0)
	gt.S(t, team.Comment).Equal("strong founders")

	_, err = uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{Dimension: "team", SubDimension: "team execution"})
	gt.Error(t, err).Is(model.ErrValidation)
}

func TestScoreUseCase_SessionOwnership(t *testing.T) {
	uc, _ := newUseCases(t)
	alice := actorCtx(t, "alice")
	bob := actorCtx(t, "bob")
	p := createProject(t, uc, "owned")

	_, err := uc.Score.BeginEdit(alice, p.ID)
	gt.NoError(t, err).Required()
	setScore(t, uc, alice, p.ID, "market", 12)

	_, err = uc.Score.BeginEdit(bob, p.ID)
	gt.Error(t, err).Is(model.ErrConflict)
	_, err = uc.Score.UpdateDimension(bob, p.ID, usecase.DimensionUpdate{Dimension: "market", Score: ptr(1.0)})
	gt.Error(t, err).Is(model.ErrConflict)
	_, err = uc.Score.Commit(bob, p.ID, "")
	gt.Error(t, err).Is(model.ErrConflict)
	gt.Error(t, uc.Score.Cancel(bob, p.ID)).Is(model.ErrConflict)
	_, err = uc.Score.ReplaceScores(bob, p.ID, nil, "")
	gt.Error(t, err).Is(model.ErrConflict)

	// re-entering keeps the draft and moves the rollback baseline
	view, err := uc.Score.BeginEdit(alice, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, view.Draft.Total()).Equal(12.0)
	gt.A(t, view.Changed).Length(0)

	gt.NoError(t, uc.Score.Cancel(alice, p.ID))

	// after cancel another reviewer may start
	_, err = uc.Score.BeginEdit(bob, p.ID)
	gt.NoError(t, err)
}

func TestScoreUseCase_CancelRestoresCommitted(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")
	p := createProject(t, uc, "cancel")

	_, err := uc.Score.ReplaceScores(ctx, p.ID, []usecase.DimensionInput{
		{Dimension: "market", Score: ptr(14.0), Comment: ptr("large TAM")},
	}, "")
	gt.NoError(t, err).Required()
	before, err := uc.Score.GetSheet(ctx, p.ID)
	gt.NoError(t, err).Required()

	_, err = uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	setScore(t, uc, ctx, p.ID, "market", 2)
	_, err = uc.Score.UpdateDimension(ctx, p.ID, usecase.DimensionUpdate{Dimension: "market", Comment: ptr("tiny")})
	gt.NoError(t, err).Required()
	gt.NoError(t, uc.Score.Cancel(ctx, p.ID))

	after, err := uc.Score.GetSheet(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, *after).Equal(*before)

	view, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	market, err := view.Draft.Dimension(types.DimensionMarket)
	gt.NoError(t, err).Required()
	gt.V(t, market.Score).Equal(14.0)
	gt.S(t, market.Comment).Equal("large TAM")

	// cancelling without a session is harmless
	gt.NoError(t, uc.Score.Cancel(actorCtx(t, "carol"), createProject(t, uc, "idle").ID))
}

func TestScoreUseCase_ConcurrentCommit(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")
	p := createProject(t, uc, "race")

	_, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	setScore(t, uc, ctx, p.ID, "market", 10)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.Score.Commit(ctx, p.ID, "")
		}(i)
	}
	close(start)
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		gt.Error(t, err).Is(model.ErrConflict)
	}
	gt.V(t, ok).Equal(1)

	history, err := uc.Score.History(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.A(t, history).Length(1)

	sheet, err := uc.Score.GetSheet(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, sheet.Version).Equal(int64(1))
}

func TestScoreUseCase_ReplaceScores(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")
	p := createProject(t, uc, "replace")

	c, err := uc.Score.ReplaceScores(ctx, p.ID, []usecase.DimensionInput{
		{Dimension: "team", SubDimensions: []usecase.SubDimensionInput{
			{Name: "core team background", Score: 10},
			{Name: "team completeness", Score: 8},
			{Name: "team execution", Score: 7},
		}},
		{Dimension: "市场前景", Score: ptr(16.0)},
		{Dimension: "product & technology", Score: ptr(25.0)},
	}, "bulk import")
	gt.NoError(t, err).Required()
	gt.V(t, c.Sheet.Total()).Equal(61.0)
	gt.V(t, c.Project.Status).Equal(types.ProjectStatusPendingReview)

	// untouched dimensions keep their committed values
	c, err = uc.Score.ReplaceScores(ctx, p.ID, []usecase.DimensionInput{
		{Dimension: "financial", Score: ptr(5.0)},
	}, "")
	gt.NoError(t, err).Required()
	gt.V(t, c.Sheet.Total()).Equal(66.0)
	gt.V(t, c.Sheet.Version).Equal(int64(2))
	gt.V(t, *c.History.TotalScore).Equal(61.0)

	_, err = uc.Score.ReplaceScores(ctx, p.ID, []usecase.DimensionInput{{Dimension: "unknown"}}, "")
	gt.Error(t, err).Is(model.ErrValidation)

	_, err = uc.Score.ReplaceScores(ctx, model.NewProjectID(), nil, "")
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestScoreUseCase_UnknownProject(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")

	_, err := uc.Score.BeginEdit(ctx, model.NewProjectID())
	gt.Error(t, err).Is(model.ErrNotFound)
	_, err = uc.Score.GetSheet(ctx, model.NewProjectID())
	gt.Error(t, err).Is(model.ErrNotFound)
	_, err = uc.Score.Summary(ctx, model.NewProjectID())
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestScoreUseCase_ReleaseIdleSessions(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	uc := usecase.New(memory.New(), usecase.WithClock(c.Now))
	alice := actorCtx(t, "alice")
	bob := actorCtx(t, "bob")

	idle := createProject(t, uc, "Idle")
	busy := createProject(t, uc, "Busy")

	_, err := uc.Score.BeginEdit(alice, idle.ID)
	gt.NoError(t, err).Required()
	_, err = uc.Score.BeginEdit(bob, busy.ID)
	gt.NoError(t, err).Required()
	setScore(t, uc, alice, idle.ID, "team", 20)

	c.now = c.now.Add(20 * time.Minute)
	setScore(t, uc, bob, busy.ID, "team", 25)

	c.now = c.now.Add(15 * time.Minute)
	gt.V(t, uc.Score.ReleaseIdleSessions(context.Background(), 30*time.Minute)).Equal(1)

	// alice lost her session and her uncommitted score
	_, err = uc.Score.GetDraft(alice, idle.ID)
	gt.Error(t, err).Is(model.ErrConflict)
	sheet, err := uc.Score.GetSheet(context.Background(), idle.ID)
	gt.NoError(t, err).Required()
	gt.V(t, sheet.Total()).Equal(0.0)

	// the idle project is free for another reviewer
	_, err = uc.Score.BeginEdit(bob, idle.ID)
	gt.NoError(t, err)

	view, err := uc.Score.GetDraft(bob, busy.ID)
	gt.NoError(t, err).Required()
	gt.V(t, view.Draft.Total()).Equal(25.0)

	gt.V(t, uc.Score.ReleaseIdleSessions(context.Background(), time.Hour)).Equal(0)
}

func TestScoreUseCase_StateIsNotRetainedForUnknownProjects(t *testing.T) {
	uc, _ := newUseCases(t)
	ctx := actorCtx(t, "alice")

	for i := range 50 {
		id := model.ProjectID(fmt.Sprintf("missing-%d", i))

		_, err := uc.Score.GetDraft(ctx, id)
		gt.Error(t, err).Is(model.ErrConflict)
		_, err = uc.Score.BeginEdit(ctx, id)
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = uc.Score.Commit(ctx, id, "")
		gt.Error(t, err).Is(model.ErrConflict)
		gt.NoError(t, uc.Score.Cancel(ctx, id))
		gt.Error(t, uc.MissingInfo.Remove(ctx, id, "x")).Is(model.ErrNotFound)
		gt.Error(t, uc.Project.Delete(ctx, id)).Is(model.ErrNotFound)
	}
	gt.V(t, usecase.TrackedProjects(uc)).Equal(0)

	// an open session keeps its project tracked until it ends
	p := createProject(t, uc, "Tracked")
	_, err := uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.V(t, usecase.TrackedProjects(uc)).Equal(1)

	setScore(t, uc, ctx, p.ID, "market", 12)
	_, err = uc.Score.Commit(ctx, p.ID, "done")
	gt.NoError(t, err).Required()
	gt.V(t, usecase.TrackedProjects(uc)).Equal(0)

	_, err = uc.Score.BeginEdit(ctx, p.ID)
	gt.NoError(t, err).Required()
	gt.NoError(t, uc.Project.Delete(context.Background(), p.ID)).Required()
	gt.V(t, usecase.TrackedProjects(uc)).Equal(0)
}
