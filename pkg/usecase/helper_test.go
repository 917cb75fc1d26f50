package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/repository/memory"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func newUseCases(t *testing.T) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	return usecase.New(repo), repo
}

func actorCtx(t *testing.T, sub string) context.Context {
	t.Helper()
	token, err := auth.NewToken(sub, sub, "reviewer", time.Hour, time.Now())
	gt.NoError(t, err).Required()
	return auth.ContextWithToken(context.Background(), token)
}

func createProject(t *testing.T, uc *usecase.UseCases, name string) *model.Project {
	t.Helper()
	p, err := uc.Project.Create(context.Background(), model.ProjectInput{
		EnterpriseName: name + " Ltd.",
		ProjectName:    name,
	})
	gt.NoError(t, err).Required()
	return p
}

func ptr[T any](v T) *T {
	return &v
}
