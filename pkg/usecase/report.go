package usecase

import (
	"context"
	"errors"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Report assembles the report page of a project. The parts are read
// concurrently; they are not a single consistent snapshot.
func (uc *ProjectUseCase) Report(ctx context.Context, id model.ProjectID) (*model.Report, error) {
	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}

	report := &model.Report{
		Project:     project,
		GeneratedAt: uc.now(),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		sheet, err := uc.repo.ScoreSheet().Get(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			sheet = model.NewScoreSheet(id)
		} else if err != nil {
			return goerr.Wrap(err, "failed to get score sheet", goerr.V(model.ProjectIDKey, id))
		}
		report.Sheet = sheet
		return nil
	})
	eg.Go(func() error {
		items, err := uc.repo.MissingInfo().List(ctx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to list missing info", goerr.V(model.ProjectIDKey, id))
		}
		report.MissingInfo = items
		return nil
	})
	eg.Go(func() error {
		history, err := uc.repo.ScoreSheet().ListHistory(ctx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to list history", goerr.V(model.ProjectIDKey, id))
		}
		report.History = history
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report.Summary = model.NewScoreSummary(project, report.Sheet)
	return report, nil
}
