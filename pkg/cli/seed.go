package cli

import (
	"context"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/cli/config"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/incubo-lab/pitchreview/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// seedActor is recorded as the author of seeded score commits
const seedActor = "seed"

func cmdSeed() *cli.Command {
	var seedFile string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Seed data TOML file",
			Required:    true,
			Sources:     cli.EnvVars("PITCHREVIEW_SEED_FILE"),
			Destination: &seedFile,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load projects, scores and missing information from a seed file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := config.LoadSeed(seedFile)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			return runSeed(ctx, usecase.New(repo), seed)
		},
	}
}

func runSeed(ctx context.Context, uc *usecase.UseCases, seed *config.Seed) error {
	token, err := auth.NewToken(seedActor, seedActor, "system", time.Hour, time.Now())
	if err != nil {
		return goerr.Wrap(err, "failed to create seed session")
	}
	ctx = auth.ContextWithToken(ctx, token)

	for i, sp := range seed.Projects {
		project, err := uc.Project.Create(ctx, sp.ProjectInput())
		if err != nil {
			return goerr.Wrap(err, "failed to create seed project", goerr.V(config.IndexKey, i))
		}

		if inputs := sp.DimensionInputs(); len(inputs) > 0 {
			if _, err := uc.Score.ReplaceScores(ctx, project.ID, inputs, sp.Note); err != nil {
				return goerr.Wrap(err, "failed to seed scores", goerr.V(config.IndexKey, i))
			}
		}

		for _, in := range sp.MissingInfoInputs() {
			if _, err := uc.MissingInfo.Add(ctx, project.ID, in); err != nil {
				return goerr.Wrap(err, "failed to seed missing information", goerr.V(config.IndexKey, i))
			}
		}

		logging.From(ctx).Info("seeded project", "project_id", project.ID, "project_name", project.ProjectName)
	}

	logging.From(ctx).Info("seed completed", "projects", len(seed.Projects))
	return nil
}
