package config

import (
	"os"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Seed is the content of a seed data file
type Seed struct {
	Projects []SeedProject `toml:"projects"`
}

// SeedProject is one project with its initial scores and missing information
type SeedProject struct {
	EnterpriseName     string            `toml:"enterprise_name"`
	ProjectName        string            `toml:"project_name"`
	Description        string            `toml:"description"`
	TeamMembers        string            `toml:"team_members"`
	Note               string            `toml:"note"`
	Scores             []SeedScore       `toml:"scores"`
	MissingInformation []SeedMissingInfo `toml:"missing_information"`
}

type SeedScore struct {
	Dimension     string             `toml:"dimension"`
	Score         *float64           `toml:"score"`
	Comment       *string            `toml:"comment"`
	SubDimensions []SeedSubDimension `toml:"sub_dimensions"`
}

type SeedSubDimension struct {
	Name  string  `toml:"name"`
	Score float64 `toml:"score"`
}

type SeedMissingInfo struct {
	Dimension       string `toml:"dimension"`
	InformationType string `toml:"information_type"`
	Description     string `toml:"description"`
	Status          string `toml:"status"`
}

// ProjectInput returns the descriptive fields of the project
func (p SeedProject) ProjectInput() model.ProjectInput {
	return model.ProjectInput{
		EnterpriseName: p.EnterpriseName,
		ProjectName:    p.ProjectName,
		Description:    p.Description,
		TeamMembers:    p.TeamMembers,
	}
}

// DimensionInputs returns the scores as a ReplaceScores request
func (p SeedProject) DimensionInputs() []usecase.DimensionInput {
	return lo.Map(p.Scores, func(s SeedScore, _ int) usecase.DimensionInput {
		return usecase.DimensionInput{
			Dimension: s.Dimension,
			Score:     s.Score,
			Comment:   s.Comment,
			SubDimensions: lo.Map(s.SubDimensions, func(sub SeedSubDimension, _ int) usecase.SubDimensionInput {
				return usecase.SubDimensionInput{Name: sub.Name, Score: sub.Score}
			}),
		}
	})
}

// MissingInfoInputs returns the missing information items
func (p SeedProject) MissingInfoInputs() []model.MissingInfoInput {
	return lo.Map(p.MissingInformation, func(m SeedMissingInfo, _ int) model.MissingInfoInput {
		return model.MissingInfoInput{
			Dimension:       m.Dimension,
			InformationType: m.InformationType,
			Description:     m.Description,
			Status:          m.Status,
		}
	})
}

// LoadSeed reads a seed data file
func LoadSeed(path string) (*Seed, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read seed file", goerr.V(ConfigPathKey, path))
	}

	var seed Seed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse seed file", goerr.V(ConfigPathKey, path))
	}

	for i, p := range seed.Projects {
		if p.ProjectName == "" || p.EnterpriseName == "" {
			return nil, goerr.Wrap(ErrMissingName, "seed project needs enterprise_name and project_name",
				goerr.V(ConfigPathKey, path), goerr.V(IndexKey, i))
		}
	}
	return &seed, nil
}
